package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:   "lectern",
	Short: "Lecture notes assistant with retrieval-grounded chat",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default lectern.yaml if present)")
}
