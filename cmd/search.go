package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lectern/internal/config"
	"lectern/internal/rag"
)

var flagK int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Semantic search over indexed lecture notes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}

		emb, err := buildEmbedder(cfg)
		if err != nil {
			return fmt.Errorf("configure embedder: %w", err)
		}
		st, err := buildStore(cfg, emb)
		if err != nil {
			return fmt.Errorf("open vector store: %w", err)
		}
		defer st.Close()

		query := strings.Join(args, " ")
		hits, err := rag.NewRetriever(st).Search(query, rag.ClampTopK(flagK))
		if err != nil {
			return err
		}

		if len(hits) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for i, h := range hits {
			label := h.SectionID
			if label == "" {
				label = fmt.Sprintf("match-%d", i+1)
			}
			if h.Score != nil {
				fmt.Printf("%d. [%s | %s | score=%.2f]\n", i+1, label, h.Source, *h.Score)
			} else {
				fmt.Printf("%d. [%s | %s]\n", i+1, label, h.Source)
			}
			fmt.Printf("   %s\n\n", h.Snippet)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&flagK, "k", 5, "number of results")
	rootCmd.AddCommand(searchCmd)
}
