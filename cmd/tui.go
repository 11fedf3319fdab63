package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"lectern/internal/config"
	"lectern/internal/notes"
	"lectern/internal/rag"
	"lectern/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive chat over your lecture notes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func runTUI() error {
	_ = godotenv.Load()

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

	engine := rag.NewEngine(rag.NewRetriever(st), buildAnswerer(buildChatClient(cfg)))

	status := notes.DocStatus(cfg.NotesPath())
	return tui.Run(engine, status.LectureTitle, 5)
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
