package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lectern/internal/config"
	"lectern/internal/index"
	"lectern/internal/notes"
)

var indexCmd = &cobra.Command{
	Use:   "index <notes.json>",
	Short: "Index a saved notes document into the vector store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}

		doc, err := notes.LoadDoc(args[0])
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

		fmt.Printf("Indexing %q (%d sections)...\n", doc.LectureTitle, len(doc.Sections))
		start := time.Now()

		if err := index.New(st).IndexDoc(doc); err != nil {
			return err
		}

		// Keep the saved notes document in sync so corpus status reflects
		// this lecture.
		if doc.GeneratedAt == 0 {
			doc.GeneratedAt = time.Now().Unix()
		}
		if err := notes.SaveDoc(cfg.NotesPath(), doc); err != nil {
			return err
		}

		fmt.Printf("Done in %s\n", time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
