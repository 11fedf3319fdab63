package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"lectern/internal/config"
	"lectern/internal/index"
	"lectern/internal/quiz"
	"lectern/internal/rag"
	"lectern/internal/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Credentials commonly live in a .env next to the binary.
		_ = godotenv.Load()

		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		if flagAddr != "" {
			cfg.Server.Addr = flagAddr
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

		client := buildChatClient(cfg)
		retriever := rag.NewRetriever(st)
		engine := rag.NewEngine(retriever, buildAnswerer(client))
		indexer := index.New(st)
		quizzes := quiz.New(retriever, client)

		srv := server.New(engine, retriever, indexer, quizzes, cfg.NotesPath())
		return srv.Router(cfg.Server.CORSOrigins).Start(cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
