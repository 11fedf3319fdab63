package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"lectern/internal/config"
	"lectern/internal/notes"
	"lectern/internal/rag"
)

var flagChatK int

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions about your indexed lecture notes",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		client := buildChatClient(cfg)
		if client == nil {
			fmt.Println("No generation model configured; answers will show raw retrieved context.")
		}
		engine := rag.NewEngine(rag.NewRetriever(st), buildAnswerer(client))

		var history []notes.Message
		scanner := bufio.NewScanner(os.Stdin)

		fmt.Println("lectern chat (type /help for commands, /exit to quit)")
		fmt.Println()

		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			question := strings.TrimSpace(scanner.Text())
			if question == "" {
				continue
			}

			switch question {
			case "/exit", "/quit":
				fmt.Println("Goodbye.")
				return nil
			case "/clear":
				history = nil
				fmt.Println("Conversation cleared.")
				continue
			case "/help":
				fmt.Println("Commands:")
				fmt.Println("  /clear  - clear conversation history")
				fmt.Println("  /exit   - quit chat")
				fmt.Println("  /help   - show this help")
				continue
			}

			history = append(history, notes.Message{Role: "user", Content: notes.PlainText(question)})

			result, err := engine.HandleChat(history, flagChatK, rag.DefaultTemperature)
			if err != nil {
				fmt.Fprintf(os.Stderr, "chat error: %v\n", err)
				history = history[:len(history)-1]
				continue
			}

			fmt.Println()
			fmt.Println(result.Text)
			if len(result.Citations) > 0 {
				labels := make([]string, 0, len(result.Citations))
				for _, h := range result.Citations {
					labels = append(labels, h.SectionID)
				}
				fmt.Printf("\nSources: %s\n", strings.Join(labels, ", "))
			}
			fmt.Println()

			history = append(history, notes.Message{Role: "assistant", Content: notes.PlainText(result.Text)})
			// Keep last 10 turns of history.
			if len(history) > 20 {
				history = history[len(history)-20:]
			}
		}

		return scanner.Err()
	},
}

func init() {
	chatCmd.Flags().IntVar(&flagChatK, "k", 5, "number of sections to retrieve per question")
	rootCmd.AddCommand(chatCmd)
}
