package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"lectern/internal/config"
	"lectern/internal/notes"
	"lectern/internal/rag"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing lecture notes tools",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
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

	retriever := rag.NewRetriever(st)
	engine := rag.NewEngine(retriever, buildAnswerer(buildChatClient(cfg)))

	s := mcpserver.NewMCPServer("lectern", "1.0.0", mcpserver.WithToolCapabilities(false))

	s.AddTool(searchNotesTool(), makeSearchHandler(retriever))
	s.AddTool(askNotesTool(), makeAskHandler(engine))
	s.AddTool(corpusStatusTool(), makeStatusHandler(cfg.NotesPath()))

	return mcpserver.ServeStdio(s)
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// --- Tool schema builders ---

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func searchNotesTool() mcp.Tool {
	return mcp.NewTool("search_notes",
		mcp.WithDescription("Semantically search the indexed lecture notes. Returns matching sections with similarity scores and lecture provenance."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language query to search the notes"),
		),
		mcp.WithNumber("k",
			mcp.Description("Maximum number of sections to return (default 5, max 15)"),
		),
	)
}

func askNotesTool() mcp.Tool {
	return mcp.NewTool("ask_notes",
		mcp.WithDescription("Ask a question answered strictly from the indexed lecture notes, with citations to the sections used."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to answer from the notes"),
		),
		mcp.WithNumber("k",
			mcp.Description("Number of sections to ground the answer on (default 5)"),
		),
	)
}

func corpusStatusTool() mcp.Tool {
	return mcp.NewTool("corpus_status",
		mcp.WithDescription("Report whether a lecture corpus has been ingested, its title, and its section count."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
	)
}

// --- Handler factories ---

func makeSearchHandler(retriever *rag.Retriever) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		k := rag.ClampTopK(req.GetInt("k", 0))

		hits, err := retriever.Search(query, k)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}

		return mcp.NewToolResultText(formatHits(query, hits)), nil
	}
}

func makeAskHandler(engine *rag.Engine) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question := req.GetString("question", "")
		if question == "" {
			return mcp.NewToolResultError("question is required"), nil
		}
		k := req.GetInt("k", 0)

		msgs := []notes.Message{{Role: "user", Content: notes.PlainText(question)}}
		result, err := engine.HandleChat(msgs, k, rag.DefaultTemperature)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("chat failed: %v", err)), nil
		}

		var sb strings.Builder
		sb.WriteString(result.Text)
		if len(result.Citations) > 0 {
			sb.WriteString("\n\nSources:\n")
			for _, h := range result.Citations {
				if h.Score != nil {
					fmt.Fprintf(&sb, "- %s (%s, score=%.2f)\n", h.SectionID, h.Source, *h.Score)
				} else {
					fmt.Fprintf(&sb, "- %s (%s)\n", h.SectionID, h.Source)
				}
			}
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func makeStatusHandler(notesPath string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		status := notes.DocStatus(notesPath)
		if !status.Ready {
			return mcp.NewToolResultText("No lecture corpus has been ingested yet."), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Corpus ready: %q, %d sections.", status.LectureTitle, status.Sections)), nil
	}
}

// --- Formatting helpers ---

func formatHits(query string, hits []rag.Hit) string {
	if len(hits) == 0 {
		return fmt.Sprintf("No results found for query: %q", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Search results for %q (%d sections)\n\n", query, len(hits))

	for i, h := range hits {
		label := h.SectionID
		if label == "" {
			label = fmt.Sprintf("match-%d", i+1)
		}
		fmt.Fprintf(&sb, "### Result %d: %s\n\n", i+1, label)
		if h.Score != nil {
			fmt.Fprintf(&sb, "**Lecture:** %s  \n**Score:** %.2f\n\n", h.Source, *h.Score)
		} else {
			fmt.Fprintf(&sb, "**Lecture:** %s\n\n", h.Source)
		}
		sb.WriteString(h.Document)
		sb.WriteString("\n\n")
	}

	return sb.String()
}
