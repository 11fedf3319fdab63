package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"lectern/internal/notes"
	"lectern/internal/quiz"
	"lectern/internal/rag"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetNotes(c echo.Context) error {
	doc, err := notes.LoadDoc(s.notesPath)
	if err != nil {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "no notes document saved"})
	}
	return c.JSON(http.StatusOK, doc)
}

// handlePostNotes saves the notes document and indexes its sections.
// This is the ingestion entry point: the caller supplies the lecture
// title and its sections, already parsed.
func (s *Server) handlePostNotes(c echo.Context) error {
	var doc notes.Doc
	if err := c.Bind(&doc); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid notes document"})
	}
	if len(doc.Sections) == 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "no sections provided"})
	}
	for _, sec := range doc.Sections {
		if sec.ID == "" || sec.Content == "" {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "every section needs an id and content"})
		}
	}
	if doc.LectureTitle == "" {
		doc.LectureTitle = "Notes"
	}
	if doc.GeneratedAt == 0 {
		doc.GeneratedAt = time.Now().Unix()
	}

	if err := notes.SaveDoc(s.notesPath, &doc); err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	if err := s.indexer.IndexDoc(&doc); err != nil {
		return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"lecture_title": doc.LectureTitle,
		"indexed":       len(doc.Sections),
	})
}

type searchRequest struct {
	Q    string `json:"q"`
	TopK int    `json:"top_k"`
	Mode string `json:"mode"` // hybrid|keyword|semantic; this core retrieves semantically
}

func (s *Server) handleSearch(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid search request"})
	}
	if strings.TrimSpace(req.Q) == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "empty query"})
	}

	hits, err := s.retriever.Search(req.Q, rag.ClampTopK(req.TopK))
	if err != nil {
		return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, hits)
}

type chatRequest struct {
	Messages    []notes.Message `json:"messages"`
	TopK        int             `json:"top_k"`
	Temperature *float64        `json:"temperature"`
}

func (s *Server) handleChat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid chat request"})
	}

	temperature := rag.DefaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	result, err := s.engine.HandleChat(req.Messages, req.TopK, temperature)
	if err != nil {
		if errors.Is(err, rag.ErrEmptyConversation) || errors.Is(err, rag.ErrNoQuestion) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleQuiz(c echo.Context) error {
	var req quiz.Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid quiz request"})
	}

	items, err := s.quizzes.Generate(req)
	if err != nil {
		switch {
		case errors.Is(err, quiz.ErrNotConfigured):
			return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		case errors.Is(err, quiz.ErrNoCorpus):
			return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		default:
			return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
		}
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) handleCorpusStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, notes.DocStatus(s.notesPath))
}
