// Package server exposes the lecture assistant over HTTP.
package server

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"lectern/internal/index"
	"lectern/internal/quiz"
	"lectern/internal/rag"
)

// Server wires the core components behind the HTTP API.
type Server struct {
	engine    *rag.Engine
	retriever *rag.Retriever
	indexer   *index.Indexer
	quizzes   *quiz.Generator
	notesPath string
}

// New creates a Server over the given components. notesPath is where the
// saved notes document lives.
func New(engine *rag.Engine, retriever *rag.Retriever, indexer *index.Indexer, quizzes *quiz.Generator, notesPath string) *Server {
	return &Server{
		engine:    engine,
		retriever: retriever,
		indexer:   indexer,
		quizzes:   quizzes,
		notesPath: notesPath,
	}
}

// Router builds the echo instance with middleware and routes.
func (s *Server) Router(corsOrigins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	if len(corsOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     corsOrigins,
			AllowCredentials: true,
		}))
	}

	e.GET("/health", s.handleHealth)
	e.GET("/notes", s.handleGetNotes)
	e.POST("/notes", s.handlePostNotes)
	e.POST("/search", s.handleSearch)
	e.POST("/chat", s.handleChat)
	e.POST("/quiz", s.handleQuiz)
	e.GET("/corpus/status", s.handleCorpusStatus)

	return e
}
