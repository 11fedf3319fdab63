package notes

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SectionType classifies a section's content.
type SectionType string

const (
	SectionText  SectionType = "text"
	SectionCode  SectionType = "code"
	SectionLatex SectionType = "latex"
)

// Section is one titled chunk of lecture content produced by ingestion.
// Sections are immutable once ingested; re-ingestion re-upserts the same ID.
type Section struct {
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	Content  string      `json:"content"`
	Type     SectionType `json:"type"`
	Language string      `json:"language,omitempty"`
}

// Doc is a saved notes document: the full output of one lecture ingestion.
type Doc struct {
	LectureTitle string    `json:"lecture_title"`
	GeneratedAt  int64     `json:"generated_at,omitempty"`
	Sections     []Section `json:"sections"`
}

// Status describes whether a corpus has been ingested and indexed.
type Status struct {
	Ready        bool   `json:"ready"`
	LectureTitle string `json:"lecture_title,omitempty"`
	GeneratedAt  int64  `json:"generated_at,omitempty"`
	Sections     int    `json:"sections,omitempty"`
}

// LoadDoc reads a notes document from disk.
func LoadDoc(path string) (*Doc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read notes doc: %w", err)
	}
	var doc Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse notes doc: %w", err)
	}
	if doc.LectureTitle == "" {
		doc.LectureTitle = "Notes"
	}
	return &doc, nil
}

// SaveDoc writes a notes document to disk, creating parent directories.
func SaveDoc(path string, doc *Doc) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create notes directory: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal notes doc: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write notes doc: %w", err)
	}
	return nil
}

// DocStatus derives the corpus status from a notes document path.
// A missing or unreadable document means the corpus is not ready.
func DocStatus(path string) Status {
	doc, err := LoadDoc(path)
	if err != nil {
		return Status{Ready: false}
	}
	return Status{
		Ready:        true,
		LectureTitle: doc.LectureTitle,
		GeneratedAt:  doc.GeneratedAt,
		Sections:     len(doc.Sections),
	}
}
