package vectorstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"lectern/internal/embedder"
)

// QdrantStore is a minimal REST client to Qdrant. It assumes cosine
// similarity and creates the collection lazily on first use.
type QdrantStore struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	emb        embedder.Embedder
	client     *http.Client

	mu    sync.Mutex
	ready bool
}

// QdrantConfig configures the Qdrant client.
type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Dimension  int
	Timeout    time.Duration
}

// NewQdrant creates a Qdrant-backed store.
func NewQdrant(cfg QdrantConfig, emb embedder.Embedder) (*QdrantStore, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant store: missing URL")
	}
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("qdrant store: invalid dimension %d", cfg.Dimension)
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &QdrantStore{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dimension:  cfg.Dimension,
		emb:        emb,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

// ensureCollection creates the collection if missing. Qdrant returns 200
// when the collection already exists with the same schema.
func (s *QdrantStore) ensureCollection() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     s.dimension,
			"distance": "Cosine",
		},
	}
	if err := s.putJSON(fmt.Sprintf("%s/collections/%s", s.url, s.collection), body); err != nil {
		return err
	}
	s.ready = true
	return nil
}

// pointID derives a stable UUID from a section ID so that re-indexing the
// same section overwrites its point instead of accumulating duplicates.
func pointID(sectionID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(sectionID)).String()
}

func (s *QdrantStore) Upsert(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := s.ensureCollection(); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}

	docs := make([]string, len(entries))
	for i, e := range entries {
		docs[i] = e.Document
	}
	vectors, err := s.emb.Embed(docs)
	if err != nil {
		return fmt.Errorf("embed sections: %w", err)
	}

	points := make([]map[string]any, len(entries))
	for i, e := range entries {
		points[i] = map[string]any{
			"id":     pointID(e.ID),
			"vector": vectors[i],
			"payload": map[string]any{
				"section_id": e.SectionID,
				"title":      e.Title,
				"document":   e.Document,
			},
		}
	}
	body := map[string]any{"points": points}
	return s.putJSON(fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection), body)
}

func (s *QdrantStore) Query(text string, topK int) ([]Match, error) {
	if err := s.ensureCollection(); err != nil {
		return nil, fmt.Errorf("ensure collection: %w", err)
	}
	vec, err := s.emb.EmbedSingle(text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	req := map[string]any{
		"vector":       vec,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.postJSON(fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection), req, &resp); err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(resp.Result))
	for _, r := range resp.Result {
		m := Match{}
		if v, ok := r.Payload["section_id"].(string); ok {
			m.SectionID = v
		}
		if v, ok := r.Payload["title"].(string); ok {
			m.Title = v
		}
		if v, ok := r.Payload["document"].(string); ok {
			m.Document = v
		}
		score := r.Score
		m.Score = &score
		matches = append(matches, m)
	}
	return matches, nil
}

func (s *QdrantStore) Count() (int, error) {
	if err := s.ensureCollection(); err != nil {
		return 0, fmt.Errorf("ensure collection: %w", err)
	}
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := s.postJSON(fmt.Sprintf("%s/collections/%s/points/count", s.url, s.collection), map[string]any{"exact": true}, &resp); err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

func (s *QdrantStore) Reset() error {
	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/collections/%s", s.url, s.collection), nil)
	if err != nil {
		return err
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	// Allow the next call to recreate the collection.
	s.mu.Lock()
	s.ready = false
	s.mu.Unlock()
	return nil
}

func (s *QdrantStore) Close() error { return nil }

func (s *QdrantStore) putJSON(url string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant PUT %s failed: %s", url, resp.Status)
	}
	return nil
}

func (s *QdrantStore) postJSON(url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
