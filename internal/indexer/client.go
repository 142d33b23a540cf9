// Package indexer pushes document content to the external search indexer.
// The indexer is an optional collaborator: indexing failures are logged and
// swallowed so document writes never block on it.
package indexer

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/quillhq/quill/internal/domain"
	"github.com/quillhq/quill/pkg/httpclient"
)

// Client talks to the search indexer over HTTP behind a circuit breaker.
type Client struct {
	http    *httpclient.CircuitBreakerClient
	baseURL string
	log     *slog.Logger
}

// New creates an indexer client. An empty baseURL disables indexing.
func New(baseURL string, log *slog.Logger) *Client {
	if baseURL == "" {
		return &Client{log: log}
	}

	inner := httpclient.New(httpclient.Config{
		Timeout:    5 * time.Second,
		MaxRetries: 2,
	})
	cb := httpclient.NewCircuitBreakerClient(inner, httpclient.BreakerConfig{
		Name:             "search-indexer",
		FailureThreshold: 5,
		Timeout:          30 * time.Second,
	}, log)

	return &Client{http: cb, baseURL: baseURL, log: log}
}

type indexRequest struct {
	DocumentID string `json:"document_id"`
	OwnerID    string `json:"owner_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Category   string `json:"category,omitempty"`
}

// Index submits a document for indexing. Runs in the caller's goroutine but
// never returns an error; callers fire and forget.
func (c *Client) Index(ctx context.Context, doc *domain.Document) {
	if c == nil || c.http == nil {
		return
	}

	body, err := json.Marshal(indexRequest{
		DocumentID: doc.ID,
		OwnerID:    doc.OwnerID,
		Title:      doc.Title,
		Content:    doc.Content,
		Category:   doc.Category,
	})
	if err != nil {
		c.log.WarnContext(ctx, "indexer marshal failed", "document_id", doc.ID, "error", err)
		return
	}

	resp, err := c.http.Post(ctx, c.baseURL+"/index", body)
	if err != nil {
		c.log.WarnContext(ctx, "indexer request failed", "document_id", doc.ID, "error", err)
		return
	}
	resp.Body.Close()
}

// Remove drops a document from the index.
func (c *Client) Remove(ctx context.Context, documentID string) {
	if c == nil || c.http == nil {
		return
	}

	body, err := json.Marshal(map[string]string{"document_id": documentID})
	if err != nil {
		return
	}

	resp, err := c.http.Post(ctx, c.baseURL+"/remove", body)
	if err != nil {
		c.log.WarnContext(ctx, "indexer remove failed", "document_id", documentID, "error", err)
		return
	}
	resp.Body.Close()
}
