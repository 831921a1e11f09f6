// Package intake wraps the document parsing backend. The core only depends on
// its boundary contract: a document plus header fields in, a canonical draft
// bundle out. How PDFs become structured text is the backend's business.
package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"borderlink/internal/manifest/models"
	"borderlink/internal/platform/metrics"
	dErrors "borderlink/pkg/domain-errors"
)

// Document is an uploaded file with the header fields the user supplied
// alongside it.
type Document struct {
	File           io.Reader
	Filename       string
	ManifestType   models.ManifestType
	BorderCrossing string
	CrossingTime   time.Time
}

// Client calls the parsing backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// Option configures a Client.
type Option func(c *Client)

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient constructs an intake client. The timeout bounds the whole parse
// round-trip; the workflow imposes no retry of its own.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload sends the document for parsing and returns the canonical draft
// bundle the backend assembled from it.
func (c *Client) Upload(ctx context.Context, doc Document) (*models.Bundle, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", doc.Filename)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build intake request")
	}
	if _, err := io.Copy(part, doc.File); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read document")
	}
	_ = mw.WriteField("manifest_type", string(doc.ManifestType))
	_ = mw.WriteField("border_crossing", doc.BorderCrossing)
	_ = mw.WriteField("crossing_time", doc.CrossingTime.Format(time.RFC3339))
	if err := mw.Close(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build intake request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build intake request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.incFailures()
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "intake service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.incFailures()
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.WarnContext(ctx, "intake rejected document",
			"status", resp.StatusCode,
			"filename", doc.Filename,
		)
		return nil, dErrors.Newf(dErrors.CodeUnavailable, "intake failed with status %d: %s", resp.StatusCode, payload)
	}

	var draft models.Bundle
	if err := json.NewDecoder(resp.Body).Decode(&draft); err != nil {
		c.incFailures()
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "intake returned malformed draft")
	}
	if draft.Manifest == nil {
		c.incFailures()
		return nil, dErrors.New(dErrors.CodeUnavailable, "intake returned draft without manifest header")
	}
	// The backend echoes header fields; trust the user-entered ones.
	draft.Manifest.ManifestType = doc.ManifestType
	draft.Manifest.PortOfEntry = doc.BorderCrossing
	draft.Manifest.EstimatedArrival = doc.CrossingTime
	draft.Manifest.Status = models.StatusDraft

	return &draft, nil
}

func (c *Client) incFailures() {
	if c.metrics != nil {
		c.metrics.IntakeFailures.Inc()
	}
}
