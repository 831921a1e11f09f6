// Package borderconnect is the transport for sending formatted wire payloads
// to the BorderConnect customs gateway. The core depends only on this
// request/response contract.
package borderconnect

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"borderlink/internal/manifest/wire"
	dErrors "borderlink/pkg/domain-errors"
)

// sendPath is BorderConnect's single submission endpoint.
const sendPath = "/api/send/jones"

// Client posts wire manifests to BorderConnect.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient constructs a gateway client. The timeout is the only retry/backoff
// policy at this boundary; resubmission is always an explicit user action.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Send submits the manifest and returns the raw gateway acknowledgement. The
// payload was queued, not dispatched: autoSend is always false upstream.
func (c *Client) Send(ctx context.Context, m *wire.Manifest) (json.RawMessage, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode gateway payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sendPath, bytes.NewReader(payload))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build gateway request")
	}
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "gateway unreachable")
	}
	defer resp.Body.Close()

	ack, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to read gateway response")
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "gateway rejected manifest",
			"status", resp.StatusCode,
			"trip_number", m.TripNumber,
			"send_id", m.SendID,
		)
		return nil, dErrors.Newf(dErrors.CodeUnavailable, "gateway error %d: %s", resp.StatusCode, ack)
	}

	return json.RawMessage(ack), nil
}
