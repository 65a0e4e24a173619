package servicetrade

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"invoice-qa-review/internal/config"
	"invoice-qa-review/internal/domain"
	"invoice-qa-review/internal/domain/ports/adapter"
	"invoice-qa-review/internal/infra/logging"
	"invoice-qa-review/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.RecordSource = (*Client)(nil)

// maxErrorBody bounds how much of a failed response is kept for logs.
const maxErrorBody = 512

// Client reads job and invoice documents from the ServiceTrade API using
// HTTP Basic credentials fixed at construction.
type Client struct {
	base     string // e.g., https://app.servicetrade.com/api
	username string
	password string
	client   *http.Client
	log      *zerolog.Logger
}

// NewClient builds a client from config. httpClient may be nil.
// A zero timeout keeps the http.Client default (no timeout).
func NewClient(cfg config.ServiceTradeConfig, httpClient *http.Client, logger *zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = logging.Nop()
	}
	base := cfg.BaseURL
	if base == "" {
		base = config.DefaultServiceTradeBase
	}
	return &Client{
		base:     strings.TrimRight(base, "/"),
		username: cfg.Username,
		password: cfg.Password,
		client:   httpClient,
		log:      logger,
	}
}

func (c *Client) FetchJob(ctx context.Context, id string) (map[string]any, error) {
	return c.get(ctx, domain.ResourceJob, id)
}

func (c *Client) FetchInvoice(ctx context.Context, id string) (map[string]any, error) {
	return c.get(ctx, domain.ResourceInvoice, id)
}

func (c *Client) get(ctx context.Context, resource, id string) (map[string]any, error) {
	u := fmt.Sprintf("%s/%s/%s", c.base, resource, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &domain.TransportError{Resource: resource, ID: id, Err: err}
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")

	l := logging.With(ctx, c.log)
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ObserveRecordFetch(resource, 0, time.Since(start).Milliseconds())
		l.Warn().Err(err).Str("resource", resource).Str("id", id).Msg("record api unreachable")
		return nil, &domain.TransportError{Resource: resource, ID: id, Err: err}
	}
	defer resp.Body.Close()
	metrics.ObserveRecordFetch(resource, resp.StatusCode, time.Since(start).Milliseconds())

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		l.Warn().
			Str("resource", resource).
			Str("id", id).
			Int("status", resp.StatusCode).
			Str("body", string(body)).
			Msg("record api returned non-200")
		return nil, &domain.FetchError{Resource: resource, ID: id, StatusCode: resp.StatusCode}
	}

	// numbers stay json.Number so the record is re-serialized as received
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) {
			return nil, &domain.TransportError{Resource: resource, ID: id, Err: err}
		}
		return nil, &domain.FetchError{
			Resource:   resource,
			ID:         id,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decode body: %w", err),
		}
	}
	if doc == nil {
		return nil, &domain.FetchError{
			Resource:   resource,
			ID:         id,
			StatusCode: resp.StatusCode,
			Err:        errors.New("decode body: document is null"),
		}
	}
	l.Debug().Str("resource", resource).Str("id", id).Int("keys", len(doc)).Msg("record fetched")
	return doc, nil
}
