// Package userclient talks to the user service that owns bank clients.
package userclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/devsu/transaction-service/internal/domain"
	"github.com/devsu/transaction-service/internal/infrastructure/metrics"
)

// Config configures the user service client.
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	MaxRetries      uint64
	InitialInterval time.Duration
	HTTPClient      *http.Client
	Metrics         *metrics.Metrics
	Logger          zerolog.Logger
}

// Client implements usecase.ClientDirectory over HTTP.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	maxRetries      uint64
	initialInterval time.Duration
	metrics         *metrics.Metrics
	logger          zerolog.Logger
}

// NewClient creates a new user service client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:         strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		httpClient:      httpClient,
		maxRetries:      cfg.MaxRetries,
		initialInterval: cfg.InitialInterval,
		metrics:         cfg.Metrics,
		logger:          cfg.Logger.With().Str("component", "user_client").Logger(),
	}
}

// clientResponse is the user service representation of a client.
type clientResponse struct {
	ClientID             string `json:"clientId"`
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	IdentificationType   string `json:"identificationType"`
	IdentificationNumber string `json:"identificationNumber"`
	Status               bool   `json:"status"`
}

// statusError is a non-2xx answer from the user service.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("user service returned status %d", e.code)
}

// GetClient fetches a client by its business id. A 404 maps to
// domain.ErrClientNotFound; 5xx answers and transport errors are retried.
func (c *Client) GetClient(ctx context.Context, clientID string) (*domain.ClientInfo, error) {
	if c.baseURL == "" {
		return nil, errors.New("user service base url is empty")
	}

	endpoint := fmt.Sprintf("%s/clientId/%s", c.baseURL, url.PathEscape(clientID))

	var info *domain.ClientInfo
	operation := func() error {
		var err error
		info, err = c.fetch(ctx, endpoint)
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)

	notify := func(err error, wait time.Duration) {
		c.logger.Warn().Err(err).Str("client_id", clientID).Dur("wait", wait).Msg("user service call failed, retrying")
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		c.observe(err)
		return nil, err
	}

	c.observe(nil)
	return info, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) (*domain.ClientInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, fmt.Errorf("failed to execute request to user service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, backoff.Permanent(domain.ErrClientNotFound)
	case resp.StatusCode >= 500:
		return nil, &statusError{code: resp.StatusCode}
	case resp.StatusCode >= 400:
		return nil, backoff.Permanent(&statusError{code: resp.StatusCode})
	}

	var body clientResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
	}

	return &domain.ClientInfo{
		ClientID:             body.ClientID,
		FirstName:            body.FirstName,
		LastName:             body.LastName,
		IdentificationType:   body.IdentificationType,
		IdentificationNumber: body.IdentificationNumber,
		Active:               body.Status,
	}, nil
}

func (c *Client) observe(err error) {
	if c.metrics == nil {
		return
	}
	outcome := "success"
	switch {
	case errors.Is(err, domain.ErrClientNotFound):
		outcome = "not_found"
	case err != nil:
		outcome = "error"
	}
	c.metrics.UserServiceRequests.WithLabelValues(outcome).Inc()
}
