package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ============================================================================
// HTTP SERVICE - Generic visualization endpoint
// ============================================================================
// POSTs the Request as JSON and parses the reply with ParseResponse.
// Any non-2xx status is an error carrying a truncated body.
// ============================================================================

// HTTPService implements Suggester against a JSON HTTP endpoint.
type HTTPService struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *zap.Logger
}

// NewHTTPService creates an HTTP suggester.
func NewHTTPService(cfg Config, logger *zap.Logger) *HTTPService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPService{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
	}
}

// Suggest sends one request to the endpoint.
func (s *HTTPService) Suggest(ctx context.Context, req Request) (*Response, error) {
	if s.endpoint == "" {
		return nil, fmt.Errorf("visualization service: no endpoint configured")
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if s.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	start := time.Now()
	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("visualization service: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("visualization service returned %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	out, err := ParseResponse(raw)
	if err != nil {
		return nil, err
	}
	s.logger.Info("visualizations suggested",
		zap.String("request_id", requestID),
		zap.Int("count", len(out.Visualizations)),
		zap.Duration("took", time.Since(start)),
	)
	return out, nil
}
