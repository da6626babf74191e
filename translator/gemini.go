package translator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ============================================================================
// GEMINI SERVICE - Google Gemini as the visualization service
// ============================================================================
// The column-driven prompt goes out as the system instruction and the
// user's message as content. Gemini is asked for a JSON response which is
// then parsed with ParseResponse like any other service reply.
// ============================================================================

// GeminiService implements Suggester using the Gemini API.
type GeminiService struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewGemini creates a Gemini suggester. cfg.Endpoint, when set, overrides
// the API base URL.
func NewGemini(ctx context.Context, cfg Config, logger *zap.Logger) (*GeminiService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiConfig("").Model
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cc := &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	if cfg.Endpoint != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Endpoint}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiService{client: client, model: cfg.Model, timeout: cfg.Timeout, logger: logger}, nil
}

// Suggest asks Gemini for visualizations.
func (g *GeminiService) Suggest(ctx context.Context, req Request) (*Response, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	message := req.Message
	if message == "" {
		message = "Suggest the most useful charts for this dataset."
	}
	contents := []*genai.Content{genai.NewContentFromText(message, genai.RoleUser)}
	gc := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(BuildPrompt(req), genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0.2),
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, gc)
	if err != nil {
		return nil, fmt.Errorf("gemini API error: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("gemini returned empty response")
	}

	out, err := ParseResponse([]byte(text))
	if err != nil {
		g.logger.Warn("gemini response unparseable", zap.String("response", truncate(text, 200)), zap.Error(err))
		return nil, err
	}
	g.logger.Info("gemini visualizations",
		zap.String("model", g.model),
		zap.Int("count", len(out.Visualizations)),
		zap.Duration("took", time.Since(start)),
	)
	return out, nil
}
