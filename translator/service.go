package translator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// New builds the Suggester named by cfg.Provider. An empty provider
// selects gemini when an API key is set and no endpoint is configured.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Suggester, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = "http"
		if cfg.Endpoint == "" && cfg.APIKey != "" {
			provider = "gemini"
		}
	}
	switch provider {
	case "http":
		return NewHTTPService(cfg, logger), nil
	case "gemini":
		return NewGemini(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown translator provider %q", cfg.Provider)
	}
}
