package api

import (
	"fmt"

	"github.com/example/bomflow/internal/config"
	"github.com/example/bomflow/internal/extraction"
	"github.com/example/bomflow/internal/infrastructure"
	"github.com/example/bomflow/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration and the
// extraction capability client.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Extractor  extraction.Capability
}

// NewRuntime creates an API runtime with a module-scoped logger and an
// extraction gateway client built from configuration.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) (*Runtime, error) {
	logger := infra.Logger.With("module", "api")

	capability, err := extraction.NewGateway(&cfg.Extractor, logger)
	if err != nil {
		return nil, fmt.Errorf("extraction gateway init failed: %w", err)
	}

	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    logger,
			Database:  infra.Database,
			Storage:   infra.Storage,
		},
		Pagination: cfg.API.Pagination,
		Extractor:  capability,
	}, nil
}
