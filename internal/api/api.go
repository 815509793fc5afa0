// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/example/bomflow/internal/config"
	"github.com/example/bomflow/internal/infrastructure"
	"github.com/example/bomflow/pkg/middleware"
	"github.com/example/bomflow/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime, err := NewRuntime(cfg, infra)
	if err != nil {
		return nil, err
	}
	domain := NewDomain(cfg, runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Infrastructure.Logger))

	return m, nil
}
