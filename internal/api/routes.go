package api

import (
	"net/http"

	"github.com/example/bomflow/internal/config"
	"github.com/example/bomflow/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) {
	routes.Register(
		mux,
		domain.Workflows.Handler(cfg.API.MaxUploadSizeBytes(), domain.Runner).Routes(),
		domain.Knowledge.Handler().Routes(),
	)
}
