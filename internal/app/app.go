// Package app wires configuration into the functions registry and router.
package app

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"sonaxhub/internal/config"
	"sonaxhub/internal/forwarder"
	"sonaxhub/internal/functions"
	"sonaxhub/internal/hubspot"
	"sonaxhub/internal/logging"
	"sonaxhub/internal/metrics"
	"sonaxhub/internal/observability"
	"sonaxhub/internal/resolver"
	"sonaxhub/internal/server"
)

// App holds the wired components for one process.
type App struct {
	Config   *config.Config
	Metrics  *metrics.Metrics
	Registry *functions.Registry
}

// New builds the components described by cfg. Credentials are injected
// here once; nothing downstream reads the environment.
func New(cfg *config.Config) *App {
	logging.Setup(os.Stderr, cfg.LogFormat)
	logging.SetLevelFromString(cfg.LogLevel)

	m := metrics.New(cfg.MetricsNamespace)
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	client := hubspot.NewClient(hubspot.Options{
		BaseURL:     cfg.HubSpotBaseURL,
		AccessToken: cfg.HubSpotAccessToken,
		HTTPClient:  httpClient,
		Metrics:     m,
	})

	registry := functions.NewRegistry(functions.Deps{
		Resolver: resolver.New(client, resolver.WithCustomProperties(cfg.CustomObjects)),
		Calls:    forwarder.NewCallInitiator(cfg.CallWebhookURL, httpClient, m),
		Webhooks: forwarder.NewWebhookForwarder(cfg.ForwardWebhookURL, httpClient, m),
		Metrics:  m,
	})

	if err := cfg.Validate(); err != nil {
		logging.Op().Warn("incomplete configuration", "error", err)
	}

	return &App{Config: cfg, Metrics: m, Registry: registry}
}

// Load reads configuration from the environment and builds the App.
func Load() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	return New(cfg), nil
}

// InitTelemetry starts tracing when enabled in the configuration.
func (a *App) InitTelemetry(ctx context.Context) error {
	return observability.Init(ctx, observability.Config{
		Enabled:     a.Config.OTelEnabled,
		Endpoint:    a.Config.OTelEndpoint,
		ServiceName: "sonaxhub",
		SampleRate:  a.Config.OTelSampleRate,
	})
}

// Router builds the HTTP handler, picking the gin mode from the configuration.
func (a *App) Router() *gin.Engine {
	if a.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	return server.NewRouter(a.Registry, a.Metrics)
}
