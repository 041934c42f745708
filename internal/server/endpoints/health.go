package endpoints

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/folio/internal/api"
	"github.com/jackzampolin/folio/internal/svcctx"
)

// HealthResponse is the response for health check endpoints.
type HealthResponse struct {
	Status string `json:"status"`
	Engine string `json:"engine,omitempty"`
}

// HealthEndpoint handles GET /health.
type HealthEndpoint struct{}

func (e *HealthEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/health", e.handler
}

func (e *HealthEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Server health
//	@Description	Returns ok while the HTTP server is responding
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Router			/health [get]
func (e *HealthEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (e *HealthEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HealthResponse
			if err := client.Get(cmd.Context(), "/health", &resp); err != nil {
				return err
			}
			fmt.Printf("Status: %s\n", resp.Status)
			return nil
		},
	}
}

// ReadyEndpoint handles GET /ready.
type ReadyEndpoint struct{}

func (e *ReadyEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/ready", e.handler
}

func (e *ReadyEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Server readiness
//	@Description	Returns ok only when the segmentation engine answers its health check
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Failure		503	{object}	HealthResponse
//	@Router			/ready [get]
func (e *ReadyEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Engine: "ok"}

	eng := svcctx.EngineFrom(r.Context())
	if eng == nil {
		resp.Status = "degraded"
		resp.Engine = "not_initialized"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	if err := eng.Health(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.Engine = "unhealthy"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *ReadyEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "ready",
		Short: "Check server readiness (includes the segmentation engine)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HealthResponse
			if err := client.Get(cmd.Context(), "/ready", &resp); err != nil {
				return err
			}
			fmt.Printf("Status: %s\n", resp.Status)
			if resp.Engine != "" {
				fmt.Printf("Engine: %s\n", resp.Engine)
			}
			return nil
		},
	}
}

// StatusResponse is the detailed status response.
type StatusResponse struct {
	Server      string       `json:"server"`
	Engine      EngineStatus `json:"engine"`
	Books       int          `json:"books"`
	Strict      bool         `json:"strict"`
	ConfigFile  string       `json:"config_file,omitempty"`
	HomeDir     string       `json:"home_dir,omitempty"`
	LibraryRoot string       `json:"library_root,omitempty"`
}

// EngineStatus shows the engine container and health status.
type EngineStatus struct {
	Container string `json:"container"`
	Health    string `json:"health"`
	URL       string `json:"url,omitempty"`
}

// StatusEndpoint handles GET /status.
type StatusEndpoint struct{}

func (e *StatusEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/status", e.handler
}

func (e *StatusEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Server status
//	@Description	Detailed status of the engine container, engine health and library
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	StatusResponse
//	@Router			/status [get]
func (e *StatusEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := StatusResponse{Server: "running"}

	if docker := svcctx.DockerFrom(ctx); docker != nil {
		status, err := docker.Status(ctx)
		if err != nil {
			resp.Engine.Container = "error"
		} else {
			resp.Engine.Container = string(status)
		}
		resp.Engine.URL = docker.URL()
	} else {
		resp.Engine.Container = "external"
	}

	if eng := svcctx.EngineFrom(ctx); eng != nil {
		if err := eng.Health(ctx); err != nil {
			resp.Engine.Health = "unhealthy"
		} else {
			resp.Engine.Health = "healthy"
		}
	} else {
		resp.Engine.Health = "not_initialized"
	}

	if lib := svcctx.LibraryFrom(ctx); lib != nil {
		resp.LibraryRoot = lib.Root()
		if all, err := lib.Books(); err == nil {
			resp.Books = len(all)
		}
	}
	if seg := svcctx.SegmenterFrom(ctx); seg != nil {
		resp.Strict = seg.Strict()
	}
	if cfg := svcctx.ConfigFrom(ctx); cfg != nil {
		resp.ConfigFile = cfg.ConfigFile()
	}
	if h := svcctx.HomeFrom(ctx); h != nil {
		resp.HomeDir = h.Path()
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *StatusEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get detailed server status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp StatusResponse
			if err := client.Get(cmd.Context(), "/status", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
