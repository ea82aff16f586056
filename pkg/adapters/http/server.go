package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/isoscene"
	"github.com/aretw0/isoscene/api"
	"github.com/aretw0/isoscene/internal/logging"
	"github.com/aretw0/isoscene/pkg/domain"
	"github.com/aretw0/isoscene/pkg/editor"
	"github.com/aretw0/isoscene/pkg/workspace"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
)

// Server exposes workspaces over REST and server-sent events.
type Server struct {
	Workspaces *workspace.Manager
	Streams    *StreamManager

	logger   *slog.Logger
	metrics  http.Handler
	validate bool
	spec     *openapi3.T
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts h under /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithRequestValidation rejects requests that do not match the OpenAPI description.
func WithRequestValidation(enabled bool) Option {
	return func(s *Server) {
		s.validate = enabled
	}
}

// NewHandler creates the HTTP handler for mgr. Workspaces opened through mgr from now on
// publish their state changes to the event stream.
func NewHandler(mgr *workspace.Manager, opts ...Option) (http.Handler, error) {
	s := &Server{
		Workspaces: mgr,
		Streams:    NewStreamManager(),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger

	spec, err := api.Load()
	if err != nil {
		return nil, err
	}
	s.spec = spec
	mgr.OnOpen(s.Streams.Attach)

	r := chi.NewRouter()
	r.Use(enableCORS)
	if s.validate {
		v, err := newValidator(s, spec)
		if err != nil {
			return nil, err
		}
		r.Use(v.middleware)
	}

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(api.Spec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)

	r.Route("/workspaces", func(r chi.Router) {
		r.Get("/", s.ListWorkspaces)
		r.Post("/", s.CreateWorkspace)
		r.Route("/{ws}", func(r chi.Router) {
			r.Delete("/", s.DropWorkspace)

			r.Get("/state", s.GetState)
			r.Patch("/state", s.UpdateState)
			r.Delete("/state", s.ClearState)
			r.Post("/state/reset", s.ResetState)
			r.Get("/state/{path}", s.GetStateProperty)
			r.Put("/state/{path}", s.SetStateProperty)

			r.Get("/layers", s.ListLayers)
			r.Post("/layers", s.AddLayer)
			r.Put("/layers/order", s.ReorderLayers)
			r.Delete("/layers/{id}", s.RemoveLayer)
			r.Post("/layers/{id}/{op}", s.LayerOperation)

			r.Get("/objects", s.ListObjects)
			r.Post("/objects", s.AddObject)
			r.Delete("/objects/{id}", s.DeleteObject)
			r.Post("/objects/{id}/{op}", s.ObjectOperation)

			r.Post("/camera/rotate", s.RotateCamera)
			r.Put("/camera/zoom", s.SetZoom)
			r.Put("/background", s.SetBackground)
			r.Put("/fog", s.SetFog)
			r.Post("/frame", s.RenderFrame)

			r.Get("/history", s.GetHistory)
			r.Post("/history/{op}", s.HistoryOperation)

			r.Get("/scenes", s.ListScenes)
			r.Put("/scenes/{name}", s.SaveScene)
			r.Post("/scenes/{name}", s.OpenScene)
			r.Delete("/scenes/{name}", s.DeleteScene)

			r.Get("/events", s.SubscribeEvents)
		})
	})
	return r, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>isoscene API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.spec != nil && s.spec.Info != nil {
		apiVersion = s.spec.Info.Version
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "isoscene-http",
		"version":     isoscene.Version,
		"api_version": apiVersion,
	})
}

// ListWorkspaces handles GET /workspaces.
func (s *Server) ListWorkspaces(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Workspaces.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"workspaces": ids})
}

// CreateWorkspace handles POST /workspaces.
func (s *Server) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	id, err := s.Workspaces.Create(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// DropWorkspace handles DELETE /workspaces/{ws}.
func (s *Server) DropWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := s.Workspaces.Drop(r.Context(), chi.URLParam(r, "ws")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// -- Helpers --

// errConflict marks operations rejected by the layer store's own rules.
var errConflict = errors.New("operation rejected")

// withEditor runs fn with exclusive access to the workspace named in the URL.
func (s *Server) withEditor(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, e *editor.Editor) (int, any, error)) {
	var (
		status int
		body   any
	)
	err := s.Workspaces.WithLock(r.Context(), chi.URLParam(r, "ws"), func(ctx context.Context, e *editor.Editor) error {
		var err error
		status, body, err = fn(ctx, e)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if body == nil {
		w.WriteHeader(status)
		return
	}
	s.writeJSON(w, status, body)
}

func (s *Server) decode(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	return nil
}

var errBadRequest = errors.New("bad request")

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, domain.ErrTypeMismatch),
		errors.Is(err, domain.ErrInvalidAction),
		errors.Is(err, domain.ErrInvalidSnapshot),
		errors.Is(err, domain.ErrUnknownKind),
		errors.Is(err, domain.ErrInvalidWorkspaceID):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrPathNotFound),
		errors.Is(err, domain.ErrObjectNotFound),
		errors.Is(err, domain.ErrSnapshotNotFound),
		errors.Is(err, domain.ErrWorkspaceNotFound):
		return http.StatusNotFound
	case errors.Is(err, errConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "err", err)
	} else {
		s.logger.Debug("Request rejected", "status", status, "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}
