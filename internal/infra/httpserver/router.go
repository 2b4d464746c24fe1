package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appanalysis "github.com/bryanwahyu/mealsense/internal/application/analysis"
	appdiag "github.com/bryanwahyu/mealsense/internal/application/diagnostics"
	domai "github.com/bryanwahyu/mealsense/internal/domain/ai"
	domain "github.com/bryanwahyu/mealsense/internal/domain/analysis"
	domdiag "github.com/bryanwahyu/mealsense/internal/domain/diagnostics"
	"github.com/bryanwahyu/mealsense/internal/middleware"
)

const maxBodyBytes = 1 << 20

// Deps is everything the router needs. Snapshot is called once per diagnostics
// request so every report is computed from scratch.
type Deps struct {
	Diagnostics *appdiag.Service
	Snapshot    func() domdiag.ConfigSnapshot
	Initializer domdiag.Initializer
	Analysis    *appanalysis.Service

	Metrics     *middleware.Metrics
	Log         *zap.Logger
	APIKeys     map[string]string // tenant -> key; empty disables auth
	CORSOrigins []string
	Limiter     *middleware.RateLimiter
	Readiness   map[string]middleware.HealthChecker
}

type Router struct {
	deps Deps
}

func NewRouter(d Deps) http.Handler {
	if d.Metrics == nil {
		d.Metrics = middleware.DefaultMetrics
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	r := &Router{deps: d}
	mux := chi.NewRouter()

	mux.Use(middleware.Logging(d.Log))
	mux.Use(d.Metrics.Track)
	if len(d.CORSOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins: d.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}

	mux.Get("/health", middleware.LivenessHandler)
	mux.Get("/readyz", middleware.ReadinessHandler(d.Readiness))
	mux.Get("/metrics", d.Metrics.Handler)

	mux.Route("/v1", func(v1 chi.Router) {
		if len(d.APIKeys) > 0 {
			v1.Use(middleware.APIKeyAuth(d.APIKeys))
		}
		v1.Get("/diagnostics/firebase", r.handleDiagnostics)

		v1.Route("/{tenant}/analysis", func(rt chi.Router) {
			rt.Use(middleware.RequireValidTenant)
			rt.Post("/validate", r.wrap(r.handleValidate))
			rt.Get("/", r.wrap(r.handleList))
			rt.Get("/{id}", r.wrap(r.handleGet))

			analyze := http.HandlerFunc(r.wrap(r.handleAnalyze))
			if d.Limiter != nil {
				rt.Method(http.MethodPost, "/", middleware.RateLimit(d.Limiter)(analyze))
			} else {
				rt.Method(http.MethodPost, "/", analyze)
			}
		})
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequest marks an error caused by the request itself.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var br badRequest
			switch {
			case errors.As(err, &br):
				http.Error(w, br.msg, http.StatusBadRequest)
			case errors.Is(err, domai.ErrNoInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, sql.ErrNoRows):
				http.Error(w, "not found", http.StatusNotFound)
			case errors.Is(err, domai.ErrQuotaExceeded):
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
			case errors.Is(err, domain.ErrInvalidAnalysis):
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			default:
				r.deps.Log.Error("request failed", zap.String("path", req.URL.Path), zap.Error(err))
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// GET /v1/diagnostics/firebase
// Always 200: health is carried in the body so monitors can parse one envelope.
func (r *Router) handleDiagnostics(w http.ResponseWriter, req *http.Request) {
	snap := domdiag.NewConfigSnapshot(nil)
	if r.deps.Snapshot != nil {
		snap = r.deps.Snapshot()
	}
	report := r.deps.Diagnostics.Run(req.Context(), snap, r.deps.Initializer)
	r.deps.Metrics.ObserveDiagnostics(report.Status == domdiag.HealthHealthy)
	_ = writeJSON(w, http.StatusOK, report)
}

// POST /v1/{tenant}/analysis/validate
// Body: any JSON object. Returns {valid, normalized}.
func (r *Router) handleValidate(w http.ResponseWriter, req *http.Request) error {
	body, err := io.ReadAll(io.LimitReader(req.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	res, err := r.deps.Analysis.Validate(body)
	if err != nil {
		return badRequest{msg: err.Error()}
	}
	return writeJSON(w, http.StatusOK, res)
}

// POST /v1/{tenant}/analysis
// Body: {"description": "..."} or {"imageUrl": "https://..."}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	var body struct {
		Description string `json:"description"`
		ImageURL    string `json:"imageUrl"`
	}
	if err := json.NewDecoder(io.LimitReader(req.Body, maxBodyBytes)).Decode(&body); err != nil {
		return badRequest{msg: "invalid JSON body"}
	}

	cmd := appanalysis.AnalyzeCommand{TenantID: tenant, Description: middleware.SanitizeString(body.Description)}
	if body.ImageURL != "" {
		if err := middleware.ValidateImageURL(body.ImageURL); err != nil {
			return badRequest{msg: err.Error()}
		}
		cmd.ImageURL = body.ImageURL
	} else if err := middleware.ValidateDescription(cmd.Description); err != nil {
		return badRequest{msg: err.Error()}
	}

	a, err := r.deps.Analysis.Analyze(req.Context(), cmd)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAnalysis) {
			r.deps.Metrics.ObserveAnalysis(true, false)
		}
		return err
	}
	r.deps.Metrics.ObserveAnalysis(false, a.Result.ModelInfo.UsedFallback)
	return writeJSON(w, http.StatusCreated, a)
}

// GET /v1/{tenant}/analysis?page=&page_size=
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.deps.Analysis.List(req.Context(), tenant, middleware.ValidatePage(page), middleware.ValidateLimit(size))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/{tenant}/analysis/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAnalysisID(id); err != nil {
		return badRequest{msg: err.Error()}
	}

	a, err := r.deps.Analysis.Get(req.Context(), tenant, domain.ID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, a)
}
