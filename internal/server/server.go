package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"weekly-planner/internal/app"
	"weekly-planner/internal/metrics"
	"weekly-planner/internal/offline"
	"weekly-planner/internal/planner"
)

// Options configures the optional parts of the server.
type Options struct {
	// CORSOrigins lists the allowed origins; empty allows any origin.
	CORSOrigins []string
	// Offline serves every path not handled by the API. May be nil.
	Offline *offline.Cache
	// Webhook receives Telegram updates on POST /webhook. May be nil.
	Webhook http.Handler
	// Metrics feeds the usage report of /health. May be nil.
	Metrics *metrics.Store
	// DataPath is measured for the disk usage report of /health.
	DataPath string
}

// Server is the HTTP JSON front-end of the planner and the fuel calculator.
type Server struct {
	app     *app.App
	opts    Options
	logger  *zap.Logger
	mux     *http.ServeMux
	handler http.Handler
}

// New creates a Server and registers its routes.
func New(a *app.App, opts Options, logger *zap.Logger) *Server {
	s := &Server{
		app:    a,
		opts:   opts,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	s.routes()

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	})
	s.handler = h2c.NewHandler(corsHandler.Handler(s.mux), &http2.Server{})
	return s
}

// Handler returns the root handler with CORS and cleartext HTTP/2 support.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/plan", s.handleGetPlan)
	s.mux.HandleFunc("POST /api/plan/new", s.handleNewWeek)
	s.mux.HandleFunc("POST /api/plan/swap", s.handleSwap)
	s.mux.HandleFunc("POST /api/plan/assign", s.handleAssign)
	s.mux.HandleFunc("POST /api/plan/proteins", s.handleSetProtein)
	s.mux.HandleFunc("POST /api/plan/seed", s.handleSeed)
	s.mux.HandleFunc("POST /api/plan/publish", s.handlePublish)
	s.mux.HandleFunc("GET /api/shopping-list", s.handleShoppingList)
	s.mux.HandleFunc("GET /api/catalog", s.handleCatalog)

	s.mux.HandleFunc("POST /api/fuel/compare", s.handleCompare)
	s.mux.HandleFunc("POST /api/fuel/trip", s.handleTrip)
	s.mux.HandleFunc("POST /api/fuel/economy", s.handleEconomy)

	s.mux.HandleFunc("GET /api/history", s.handleHistory)
	s.mux.HandleFunc("DELETE /api/history", s.handleClearHistory)
	s.mux.HandleFunc("DELETE /api/history/{id}", s.handleRemoveHistoryEntry)
	s.mux.HandleFunc("POST /api/history/import", s.handleImportHistory)
	s.mux.HandleFunc("GET /api/history.csv", s.handleExport(app.FormatCSV))
	s.mux.HandleFunc("GET /api/history.xlsx", s.handleExport(app.FormatXLSX))

	s.mux.HandleFunc("GET /api/preferences/theme", s.handleGetTheme)
	s.mux.HandleFunc("PUT /api/preferences/theme", s.handlePutTheme)
	s.mux.HandleFunc("GET /api/preferences/fuel-types", s.handleGetFuelTypes)
	s.mux.HandleFunc("PUT /api/preferences/fuel-types", s.handlePutFuelTypes)
	s.mux.HandleFunc("GET /api/inputs/{kind}", s.handleGetInputs)
	s.mux.HandleFunc("PUT /api/inputs/{kind}", s.handlePutInputs)

	s.mux.HandleFunc("POST /api/sync", s.handleSync)
	s.mux.HandleFunc("GET /health", s.handleHealth)

	if s.opts.Webhook != nil {
		s.mux.Handle("POST /webhook", s.opts.Webhook)
	}
	if s.opts.Offline != nil {
		s.mux.Handle("/", s.opts.Offline)
	}
}

func userID(r *http.Request) string {
	if u := strings.TrimSpace(r.URL.Query().Get("user")); u != "" {
		return u
	}
	return app.DefaultUserID
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	return dec.Decode(v)
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, planner.ErrNoEligibleOption):
		status = http.StatusConflict
	case errors.Is(err, planner.ErrInvalidDay),
		errors.Is(err, planner.ErrUnknownMealType),
		errors.Is(err, planner.ErrForeignOption),
		errors.Is(err, app.ErrUnknownProtein):
		status = http.StatusBadRequest
	case errors.Is(err, app.ErrPublishingDisabled):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		Status string                   `json:"status"`
		System metrics.SysHealth        `json:"system"`
		Usage  []metrics.OperationUsage `json:"usage,omitempty"`
	}{
		Status: "ok",
		System: metrics.GetSysHealth(s.opts.DataPath),
	}
	if s.opts.Metrics != nil {
		usage, err := s.opts.Metrics.GetUsage(r.Context(), 7)
		if err != nil {
			s.logger.Warn("Failed to read usage", zap.Error(err))
		}
		resp.Usage = usage
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.opts.Offline == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "offline cache is disabled"})
		return
	}
	var req struct {
		Tag string `json:"tag"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	if err := s.opts.Offline.Sync(r.Context(), req.Tag); err != nil {
		s.badRequest(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
