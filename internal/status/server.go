// Package status serves the watch loop's health, ship states and last run
// report over HTTP.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/shiptrack/internal/fleet"
	"github.com/law-makers/shiptrack/internal/store"
	"github.com/law-makers/shiptrack/pkg/models"
)

// Ships reads persisted ship states
type Ships interface {
	ListShips(ctx context.Context) ([]models.ShipState, error)
	GetShip(ctx context.Context, vesselID string) (models.ShipState, error)
}

// ShipReport is one ship's line in a RunReport
type ShipReport struct {
	Ship         string    `json:"ship"`
	VesselID     string    `json:"vessel_id"`
	Phase        string    `json:"phase"`
	FailedIn     string    `json:"failed_in,omitempty"`
	Error        string    `json:"error,omitempty"`
	Warnings     []string  `json:"warnings,omitempty"`
	Route        string    `json:"route,omitempty"`
	Decision     string    `json:"decision,omitempty"`
	TripInserted bool      `json:"trip_inserted"`
	ImageURL     string    `json:"image_url,omitempty"`
	Started      time.Time `json:"started"`
	DurationMS   int64     `json:"duration_ms"`
}

// RunReport is the JSON view of a fleet.Summary
type RunReport struct {
	RunID         string       `json:"run_id"`
	Started       time.Time    `json:"started"`
	DurationMS    int64        `json:"duration_ms"`
	Done          int          `json:"done"`
	Failed        int          `json:"failed"`
	TripsInserted int          `json:"trips_inserted"`
	Ships         []ShipReport `json:"ships"`
}

// NewRunReport converts a run summary
func NewRunReport(s fleet.Summary) RunReport {
	done, failed := s.Counts()
	rep := RunReport{
		RunID:         s.RunID,
		Started:       s.Started.UTC(),
		DurationMS:    s.Duration.Milliseconds(),
		Done:          done,
		Failed:        failed,
		TripsInserted: s.TripsInserted(),
		Ships:         make([]ShipReport, 0, len(s.Results)),
	}
	for _, r := range s.Results {
		sr := ShipReport{
			Ship:         r.Ship.Name,
			VesselID:     r.Ship.VesselID,
			Phase:        string(r.Phase),
			Decision:     string(r.Decision.Action),
			TripInserted: r.TripInserted,
			ImageURL:     r.ImageURL,
			Started:      r.Started.UTC(),
			DurationMS:   r.Duration.Milliseconds(),
		}
		if r.Failed() {
			sr.FailedIn = string(r.FailedIn)
		}
		if r.Err != nil {
			sr.Error = r.Err.Error()
		}
		for _, w := range r.Warnings {
			sr.Warnings = append(sr.Warnings, w.Error())
		}
		if r.Snapshot != nil && r.Snapshot.Route != nil {
			sr.Route = *r.Snapshot.Route
		}
		rep.Ships = append(rep.Ships, sr)
	}
	return rep
}

// Server is the status HTTP surface
type Server struct {
	ships   Ships
	metrics http.Handler
	origins []string

	mu      sync.RWMutex
	lastRun *RunReport
}

// NewServer creates a Server. metrics may be nil to omit /metrics.
func NewServer(ships Ships, metrics http.Handler, allowedOrigins []string) *Server {
	return &Server{ships: ships, metrics: metrics, origins: allowedOrigins}
}

// RecordRun makes s the report served at /runs/last
func (s *Server) RecordRun(summary fleet.Summary) {
	rep := NewRunReport(summary)
	s.mu.Lock()
	s.lastRun = &rep
	s.mu.Unlock()
}

// Routes builds the router. middleware wraps every route.
func (s *Server) Routes(middleware ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware...)
	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"*"},
		}))
	}

	r.Get("/healthz", s.healthz)
	r.Get("/ships", s.listShips)
	r.Get("/ships/{vesselID}", s.getShip)
	r.Get("/runs/last", s.getLastRun)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	return r
}

// ListenAndServe serves until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string, middleware ...func(http.Handler) http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(middleware...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Status server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, err := s.ships.ListShips(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "error",
			"store":     "disconnected",
			"timestamp": time.Now().UTC(),
			"error":     err.Error(),
		})
		return
	}
	body := map[string]interface{}{
		"status":    "ok",
		"store":     "connected",
		"timestamp": time.Now().UTC(),
	}
	s.mu.RLock()
	if s.lastRun != nil {
		body["last_run_id"] = s.lastRun.RunID
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) listShips(w http.ResponseWriter, r *http.Request) {
	ships, err := s.ships.ListShips(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("List ships failed")
		writeError(w, http.StatusInternalServerError, "failed to list ships")
		return
	}
	if ships == nil {
		ships = []models.ShipState{}
	}
	writeJSON(w, http.StatusOK, ships)
}

func (s *Server) getShip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "vesselID")
	ship, err := s.ships.GetShip(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "ship not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("vessel_id", id).Msg("Get ship failed")
		writeError(w, http.StatusInternalServerError, "failed to load ship")
		return
	}
	writeJSON(w, http.StatusOK, ship)
}

func (s *Server) getLastRun(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	rep := s.lastRun
	s.mu.RUnlock()
	if rep == nil {
		writeError(w, http.StatusNotFound, "no run has finished yet")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("Write response failed")
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
