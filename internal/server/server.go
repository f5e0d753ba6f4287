package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Zachdehooge/energy-dashboard/internal/generator"
	"github.com/Zachdehooge/energy-dashboard/internal/mapsync"
	"github.com/Zachdehooge/energy-dashboard/internal/panel"
	"github.com/Zachdehooge/energy-dashboard/internal/scenario"
)

const (
	pageTitle = "Energy Scenario Comparison"
	// maxSelectBody caps the scenario selection request body
	maxSelectBody = 4 << 10
)

// Server exposes the comparison view over HTTP and a websocket
type Server struct {
	controller *panel.Controller
	economic   panel.EconomicSource
	hub        *Hub
	control    *mapsync.SyncControl
	router     chi.Router
}

// New wires the controller callbacks to the websocket hub and builds the routes
func New(controller *panel.Controller, economic panel.EconomicSource) *Server {
	s := &Server{controller: controller, economic: economic}
	s.hub = NewHub(func(mapID string, change mapsync.Change) error {
		_, err := controller.CameraChange(mapID, change)
		return err
	})
	s.control = mapsync.NewSyncControl(controller.Sync(), s.hub.PushSync)
	controller.OnCamera = s.hub.PushCamera
	controller.OnUpdate = func(id string, _ panel.Panel) { s.hub.PushPanel(id) }
	s.router = s.routes()
	return s
}

// Hub returns the websocket hub
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/", s.handleIndex)
	r.Get("/ws", s.hub.ServeHTTP)
	r.Route("/api", func(r chi.Router) {
		r.Get("/panels", s.handlePanels)
		r.Route("/panels/{mapID}", func(r chi.Router) {
			r.Get("/", s.handlePanel)
			r.Put("/scenario", s.handleSelect)
			r.Get("/features", s.handleFeatures)
			r.Get("/legend", s.handleLegend)
			r.Get("/charts", s.handleCharts)
		})
		r.Get("/economic-data/{country}/{year}", s.handleEconomicData)
		r.Get("/sync", s.handleSync)
		r.Post("/sync/toggle", s.handleToggleSync)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[server] listening on %s", addr)
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
		log.Printf("[server] shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data, err := generator.NewPageData(pageTitle, s.controller, false)
	if err != nil {
		writeError(w, err)
		return
	}
	data.SyncControl = s.control
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := generator.RenderPage(w, data); err != nil {
		log.Printf("[server] render page: %v", err)
	}
}

func (s *Server) handlePanels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.Panels())
}

func (s *Server) handlePanel(w http.ResponseWriter, r *http.Request) {
	p, err := s.controller.Panel(chi.URLParam(r, "mapID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type selectRequest struct {
	Carrier  string `json:"carrier"`
	Variable string `json:"variable"`
	Year     string `json:"year"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	body := http.MaxBytesReader(w, r.Body, maxSelectBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, APIError{Code: "bad_request", Message: "invalid JSON body"})
		return
	}
	sc := scenario.Scenario{
		MapID:    chi.URLParam(r, "mapID"),
		Carrier:  req.Carrier,
		Variable: req.Variable,
		Year:     req.Year,
	}
	if err := s.controller.Select(sc); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, sc)
}

func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	fc, err := s.controller.Styled(chi.URLParam(r, "mapID"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	if err := json.NewEncoder(w).Encode(fc); err != nil {
		log.Printf("[server] encode features: %v", err)
	}
}

func (s *Server) handleLegend(w http.ResponseWriter, r *http.Request) {
	p, err := s.controller.Panel(chi.URLParam(r, "mapID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p.Legend)
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	p, err := s.controller.Panel(chi.URLParam(r, "mapID"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := generator.RenderCharts(w, p.Scenario.String(), p.Economic); err != nil {
		log.Printf("[server] render charts: %v", err)
	}
}

func (s *Server) handleEconomicData(w http.ResponseWriter, r *http.Request) {
	if s.economic == nil {
		WriteAPIError(w, http.StatusNotFound, APIError{Code: "not_found", Message: "no economic data source configured"})
		return
	}
	records, err := s.economic.FetchEconomicData(r.Context(), chi.URLParam(r, "country"), chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

type syncResponse struct {
	Enabled bool   `json:"enabled"`
	Label   string `json:"label"`
	Title   string `json:"title"`
	Class   string `json:"class"`
}

func (s *Server) syncState(enabled bool) syncResponse {
	return syncResponse{Enabled: enabled, Label: s.control.Label(), Title: s.control.Title(), Class: s.control.CSSClass()}
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.syncState(s.controller.Sync().Enabled()))
}

func (s *Server) handleToggleSync(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.syncState(s.control.Click()))
}
