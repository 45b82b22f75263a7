package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/stocklens/stocklens/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Stock analytics
	mux.HandleFunc("/stock/", s.routeStock)
	mux.HandleFunc("/seasonality/", s.handleSeasonality)
}

// routeStock dispatches /stock/{ticker}[/operation] requests.
func (s *Server) routeStock(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/stock/")
	parts := strings.SplitN(strings.Trim(rest, "/"), "/", 2)
	ticker := parts[0]
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	if len(parts) == 1 {
		s.handleSnapshot(w, r, ticker)
		return
	}

	switch parts[1] {
	case "technicals":
		s.handleTechnicals(w, r, ticker)
	case "partial_corr":
		s.handleCorrelation(w, r, ticker)
	case "partial_corr_table":
		s.handleCorrelationTable(w, r, ticker)
	case "supply_demand":
		s.handleSupplyDemand(w, r, ticker)
	case "history":
		s.handleHistory(w, r, ticker)
	case "live_price":
		s.handleLivePrice(w, r, ticker)
	default:
		WriteError(w, http.StatusNotFound, "Unknown operation: "+parts[1])
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"uptime":  time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}
