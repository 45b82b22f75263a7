package server

import (
	"net/http"

	"github.com/stocklens/stocklens/internal/interfaces"
)

// handleSnapshot handles GET /stock/{ticker}. The priceOnly query parameter
// switches to the reduced price header payload.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request, ticker string) {
	ctx := r.Context()

	if BoolParam(r, "priceOnly", false) {
		payload, err := s.app.StockService.GetPriceOnly(ctx, ticker)
		if err != nil {
			WriteServiceError(w, ticker, err)
			return
		}
		WriteJSON(w, http.StatusOK, payload)
		return
	}

	timeframe := r.URL.Query().Get("timeframe")
	snapshot, err := s.app.StockService.GetSnapshot(ctx, ticker, timeframe)
	if err != nil {
		WriteServiceError(w, ticker, err)
		return
	}
	WriteJSON(w, http.StatusOK, snapshot)
}

// handleTechnicals handles GET /stock/{ticker}/technicals.
func (s *Server) handleTechnicals(w http.ResponseWriter, r *http.Request, ticker string) {
	report, err := s.app.StockService.GetTechnicals(r.Context(), ticker, r.URL.Query().Get("timeframe"))
	if err != nil {
		WriteServiceError(w, ticker, err)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// handleCorrelation handles GET /stock/{ticker}/partial_corr.
func (s *Server) handleCorrelation(w http.ResponseWriter, r *http.Request, ticker string) {
	matrices, err := s.app.StockService.GetCorrelation(r.Context(), ticker)
	if err != nil {
		WriteServiceError(w, ticker, err)
		return
	}
	WriteJSON(w, http.StatusOK, matrices)
}

// handleCorrelationTable handles GET /stock/{ticker}/partial_corr_table.
func (s *Server) handleCorrelationTable(w http.ResponseWriter, r *http.Request, ticker string) {
	table, err := s.app.StockService.GetCorrelationTable(r.Context(), ticker)
	if err != nil {
		WriteServiceError(w, ticker, err)
		return
	}
	WriteJSON(w, http.StatusOK, table)
}

// handleSupplyDemand handles GET /stock/{ticker}/supply_demand.
func (s *Server) handleSupplyDemand(w http.ResponseWriter, r *http.Request, ticker string) {
	opts := interfaces.SupplyDemandOptions{
		Timeframe: r.URL.Query().Get("timeframe"),
		Strength:  FloatParam(r, "strength"),
		MinPct:    FloatParam(r, "min_pct"),
		GapPct:    FloatParam(r, "gap_pct"),
	}
	result, err := s.app.StockService.GetSupplyDemand(r.Context(), ticker, opts)
	if err != nil {
		WriteServiceError(w, ticker, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// handleHistory handles GET /stock/{ticker}/history. An empty history is a
// valid 200 response.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, ticker string) {
	history, err := s.app.StockService.GetHistory(r.Context(), ticker, r.URL.Query().Get("timeframe"))
	if err != nil {
		WriteServiceError(w, ticker, err)
		return
	}
	WriteJSON(w, http.StatusOK, history)
}

// handleLivePrice handles GET /stock/{ticker}/live_price.
func (s *Server) handleLivePrice(w http.ResponseWriter, r *http.Request, ticker string) {
	price, err := s.app.StockService.GetLivePrice(r.Context(), ticker)
	if err != nil {
		WriteServiceError(w, ticker, err)
		return
	}
	WriteJSON(w, http.StatusOK, price)
}

// handleSeasonality handles GET /seasonality/{ticker}.
func (s *Server) handleSeasonality(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ticker := PathParam(r, "/seasonality/", "")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	excludeOutliers := BoolParam(r, "exclude_outliers", false)
	season, err := s.app.StockService.GetSeasonality(r.Context(), ticker, excludeOutliers)
	if err != nil {
		WriteServiceError(w, ticker, err)
		return
	}
	WriteJSON(w, http.StatusOK, season)
}
