package server

import (
	"net/http"
	"time"

	"github.com/smartfolio-app/smartfolio/internal/common"
	"github.com/smartfolio-app/smartfolio/internal/models"
)

// handleHealth reports liveness and uptime.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

// handleVersion reports build information.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// handleDashboard returns valuation, daily performance and period return.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	dashboard, err := s.app.PortfolioService.GetDashboard(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Dashboard failed")
		WriteError(w, http.StatusInternalServerError, "Failed to build dashboard")
		return
	}

	WriteJSON(w, http.StatusOK, dashboard)
}

// handlePortfolio returns the valued holdings table.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	valuation, err := s.app.PortfolioService.GetHoldings(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Portfolio valuation failed")
		WriteError(w, http.StatusInternalServerError, "Failed to value portfolio")
		return
	}

	WriteJSON(w, http.StatusOK, valuation)
}

// handlePortfolioChart renders the allocation chart as PNG.
func (s *Server) handlePortfolioChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	png, err := s.app.PortfolioService.RenderAllocationChart(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Chart render failed")
		WriteError(w, http.StatusInternalServerError, "Failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// transactionRequest is the POST /api/transactions payload.
type transactionRequest struct {
	Ticker string  `json:"ticker"`
	Date   string  `json:"date"` // YYYY-MM-DD
	Type   string  `json:"type"`
	Shares float64 `json:"shares"`
	Price  float64 `json:"price"`
}

// handleTransactions lists the log or appends a transaction.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		transactions, err := s.app.PortfolioService.ListTransactions(r.Context())
		if err != nil {
			s.logger.Error().Err(err).Msg("Transaction list failed")
			WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
			return
		}
		if transactions == nil {
			transactions = []models.Transaction{}
		}
		WriteJSON(w, http.StatusOK, transactions)

	case http.MethodPost:
		var req transactionRequest
		if !DecodeJSON(w, r, &req) {
			return
		}

		var date time.Time
		if req.Date != "" {
			parsed, err := time.Parse("2006-01-02", req.Date)
			if err != nil {
				WriteError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
				return
			}
			date = parsed
		}

		txType := models.TransactionType(req.Type)
		if req.Type == "" {
			txType = models.TransactionBuy
		}

		tx, err := s.app.PortfolioService.AddTransaction(r.Context(), &models.Transaction{
			Ticker: req.Ticker,
			Date:   date,
			Type:   txType,
			Shares: req.Shares,
			Price:  req.Price,
		})
		if err != nil {
			if models.IsValidation(err) {
				WriteError(w, http.StatusBadRequest, err.Error())
				return
			}
			s.logger.Error().Err(err).Msg("Transaction append failed")
			WriteError(w, http.StatusInternalServerError, "Failed to store transaction")
			return
		}

		WriteJSON(w, http.StatusCreated, tx)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// watchlistRequest is the POST /api/watchlist payload.
type watchlistRequest struct {
	Ticker string `json:"ticker"`
}

// handleWatchlist lists or adds watchlist entries.
func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items, err := s.app.WatchlistService.List(r.Context())
		if err != nil {
			s.logger.Error().Err(err).Msg("Watchlist list failed")
			WriteError(w, http.StatusInternalServerError, "Failed to list watchlist")
			return
		}
		if items == nil {
			items = []models.WatchlistItem{}
		}
		WriteJSON(w, http.StatusOK, items)

	case http.MethodPost:
		var req watchlistRequest
		if !DecodeJSON(w, r, &req) {
			return
		}

		item, err := s.app.WatchlistService.Add(r.Context(), req.Ticker)
		if err != nil {
			if models.IsValidation(err) {
				WriteError(w, http.StatusBadRequest, err.Error())
				return
			}
			s.logger.Error().Err(err).Msg("Watchlist add failed")
			WriteError(w, http.StatusInternalServerError, "Failed to add watchlist entry")
			return
		}

		WriteJSON(w, http.StatusCreated, item)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleWatchlistTicker removes one watchlist entry.
func (s *Server) handleWatchlistTicker(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	ticker := PathParam(r, "/api/watchlist/", "")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	if err := s.app.WatchlistService.Remove(r.Context(), ticker); err != nil {
		if models.IsValidation(err) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error().Err(err).Msg("Watchlist remove failed")
		WriteError(w, http.StatusInternalServerError, "Failed to remove watchlist entry")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "removed", "ticker": models.NormalizeTicker(ticker)})
}

// handleSync triggers the daily sync pipeline on demand.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	report, err := s.app.AlertService.RunDailySync(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Manual sync failed")
		WriteError(w, http.StatusInternalServerError, "Sync failed")
		return
	}

	WriteJSON(w, http.StatusOK, report)
}
