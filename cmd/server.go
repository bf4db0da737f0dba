package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sells-group/dealdesk/internal/kpi"
	"github.com/sells-group/dealdesk/internal/model"
	"github.com/sells-group/dealdesk/internal/offer"
	"github.com/sells-group/dealdesk/internal/store"
)

// serverDeps holds everything the HTTP handlers need. Handlers take their
// dependencies here rather than reaching for globals so tests can wire fakes.
type serverDeps struct {
	store          store.Store
	categories     kpi.Categories
	defaultLTV     float64
	targetCashLeft decimal.Decimal
	allowedOrigins []string
}

func newRouter(deps serverDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/v1/analyze", deps.handleAnalyze)
	r.Post("/v1/max-offer", deps.handleMaxOffer)
	r.Get("/v1/properties/{id}/kpi", deps.handleKPI)

	return r
}

func (d serverDeps) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}
	deal, err := model.UnmarshalDeal(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, buildReport(deal))
}

type maxOfferRequest struct {
	Deal           json.RawMessage `json:"deal"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
	TargetCashLeft *float64        `json:"target_cash_left,omitempty"`
}

func (d serverDeps) handleMaxOffer(w http.ResponseWriter, r *http.Request) {
	var req maxOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Deal) == 0 {
		writeError(w, http.StatusBadRequest, "deal is required")
		return
	}
	if !req.EstimatedValue.IsPositive() {
		writeError(w, http.StatusBadRequest, "estimated_value must be positive")
		return
	}
	deal, err := model.UnmarshalDeal(req.Deal)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cashLeft := d.targetCashLeft
	if req.TargetCashLeft != nil {
		cashLeft = decimal.NewFromFloat(*req.TargetCashLeft)
	}

	calc := offer.NewCalculator(d.defaultLTV)
	result := calc.MaxOffer(req.EstimatedValue, deal, cashLeft)
	writeJSON(w, http.StatusOK, result)
}

func (d serverDeps) handleKPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	prop, err := d.store.GetProperty(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "property not found")
			return
		}
		zap.L().Error("load property", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	ledger, err := d.store.ListTransactions(ctx, id)
	if err != nil {
		zap.L().Error("load transactions", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	svc := kpi.NewService([]model.Property{*prop}, d.categories)
	dash, err := svc.Dashboard(id, ledger)
	if err != nil {
		zap.L().Error("compute dashboard", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
