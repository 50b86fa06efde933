package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"attnledger/core/ledger"
	"attnledger/core/types"
)

// adminAPI is the HTTP admin surface over the ledger façade, grounded on
// services/gateway/server.Server's router-plus-handler-methods layout
// (adapted here from invoice lifecycle endpoints to reconcile/synopsis/
// balance-report endpoints).
type adminAPI struct {
	engine *ledger.Ledger
	logger *slog.Logger
}

func newAdminAPI(engine *ledger.Ledger, logger *slog.Logger) *adminAPI {
	return &adminAPI{engine: engine, logger: logger}
}

func (a *adminAPI) router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/admin", func(admin chi.Router) {
		admin.Get("/synopsis", a.getSynopsis)
		admin.Post("/reconcile", a.postReconcile)
		admin.Get("/balance", a.getBalance)
		admin.Post("/balance", a.putBalance)
		admin.Post("/publishers/{id}/delete", a.deletePublisher)
		admin.Post("/publishers/{id}/restore", a.restorePublisher)
	})

	r.Get("/ws/tabs", a.serveTabIngestion)

	return r
}

func (a *adminAPI) getSynopsis(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.engine.Synopsis())
}

func (a *adminAPI) postReconcile(w http.ResponseWriter, r *http.Request) {
	budget, _ := strconv.Atoi(r.URL.Query().Get("budget"))
	winners := a.engine.Reconcile(uint32(budget))
	writeJSON(w, http.StatusOK, winners)
}

func (a *adminAPI) getBalance(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		http.Error(w, "invalid year", http.StatusBadRequest)
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		http.Error(w, "invalid month", http.StatusBadRequest)
		return
	}
	report, found := a.engine.GetBalanceReport(year, types.Month(month))
	if !found {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *adminAPI) putBalance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Year   int               `json:"year"`
		Month  int               `json:"month"`
		Report types.BalanceReport `json:"report"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := a.engine.SetBalanceReport(req.Year, types.Month(req.Month), req.Report); err != nil {
		a.logger.Warn("set balance report", "error", err)
		http.Error(w, "failed to persist balance report", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *adminAPI) deletePublisher(w http.ResponseWriter, r *http.Request) {
	id := types.PublisherId(chi.URLParam(r, "id"))
	if err := a.engine.DeletePublisher(id); err != nil {
		http.Error(w, "failed to delete publisher", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *adminAPI) restorePublisher(w http.ResponseWriter, r *http.Request) {
	id := types.PublisherId(chi.URLParam(r, "id"))
	if err := a.engine.RestorePublisher(id); err != nil {
		http.Error(w, "failed to restore publisher", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
