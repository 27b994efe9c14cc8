package handlers

import (
	"net/http"

	"github.com/nlstn/go-posadmin/internal/observability"
)

const dashboardEntity = "dashboard"

func (h *Handler) registerDashboard(mux *http.ServeMux) {
	mux.HandleFunc("GET /dashboard/stats", h.handle(dashboardEntity, observability.OpDashboard, h.handleStats))
	mux.HandleFunc("GET /dashboard/latest-orders", h.handle(dashboardEntity, observability.OpDashboard, h.handleLatestOrders))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) error {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		return err
	}
	h.writeJSON(w, r, http.StatusOK, stats)
	return nil
}

// handleLatestOrders lists the newest orders; limit defaults to
// store.LatestOrdersLimit and is capped at store.MaxLatestOrdersLimit.
func (h *Handler) handleLatestOrders(w http.ResponseWriter, r *http.Request) error {
	limit, err := queryInt(r, "limit")
	if err != nil {
		return err
	}
	orders, err := h.store.LatestOrders(r.Context(), limit)
	if err != nil {
		return err
	}
	h.writeCollection(w, r, dashboardEntity, orders, len(orders), nil, "")
	return nil
}
