package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nlstn/go-posadmin/internal/apperrors"
	"github.com/nlstn/go-posadmin/internal/etag"
	"github.com/nlstn/go-posadmin/internal/models"
	"github.com/nlstn/go-posadmin/internal/observability"
	"github.com/nlstn/go-posadmin/internal/pricing"
	"github.com/nlstn/go-posadmin/internal/response"
	"github.com/nlstn/go-posadmin/internal/store"
)

// DateLayout is the format of the created_from and created_until filters.
const DateLayout = "2006-01-02"

const orderEntity = "order"

func (h *Handler) registerOrders(mux *http.ServeMux) {
	mux.HandleFunc("GET /orders", h.handle(orderEntity, observability.OpList, h.handleListOrders))
	mux.HandleFunc("POST /orders", h.handle(orderEntity, observability.OpCreate, h.handleCreateOrder))
	mux.HandleFunc("GET /orders/{id}", h.handle(orderEntity, observability.OpRead, h.handleGetOrder))
	mux.HandleFunc("PUT /orders/{id}", h.handle(orderEntity, observability.OpUpdate, h.handleUpdateOrder))
	mux.HandleFunc("DELETE /orders/{id}", h.handle(orderEntity, observability.OpDelete, h.handleDeleteOrder))
	mux.HandleFunc("POST /orders/{id}/status", h.handle(orderEntity, observability.OpTransition, h.handleTransitionOrder))
	mux.HandleFunc("POST /orders/{id}/restore", h.handle(orderEntity, observability.OpRestore, h.handleRestoreOrder))
	mux.HandleFunc("DELETE /orders/{id}/force", h.handle(orderEntity, observability.OpForceDelete, h.handleForceDeleteOrder))
	mux.HandleFunc("POST /orders/recompute", h.handle(orderEntity, observability.OpRecompute, h.handleRecompute))
	mux.HandleFunc("GET /orders/export.xlsx", h.handle(orderEntity, observability.OpExport, h.handleExportOrders))

	mux.HandleFunc("POST /orders/bulk-delete", h.handle(orderEntity, observability.OpDelete, h.bulk(observability.OpDelete, h.store.DeleteOrders)))
	mux.HandleFunc("POST /orders/bulk-restore", h.handle(orderEntity, observability.OpRestore, h.bulk(observability.OpRestore, h.store.RestoreOrders)))
	mux.HandleFunc("POST /orders/bulk-force-delete", h.handle(orderEntity, observability.OpForceDelete, h.bulk(observability.OpForceDelete, h.store.ForceDeleteOrders)))
}

func orderETag(o *models.Order) string {
	return etag.Generate(orderEntity, o.ID, o.Version)
}

// orderFilter reads the list filters from the query string.
func orderFilter(r *http.Request) (store.OrderFilter, error) {
	q := r.URL.Query()
	var f store.OrderFilter

	if raw := q.Get("status"); raw != "" {
		status, err := models.ParseOrderStatus(raw)
		if err != nil {
			return f, apperrors.Validation("status", err.Error())
		}
		f.Status = status
	}

	trashed, err := store.ParseTrashed(q.Get("trashed"))
	if err != nil {
		return f, err
	}
	f.Trashed = trashed

	if f.CreatedFrom, err = queryDate(r, "created_from"); err != nil {
		return f, err
	}
	if f.CreatedUntil, err = queryDate(r, "created_until"); err != nil {
		return f, err
	}

	if f.PageSize, err = queryInt(r, "page_size"); err != nil {
		return f, err
	}
	f.Search = strings.TrimSpace(q.Get("search"))
	f.SkipToken = q.Get("skiptoken")
	return f, nil
}

func queryDate(r *http.Request, name string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, raw, time.Local)
	if err != nil {
		return nil, apperrors.Validation(name, fmt.Sprintf("%s must be a date formatted as YYYY-MM-DD", name))
	}
	return &t, nil
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) error {
	f, err := orderFilter(r)
	if err != nil {
		return err
	}
	page, err := h.store.ListOrders(r.Context(), f)
	if err != nil {
		return err
	}
	next := response.NextLink(r, "skiptoken", page.NextSkipToken)
	h.writeCollection(w, r, orderEntity, page.Orders, len(page.Orders), &page.Count, next)
	return nil
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	load := h.store.GetOrder
	if r.URL.Query().Get("trashed") == string(store.TrashedWith) {
		load = h.store.GetOrderWithTrashed
	}
	order, err := load(r.Context(), id)
	if err != nil {
		return err
	}

	tag := orderETag(order)
	w.Header().Set(HeaderETag, tag)
	if !etag.NoneMatch(r.Header.Get(HeaderIfNoneMatch), tag) {
		w.WriteHeader(http.StatusNotModified)
		return nil
	}
	h.writeJSON(w, r, http.StatusOK, order)
	return nil
}

// writeOrder writes a saved order with its ETag.
func (h *Handler) writeOrder(w http.ResponseWriter, r *http.Request, status int, order *models.Order) {
	w.Header().Set(HeaderETag, orderETag(order))
	h.writeEntity(w, r, status, order)
}

func (h *Handler) recordTotal(ctx context.Context, order *models.Order) {
	h.obs.Metrics().RecordOrderTotal(ctx, order.TotalPrice.Decimal().InexactFloat64(), string(order.PaymentMethod))
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) error {
	var in store.OrderInput
	if err := decodeJSON(r, &in); err != nil {
		return err
	}
	in.ID = 0

	order, err := h.store.SaveOrder(r.Context(), in)
	if err != nil {
		return err
	}
	h.recordTotal(r.Context(), order)

	w.Header().Set(HeaderLocation, "/orders/"+strconv.FormatUint(uint64(order.ID), 10))
	h.writeOrder(w, r, http.StatusCreated, order)
	return nil
}

// expectedVersion evaluates If-Match against the stored order and returns the
// version the write must find. Zero means the request carried no precondition.
func (h *Handler) expectedVersion(r *http.Request, id uint, load func(context.Context, uint) (*models.Order, error)) (int, error) {
	ifMatch := r.Header.Get(HeaderIfMatch)
	if ifMatch == "" {
		return 0, nil
	}
	current, err := load(r.Context(), id)
	if err != nil {
		return 0, err
	}
	if !etag.Match(ifMatch, orderETag(current)) {
		return 0, apperrors.PreconditionFailed()
	}
	return current.Version, nil
}

func (h *Handler) handleUpdateOrder(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	var in store.OrderInput
	if err := decodeJSON(r, &in); err != nil {
		return err
	}
	in.ID = id

	if in.ExpectedVersion, err = h.expectedVersion(r, id, h.store.GetOrder); err != nil {
		return err
	}

	order, err := h.store.SaveOrder(r.Context(), in)
	if err != nil {
		return err
	}
	h.recordTotal(r.Context(), order)
	h.writeOrder(w, r, http.StatusOK, order)
	return nil
}

// handleDeleteOrder soft-deletes an order. The If-Match check and the delete
// are separate statements.
func (h *Handler) handleDeleteOrder(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	if _, err := h.expectedVersion(r, id, h.store.GetOrder); err != nil {
		return err
	}
	if err := h.store.DeleteOrder(r.Context(), id); err != nil {
		return err
	}
	response.WriteNoContent(w)
	return nil
}

type statusRequest struct {
	Status models.OrderStatus `json:"status"`
}

func (h *Handler) handleTransitionOrder(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	expected, err := h.expectedVersion(r, id, h.store.GetOrder)
	if err != nil {
		return err
	}

	order, err := h.store.TransitionOrderStatus(r.Context(), id, req.Status, expected)
	if err != nil {
		return err
	}
	h.writeOrder(w, r, http.StatusOK, order)
	return nil
}

func (h *Handler) handleRestoreOrder(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	order, err := h.store.RestoreOrder(r.Context(), id)
	if err != nil {
		return err
	}
	h.writeOrder(w, r, http.StatusOK, order)
	return nil
}

func (h *Handler) handleForceDeleteOrder(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	if _, err := h.expectedVersion(r, id, h.store.GetOrderWithTrashed); err != nil {
		return err
	}
	if err := h.store.ForceDeleteOrder(r.Context(), id); err != nil {
		return err
	}
	observability.RequestLogger(r.Context(), h.logger).InfoContext(r.Context(), "order permanently deleted",
		observability.LogFieldEntityID, id)
	response.WriteNoContent(w)
	return nil
}

type bulkRequest struct {
	IDs []uint `json:"ids"`
}

type bulkResult struct {
	Affected int64 `json:"affected"`
}

// bulk applies action to the ids of the request body. Ids that do not qualify
// are skipped; the response reports how many orders changed.
func (h *Handler) bulk(op string, action func(context.Context, []uint) (int64, error)) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		var req bulkRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		if len(req.IDs) == 0 {
			return apperrors.Validation("ids", "at least one order id is required")
		}

		ctx, span := h.obs.Tracer().StartBulk(r.Context(), op, len(req.IDs))
		defer span.End()

		n, err := action(ctx, req.IDs)
		if err != nil {
			return err
		}
		h.writeJSON(w, r, http.StatusOK, bulkResult{Affected: n})
		return nil
	}
}

type recomputeRequest struct {
	// OrderID names the order being edited. Zero for an order not saved yet.
	OrderID uint              `json:"order_id,omitempty"`
	Items   []store.ItemInput `json:"items"`
}

type recomputeResult struct {
	TotalPrice pricing.Money `json:"total_price"`
}

// handleRecompute prices a draft item list without saving it.
func (h *Handler) handleRecompute(w http.ResponseWriter, r *http.Request) error {
	var req recomputeRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	total, err := h.store.PreviewTotal(r.Context(), req.OrderID, req.Items)
	if err != nil {
		return err
	}
	h.writeJSON(w, r, http.StatusOK, recomputeResult{TotalPrice: total})
	return nil
}
