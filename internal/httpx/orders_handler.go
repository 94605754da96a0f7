package httpx

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/restaurant-orders/internal/authz"
	"github.com/ariefcatur/restaurant-orders/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type OrderService interface {
	CreateOrder(ctx context.Context, req orders.CheckoutRequest) (*orders.Receipt, error)
	GetOrder(ctx context.Context, caller authz.Context, orderID int64) (*orders.Order, error)
	ChangeStatus(ctx context.Context, caller authz.Context, orderID int64, to orders.StatusID) error
	StatusOf(ctx context.Context, orderID int64) (orders.StatusID, error)
	ListBranchOrders(ctx context.Context, caller authz.Context, branchID int64, f orders.ListFilter) ([]orders.Order, error)
}

type OrdersHandler struct {
	Orders  OrderService
	Timeout time.Duration
}

type changeStatusReq struct {
	NuevoEstadoID int64 `json:"nuevoEstadoId"`
}

type statusResp struct {
	ID       int64           `json:"id"`
	EstadoID orders.StatusID `json:"estadoId"`
	Estado   string          `json:"estado"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(withTimeout(h.Timeout))
		r.Post("/orders", h.createOrder)
		r.Get("/orders/{id}/status", h.orderStatus)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth)
			r.Get("/orders/{id}", h.getOrder)
			r.Put("/orders/{id}/status", h.changeStatus)
			r.Get("/branches/{id}/orders", h.listBranchOrders)
		})
	})
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orders.CheckoutRequest
	if !decode(w, r, &req) {
		return
	}
	ctx := orders.WithTraceID(r.Context(), middleware.GetReqID(r.Context()))
	receipt, err := h.Orders.CreateOrder(ctx, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	o, err := h.Orders.GetOrder(r.Context(), authz.FromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) orderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	st, err := h.Orders.StatusOf(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResp{ID: id, EstadoID: st, Estado: st.String()})
}

func (h *OrdersHandler) changeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req changeStatusReq
	if !decode(w, r, &req) {
		return
	}
	to, err := orders.ParseStatus(req.NuevoEstadoID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx := orders.WithTraceID(r.Context(), middleware.GetReqID(r.Context()))
	if err := h.Orders.ChangeStatus(ctx, authz.FromContext(r.Context()), id, to); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrdersHandler) listBranchOrders(w http.ResponseWriter, r *http.Request) {
	branchID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	q := r.URL.Query()
	var f orders.ListFilter
	if v := q.Get("estadoId"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid estadoId"})
			return
		}
		st, err := orders.ParseStatus(n)
		if err != nil {
			writeError(w, r, err)
			return
		}
		f.Status = &st
	}
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Offset, _ = strconv.Atoi(q.Get("offset"))

	list, err := h.Orders.ListBranchOrders(r.Context(), authz.FromContext(r.Context()), branchID, f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
