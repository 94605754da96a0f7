package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/ariefcatur/restaurant-orders/internal/authz"
	"github.com/ariefcatur/restaurant-orders/internal/catalog"
	"github.com/go-chi/chi/v5"
)

type CatalogService interface {
	Menu(ctx context.Context, branchID int64) ([]catalog.MenuSection, error)
	SetStock(ctx context.Context, caller authz.Context, productID int64, stock int) error
}

type CatalogHandler struct {
	Catalog CatalogService
	Timeout time.Duration
}

type setStockReq struct {
	Stock *int `json:"stock"`
}

func (h *CatalogHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(withTimeout(h.Timeout))
		r.Get("/branches/{id}/menu", h.menu)
		r.With(RequireAuth).Put("/products/{id}/stock", h.setStock)
	})
}

func (h *CatalogHandler) menu(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	sections, err := h.Catalog.Menu(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sections)
}

func (h *CatalogHandler) setStock(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req setStockReq
	if !decode(w, r, &req) {
		return
	}
	if req.Stock == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "stock is required"})
		return
	}
	if err := h.Catalog.SetStock(r.Context(), authz.FromContext(r.Context()), id, *req.Stock); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
