package handler

import (
	"log/slog"
	"net/http"

	"github.com/mkessler/panelwerk/internal/domain"
	"github.com/mkessler/panelwerk/internal/erp"
)

// ItemHandler serves product and price lookups against the ERP catalog.
type ItemHandler struct {
	items  *erp.ItemService
	prices *erp.PriceService
	logger *slog.Logger
}

// NewItemHandler creates a new item lookup handler.
func NewItemHandler(items *erp.ItemService, prices *erp.PriceService, logger *slog.Logger) *ItemHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ItemHandler{
		items:  items,
		prices: prices,
		logger: logger,
	}
}

// List handles GET /api/items
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

// Get handles GET /api/items/{number}
//
// The lookup service reports absence as a value; only here at the HTTP
// boundary does an absent item become a 404.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("number")
	if number == "" {
		respondError(w, domain.Invalid("item.get", "item number is required"))
		return
	}

	item, found, err := h.items.FindByNumber(r.Context(), number)
	if err != nil {
		respondError(w, err)
		return
	}
	if !found {
		respondError(w, domain.NotFound("item.get", "item", number))
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// Price handles GET /api/items/{number}/price
func (h *ItemHandler) Price(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("number")
	if number == "" {
		respondError(w, domain.Invalid("item.price", "item number is required"))
		return
	}

	result, err := h.prices.GetPrice(r.Context(), erp.PriceQuery{
		ItemNumber:     number,
		Quantity:       queryInt(r, "quantity", 1),
		CustomerNumber: r.URL.Query().Get("customerNumber"),
		VariantCode:    r.URL.Query().Get("variantCode"),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
