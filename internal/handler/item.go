package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/handler/dto"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/model"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/service"
)

// ItemHandler handles HTTP requests for item operations.
type ItemHandler struct {
	responder
	svc *service.ItemService
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(svc *service.ItemService, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{
		responder: responder{logger: logger},
		svc:       svc,
	}
}

// List handles GET /api/items.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListItems(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []*model.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateItemRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	item, err := h.svc.CreateItem(r.Context(), service.CreateItemInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("item_created", "item_id", item.ID)
	writeJSON(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
