package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/erazemk/stagehouse/internal/model"
	"github.com/erazemk/stagehouse/internal/ordering"
	"github.com/erazemk/stagehouse/internal/staging"
	"github.com/erazemk/stagehouse/internal/store"
)

// ItemsHandler handles catalog item endpoints.
type ItemsHandler struct {
	Svc *staging.Service
}

type imageRequest struct {
	Path   string `json:"path" validate:"required,max=2048"`
	Width  int    `json:"width" validate:"gte=0"`
	Height int    `json:"height" validate:"gte=0"`
}

func (i *imageRequest) image() *model.Image {
	if i == nil {
		return nil
	}
	return &model.Image{Path: i.Path, Width: i.Width, Height: i.Height}
}

type itemRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Category    string          `json:"category" validate:"max=100"`
	Vendor      string          `json:"vendor" validate:"max=200"`
	Description string          `json:"description"`
	Location    string          `json:"location" validate:"max=200"`
	Count       int             `json:"count" validate:"gte=0"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	Width       float64         `json:"width" validate:"gte=0"`
	Height      float64         `json:"height" validate:"gte=0"`
	Depth       float64         `json:"depth" validate:"gte=0"`
	Image       *imageRequest   `json:"image"`
	Thumbnail   *imageRequest   `json:"thumbnail"`
}

func (req *itemRequest) fields() model.ItemFields {
	return model.ItemFields{
		Name:        req.Name,
		Category:    req.Category,
		Vendor:      req.Vendor,
		Description: req.Description,
		Location:    req.Location,
		Count:       req.Count,
		Price:       req.Price,
		Cost:        req.Cost,
		Width:       req.Width,
		Height:      req.Height,
		Depth:       req.Depth,
		Image:       req.Image.image(),
		Thumbnail:   req.Thumbnail.image(),
	}
}

type moveRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

// positionMoveRequest moves the image at Position one step in Direction, or
// swaps it with the image at With when that is set.
type positionMoveRequest struct {
	Position  int    `json:"position"`
	Direction string `json:"direction" validate:"required_without=With,omitempty,oneof=up down"`
	With      int    `json:"with"`
}

type extraImageRequest struct {
	Path      string        `json:"path" validate:"required,max=2048"`
	Width     int           `json:"width" validate:"gte=0"`
	Height    int           `json:"height" validate:"gte=0"`
	Title     string        `json:"title" validate:"max=200"`
	Thumbnail *imageRequest `json:"thumbnail"`
}

// List handles GET /api/items. Query parameters: category, active=true.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	f := store.ItemFilter{
		Category:   r.URL.Query().Get("category"),
		ActiveOnly: r.URL.Query().Get("active") == "true",
	}
	items, err := h.Svc.ListItems(r.Context(), f)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if items == nil {
		items = []model.InventoryItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	item, err := h.Svc.CreateItem(r.Context(), identity(r), req.fields())
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.Svc.GetItem(r.Context(), id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req itemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	item, err := h.Svc.UpdateItem(r.Context(), identity(r), id, req.fields())
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := h.Svc.DeleteItem(r.Context(), identity(r), id); err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// Archive handles POST /api/items/{id}/archive.
func (h *ItemsHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

// Restore handles POST /api/items/{id}/restore.
func (h *ItemsHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *ItemsHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var (
		item *model.InventoryItem
		err  error
	)
	if active {
		item, err = h.Svc.RestoreItem(r.Context(), identity(r), id)
	} else {
		item, err = h.Svc.ArchiveItem(r.Context(), identity(r), id)
	}
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Move handles POST /api/items/{id}/move.
func (h *ItemsHandler) Move(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req moveRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	dir, err := ordering.ParseDirection(req.Direction)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.Svc.MoveItem(r.Context(), identity(r), id, dir)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Availability handles GET /api/items/{id}/availability.
func (h *ItemsHandler) Availability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	avail, err := h.Svc.GetAvailability(r.Context(), id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if avail == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, avail)
}

// Assignments handles GET /api/items/{id}/assignments.
func (h *ItemsHandler) Assignments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	assignments, err := h.Svc.ListItemAssignments(r.Context(), identity(r), id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if assignments == nil {
		assignments = []model.Assignment{}
	}
	jsonResponse(w, http.StatusOK, assignments)
}

// ListImages handles GET /api/items/{id}/images.
func (h *ItemsHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	images, err := h.Svc.ListExtraImages(r.Context(), id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if images == nil {
		images = []model.ExtraImage{}
	}
	jsonResponse(w, http.StatusOK, images)
}

// AddImage handles POST /api/items/{id}/images.
func (h *ItemsHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req extraImageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	img, err := h.Svc.AddExtraImage(r.Context(), identity(r), id,
		model.Image{Path: req.Path, Width: req.Width, Height: req.Height}, req.Title, req.Thumbnail.image())
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, img)
}

// DeleteImage handles DELETE /api/items/{id}/images/{imageID}.
func (h *ItemsHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	imageID, ok := pathID(r, "imageID")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid image id")
		return
	}

	if err := h.Svc.DeleteExtraImage(r.Context(), identity(r), id, imageID); err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "image deleted"})
}

// MoveImage handles POST /api/items/{id}/images/move.
func (h *ItemsHandler) MoveImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req positionMoveRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	var (
		images []model.ExtraImage
		err    error
	)
	if req.With != 0 {
		images, err = h.Svc.SwapExtraImages(r.Context(), identity(r), id, req.Position, req.With)
	} else {
		images, err = h.Svc.MoveExtraImage(r.Context(), identity(r), id, req.Position, ordering.Direction(req.Direction))
	}
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, images)
}
