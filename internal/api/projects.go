package api

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/stagehouse/internal/model"
	"github.com/erazemk/stagehouse/internal/ordering"
	"github.com/erazemk/stagehouse/internal/staging"
)

const dateLayout = "2006-01-02"

// ProjectsHandler handles project, project image and assignment endpoints.
type ProjectsHandler struct {
	Svc *staging.Service
}

type projectRequest struct {
	Name      string           `json:"name" validate:"required,max=200"`
	Status    string           `json:"status" validate:"projectstatus"`
	Address   string           `json:"address" validate:"max=500"`
	StartDate string           `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string           `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Revenue   *decimal.Decimal `json:"revenue"`
	Notes     string           `json:"notes"`
}

func (req *projectRequest) fields() model.ProjectFields {
	return model.ProjectFields{
		Name:      req.Name,
		Status:    req.Status,
		Address:   req.Address,
		StartDate: parseDate(req.StartDate),
		EndDate:   parseDate(req.EndDate),
		Revenue:   req.Revenue,
		Notes:     req.Notes,
	}
}

// parseDate parses an already validated date, returning nil for "".
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

type highlightRequest struct {
	Highlighted *bool `json:"highlighted" validate:"required"`
}

type projectMoveRequest struct {
	Move string `json:"move" validate:"required,oneof=up down first last"`
}

type projectImageRequest struct {
	Path      string        `json:"path" validate:"required,max=2048"`
	Width     int           `json:"width" validate:"gte=0"`
	Height    int           `json:"height" validate:"gte=0"`
	Thumbnail *imageRequest `json:"thumbnail"`
}

type imageOrderRequest struct {
	IDs []int64 `json:"ids" validate:"required"`
}

type assignRequest struct {
	InventoryID int64 `json:"inventory_id" validate:"gt=0"`
	Quantity    int   `json:"quantity"`
}

// List handles GET /api/projects.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Svc.ListProjects(r.Context(), identity(r))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if projects == nil {
		projects = []model.Project{}
	}
	jsonResponse(w, http.StatusOK, projects)
}

// Create handles POST /api/projects.
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.Svc.CreateProject(r.Context(), identity(r), req.fields())
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, project)
}

// Get handles GET /api/projects/{id}.
func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	project, err := h.Svc.GetProject(r.Context(), identity(r), id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, project)
}

// Update handles PUT /api/projects/{id}.
func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req projectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.Svc.UpdateProject(r.Context(), identity(r), id, req.fields())
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, project)
}

// Delete handles DELETE /api/projects/{id}. Open assignments are returned first.
func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	if err := h.Svc.DeleteProject(r.Context(), identity(r), id); err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "project deleted"})
}

// Highlight handles POST /api/projects/{id}/highlight.
func (h *ProjectsHandler) Highlight(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req highlightRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.Svc.SetProjectHighlighted(r.Context(), identity(r), id, *req.Highlighted)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, project)
}

// Move handles POST /api/projects/{id}/move.
func (h *ProjectsHandler) Move(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req projectMoveRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	move, err := staging.ParseProjectMove(req.Move)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	project, err := h.Svc.MoveProject(r.Context(), identity(r), id, move)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, project)
}

// ListImages handles GET /api/projects/{id}/images.
func (h *ProjectsHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	images, err := h.Svc.ListProjectImages(r.Context(), identity(r), id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if images == nil {
		images = []model.ProjectImage{}
	}
	jsonResponse(w, http.StatusOK, images)
}

// AddImage handles POST /api/projects/{id}/images.
func (h *ProjectsHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req projectImageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	img, err := h.Svc.AddProjectImage(r.Context(), identity(r), id,
		model.Image{Path: req.Path, Width: req.Width, Height: req.Height}, req.Thumbnail.image())
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, img)
}

// DeleteImage handles DELETE /api/projects/{id}/images/{imageID}.
func (h *ProjectsHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	imageID, ok := pathID(r, "imageID")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid image id")
		return
	}

	if err := h.Svc.DeleteProjectImage(r.Context(), identity(r), id, imageID); err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "image deleted"})
}

// SetImageOrder handles PUT /api/projects/{id}/images/order.
func (h *ProjectsHandler) SetImageOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req imageOrderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	images, err := h.Svc.SetProjectImageOrder(r.Context(), identity(r), id, req.IDs)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, images)
}

// MoveImage handles POST /api/projects/{id}/images/move.
func (h *ProjectsHandler) MoveImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req positionMoveRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	var (
		images []model.ProjectImage
		err    error
	)
	if req.With != 0 {
		images, err = h.Svc.SwapProjectImages(r.Context(), identity(r), id, req.Position, req.With)
	} else {
		images, err = h.Svc.MoveProjectImage(r.Context(), identity(r), id, req.Position, ordering.Direction(req.Direction))
	}
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, images)
}

// Assignments handles GET /api/projects/{id}/assignments. Returned assignments
// are included when include_returned=true.
func (h *ProjectsHandler) Assignments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	includeReturned := r.URL.Query().Get("include_returned") == "true"
	assignments, err := h.Svc.ListProjectAssignments(r.Context(), identity(r), id, includeReturned)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if assignments == nil {
		assignments = []model.Assignment{}
	}
	jsonResponse(w, http.StatusOK, assignments)
}

// Assign handles POST /api/projects/{id}/assignments.
func (h *ProjectsHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req assignRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	a, err := h.Svc.Assign(r.Context(), identity(r), id, req.InventoryID, req.Quantity)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, a)
}

// Return handles POST /api/assignments/{id}/return.
func (h *ProjectsHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid assignment id")
		return
	}

	a, err := h.Svc.Return(r.Context(), identity(r), id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, a)
}
