package api

import (
	"net/http"
	"strconv"

	"github.com/erazemk/stagehouse/internal/model"
	"github.com/erazemk/stagehouse/internal/staging"
)

// CatalogHandler handles public catalog browsing and ledger maintenance.
type CatalogHandler struct {
	Svc *staging.Service
}

// Adjacent handles GET /api/catalog/{oid}/adjacent.
func (h *CatalogHandler) Adjacent(w http.ResponseWriter, r *http.Request) {
	oid, ok := pathID(r, "oid")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid catalog number")
		return
	}

	adj, err := h.Svc.GetAdjacent(r.Context(), oid)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, adj)
}

// ByOID handles GET /api/catalog/{oid}.
func (h *CatalogHandler) ByOID(w http.ResponseWriter, r *http.Request) {
	oid, ok := pathID(r, "oid")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid catalog number")
		return
	}

	item, err := h.Svc.GetItemByOID(r.Context(), oid)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Categories handles GET /api/categories.
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Svc.GetCategories(r.Context())
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	jsonResponse(w, http.StatusOK, categories)
}

// Portfolio handles GET /api/portfolio. A missing limit uses the configured default.
func (h *CatalogHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			jsonError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	projects, err := h.Svc.GetHighlightedPortfolio(r.Context(), limit)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if projects == nil {
		projects = []model.Project{}
	}
	jsonResponse(w, http.StatusOK, projects)
}

// VerifyLedger handles GET /api/ledger/verify.
func (h *CatalogHandler) VerifyLedger(w http.ResponseWriter, r *http.Request) {
	drift, err := h.Svc.VerifyLedger(r.Context(), identity(r))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if drift == nil {
		drift = []model.LedgerDrift{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"consistent": len(drift) == 0,
		"drift":      drift,
	})
}
