package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	catalogService "github.com/zhouzirui/sakhi/backend/internal/service/catalog"
	"github.com/zhouzirui/sakhi/backend/pkg/utils"
)

// Handler serves the static wellness content.
type Handler struct {
	svc *catalogService.Service
}

func New(svc *catalogService.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/feelings", h.handleFeelings)
	r.Get("/stories", h.handleStories)
	r.Get("/professionals", h.handleProfessionals)
	r.Get("/professionals/{id}", h.handleProfessional)
	r.Get("/resources", h.handleResources)
	r.Get("/resources/{id}", h.handleResource)
	r.Get("/communities", h.handleCommunities)
}

func (h *Handler) handleFeelings(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.svc.Feelings())
}

func (h *Handler) handleStories(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.svc.Stories())
}

func (h *Handler) handleProfessionals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := catalogService.ProfessionalQuery{
		Search:       q.Get("q"),
		Type:         q.Get("type"),
		AvailableNow: flag(q.Get("available")),
		FreeSession:  flag(q.Get("free")),
		Price:        q.Get("price"),
		Sort:         q.Get("sort"),
	}

	items, err := h.svc.Professionals(query)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, items)
}

func (h *Handler) handleProfessional(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := h.svc.Professional(id)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, item)
}

func (h *Handler) handleResources(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.svc.Resources(catalogService.ResourceQuery{Search: q.Get("q"), Filter: q.Get("filter")})
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, items)
}

func (h *Handler) handleResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := h.svc.Resource(id)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, item)
}

func (h *Handler) handleCommunities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	listing, err := h.svc.Communities(catalogService.CommunityQuery{
		View:     q.Get("view"),
		Category: q.Get("category"),
		Search:   q.Get("q"),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, listing)
}

func flag(raw string) bool {
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "id must be a number")
		return 0, false
	}
	return id, true
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalogService.ErrNotFound):
		utils.RespondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, catalogService.ErrInvalidQuery):
		utils.RespondError(w, http.StatusBadRequest, "invalid query")
	default:
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
