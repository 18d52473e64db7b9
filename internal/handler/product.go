package handler

import (
	"encoding/json"
	"net/http"

	"goingmarry-api/internal/middleware"
	"goingmarry-api/internal/model"
	"goingmarry-api/internal/service"
	"goingmarry-api/pkg/apierror"
	"goingmarry-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	listingService *service.ListingService
}

// NewProductHandler creates a new product handler.
func NewProductHandler(listingService *service.ListingService) *ProductHandler {
	return &ProductHandler{
		listingService: listingService,
	}
}

// List handles GET /products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listingService.List(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}

	// CDN-friendly: edge caches may serve stale copies while revalidating.
	w.Header().Set("Cache-Control", "s-maxage=60, stale-while-revalidate=3600")
	response.OK(w, listings)
}

// Get handles GET /products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("product id is required"))
		return
	}

	listing, err := h.listingService.Get(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, listing)
}

// Create handles POST /products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, apierror.Unauthorized("Authentication required"))
		return
	}

	var in service.ListingInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	listing, err := h.listingService.Create(r.Context(), identity, &in)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Created(w, listing)
}

// Update handles PUT /products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, apierror.Unauthorized("Authentication required"))
		return
	}

	id := chi.URLParam(r, "id")

	var in service.ListingInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	if err := h.listingService.Update(r.Context(), identity, id, &in); err != nil {
		response.Error(w, err)
		return
	}

	listing, err := h.listingService.Get(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, listing)
}

// Patch handles PATCH /products/{id}
func (h *ProductHandler) Patch(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, apierror.Unauthorized("Authentication required"))
		return
	}

	id := chi.URLParam(r, "id")

	var patch model.ListingPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	if err := h.listingService.Patch(r.Context(), identity, id, &patch); err != nil {
		response.Error(w, err)
		return
	}

	listing, err := h.listingService.Get(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, listing)
}

// Delete handles DELETE /products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, apierror.Unauthorized("Authentication required"))
		return
	}

	id := chi.URLParam(r, "id")

	if err := h.listingService.Delete(r.Context(), identity, id); err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"message": "Product deleted successfully",
	})
}

// DeleteImage handles DELETE /products/{id}/image
func (h *ProductHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, apierror.Unauthorized("Authentication required"))
		return
	}

	id := chi.URLParam(r, "id")

	imageURL, err := h.listingService.RemoveImage(r.Context(), identity, id)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"message":  "Product image removed",
		"imageUrl": imageURL,
	})
}
