package handler

import (
	"encoding/json"
	"net/http"

	"goingmarry-api/internal/middleware"
	"goingmarry-api/internal/service"
	"goingmarry-api/pkg/apierror"
	"goingmarry-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// AdminHandler handles the admin seller directory.
type AdminHandler struct {
	sellerService *service.SellerService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(sellerService *service.SellerService) *AdminHandler {
	return &AdminHandler{
		sellerService: sellerService,
	}
}

// ListSellers handles GET /admin/sellers
func (h *AdminHandler) ListSellers(w http.ResponseWriter, r *http.Request) {
	sellers, err := h.sellerService.ListSellers(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, sellers)
}

// GetSeller handles GET /admin/sellers/{id}
func (h *AdminHandler) GetSeller(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	seller, err := h.sellerService.GetSeller(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, seller)
}

// UpdateSeller handles PATCH /admin/sellers/{id}
func (h *AdminHandler) UpdateSeller(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in struct {
		Name         string `json:"name"`
		BoutiqueName string `json:"boutiqueName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	seller, err := h.sellerService.UpdateSeller(r.Context(), id, in.Name, in.BoutiqueName)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"message": "Seller updated successfully",
		"seller":  seller,
	})
}

// DeleteSeller handles DELETE /admin/sellers/{id}
func (h *AdminHandler) DeleteSeller(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, apierror.Unauthorized("Authentication required"))
		return
	}

	id := chi.URLParam(r, "id")

	if err := h.sellerService.DeleteSeller(r.Context(), identity, id); err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"message": "Seller and associated products deleted",
	})
}

// ListSellerProducts handles GET /admin/sellers/{id}/products
func (h *AdminHandler) ListSellerProducts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	listings, err := h.sellerService.ListSellerProducts(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, listings)
}

// GetSellerProduct handles GET /admin/sellers/{id}/products/{productId}
func (h *AdminHandler) GetSellerProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	productID := chi.URLParam(r, "productId")

	listing, err := h.sellerService.GetSellerProduct(r.Context(), id, productID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, listing)
}
