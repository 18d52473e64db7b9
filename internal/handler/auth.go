package handler

import (
	"encoding/json"
	"net/http"

	"goingmarry-api/internal/middleware"
	"goingmarry-api/internal/service"
	"goingmarry-api/pkg/apierror"
	"goingmarry-api/pkg/response"
)

// AuthHandler handles seller account HTTP requests.
type AuthHandler struct {
	sellerService *service.SellerService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(sellerService *service.SellerService) *AuthHandler {
	return &AuthHandler{
		sellerService: sellerService,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	token, seller, err := h.sellerService.Register(r.Context(), &in)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Created(w, map[string]interface{}{
		"token":  token,
		"seller": seller,
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	token, seller, err := h.sellerService.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"token":  token,
		"seller": seller,
	})
}

// UpdateProfile handles PATCH /auth/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, apierror.Unauthorized("Authentication required"))
		return
	}

	var in struct {
		Name         string `json:"name"`
		BoutiqueName string `json:"boutiqueName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	seller, err := h.sellerService.UpdateProfile(r.Context(), identity, in.Name, in.BoutiqueName)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"message": "Profile updated successfully",
		"seller":  seller,
	})
}

// DeleteAccount handles DELETE /auth/profile
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, apierror.Unauthorized("Authentication required"))
		return
	}

	if err := h.sellerService.DeleteAccount(r.Context(), identity); err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"message": "Account and associated products deleted",
	})
}

// ChangePassword handles PATCH /auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, apierror.Unauthorized("Authentication required"))
		return
	}

	var in struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	if err := h.sellerService.ChangePassword(r.Context(), identity, in.CurrentPassword, in.NewPassword); err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"message": "Password updated successfully",
	})
}
