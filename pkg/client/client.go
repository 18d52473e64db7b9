// Package client is a typed HTTP client for the GoingMarry API, used by the
// terminal shell in cmd/boutique.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"goingmarry-api/internal/model"
	"goingmarry-api/internal/service"
)

// Client talks to a running GoingMarry API server. The zero value is not
// usable; construct with New.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New creates a client for the API at baseURL (e.g. "http://localhost:3001").
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken sets the bearer token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// APIError is an error response decoded from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d %s)", e.Message, e.StatusCode, e.Code)
}

// envelope matches the server's standard response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do performs a request and decodes the enveloped response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api"+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if !env.Success {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: "UNKNOWN", Message: "request failed"}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if out != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

// ListProducts fetches every listing, newest first.
func (c *Client) ListProducts(ctx context.Context) ([]model.Listing, error) {
	var listings []model.Listing
	if err := c.do(ctx, http.MethodGet, "/products", nil, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// GetProduct fetches a single listing.
func (c *Client) GetProduct(ctx context.Context, id string) (*model.Listing, error) {
	var listing model.Listing
	if err := c.do(ctx, http.MethodGet, "/products/"+id, nil, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// CreateProduct creates a listing owned by the authenticated seller.
func (c *Client) CreateProduct(ctx context.Context, in *service.ListingInput) (*model.Listing, error) {
	var listing model.Listing
	if err := c.do(ctx, http.MethodPost, "/products", in, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// UpdateProduct fully replaces a listing.
func (c *Client) UpdateProduct(ctx context.Context, id string, in *service.ListingInput) (*model.Listing, error) {
	var listing model.Listing
	if err := c.do(ctx, http.MethodPut, "/products/"+id, in, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// PatchProduct applies a partial update to a listing.
func (c *Client) PatchProduct(ctx context.Context, id string, patch *model.ListingPatch) (*model.Listing, error) {
	var listing model.Listing
	if err := c.do(ctx, http.MethodPatch, "/products/"+id, patch, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// DeleteProduct removes a listing.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+id, nil, nil)
}

// DeleteProductImage resets a listing's image to the default placeholder and
// returns the placeholder URL.
func (c *Client) DeleteProductImage(ctx context.Context, id string) (string, error) {
	var out struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := c.do(ctx, http.MethodDelete, "/products/"+id+"/image", nil, &out); err != nil {
		return "", err
	}
	return out.ImageURL, nil
}

// authPayload is the token + seller pair returned by register and login.
type authPayload struct {
	Token  string       `json:"token"`
	Seller model.Seller `json:"seller"`
}

// Register creates a seller account and returns the session token with the
// seller profile.
func (c *Client) Register(ctx context.Context, in *service.RegisterInput) (string, *model.Seller, error) {
	var out authPayload
	if err := c.do(ctx, http.MethodPost, "/auth/register", in, &out); err != nil {
		return "", nil, err
	}
	return out.Token, &out.Seller, nil
}

// Login authenticates a seller.
func (c *Client) Login(ctx context.Context, email, password string) (string, *model.Seller, error) {
	body := map[string]string{"email": email, "password": password}
	var out authPayload
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return "", nil, err
	}
	return out.Token, &out.Seller, nil
}

// UpdateProfile edits the authenticated seller's name and boutique name.
func (c *Client) UpdateProfile(ctx context.Context, name, boutiqueName string) (*model.Seller, error) {
	body := map[string]string{"name": name, "boutiqueName": boutiqueName}
	var out struct {
		Seller model.Seller `json:"seller"`
	}
	if err := c.do(ctx, http.MethodPatch, "/auth/profile", body, &out); err != nil {
		return nil, err
	}
	return &out.Seller, nil
}

// DeleteAccount removes the authenticated seller and their listings.
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/auth/profile", nil, nil)
}

// ChangePassword validates and submits a password change. Validation of the
// new password happens client-side before the request is sent.
func (c *Client) ChangePassword(ctx context.Context, current, next, confirm string) error {
	if err := ValidateNewPassword(next, confirm); err != nil {
		return err
	}
	body := map[string]string{"currentPassword": current, "newPassword": next}
	return c.do(ctx, http.MethodPatch, "/auth/change-password", body, nil)
}

// Analyze submits a base64 listing photo for AI analysis.
func (c *Client) Analyze(ctx context.Context, imageData string) (*service.ListingSuggestion, error) {
	body := map[string]string{"imageData": imageData}
	var out service.ListingSuggestion
	if err := c.do(ctx, http.MethodPost, "/ai/analyze", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSellers fetches the seller directory (admin only).
func (c *Client) ListSellers(ctx context.Context) ([]model.Seller, error) {
	var sellers []model.Seller
	if err := c.do(ctx, http.MethodGet, "/admin/sellers", nil, &sellers); err != nil {
		return nil, err
	}
	return sellers, nil
}

// GetSeller fetches a single seller (admin only).
func (c *Client) GetSeller(ctx context.Context, id string) (*model.Seller, error) {
	var seller model.Seller
	if err := c.do(ctx, http.MethodGet, "/admin/sellers/"+id, nil, &seller); err != nil {
		return nil, err
	}
	return &seller, nil
}

// UpdateSeller edits any seller's profile (admin only).
func (c *Client) UpdateSeller(ctx context.Context, id, name, boutiqueName string) (*model.Seller, error) {
	body := map[string]string{"name": name, "boutiqueName": boutiqueName}
	var out struct {
		Seller model.Seller `json:"seller"`
	}
	if err := c.do(ctx, http.MethodPatch, "/admin/sellers/"+id, body, &out); err != nil {
		return nil, err
	}
	return &out.Seller, nil
}

// DeleteSeller removes a seller and their listings (admin only).
func (c *Client) DeleteSeller(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/admin/sellers/"+id, nil, nil)
}

// ListSellerProducts fetches one seller's listings (admin only).
func (c *Client) ListSellerProducts(ctx context.Context, sellerID string) ([]model.Listing, error) {
	var listings []model.Listing
	if err := c.do(ctx, http.MethodGet, "/admin/sellers/"+sellerID+"/products", nil, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// GetSellerProduct fetches one listing verified to belong to the seller
// (admin only).
func (c *Client) GetSellerProduct(ctx context.Context, sellerID, productID string) (*model.Listing, error) {
	var listing model.Listing
	if err := c.do(ctx, http.MethodGet, "/admin/sellers/"+sellerID+"/products/"+productID, nil, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}
