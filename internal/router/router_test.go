package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"goingmarry-api/internal/cache"
	"goingmarry-api/internal/handler"
	"goingmarry-api/internal/middleware"
	"goingmarry-api/internal/repository"
	"goingmarry-api/internal/service"

	"github.com/jmoiron/sqlx"

	_ "modernc.org/sqlite"
)

// passthroughImages resolves hosted URLs as-is; no uploads in these tests.
type passthroughImages = service.PassthroughImageService

// newTestServer wires the full stack against an in-memory database.
func newTestServer(t *testing.T) (*httptest.Server, *sqlx.DB) {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := repository.EnsureSchema(db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	listingRepo := repository.NewSQLListingRepository(db)
	sellerRepo := repository.NewSQLSellerRepository(db)
	c := cache.NewMemoryCache()
	t.Cleanup(func() { c.Close() })

	tokens := service.NewTokenService("test-secret")
	listings := service.NewListingService(listingRepo, sellerRepo, passthroughImages{}, c, time.Minute)
	sellers := service.NewSellerService(sellerRepo, listingRepo, tokens, c, "OPEN-SESAME")

	mux := New(Config{
		HealthHandler:  handler.NewHealthHandler(db),
		ProductHandler: handler.NewProductHandler(listings),
		AuthHandler:    handler.NewAuthHandler(sellers),
		AdminHandler:   handler.NewAdminHandler(sellers),
		AIHandler:      handler.NewAIHandler(nil),
		AuthMiddleware: middleware.NewAuthMiddleware(tokens),
		MaxBodyBytes:   1 << 20,
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, db
}

// call performs a JSON request and decodes the response body.
func call(t *testing.T, srv *httptest.Server, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, srv.URL+path, reqBody)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return resp, decoded
}

// register creates a seller and returns its token and id.
func register(t *testing.T, srv *httptest.Server, name, email, boutique string) (token, id string) {
	t.Helper()

	resp, body := call(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":           name,
		"email":          email,
		"boutiqueName":   boutique,
		"password":       "hunter22",
		"membershipCode": "OPEN-SESAME",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d: %v", email, resp.StatusCode, body)
	}

	data := body["data"].(map[string]interface{})
	seller := data["seller"].(map[string]interface{})
	return data["token"].(string), seller["id"].(string)
}

// createProduct creates a listing and returns its id.
func createProduct(t *testing.T, srv *httptest.Server, token, name string) string {
	t.Helper()

	resp, body := call(t, srv, http.MethodPost, "/api/products", token, map[string]interface{}{
		"name":      name,
		"price":     1500,
		"category":  "Fashion",
		"condition": "Brand New",
		"imageUrl":  "https://example.com/" + name + ".jpg",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create product: status %d: %v", resp.StatusCode, body)
	}
	return body["data"].(map[string]interface{})["id"].(string)
}

func TestPublicBrowseAndCacheHeader(t *testing.T) {
	srv, _ := newTestServer(t)
	token, _ := register(t, srv, "Rowie", "rowie@example.com", "Rowie's Closet")
	createProduct(t, srv, token, "Silk Gown")

	resp, body := call(t, srv, http.MethodGet, "/api/products", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); !strings.Contains(cc, "stale-while-revalidate") {
		t.Errorf("Cache-Control = %q", cc)
	}

	data := body["data"].([]interface{})
	if len(data) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(data))
	}
	if raw, _ := json.Marshal(body); strings.Contains(string(raw), "password") {
		t.Error("password material leaked into a public response")
	}
}

func TestMutationsRequireToken(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := call(t, srv, http.MethodPost, "/api/products", "", map[string]string{"name": "x"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token: status %d, want 401", resp.StatusCode)
	}

	resp, _ = call(t, srv, http.MethodPost, "/api/products", "garbage-token", map[string]string{"name": "x"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad token: status %d, want 401", resp.StatusCode)
	}
}

func TestOwnershipEnforcedAcrossSellers(t *testing.T) {
	srv, db := newTestServer(t)
	rowieToken, _ := register(t, srv, "Rowie", "rowie@example.com", "Rowie's Closet")
	larryToken, larryID := register(t, srv, "Larry", "larry@example.com", "Larry's Attic")

	productID := createProduct(t, srv, rowieToken, "Silk Gown")

	update := map[string]interface{}{
		"name":      "Silk Gown",
		"price":     9999,
		"category":  "Fashion",
		"condition": "As Is",
		"imageUrl":  "https://example.com/gown.jpg",
	}

	resp, _ := call(t, srv, http.MethodPut, "/api/products/"+productID, larryToken, update)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("non-owner update: status %d, want 403", resp.StatusCode)
	}

	resp, _ = call(t, srv, http.MethodDelete, "/api/products/"+productID, larryToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("non-owner delete: status %d, want 403", resp.StatusCode)
	}

	// Promote Larry and retry: admins may edit anyone's listing. The stale
	// token predates the flag, so a fresh login is needed.
	db.MustExec(db.Rebind("UPDATE sellers SET isAdmin = 1 WHERE id = ?"), larryID)
	resp, body := call(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "larry@example.com", "password": "hunter22",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("re-login: status %d", resp.StatusCode)
	}
	adminToken := body["data"].(map[string]interface{})["token"].(string)

	resp, _ = call(t, srv, http.MethodPut, "/api/products/"+productID, adminToken, update)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("admin update: status %d, want 200", resp.StatusCode)
	}
}

func TestQuantityCapScenarioEndToEnd(t *testing.T) {
	srv, _ := newTestServer(t)
	token, _ := register(t, srv, "Rowie", "rowie@example.com", "Rowie's Closet")
	createProduct(t, srv, token, "Silk Gown")

	// Creating the same listing again under the same seller conflicts.
	resp, _ := call(t, srv, http.MethodPost, "/api/products", token, map[string]interface{}{
		"name":      "Silk Gown",
		"price":     1500,
		"category":  "Fashion",
		"condition": "Brand New",
		"imageUrl":  "https://example.com/gown.jpg",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate create: status %d, want 409", resp.StatusCode)
	}
}

func TestAdminDirectoryGate(t *testing.T) {
	srv, db := newTestServer(t)
	sellerToken, sellerID := register(t, srv, "Rowie", "rowie@example.com", "Rowie's Closet")
	_, adminID := register(t, srv, "Admin", "admin@example.com", "HQ")

	resp, _ := call(t, srv, http.MethodGet, "/api/admin/sellers", sellerToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("non-admin: status %d, want 403", resp.StatusCode)
	}

	db.MustExec(db.Rebind("UPDATE sellers SET isAdmin = 1 WHERE id = ?"), adminID)
	resp, body := call(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "admin@example.com", "password": "hunter22",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin login: status %d", resp.StatusCode)
	}
	adminToken := body["data"].(map[string]interface{})["token"].(string)

	resp, body = call(t, srv, http.MethodGet, "/api/admin/sellers", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin list: status %d", resp.StatusCode)
	}
	if raw, _ := json.Marshal(body); strings.Contains(string(raw), "hunter22") ||
		strings.Contains(strings.ToLower(string(raw)), `"password"`) {
		t.Error("password material leaked from the directory")
	}

	resp, _ = call(t, srv, http.MethodDelete, "/api/admin/sellers/"+adminID, adminToken, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("self delete: status %d, want 400", resp.StatusCode)
	}

	resp, _ = call(t, srv, http.MethodDelete, "/api/admin/sellers/"+sellerID, adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("delete seller: status %d, want 200", resp.StatusCode)
	}
}

func TestRegisterInvalidMembershipCode(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := call(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":           "Mallory",
		"email":          "mallory@example.com",
		"boutiqueName":   "Mallory's",
		"password":       "hunter22",
		"membershipCode": "WRONG",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status %d, want 403", resp.StatusCode)
	}
}

func TestAnalyzeUnconfigured(t *testing.T) {
	srv, _ := newTestServer(t)
	token, _ := register(t, srv, "Rowie", "rowie@example.com", "Rowie's Closet")

	resp, _ := call(t, srv, http.MethodPost, "/api/ai/analyze", token, map[string]string{
		"imageData": "base64,AAAA",
	})
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status %d, want 502", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := call(t, srv, http.MethodGet, "/api/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if status := body["data"].(map[string]interface{})["status"]; status != "healthy" {
		t.Errorf("status = %v", status)
	}
}
