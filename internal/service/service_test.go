package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"goingmarry-api/internal/cache"
	"goingmarry-api/internal/model"
	"goingmarry-api/internal/repository"
	"goingmarry-api/pkg/apierror"

	"github.com/jmoiron/sqlx"

	_ "modernc.org/sqlite"
)

// newTestDB opens a throwaway in-memory database with the full schema.
func newTestDB(t *testing.T) *sqlx.DB {
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
	return db
}

// fakeImageService records calls and resolves embedded payloads to a
// predictable hosted URL. Removals can arrive from cleanup goroutines, so
// access goes through the mutex.
type fakeImageService struct {
	mu       sync.Mutex
	resolved []string
	removed  []string
	fail     bool
}

func (f *fakeImageService) Resolve(ctx context.Context, rawImage string) (string, error) {
	if f.fail {
		return "", apierror.UploadFailed("Failed to upload image")
	}
	f.mu.Lock()
	f.resolved = append(f.resolved, rawImage)
	f.mu.Unlock()
	if rawImage == "" || len(rawImage) >= 4 && rawImage[:4] == "http" {
		return rawImage, nil
	}
	return "https://res.cloudinary.com/test/image/upload/v1/goingmarry_products/fake.jpg", nil
}

func (f *fakeImageService) Remove(ctx context.Context, hostedURL string) {
	f.mu.Lock()
	f.removed = append(f.removed, hostedURL)
	f.mu.Unlock()
}

func (f *fakeImageService) removedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.removed...)
}

// testEnv wires real repositories against an in-memory database.
type testEnv struct {
	db       *sqlx.DB
	listings *ListingService
	sellers  *SellerService
	tokens   *TokenService
	images   *fakeImageService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	listingRepo := repository.NewSQLListingRepository(db)
	sellerRepo := repository.NewSQLSellerRepository(db)
	c := cache.NewMemoryCache()
	t.Cleanup(func() { c.Close() })

	tokens := NewTokenService("test-secret")
	images := &fakeImageService{}

	return &testEnv{
		db:       db,
		listings: NewListingService(listingRepo, sellerRepo, images, c, time.Minute),
		sellers:  NewSellerService(sellerRepo, listingRepo, tokens, c, "OPEN-SESAME"),
		tokens:   tokens,
		images:   images,
	}
}

// registerSeller creates a seller through the real registration path and
// returns its identity.
func (e *testEnv) registerSeller(t *testing.T, name, email, boutique string) model.Identity {
	t.Helper()

	_, seller, err := e.sellers.Register(context.Background(), &RegisterInput{
		Name:           name,
		Email:          email,
		BoutiqueName:   boutique,
		Password:       "hunter22",
		MembershipCode: "OPEN-SESAME",
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return model.Identity{ID: seller.ID, Email: seller.Email, IsAdmin: seller.IsAdmin}
}

// createListing inserts a listing owned by the identity.
func (e *testEnv) createListing(t *testing.T, owner model.Identity, name string, price float64) *model.Listing {
	t.Helper()

	p := model.Number(price)
	l, err := e.listings.Create(context.Background(), owner, &ListingInput{
		Name:      name,
		Price:     &p,
		Category:  "Fashion",
		Condition: "Brand New",
		ImageURL:  "https://example.com/" + name + ".jpg",
	})
	if err != nil {
		t.Fatalf("create listing %q: %v", name, err)
	}
	return l
}

// wantAPIError asserts err is an API error with the given status code.
func wantAPIError(t *testing.T, err error, status int) *apierror.Error {
	t.Helper()

	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *apierror.Error, got %T: %v", err, err)
	}
	if apiErr.StatusCode != status {
		t.Fatalf("expected status %d, got %d (%s)", status, apiErr.StatusCode, apiErr.Message)
	}
	return apiErr
}
