package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"goingmarry-api/internal/cache"
	"goingmarry-api/internal/model"
	"goingmarry-api/internal/repository"
	"goingmarry-api/pkg/apierror"
	"goingmarry-api/pkg/uid"
)

// listingsCacheKey is the cache key for the full product list.
const listingsCacheKey = "products:all"

// ListingService handles listing business logic: the public catalog and the
// seller-gated CRUD operations with their ownership rules.
type ListingService struct {
	listings repository.ListingRepository
	sellers  repository.SellerRepository
	images   ImageService
	cache    cache.Cache
	cacheTTL time.Duration

	refreshing atomic.Bool
}

// NewListingService creates a new listing service.
func NewListingService(
	listings repository.ListingRepository,
	sellers repository.SellerRepository,
	images ImageService,
	c cache.Cache,
	cacheTTL time.Duration,
) *ListingService {
	return &ListingService{
		listings: listings,
		sellers:  sellers,
		images:   images,
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

// cachedListings wraps the cached product list with its build time so stale
// entries can be refreshed in the background.
type cachedListings struct {
	FetchedAt time.Time       `json:"fetched_at"`
	Listings  []model.Listing `json:"listings"`
}

// List returns all listings, newest first. Results are cached for a short
// window; a hit past half the TTL serves the cached copy and triggers a
// background rebuild, so readers rarely wait on the database.
func (s *ListingService) List(ctx context.Context) ([]model.Listing, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, listingsCacheKey); err == nil {
			var cached cachedListings
			if err := json.Unmarshal(data, &cached); err == nil {
				if time.Since(cached.FetchedAt) > s.cacheTTL/2 {
					s.refreshInBackground()
				}
				return cached.Listings, nil
			}
		}
	}
	return s.fetchAndCache(ctx)
}

func (s *ListingService) fetchAndCache(ctx context.Context) ([]model.Listing, error) {
	listings, err := s.listings.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		data, err := json.Marshal(cachedListings{FetchedAt: time.Now(), Listings: listings})
		if err == nil {
			if err := s.cache.Set(ctx, listingsCacheKey, data, s.cacheTTL); err != nil {
				log.Printf("[ListingService] cache set failed: %v", err)
			}
		}
	}
	return listings, nil
}

func (s *ListingService) refreshInBackground() {
	if !s.refreshing.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer s.refreshing.Store(false)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := s.fetchAndCache(ctx); err != nil {
			log.Printf("[ListingService] background refresh failed: %v", err)
		}
	}()
}

func (s *ListingService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, listingsCacheKey); err != nil {
		log.Printf("[ListingService] cache invalidation failed: %v", err)
	}
}

// Get returns a single listing.
func (s *ListingService) Get(ctx context.Context, id string) (*model.Listing, error) {
	l, err := s.listings.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.NotFound("Product not found")
		}
		return nil, err
	}
	return l, nil
}

// ListingInput is the payload for create and full-update operations.
// Price arrives as a number or a numeric string; either way the positive
// rule is enforced before anything is persisted.
type ListingInput struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Price       *model.Number `json:"price"`
	Category    string        `json:"category"`
	Condition   string        `json:"condition"`
	ImageURL    string        `json:"imageUrl"`
	IsSold      bool          `json:"isSold"`
	Quantity    int           `json:"quantity"`
	Notes       string        `json:"notes"`
}

// Create validates and persists a new listing owned by the caller.
func (s *ListingService) Create(ctx context.Context, identity model.Identity, in *ListingInput) (*model.Listing, error) {
	if in.Name == "" || in.Price == nil || in.Category == "" || in.Condition == "" || in.ImageURL == "" {
		return nil, apierror.ValidationError("Missing required fields")
	}
	if !in.Price.Positive() {
		return nil, apierror.BadRequest("Invalid price value")
	}
	if !model.ValidCondition(in.Condition) {
		return nil, apierror.ValidationError("Unknown condition label")
	}

	// A structurally valid token is not enough: the seller row must exist.
	seller, err := s.sellers.GetByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Printf("[ListingService] unregistered seller attempt: %s", identity.ID)
			return nil, apierror.Forbidden("Seller must be registered to add products")
		}
		return nil, err
	}

	exists, err := s.listings.ExistsOwnedByName(ctx, identity.ID, in.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		log.Printf("[ListingService] duplicate listing denied: %q seller=%s", in.Name, identity.ID)
		return nil, apierror.Conflict("A listing with the same details already exists")
	}

	imageURL, err := s.images.Resolve(ctx, in.ImageURL)
	if err != nil {
		return nil, err
	}

	quantity := in.Quantity
	if quantity < 1 {
		quantity = 1
	}
	id := in.ID
	if id == "" {
		id = uid.New()
	}

	l := &model.Listing{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Price:       float64(*in.Price),
		Category:    in.Category,
		Condition:   in.Condition,
		ImageURL:    imageURL,
		Seller:      seller.BoutiqueName,
		SellerID:    identity.ID,
		CreatedAt:   time.Now().UnixMilli(),
		IsSold:      in.IsSold,
		Quantity:    quantity,
		Notes:       in.Notes,
	}

	if err := s.listings.Create(ctx, l); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return l, nil
}

// Update replaces a listing's mutable fields. When the resolved image
// differs from the stored one and the old image is a managed upload, the old
// upload is deleted asynchronously; a cleanup failure never fails the update.
func (s *ListingService) Update(ctx context.Context, identity model.Identity, id string, in *ListingInput) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !identity.Authorized(existing.SellerID) {
		return apierror.Forbidden("Not authorized to edit this product")
	}

	if in.Name == "" || in.Price == nil {
		return apierror.ValidationError("Name and Price are required")
	}
	if !in.Price.Positive() {
		return apierror.BadRequest("Invalid price value")
	}
	if in.Condition != "" && !model.ValidCondition(in.Condition) {
		return apierror.ValidationError("Unknown condition label")
	}

	imageURL, err := s.images.Resolve(ctx, in.ImageURL)
	if err != nil {
		return err
	}

	if existing.ImageURL != "" && existing.ImageURL != imageURL {
		old := existing.ImageURL
		go func() {
			cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			s.images.Remove(cleanupCtx, old)
		}()
	}

	quantity := in.Quantity
	if quantity < 1 {
		quantity = 1
	}

	updated := &model.Listing{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Price:       float64(*in.Price),
		Category:    in.Category,
		Condition:   in.Condition,
		ImageURL:    imageURL,
		IsSold:      in.IsSold,
		Quantity:    quantity,
		Notes:       in.Notes,
	}

	if err := s.listings.Update(ctx, updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apierror.NotFound("Product not found")
		}
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Patch applies a partial update against the fixed field allow-list.
func (s *ListingService) Patch(ctx context.Context, identity model.Identity, id string, p *model.ListingPatch) error {
	if p == nil || p.IsEmpty() {
		return apierror.ValidationError("No updates provided")
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !identity.Authorized(existing.SellerID) {
		return apierror.Forbidden("Not authorized to update this product")
	}

	if p.Price != nil && !p.Price.Positive() {
		return apierror.BadRequest("Invalid price value")
	}
	if p.Quantity != nil && *p.Quantity < 1 {
		return apierror.BadRequest("Invalid quantity value")
	}
	if p.Condition != nil && !model.ValidCondition(*p.Condition) {
		return apierror.ValidationError("Unknown condition label")
	}

	if err := s.listings.Patch(ctx, id, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apierror.NotFound("Product not found")
		}
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Delete removes a listing permanently.
func (s *ListingService) Delete(ctx context.Context, identity model.Identity, id string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !identity.Authorized(existing.SellerID) {
		return apierror.Forbidden("Not authorized to delete this product")
	}

	if err := s.listings.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apierror.NotFound("Product not found")
		}
		return err
	}
	s.invalidate(ctx)
	return nil
}

// RemoveImage deletes a listing's custom image and resets the reference to
// the default placeholder, which is returned so clients can update their
// view without a refetch.
func (s *ListingService) RemoveImage(ctx context.Context, identity model.Identity, id string) (string, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !identity.Authorized(existing.SellerID) {
		return "", apierror.Forbidden("Not authorized to update this product")
	}
	if existing.ImageURL == "" || existing.ImageURL == model.DefaultImageURL {
		return "", apierror.BadRequest("Product currently has no image")
	}

	s.images.Remove(ctx, existing.ImageURL)

	if err := s.listings.SetImageURL(ctx, id, model.DefaultImageURL); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apierror.NotFound("Product not found")
		}
		return "", err
	}
	s.invalidate(ctx)
	return model.DefaultImageURL, nil
}
