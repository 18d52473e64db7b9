package repository

import (
	"context"

	"goingmarry-api/internal/model"
)

// ListingRepository defines listing data access methods.
type ListingRepository interface {
	// List returns all listings, newest first.
	List(ctx context.Context) ([]model.Listing, error)

	// Get retrieves a listing by id. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*model.Listing, error)

	// ListBySeller returns all listings owned by a seller.
	ListBySeller(ctx context.Context, sellerID string) ([]model.Listing, error)

	// ExistsOwnedByName reports whether the seller already owns a listing
	// with the given name. Used for the duplicate check at creation time.
	ExistsOwnedByName(ctx context.Context, sellerID, name string) (bool, error)

	// Create persists a new listing.
	Create(ctx context.Context, l *model.Listing) error

	// Update replaces all mutable fields of a listing.
	Update(ctx context.Context, l *model.Listing) error

	// Patch applies the non-nil fields of the patch to a listing.
	Patch(ctx context.Context, id string, p *model.ListingPatch) error

	// SetImageURL rewrites only the image reference of a listing.
	SetImageURL(ctx context.Context, id, imageURL string) error

	// Delete removes a listing permanently. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id string) error
}

// SellerRepository defines seller data access methods, including the
// cascading operations that keep listings consistent with their owner.
type SellerRepository interface {
	// List returns all sellers.
	List(ctx context.Context) ([]model.Seller, error)

	// GetByID retrieves a seller by id. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*model.Seller, error)

	// GetByEmail retrieves a seller by login email. Returns ErrNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*model.Seller, error)

	// Create persists a new seller. Returns ErrDuplicateEmail when the email
	// is already registered.
	Create(ctx context.Context, s *model.Seller) error

	// UpdateProfile rewrites name and boutique name. When the boutique name
	// changes, every owned listing's seller label is relabeled in the same
	// transaction.
	UpdateProfile(ctx context.Context, id, name, boutiqueName string) error

	// UpdatePassword stores a new password hash.
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// Delete removes a seller and all of their listings. Listings go first so
	// they can never outlive their owner.
	Delete(ctx context.Context, id string) error
}
