package service

import (
	"context"
	"errors"
	"log"

	"goingmarry-api/internal/cache"
	"goingmarry-api/internal/model"
	"goingmarry-api/internal/repository"
	"goingmarry-api/pkg/apierror"
	"goingmarry-api/pkg/uid"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the work factor used for all stored password hashes.
const bcryptCost = 10

// SellerService handles registration, login, profile self-service and the
// admin-only seller directory.
type SellerService struct {
	sellers        repository.SellerRepository
	listings       repository.ListingRepository
	tokens         *TokenService
	cache          cache.Cache
	membershipCode string
}

// NewSellerService creates a new seller service.
func NewSellerService(
	sellers repository.SellerRepository,
	listings repository.ListingRepository,
	tokens *TokenService,
	c cache.Cache,
	membershipCode string,
) *SellerService {
	return &SellerService{
		sellers:        sellers,
		listings:       listings,
		tokens:         tokens,
		cache:          c,
		membershipCode: membershipCode,
	}
}

// invalidateListings drops the cached product list after a cascade touched
// listing rows.
func (s *SellerService) invalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, listingsCacheKey); err != nil {
		log.Printf("[SellerService] cache invalidation failed: %v", err)
	}
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	BoutiqueName   string `json:"boutiqueName"`
	Password       string `json:"password"`
	MembershipCode string `json:"membershipCode"`
}

// Register creates a seller account gated by the shared invitation code and
// returns a signed session token alongside the new seller.
func (s *SellerService) Register(ctx context.Context, in *RegisterInput) (string, *model.Seller, error) {
	if in.MembershipCode != s.membershipCode {
		return "", nil, apierror.Forbidden("Invalid membership code")
	}
	if in.Name == "" || in.Email == "" || in.BoutiqueName == "" || in.Password == "" {
		return "", nil, apierror.ValidationError("Missing required fields")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return "", nil, err
	}

	seller := &model.Seller{
		ID:           uid.New(),
		Name:         in.Name,
		Email:        in.Email,
		BoutiqueName: in.BoutiqueName,
		PasswordHash: string(hash),
		IsAdmin:      false,
	}

	if err := s.sellers.Create(ctx, seller); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return "", nil, apierror.Conflict("Email already registered")
		}
		return "", nil, err
	}

	token, err := s.tokens.Generate(seller)
	if err != nil {
		return "", nil, err
	}
	return token, seller, nil
}

// Login verifies credentials and returns a signed session token.
func (s *SellerService) Login(ctx context.Context, email, password string) (string, *model.Seller, error) {
	seller, err := s.sellers.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, apierror.BadRequest("User not found")
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(seller.PasswordHash), []byte(password)) != nil {
		return "", nil, apierror.BadRequest("Invalid password")
	}

	token, err := s.tokens.Generate(seller)
	if err != nil {
		return "", nil, err
	}
	return token, seller, nil
}

// UpdateProfile rewrites the caller's name and boutique name, cascading the
// boutique rename into every owned listing's seller label.
func (s *SellerService) UpdateProfile(ctx context.Context, identity model.Identity, name, boutiqueName string) (*model.Seller, error) {
	return s.updateSeller(ctx, identity.ID, name, boutiqueName, "User not found", true)
}

// UpdateSeller is the admin variant of UpdateProfile. Unlike the
// self-service path it accepts unchanged values and succeeds idempotently.
func (s *SellerService) UpdateSeller(ctx context.Context, id, name, boutiqueName string) (*model.Seller, error) {
	return s.updateSeller(ctx, id, name, boutiqueName, "Seller not found", false)
}

func (s *SellerService) updateSeller(ctx context.Context, id, name, boutiqueName, notFoundMsg string, rejectUnchanged bool) (*model.Seller, error) {
	if name == "" || boutiqueName == "" {
		return nil, apierror.ValidationError("Name and Boutique Name are required")
	}

	current, err := s.sellers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.NotFound(notFoundMsg)
		}
		return nil, err
	}
	if current.Name == name && current.BoutiqueName == boutiqueName {
		if rejectUnchanged {
			return nil, apierror.BadRequest("No changes detected to save.")
		}
		return current, nil
	}

	if err := s.sellers.UpdateProfile(ctx, id, name, boutiqueName); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.NotFound(notFoundMsg)
		}
		return nil, err
	}
	if current.BoutiqueName != boutiqueName {
		s.invalidateListings(ctx)
	}

	updated, err := s.sellers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteAccount removes the caller's account and every listing they own.
func (s *SellerService) DeleteAccount(ctx context.Context, identity model.Identity) error {
	if err := s.sellers.Delete(ctx, identity.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apierror.NotFound("User not found")
		}
		return err
	}
	s.invalidateListings(ctx)
	return nil
}

// ChangePassword re-hashes and stores a new password after verifying the
// current one.
func (s *SellerService) ChangePassword(ctx context.Context, identity model.Identity, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return apierror.ValidationError("Current and new passwords are required")
	}

	seller, err := s.sellers.GetByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apierror.NotFound("User not found")
		}
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(seller.PasswordHash), []byte(currentPassword)) != nil {
		return apierror.BadRequest("Incorrect current password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return err
	}
	return s.sellers.UpdatePassword(ctx, identity.ID, string(hash))
}

// ListSellers returns every seller. Password hashes never serialize.
func (s *SellerService) ListSellers(ctx context.Context) ([]model.Seller, error) {
	return s.sellers.List(ctx)
}

// GetSeller returns a single seller.
func (s *SellerService) GetSeller(ctx context.Context, id string) (*model.Seller, error) {
	seller, err := s.sellers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.NotFound("Seller not found")
		}
		return nil, err
	}
	return seller, nil
}

// DeleteSeller removes a seller and their listings. Admins cannot delete
// their own account through the directory.
func (s *SellerService) DeleteSeller(ctx context.Context, caller model.Identity, id string) error {
	if caller.ID == id {
		return apierror.BadRequest("Cannot delete your own admin account")
	}

	if err := s.sellers.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apierror.NotFound("Seller not found")
		}
		return err
	}
	s.invalidateListings(ctx)
	return nil
}

// ListSellerProducts returns the listings owned by a seller.
func (s *SellerService) ListSellerProducts(ctx context.Context, sellerID string) ([]model.Listing, error) {
	if _, err := s.GetSeller(ctx, sellerID); err != nil {
		return nil, err
	}
	return s.listings.ListBySeller(ctx, sellerID)
}

// GetSellerProduct returns one listing of a seller. A listing that exists
// but belongs to a different seller is reported as absent; the nested path
// is a consistency check, not a convenience lookup.
func (s *SellerService) GetSellerProduct(ctx context.Context, sellerID, productID string) (*model.Listing, error) {
	if _, err := s.GetSeller(ctx, sellerID); err != nil {
		return nil, err
	}

	l, err := s.listings.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.NotFound("Product not found")
		}
		return nil, err
	}
	if l.SellerID != sellerID {
		return nil, apierror.NotFound("Product not found for this seller")
	}
	return l, nil
}
