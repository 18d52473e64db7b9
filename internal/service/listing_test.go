package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"goingmarry-api/internal/model"
)

func TestCreateListingStampsOwnership(t *testing.T) {
	env := newTestEnv(t)
	owner := env.registerSeller(t, "Rowie", "rowie@example.com", "Rowie's Closet")

	l := env.createListing(t, owner, "Silk Gown", 1500)

	if l.SellerID != owner.ID {
		t.Errorf("sellerId = %q, want %q", l.SellerID, owner.ID)
	}
	if l.Seller != "Rowie's Closet" {
		t.Errorf("seller label = %q, want boutique name", l.Seller)
	}
	if l.Quantity != 1 {
		t.Errorf("quantity should default to 1, got %d", l.Quantity)
	}
	if l.CreatedAt == 0 {
		t.Error("createdAt should be stamped")
	}
	if l.ID == "" {
		t.Error("id should be generated")
	}
}

func TestCreateListingValidation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.registerSeller(t, "Rowie", "rowie@example.com", "Rowie's Closet")
	ctx := context.Background()

	price := model.Number(100)
	base := func() *ListingInput {
		return &ListingInput{
			Name:      "Gown",
			Price:     &price,
			Category:  "Fashion",
			Condition: "Brand New",
			ImageURL:  "https://example.com/gown.jpg",
		}
	}

	missing := base()
	missing.Name = ""
	_, err := env.listings.Create(ctx, owner, missing)
	wantAPIError(t, err, http.StatusBadRequest)

	bad := base()
	zero := model.Number(0)
	bad.Price = &zero
	_, err = env.listings.Create(ctx, owner, bad)
	wantAPIError(t, err, http.StatusBadRequest)

	cond := base()
	cond.Condition = "Mint"
	_, err = env.listings.Create(ctx, owner, cond)
	wantAPIError(t, err, http.StatusBadRequest)
}

func TestCreateListingRequiresRegisteredSeller(t *testing.T) {
	env := newTestEnv(t)

	// Structurally valid identity with no backing seller row.
	ghost := model.Identity{ID: "no-such-seller", Email: "ghost@example.com"}
	price := model.Number(100)
	_, err := env.listings.Create(context.Background(), ghost, &ListingInput{
		Name:      "Gown",
		Price:     &price,
		Category:  "Fashion",
		Condition: "Brand New",
		ImageURL:  "https://example.com/gown.jpg",
	})
	wantAPIError(t, err, http.StatusForbidden)
}

func TestCreateListingDuplicateName(t *testing.T) {
	env := newTestEnv(t)
	rowie := env.registerSeller(t, "Rowie", "rowie@example.com", "Rowie's Closet")
	larry := env.registerSeller(t, "Larry", "larry@example.com", "Larry's Attic")
	ctx := context.Background()

	env.createListing(t, rowie, "Silk Gown", 1500)

	price := model.Number(1500)
	_, err := env.listings.Create(ctx, rowie, &ListingInput{
		Name:      "Silk Gown",
		Price:     &price,
		Category:  "Fashion",
		Condition: "Brand New",
		ImageURL:  "https://example.com/gown.jpg",
	})
	wantAPIError(t, err, http.StatusConflict)

	// Same name under a different seller is fine.
	env.createListing(t, larry, "Silk Gown", 900)
}

func TestCreateListingUploadFailureAborts(t *testing.T) {
	env := newTestEnv(t)
	owner := env.registerSeller(t, "Rowie", "rowie@example.com", "Rowie's Closet")
	env.images.fail = true

	price := model.Number(1500)
	_, err := env.listings.Create(context.Background(), owner, &ListingInput{
		Name:      "Silk Gown",
		Price:     &price,
		Category:  "Fashion",
		Condition: "Brand New",
		ImageURL:  "data:image/jpeg;base64,AAAA",
	})
	wantAPIError(t, err, http.StatusBadGateway)

	// The failed upload aborts the whole mutation; nothing is persisted.
	var count int
	if err := env.db.Get(&count, "SELECT COUNT(*) FROM products"); err != nil {
		t.Fatalf("count products: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no persisted listings after upload failure, got %d", count)
	}
}

func TestUpdateListingCleansUpReplacedImage(t *testing.T) {
	env := newTestEnv(t)
	owner := env.registerSeller(t, "Rowie", "rowie@example.com", "Rowie's Closet")
	ctx := context.Background()

	l := env.createListing(t, owner, "Silk Gown", 1500)

	price := model.Number(1500)
	in := &ListingInput{
		Name:      "Silk Gown",
		Price:     &price,
		Category:  "Fashion",
		Condition: "Brand New",
		ImageURL:  "https://example.com/replacement.jpg",
	}
	if err := env.listings.Update(ctx, owner, l.ID, in); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// Cleanup of the superseded image runs in the background.
	deadline := time.Now().Add(2 * time.Second)
	for {
		removed := env.images.removedURLs()
		if len(removed) == 1 {
			if removed[0] != l.ImageURL {
				t.Errorf("removed %q, want the superseded URL %q", removed[0], l.ImageURL)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("superseded image was never removed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Re-submitting the same image must not trigger another removal.
	if err := env.listings.Update(ctx, owner, l.ID, in); err != nil {
		t.Fatalf("Update with unchanged image: %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	if removed := env.images.removedURLs(); len(removed) != 1 {
		t.Errorf("unchanged image triggered removal, total removals = %d", len(removed))
	}
}

func TestUpdateListingOwnership(t *testing.T) {
	env := newTestEnv(t)
	rowie := env.registerSeller(t, "Rowie", "rowie@example.com", "Rowie's Closet")
	larry := env.registerSeller(t, "Larry", "larry@example.com", "Larry's Attic")
	ctx := context.Background()

	l := env.createListing(t, rowie, "Silk Gown", 1500)

	price := model.Number(2000)
	in := &ListingInput{
		Name:      "Silk Gown",
		Price:     &price,
		Category:  "Fashion",
		Condition: "Like New (Worn Once)",
		ImageURL:  l.ImageURL,
	}

	err := env.listings.Update(ctx, larry, l.ID, in)
	wantAPIError(t, err, http.StatusForbidden)

	// Admins may edit anyone's listing.
	admin := model.Identity{ID: larry.ID, Email: larry.Email, IsAdmin: true}
	if err := env.listings.Update(ctx, admin, l.ID, in); err != nil {
		t.Fatalf("admin update: %v", err)
	}

	got, err := env.listings.Get(ctx, l.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Price != 2000 || got.Condition != "Like New (Worn Once)" {
		t.Errorf("update not applied: %+v", got)
	}
	if got.SellerID != rowie.ID {
		t.Errorf("ownership must not change on admin edit, sellerId = %q", got.SellerID)
	}
}

func TestPatchListing(t *testing.T) {
	env := newTestEnv(t)
	owner := env.registerSeller(t, "Rowie", "rowie@example.com", "Rowie's Closet")
	ctx := context.Background()

	l := env.createListing(t, owner, "Silk Gown", 1500)

	err := env.listings.Patch(ctx, owner, l.ID, &model.ListingPatch{})
	wantAPIError(t, err, http.StatusBadRequest)

	sold := true
	notes := "Hem taken up **2cm**"
	if err := env.listings.Patch(ctx, owner, l.ID, &model.ListingPatch{IsSold: &sold, Notes: &notes}); err != nil {
		t.Fatalf("Patch: %v", err)
	}

	got, _ := env.listings.Get(ctx, l.ID)
	if !got.IsSold || got.Notes != notes {
		t.Errorf("patch not applied: %+v", got)
	}
	if got.Name != "Silk Gown" || got.Price != 1500 {
		t.Errorf("untouched fields must survive a patch: %+v", got)
	}

	badQty := 0
	err = env.listings.Patch(ctx, owner, l.ID, &model.ListingPatch{Quantity: &badQty})
	wantAPIError(t, err, http.StatusBadRequest)
}

func TestDeleteListing(t *testing.T) {
	env := newTestEnv(t)
	rowie := env.registerSeller(t, "Rowie", "rowie@example.com", "Rowie's Closet")
	larry := env.registerSeller(t, "Larry", "larry@example.com", "Larry's Attic")
	ctx := context.Background()

	l := env.createListing(t, rowie, "Silk Gown", 1500)

	err := env.listings.Delete(ctx, larry, l.ID)
	wantAPIError(t, err, http.StatusForbidden)

	if err := env.listings.Delete(ctx, rowie, l.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_, err = env.listings.Get(ctx, l.ID)
	wantAPIError(t, err, http.StatusNotFound)
}

func TestRemoveImageResetsToDefault(t *testing.T) {
	env := newTestEnv(t)
	owner := env.registerSeller(t, "Rowie", "rowie@example.com", "Rowie's Closet")
	ctx := context.Background()

	l := env.createListing(t, owner, "Silk Gown", 1500)

	url, err := env.listings.RemoveImage(ctx, owner, l.ID)
	if err != nil {
		t.Fatalf("RemoveImage: %v", err)
	}
	if url != model.DefaultImageURL {
		t.Errorf("expected default placeholder, got %q", url)
	}
	if removed := env.images.removedURLs(); len(removed) != 1 {
		t.Errorf("expected one hosted-image removal, got %d", len(removed))
	}

	// Removing again fails: the listing already shows the placeholder.
	_, err = env.listings.RemoveImage(ctx, owner, l.ID)
	wantAPIError(t, err, http.StatusBadRequest)
}

func TestListNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	owner := env.registerSeller(t, "Rowie", "rowie@example.com", "Rowie's Closet")
	ctx := context.Background()

	a := env.createListing(t, owner, "First", 100)
	b := env.createListing(t, owner, "Second", 200)

	// Force distinct timestamps; UnixMilli can collide in a tight loop.
	env.db.MustExec("UPDATE products SET createdAt = 1 WHERE id = ?", a.ID)
	env.db.MustExec("UPDATE products SET createdAt = 2 WHERE id = ?", b.ID)

	listings, err := env.listings.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}
	if listings[0].ID != b.ID {
		t.Errorf("expected newest listing first, got %q", listings[0].Name)
	}
}
