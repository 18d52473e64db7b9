package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"goingmarry-api/internal/model"

	"github.com/jmoiron/sqlx"
)

// SQLListingRepository implements ListingRepository on any of the supported
// SQL backends. Column aliases keep the scanned row shape identical across
// backends that fold identifiers to lowercase.
type SQLListingRepository struct {
	db *sqlx.DB
}

// NewSQLListingRepository creates a listing repository over an open database.
func NewSQLListingRepository(db *sqlx.DB) *SQLListingRepository {
	return &SQLListingRepository{db: db}
}

func (r *SQLListingRepository) selectColumns() string {
	return fmt.Sprintf(`id, name, description, price, category,
		%s AS "condition", imageUrl AS "imageUrl", seller,
		sellerId AS "sellerId", createdAt AS "createdAt",
		isSold AS "isSold", quantity, COALESCE(notes, '') AS notes`, condCol(r.db))
}

// List returns all listings ordered by creation time, newest first.
func (r *SQLListingRepository) List(ctx context.Context) ([]model.Listing, error) {
	query := fmt.Sprintf(`SELECT %s FROM products ORDER BY createdAt DESC`, r.selectColumns())

	listings := []model.Listing{}
	if err := r.db.SelectContext(ctx, &listings, query); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return listings, nil
}

// Get retrieves a single listing by id.
func (r *SQLListingRepository) Get(ctx context.Context, id string) (*model.Listing, error) {
	query := r.db.Rebind(fmt.Sprintf(`SELECT %s FROM products WHERE id = ?`, r.selectColumns()))

	var l model.Listing
	if err := r.db.GetContext(ctx, &l, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &l, nil
}

// ListBySeller returns all listings owned by the given seller.
func (r *SQLListingRepository) ListBySeller(ctx context.Context, sellerID string) ([]model.Listing, error) {
	query := r.db.Rebind(fmt.Sprintf(
		`SELECT %s FROM products WHERE sellerId = ? ORDER BY createdAt DESC`, r.selectColumns()))

	listings := []model.Listing{}
	if err := r.db.SelectContext(ctx, &listings, query, sellerID); err != nil {
		return nil, fmt.Errorf("failed to list seller products: %w", err)
	}
	return listings, nil
}

// ExistsOwnedByName reports whether the seller already owns a listing with
// the given name. The check and the subsequent insert are not coordinated,
// so two concurrent creates can both pass; accepted weak guarantee.
func (r *SQLListingRepository) ExistsOwnedByName(ctx context.Context, sellerID, name string) (bool, error) {
	query := r.db.Rebind(`SELECT COUNT(*) FROM products WHERE name = ? AND sellerId = ?`)

	var count int
	if err := r.db.QueryRowContext(ctx, query, name, sellerID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check duplicate listing: %w", err)
	}
	return count > 0, nil
}

// Create persists a new listing.
func (r *SQLListingRepository) Create(ctx context.Context, l *model.Listing) error {
	query := r.db.Rebind(fmt.Sprintf(`INSERT INTO products
		(id, name, description, price, category, %s, imageUrl, seller, sellerId, createdAt, isSold, quantity, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, condCol(r.db)))

	_, err := r.db.ExecContext(ctx, query,
		l.ID, l.Name, l.Description, l.Price, l.Category, l.Condition,
		l.ImageURL, l.Seller, l.SellerID, l.CreatedAt, boolToInt(l.IsSold), l.Quantity, l.Notes)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// Update replaces all mutable fields of a listing. The seller label and
// owner reference are deliberately excluded; only the rename cascade may
// rewrite the label.
func (r *SQLListingRepository) Update(ctx context.Context, l *model.Listing) error {
	query := r.db.Rebind(fmt.Sprintf(`UPDATE products SET
		name = ?, description = ?, price = ?, category = ?, %s = ?,
		imageUrl = ?, isSold = ?, quantity = ?, notes = ?
		WHERE id = ?`, condCol(r.db)))

	res, err := r.db.ExecContext(ctx, query,
		l.Name, l.Description, l.Price, l.Category, l.Condition,
		l.ImageURL, boolToInt(l.IsSold), l.Quantity, l.Notes, l.ID)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return requireRow(res)
}

// Patch applies only the non-nil fields of the patch, building the SET
// clause from the fixed allow-list the patch type encodes.
func (r *SQLListingRepository) Patch(ctx context.Context, id string, p *model.ListingPatch) error {
	sets := []string{}
	args := []interface{}{}

	add := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.Price != nil {
		add("price", float64(*p.Price))
	}
	if p.Category != nil {
		add("category", *p.Category)
	}
	if p.Condition != nil {
		add(condCol(r.db), *p.Condition)
	}
	if p.ImageURL != nil {
		add("imageUrl", *p.ImageURL)
	}
	if p.IsSold != nil {
		add("isSold", boolToInt(*p.IsSold))
	}
	if p.Quantity != nil {
		add("quantity", *p.Quantity)
	}
	if p.Notes != nil {
		add("notes", *p.Notes)
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := r.db.Rebind(fmt.Sprintf(`UPDATE products SET %s WHERE id = ?`, strings.Join(sets, ", ")))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to patch product: %w", err)
	}
	return requireRow(res)
}

// SetImageURL rewrites only the image reference.
func (r *SQLListingRepository) SetImageURL(ctx context.Context, id, imageURL string) error {
	query := r.db.Rebind(`UPDATE products SET imageUrl = ? WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query, imageURL, id)
	if err != nil {
		return fmt.Errorf("failed to set product image: %w", err)
	}
	return requireRow(res)
}

// Delete removes a listing permanently.
func (r *SQLListingRepository) Delete(ctx context.Context, id string) error {
	query := r.db.Rebind(`DELETE FROM products WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return requireRow(res)
}

// requireRow converts a zero-row write into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Ensure SQLListingRepository implements ListingRepository
var _ ListingRepository = (*SQLListingRepository)(nil)
