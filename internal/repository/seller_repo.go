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

const sellerColumns = `id, name, email, boutiqueName AS "boutiqueName", password, isAdmin AS "isAdmin"`

// SQLSellerRepository implements SellerRepository on any of the supported
// SQL backends.
type SQLSellerRepository struct {
	db *sqlx.DB
}

// NewSQLSellerRepository creates a seller repository over an open database.
func NewSQLSellerRepository(db *sqlx.DB) *SQLSellerRepository {
	return &SQLSellerRepository{db: db}
}

// List returns all sellers.
func (r *SQLSellerRepository) List(ctx context.Context) ([]model.Seller, error) {
	query := fmt.Sprintf(`SELECT %s FROM sellers`, sellerColumns)

	sellers := []model.Seller{}
	if err := r.db.SelectContext(ctx, &sellers, query); err != nil {
		return nil, fmt.Errorf("failed to list sellers: %w", err)
	}
	return sellers, nil
}

// GetByID retrieves a seller by id.
func (r *SQLSellerRepository) GetByID(ctx context.Context, id string) (*model.Seller, error) {
	query := r.db.Rebind(fmt.Sprintf(`SELECT %s FROM sellers WHERE id = ?`, sellerColumns))
	return r.getOne(ctx, query, id)
}

// GetByEmail retrieves a seller by login email.
func (r *SQLSellerRepository) GetByEmail(ctx context.Context, email string) (*model.Seller, error) {
	query := r.db.Rebind(fmt.Sprintf(`SELECT %s FROM sellers WHERE email = ?`, sellerColumns))
	return r.getOne(ctx, query, email)
}

func (r *SQLSellerRepository) getOne(ctx context.Context, query string, arg interface{}) (*model.Seller, error) {
	var s model.Seller
	if err := r.db.GetContext(ctx, &s, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get seller: %w", err)
	}
	return &s, nil
}

// Create persists a new seller. The UNIQUE constraint on email is the
// authority on duplicates; constraint violations surface as ErrDuplicateEmail.
func (r *SQLSellerRepository) Create(ctx context.Context, s *model.Seller) error {
	query := r.db.Rebind(`INSERT INTO sellers (id, name, email, boutiqueName, password, isAdmin)
		VALUES (?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Name, s.Email, s.BoutiqueName, s.PasswordHash, boolToInt(s.IsAdmin))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert seller: %w", err)
	}
	return nil
}

// UpdateProfile rewrites name and boutique name. The relabel of owned
// listings happens inside the same transaction, so readers never observe a
// renamed seller alongside stale listing labels.
func (r *SQLSellerRepository) UpdateProfile(ctx context.Context, id, name, boutiqueName string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current string
	get := r.db.Rebind(`SELECT boutiqueName AS "boutiqueName" FROM sellers WHERE id = ?`)
	if err := tx.QueryRowContext(ctx, get, id).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to read seller: %w", err)
	}

	update := r.db.Rebind(`UPDATE sellers SET name = ?, boutiqueName = ? WHERE id = ?`)
	if _, err := tx.ExecContext(ctx, update, name, boutiqueName, id); err != nil {
		return fmt.Errorf("failed to update seller: %w", err)
	}

	if current != boutiqueName {
		cascade := r.db.Rebind(`UPDATE products SET seller = ? WHERE sellerId = ?`)
		if _, err := tx.ExecContext(ctx, cascade, boutiqueName, id); err != nil {
			return fmt.Errorf("failed to relabel listings: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rename: %w", err)
	}
	return nil
}

// UpdatePassword stores a new password hash.
func (r *SQLSellerRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := r.db.Rebind(`UPDATE sellers SET password = ? WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return requireRow(res)
}

// Delete removes a seller and all of their listings. Listings are deleted
// first so a listing can never reference a deleted owner.
func (r *SQLSellerRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	delListings := r.db.Rebind(`DELETE FROM products WHERE sellerId = ?`)
	if _, err := tx.ExecContext(ctx, delListings, id); err != nil {
		return fmt.Errorf("failed to delete seller listings: %w", err)
	}

	delSeller := r.db.Rebind(`DELETE FROM sellers WHERE id = ?`)
	res, err := tx.ExecContext(ctx, delSeller, id)
	if err != nil {
		return fmt.Errorf("failed to delete seller: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seller delete: %w", err)
	}
	return nil
}

// isUniqueViolation matches unique-constraint errors across the supported
// drivers without depending on driver-specific error types.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

// Ensure SQLSellerRepository implements SellerRepository
var _ SellerRepository = (*SQLSellerRepository)(nil)
