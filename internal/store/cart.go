package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/vaughan-dsouza/bookcart/internal/models"
)

// MaxCartQuantity bounds a single cart line.
const MaxCartQuantity = 10000

// CartStore keeps per-user line items, at most one row per (user_email, book_id).
// Book ids are not checked against the catalog and stock is never consumed.
type CartStore struct {
	DB *sqlx.DB
}

func NewCartStore(db *sqlx.DB) *CartStore {
	return &CartStore{DB: db}
}

// AddOrMerge inserts the pair or adds quantity to the existing row in a
// single upsert statement. A line never grows past MaxCartQuantity; such an
// add leaves the row unchanged and returns ErrQuantityLimit.
func (s *CartStore) AddOrMerge(ctx context.Context, userEmail string, bookID int64, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}
	if quantity > MaxCartQuantity {
		return ErrQuantityLimit
	}
	res, err := s.DB.ExecContext(ctx, s.DB.Rebind(`
		INSERT INTO cart (user_email, book_id, quantity)
		VALUES (?, ?, ?)
		ON CONFLICT (user_email, book_id)
		DO UPDATE SET quantity = cart.quantity + excluded.quantity
		WHERE cart.quantity + excluded.quantity <= ?
	`), userEmail, bookID, quantity, MaxCartQuantity)
	if err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	if n == 0 {
		return ErrQuantityLimit
	}
	return nil
}

// List returns the user's cart joined with the catalog. Rows whose book was
// deleted drop out of the inner join.
func (s *CartStore) List(ctx context.Context, userEmail string) ([]models.CartLine, error) {
	lines := []models.CartLine{}
	err := s.DB.SelectContext(ctx, &lines, s.DB.Rebind(`
		SELECT cart.id, cart.user_email, cart.book_id, cart.quantity,
		       books.title, books.author, books.price
		FROM cart
		JOIN books ON cart.book_id = books.id
		WHERE cart.user_email = ?
		ORDER BY cart.id
	`), userEmail)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	return lines, nil
}

// Remove deletes the pair if present; removing an absent pair succeeds.
func (s *CartStore) Remove(ctx context.Context, userEmail string, bookID int64) error {
	_, err := s.DB.ExecContext(ctx, s.DB.Rebind(`
		DELETE FROM cart WHERE user_email = ? AND book_id = ?
	`), userEmail, bookID)
	if err != nil {
		return fmt.Errorf("remove from cart: %w", err)
	}
	return nil
}
