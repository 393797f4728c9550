package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/vaughan-dsouza/bookcart/internal/db"
	"github.com/vaughan-dsouza/bookcart/internal/models"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()
	conn, err := db.Open(ctx, db.DriverSQLite, filepath.Join(t.TempDir(), "test.db"), db.Pool{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.Migrate(ctx, conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := db.Seed(ctx, conn); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return conn
}

// cartItems returns raw cart rows, including rows whose book is gone.
func cartItems(ctx context.Context, cart *CartStore, userEmail string) ([]models.CartItem, error) {
	items := []models.CartItem{}
	err := cart.DB.SelectContext(ctx, &items, cart.DB.Rebind(`
		SELECT id, user_email, book_id, quantity FROM cart WHERE user_email = ? ORDER BY id
	`), userEmail)
	return items, err
}

func TestUserCreateRejectsDuplicateEmail(t *testing.T) {
	users := NewUserStore(newTestDB(t))
	ctx := context.Background()

	if err := users.Create(ctx, "a@example.com", "hash", models.RoleUser); err != nil {
		t.Fatalf("first create: %v", err)
	}
	err := users.Create(ctx, "a@example.com", "other", models.RoleAdmin)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	u, err := users.FindByEmail(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if u.Password != "hash" || u.Role != models.RoleUser {
		t.Fatalf("duplicate create overwrote user: %+v", u)
	}
}

func TestUserEmailIsCaseSensitive(t *testing.T) {
	users := NewUserStore(newTestDB(t))
	ctx := context.Background()

	if err := users.Create(ctx, "a@example.com", "hash", models.RoleUser); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := users.Create(ctx, "A@example.com", "hash", models.RoleUser); err != nil {
		t.Fatalf("different case should be a different user: %v", err)
	}
	if _, err := users.FindByEmail(ctx, "A@EXAMPLE.COM"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserCreateConcurrentSingleWinner(t *testing.T) {
	users := NewUserStore(newTestDB(t))
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- users.Create(ctx, "race@example.com", "hash", models.RoleUser)
		}()
	}
	wg.Wait()
	close(errs)

	var ok, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflicts != n-1 {
		t.Fatalf("expected 1 success and %d conflicts, got %d and %d", n-1, ok, conflicts)
	}

	var count int
	if err := users.DB.Get(&count, `SELECT COUNT(*) FROM users WHERE email = ?`, "race@example.com"); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one stored user, got %d", count)
	}
}

func TestFindByEmailNotFound(t *testing.T) {
	users := NewUserStore(newTestDB(t))
	if _, err := users.FindByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSeedIsAppliedOnce(t *testing.T) {
	conn := newTestDB(t)
	seeded, err := db.Seed(context.Background(), conn)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if seeded {
		t.Fatalf("second seed should be a no-op")
	}
	books, err := NewBookStore(conn).List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(books) != len(db.SeedBooks) {
		t.Fatalf("expected %d books, got %d", len(db.SeedBooks), len(books))
	}
}

func TestSearch(t *testing.T) {
	books := NewBookStore(newTestDB(t))
	ctx := context.Background()

	tests := []struct {
		query string
		want  []string
	}{
		{"orwell", []string{"1984", "Animal Farm"}},
		{"ORWELL", []string{"1984", "Animal Farm"}},
		{"hobbit", []string{"The Hobbit"}},
		{"%", nil},
		{"_", nil},
		{"no such book", nil},
	}
	for _, tt := range tests {
		got, err := books.Search(ctx, tt.query)
		if err != nil {
			t.Fatalf("search %q: %v", tt.query, err)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("search %q: expected %d results, got %d (%+v)", tt.query, len(tt.want), len(got), got)
		}
		for i, b := range got {
			if b.Title != tt.want[i] {
				t.Fatalf("search %q: result %d = %q, want %q", tt.query, i, b.Title, tt.want[i])
			}
		}
	}
}

func TestSearchEmptyMatchesAll(t *testing.T) {
	books := NewBookStore(newTestDB(t))
	got, err := books.Search(context.Background(), "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != len(db.SeedBooks) {
		t.Fatalf("expected %d books, got %d", len(db.SeedBooks), len(got))
	}
}

func TestBookAddGetDelete(t *testing.T) {
	books := NewBookStore(newTestDB(t))
	ctx := context.Background()

	if err := books.Add(ctx, models.Book{Title: "Dune", Author: "Frank Herbert", Price: 15.5, Stock: 3}); err != nil {
		t.Fatalf("add: %v", err)
	}
	found, err := books.Search(ctx, "dune")
	if err != nil || len(found) != 1 {
		t.Fatalf("expected one Dune, got %v (%v)", found, err)
	}
	id := found[0].ID

	b, err := books.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if b.Stock != 3 || b.Price != 15.5 {
		t.Fatalf("unexpected book: %+v", b)
	}

	if err := books.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := books.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := books.Delete(ctx, id); err != nil {
		t.Fatalf("deleting a missing book should succeed: %v", err)
	}
}

func TestAddOrMergeSumsQuantity(t *testing.T) {
	cart := NewCartStore(newTestDB(t))
	ctx := context.Background()

	if err := cart.AddOrMerge(ctx, "u@example.com", 2, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := cart.AddOrMerge(ctx, "u@example.com", 2, 3); err != nil {
		t.Fatalf("merge: %v", err)
	}

	items, err := cartItems(ctx, cart, "u@example.com")
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one row, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", items[0].Quantity)
	}
}

func TestAddOrMergeDefaultsToOne(t *testing.T) {
	cart := NewCartStore(newTestDB(t))
	ctx := context.Background()

	if err := cart.AddOrMerge(ctx, "u@example.com", 1, 0); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := cart.AddOrMerge(ctx, "u@example.com", 1, 0); err != nil {
		t.Fatalf("merge: %v", err)
	}
	items, _ := cartItems(ctx, cart, "u@example.com")
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("expected one row with quantity 2, got %+v", items)
	}
}

func TestAddOrMergeConcurrentKeepsSingleRow(t *testing.T) {
	cart := NewCartStore(newTestDB(t))
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- cart.AddOrMerge(ctx, "race@example.com", 7, 1)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent add: %v", err)
		}
	}

	items, err := cartItems(ctx, cart, "race@example.com")
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one row, got %d", len(items))
	}
	if items[0].Quantity != n {
		t.Fatalf("expected quantity %d, got %d", n, items[0].Quantity)
	}
}

func TestAddOrMergeQuantityLimit(t *testing.T) {
	cart := NewCartStore(newTestDB(t))
	ctx := context.Background()

	if err := cart.AddOrMerge(ctx, "u@example.com", 1, MaxCartQuantity+1); !errors.Is(err, ErrQuantityLimit) {
		t.Fatalf("oversized add: expected ErrQuantityLimit, got %v", err)
	}
	if err := cart.AddOrMerge(ctx, "u@example.com", 1, MaxCartQuantity-1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := cart.AddOrMerge(ctx, "u@example.com", 1, 1); err != nil {
		t.Fatalf("merge up to the limit: %v", err)
	}
	if err := cart.AddOrMerge(ctx, "u@example.com", 1, 1); !errors.Is(err, ErrQuantityLimit) {
		t.Fatalf("merge past the limit: expected ErrQuantityLimit, got %v", err)
	}

	items, err := cartItems(ctx, cart, "u@example.com")
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != MaxCartQuantity {
		t.Fatalf("expected one row at the limit, got %+v", items)
	}
	if _, err := cart.List(ctx, "u@example.com"); err != nil {
		t.Fatalf("list after rejected merge: %v", err)
	}
}

func TestCartIsScopedByEmail(t *testing.T) {
	cart := NewCartStore(newTestDB(t))
	ctx := context.Background()

	_ = cart.AddOrMerge(ctx, "a@example.com", 1, 1)
	_ = cart.AddOrMerge(ctx, "b@example.com", 1, 4)

	lines, err := cart.List(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lines) != 1 || lines[0].Quantity != 1 {
		t.Fatalf("unexpected cart for a: %+v", lines)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	cart := NewCartStore(newTestDB(t))
	ctx := context.Background()

	if err := cart.AddOrMerge(ctx, "u@example.com", 3, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := cart.Remove(ctx, "u@example.com", 99); err != nil {
		t.Fatalf("removing an absent pair should succeed: %v", err)
	}
	items, _ := cartItems(ctx, cart, "u@example.com")
	if len(items) != 1 {
		t.Fatalf("cart changed after no-op remove: %+v", items)
	}

	if err := cart.Remove(ctx, "u@example.com", 3); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := cart.Remove(ctx, "u@example.com", 3); err != nil {
		t.Fatalf("second remove: %v", err)
	}
	items, _ = cartItems(ctx, cart, "u@example.com")
	if len(items) != 0 {
		t.Fatalf("expected empty cart, got %+v", items)
	}
}

func TestListJoinsAndExcludesDeletedBooks(t *testing.T) {
	conn := newTestDB(t)
	cart := NewCartStore(conn)
	books := NewBookStore(conn)
	ctx := context.Background()

	orwell, err := books.Search(ctx, "orwell")
	if err != nil || len(orwell) != 2 {
		t.Fatalf("search: %v %v", orwell, err)
	}
	for _, b := range orwell {
		if err := cart.AddOrMerge(ctx, "u@example.com", b.ID, 1); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	lines, err := cart.List(ctx, "u@example.com")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Title != "1984" || lines[0].Author != "George Orwell" || lines[0].Price != 12.99 {
		t.Fatalf("join fields not populated: %+v", lines[0])
	}

	if err := books.Delete(ctx, orwell[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	lines, err = cart.List(ctx, "u@example.com")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lines) != 1 || lines[0].BookID != orwell[1].ID {
		t.Fatalf("expected only the surviving book, got %+v", lines)
	}

	items, _ := cartItems(ctx, cart, "u@example.com")
	if len(items) != 2 {
		t.Fatalf("orphaned row should remain stored, got %d rows", len(items))
	}
}
