package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/vaughan-dsouza/bookcart/internal/models"
)

// BookStore is the catalog. Role checks happen in the handlers.
type BookStore struct {
	DB *sqlx.DB
}

func NewBookStore(db *sqlx.DB) *BookStore {
	return &BookStore{DB: db}
}

func (s *BookStore) List(ctx context.Context) ([]models.Book, error) {
	books := []models.Book{}
	err := s.DB.SelectContext(ctx, &books, `SELECT id, title, author, price, stock FROM books ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// Search matches query as a literal, case-insensitive substring of title or
// author. An empty query matches every book.
func (s *BookStore) Search(ctx context.Context, query string) ([]models.Book, error) {
	pattern := "%" + escapeLike(query) + "%"
	books := []models.Book{}
	err := s.DB.SelectContext(ctx, &books, s.DB.Rebind(`
		SELECT id, title, author, price, stock
		FROM books
		WHERE LOWER(title) LIKE LOWER(?) ESCAPE '\'
		   OR LOWER(author) LIKE LOWER(?) ESCAPE '\'
		ORDER BY id
	`), pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return books, nil
}

func (s *BookStore) Get(ctx context.Context, id int64) (models.Book, error) {
	var b models.Book
	err := s.DB.GetContext(ctx, &b, s.DB.Rebind(`
		SELECT id, title, author, price, stock FROM books WHERE id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Book{}, ErrNotFound
	}
	if err != nil {
		return models.Book{}, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

func (s *BookStore) Add(ctx context.Context, b models.Book) error {
	_, err := s.DB.ExecContext(ctx, s.DB.Rebind(`
		INSERT INTO books (title, author, price, stock)
		VALUES (?, ?, ?, ?)
	`), b.Title, b.Author, b.Price, b.Stock)
	if err != nil {
		return fmt.Errorf("add book: %w", err)
	}
	return nil
}

// Delete removes the book if present. Missing ids are not an error.
func (s *BookStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.DB.ExecContext(ctx, s.DB.Rebind(`DELETE FROM books WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
