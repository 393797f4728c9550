package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/vaughan-dsouza/bookcart/internal/models"
)

// SeedBooks is the catalog inserted on first boot.
var SeedBooks = []models.Book{
	{Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", Price: 9.99, Stock: 10},
	{Title: "1984", Author: "George Orwell", Price: 12.99, Stock: 10},
	{Title: "Pride and Prejudice", Author: "Jane Austen", Price: 7.99, Stock: 10},
	{Title: "To Kill a Mockingbird", Author: "Harper Lee", Price: 8.99, Stock: 10},
	{Title: "The Catcher in the Rye", Author: "J.D. Salinger", Price: 10.49, Stock: 10},
	{Title: "Brave New World", Author: "Aldous Huxley", Price: 11.99, Stock: 10},
	{Title: "Lord of the Flies", Author: "William Golding", Price: 9.49, Stock: 10},
	{Title: "The Hobbit", Author: "J.R.R. Tolkien", Price: 14.99, Stock: 10},
	{Title: "Fahrenheit 451", Author: "Ray Bradbury", Price: 8.79, Stock: 10},
	{Title: "Jane Eyre", Author: "Charlotte Brontë", Price: 7.49, Stock: 10},
	{Title: "Animal Farm", Author: "George Orwell", Price: 6.99, Stock: 10},
	{Title: "Wuthering Heights", Author: "Emily Brontë", Price: 7.29, Stock: 10},
	{Title: "The Grapes of Wrath", Author: "John Steinbeck", Price: 12.49, Stock: 10},
	{Title: "Moby-Dick", Author: "Herman Melville", Price: 10.99, Stock: 10},
	{Title: "Catch-22", Author: "Joseph Heller", Price: 11.49, Stock: 10},
	{Title: "The Bell Jar", Author: "Sylvia Plath", Price: 9.99, Stock: 10},
	{Title: "Slaughterhouse-Five", Author: "Kurt Vonnegut", Price: 10.29, Stock: 10},
	{Title: "A Tale of Two Cities", Author: "Charles Dickens", Price: 8.49, Stock: 10},
	{Title: "The Odyssey", Author: "Homer", Price: 9.79, Stock: 10},
	{Title: "Frankenstein", Author: "Mary Shelley", Price: 6.99, Stock: 10},
}

// Seed inserts SeedBooks when the books table is empty. It reports whether
// any rows were written.
func Seed(ctx context.Context, db *sqlx.DB) (bool, error) {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM books`); err != nil {
		return false, fmt.Errorf("db: count books: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	_, err := db.NamedExecContext(ctx, `
		INSERT INTO books (title, author, price, stock)
		VALUES (:title, :author, :price, :stock)
	`, SeedBooks)
	if err != nil {
		return false, fmt.Errorf("db: seed books: %w", err)
	}
	return true, nil
}
