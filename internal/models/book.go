package models

// DefaultStock is applied when a book is added without an explicit stock.
const DefaultStock = 10

type Book struct {
	ID     int64   `db:"id" json:"id"`
	Title  string  `db:"title" json:"title"`
	Author string  `db:"author" json:"author"`
	Price  float64 `db:"price" json:"price"`
	Stock  int     `db:"stock" json:"stock"`
}
