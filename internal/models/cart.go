package models

type CartItem struct {
	ID        int64  `db:"id" json:"id"`
	UserEmail string `db:"user_email" json:"user_email"`
	BookID    int64  `db:"book_id" json:"book_id"`
	Quantity  int    `db:"quantity" json:"quantity"`
}

// CartLine is a cart row joined with the book it references.
type CartLine struct {
	CartItem
	Title  string  `db:"title" json:"title"`
	Author string  `db:"author" json:"author"`
	Price  float64 `db:"price" json:"price"`
}
