package store

import "errors"

var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness constraint rejected the write.
	ErrConflict = errors.New("already exists")
	// ErrQuantityLimit indicates a cart line would exceed MaxCartQuantity.
	ErrQuantityLimit = errors.New("quantity limit exceeded")
)
