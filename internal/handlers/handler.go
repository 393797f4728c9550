package handlers

import (
	"github.com/jmoiron/sqlx"
	"github.com/vaughan-dsouza/bookcart/internal/session"
	"github.com/vaughan-dsouza/bookcart/internal/store"
	"github.com/vaughan-dsouza/bookcart/internal/token"
)

type Handler struct {
	DB      *sqlx.DB
	Tokens  *token.Service
	Revoker session.Revoker
	Auth    *AuthHandler
	Books   *BookHandler
	Cart    *CartHandler
}

func NewHandler(db *sqlx.DB, tokens *token.Service, revoker session.Revoker) *Handler {
	if revoker == nil {
		revoker = session.Noop{}
	}
	return &Handler{
		DB:      db,
		Tokens:  tokens,
		Revoker: revoker,
		Auth:    NewAuthHandler(store.NewUserStore(db), tokens, revoker),
		Books:   NewBookHandler(store.NewBookStore(db)),
		Cart:    NewCartHandler(store.NewCartStore(db)),
	}
}
