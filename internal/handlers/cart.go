package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/vaughan-dsouza/bookcart/internal/store"
	"github.com/vaughan-dsouza/bookcart/internal/utils"
)

type CartHandler struct {
	Cart *store.CartStore
}

func NewCartHandler(cart *store.CartStore) *CartHandler {
	return &CartHandler{Cart: cart}
}

type addToCartReq struct {
	BookID   int64 `json:"book_id"`
	Quantity int   `json:"quantity"`
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	claims, ok := utils.ClaimsFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	var body addToCartReq
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}
	if body.BookID <= 0 {
		utils.JSONError(w, http.StatusBadRequest, "book_id is required")
		return
	}
	if body.Quantity < 0 || body.Quantity > store.MaxCartQuantity {
		utils.JSONError(w, http.StatusBadRequest, fmt.Sprintf("quantity must be between 0 and %d", store.MaxCartQuantity))
		return
	}

	// zero quantity means the default of one
	err := h.Cart.AddOrMerge(r.Context(), claims.Email, body.BookID, body.Quantity)
	if errors.Is(err, store.ErrQuantityLimit) {
		utils.JSONError(w, http.StatusBadRequest, fmt.Sprintf("a cart line holds at most %d copies", store.MaxCartQuantity))
		return
	}
	if err != nil {
		utils.Logger(r.Context()).Error("add to cart", "book_id", body.BookID, "err", err)
		utils.JSONError(w, http.StatusInternalServerError, "Error adding to cart")
		return
	}
	utils.Success(w)
}

func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := utils.ClaimsFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	lines, err := h.Cart.List(r.Context(), claims.Email)
	if err != nil {
		utils.Logger(r.Context()).Error("list cart", "err", err)
		utils.JSONError(w, http.StatusInternalServerError, "Error retrieving cart")
		return
	}
	utils.JSON(w, http.StatusOK, lines)
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	claims, ok := utils.ClaimsFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	bookID, ok := pathID(w, r, "book_id")
	if !ok {
		return
	}

	if err := h.Cart.Remove(r.Context(), claims.Email, bookID); err != nil {
		utils.Logger(r.Context()).Error("remove from cart", "book_id", bookID, "err", err)
		utils.JSONError(w, http.StatusInternalServerError, "Error removing from cart")
		return
	}
	utils.Success(w)
}
