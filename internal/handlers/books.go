package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vaughan-dsouza/bookcart/internal/models"
	"github.com/vaughan-dsouza/bookcart/internal/store"
	"github.com/vaughan-dsouza/bookcart/internal/utils"
)

type BookHandler struct {
	Books *store.BookStore
}

func NewBookHandler(books *store.BookStore) *BookHandler {
	return &BookHandler{Books: books}
}

// ---------------------- LIST ----------------------

func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.Books.List(r.Context())
	if err != nil {
		utils.Logger(r.Context()).Error("list books", "err", err)
		utils.JSONError(w, http.StatusInternalServerError, "Error retrieving books")
		return
	}
	utils.JSON(w, http.StatusOK, books)
}

// ---------------------- GET ONE ----------------------

func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	book, err := h.Books.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSONError(w, http.StatusNotFound, "Book not found")
		return
	}
	if err != nil {
		utils.Logger(r.Context()).Error("get book", "id", id, "err", err)
		utils.JSONError(w, http.StatusInternalServerError, "Error retrieving book")
		return
	}
	utils.JSON(w, http.StatusOK, book)
}

// ---------------------- SEARCH ----------------------

func (h *BookHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	books, err := h.Books.Search(r.Context(), query)
	if err != nil {
		utils.Logger(r.Context()).Error("search books", "query", query, "err", err)
		utils.JSONError(w, http.StatusInternalServerError, "Error searching books")
		return
	}
	utils.JSON(w, http.StatusOK, books)
}

// ---------------------- ADD (admin) ----------------------

type addBookReq struct {
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Price  float64 `json:"price"`
	Stock  *int    `json:"stock"`
}

func (h *BookHandler) Add(w http.ResponseWriter, r *http.Request) {
	var body addBookReq
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}

	book := models.Book{
		Title:  strings.TrimSpace(body.Title),
		Author: strings.TrimSpace(body.Author),
		Price:  body.Price,
		Stock:  models.DefaultStock,
	}
	if body.Stock != nil {
		book.Stock = *body.Stock
	}

	if book.Title == "" || book.Author == "" {
		utils.JSONError(w, http.StatusBadRequest, "Title and author are required")
		return
	}
	if book.Price < 0 || book.Stock < 0 {
		utils.JSONError(w, http.StatusBadRequest, "Price and stock must not be negative")
		return
	}

	if err := h.Books.Add(r.Context(), book); err != nil {
		utils.Logger(r.Context()).Error("add book", "err", err)
		utils.JSONError(w, http.StatusInternalServerError, "Error adding book")
		return
	}
	utils.Success(w)
}

// ---------------------- DELETE (admin) ----------------------

func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Books.Delete(r.Context(), id); err != nil {
		utils.Logger(r.Context()).Error("delete book", "id", id, "err", err)
		utils.JSONError(w, http.StatusInternalServerError, "Error deleting book")
		return
	}
	utils.Success(w)
}

// pathID parses an integer URL parameter, writing 400 when it is not one.
// Ids that match no row are left to the idempotent store operations.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return id, true
}
