package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/booknest/booknest-server/internal/domain"
	"github.com/go-chi/chi/v5"
)

func (h *Handlers) ListBooks(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	books, err := h.bookService.ListBooks(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if books == nil {
		books = []domain.Book{}
	}

	writeJSON(w, http.StatusOK, books)
}

func (h *Handlers) GetBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.bookService.GetBook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, book)
}

// CreateBook lists a book for the authenticated seller.
func (h *Handlers) CreateBook(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req domain.CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	book, err := h.bookService.CreateBook(r.Context(), claims.Sub, &req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, book)
}
