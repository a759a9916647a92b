package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/booknest/booknest-server/internal/domain"
)

type mockBookRepo struct {
	nextID int
	books  map[string]*domain.Book
}

func newMockBookRepo() *mockBookRepo {
	return &mockBookRepo{books: make(map[string]*domain.Book)}
}

func (m *mockBookRepo) Create(_ context.Context, sellerID string, req *domain.CreateBookRequest) (*domain.Book, error) {
	m.nextID++
	b := &domain.Book{
		ID:          fmt.Sprintf("b-%d", m.nextID),
		SellerID:    sellerID,
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		CreatedAt:   time.Now(),
	}
	m.books[b.ID] = b
	return b, nil
}

func (m *mockBookRepo) FindByID(_ context.Context, id string) (*domain.Book, error) {
	return m.books[id], nil
}

func (m *mockBookRepo) List(_ context.Context, limit, offset int) ([]domain.Book, error) {
	var out []domain.Book
	for _, b := range m.books {
		out = append(out, *b)
	}
	return out, nil
}

func TestCreateAndGetBook(t *testing.T) {
	svc := NewBookService(newMockBookRepo())

	book, err := svc.CreateBook(context.Background(), "u-1", &domain.CreateBookRequest{
		Title:      "  Dune ",
		Author:     "Frank Herbert",
		PriceCents: 1299,
	})
	if err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	if book.Title != "Dune" {
		t.Errorf("title = %q, want trimmed Dune", book.Title)
	}
	if book.SellerID != "u-1" {
		t.Errorf("sellerID = %q, want u-1", book.SellerID)
	}

	got, err := svc.GetBook(context.Background(), book.ID)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.ID != book.ID {
		t.Error("fetched book does not match")
	}
}

func TestGetBookNotFound(t *testing.T) {
	svc := NewBookService(newMockBookRepo())

	_, err := svc.GetBook(context.Background(), "b-missing")
	if !errors.Is(err, domain.ErrBookNotFound) {
		t.Errorf("err = %v, want ErrBookNotFound", err)
	}
}

func TestCreateBookValidation(t *testing.T) {
	svc := NewBookService(newMockBookRepo())

	_, err := svc.CreateBook(context.Background(), "u-1", &domain.CreateBookRequest{Title: "", Author: "", PriceCents: 0})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	for _, field := range []string{"title", "author", "priceCents"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Errorf("missing field error for %s", field)
		}
	}
}
