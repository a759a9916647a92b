package service

import (
	"context"
	"fmt"

	"github.com/booknest/booknest-server/internal/domain"
	"github.com/booknest/booknest-server/internal/repository"
)

type BookService interface {
	CreateBook(ctx context.Context, sellerID string, req *domain.CreateBookRequest) (*domain.Book, error)
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	ListBooks(ctx context.Context, limit, offset int) ([]domain.Book, error)
}

type bookService struct {
	bookRepo repository.BookRepository
}

func NewBookService(bookRepo repository.BookRepository) BookService {
	return &bookService{bookRepo: bookRepo}
}

func (s *bookService) CreateBook(ctx context.Context, sellerID string, req *domain.CreateBookRequest) (*domain.Book, error) {
	req.Normalize()
	if err := domain.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.bookRepo.Create(ctx, sellerID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}
	return book, nil
}

func (s *bookService) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	book, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	if book == nil {
		return nil, domain.ErrBookNotFound
	}
	return book, nil
}

func (s *bookService) ListBooks(ctx context.Context, limit, offset int) ([]domain.Book, error) {
	books, err := s.bookRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}
