package repository

import (
	"context"
	"time"

	"github.com/booknest/booknest-server/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookRepository interface {
	Create(ctx context.Context, sellerID string, req *domain.CreateBookRequest) (*domain.Book, error)
	FindByID(ctx context.Context, id string) (*domain.Book, error)
	List(ctx context.Context, limit, offset int) ([]domain.Book, error)
}

type bookRepository struct {
	pool *pgxpool.Pool
}

func NewBookRepository(pool *pgxpool.Pool) BookRepository {
	return &bookRepository{pool: pool}
}

const bookCols = `id, seller_id, title, author, description, price_cents, created_at, updated_at`

func scanBook(row pgx.Row) (*domain.Book, error) {
	var b domain.Book
	err := row.Scan(&b.ID, &b.SellerID, &b.Title, &b.Author, &b.Description, &b.PriceCents, &b.CreatedAt, &b.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookRepository) Create(ctx context.Context, sellerID string, req *domain.CreateBookRequest) (*domain.Book, error) {
	const q = `
		INSERT INTO books (seller_id, title, author, description, price_cents)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + bookCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanBook(r.pool.QueryRow(ctx, q, sellerID, req.Title, req.Author, req.Description, req.PriceCents))
}

func (r *bookRepository) FindByID(ctx context.Context, id string) (*domain.Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanBook(r.pool.QueryRow(ctx, q, id))
}

func (r *bookRepository) List(ctx context.Context, limit, offset int) ([]domain.Book, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const q = `
		SELECT ` + bookCols + `
		FROM books
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(&b.ID, &b.SellerID, &b.Title, &b.Author, &b.Description, &b.PriceCents, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		books = append(books, b)
	}

	return books, rows.Err()
}
