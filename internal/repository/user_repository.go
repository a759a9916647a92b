package repository

import (
	"context"
	"time"

	"github.com/booknest/booknest-server/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*domain.User, error)
	// UpsertPending creates or refreshes the provisional record an OTP issue
	// writes. Verified records are left untouched; the caller gets no row back.
	UpsertPending(ctx context.Context, email, name, phone, otpCodeHash string, otpExpiry time.Time) (*domain.User, error)
	// CompleteRegistration upgrades a pending record in place: sets the
	// password hash, marks the email verified and the account active, and
	// clears the OTP pair.
	CompleteRegistration(ctx context.Context, id, passwordHash string) (*domain.User, error)
	// LinkGoogle attaches an external id to an existing record and marks the
	// email verified. Password and status are never touched here.
	LinkGoogle(ctx context.Context, id, googleID string) (*domain.User, error)
	CreateGoogleUser(ctx context.Context, googleID, email, name string) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userCols = `id, email, google_id, name, phone_number, password_hash, is_email_verified, otp_code, otp_expires_at, role, status, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.GoogleID, &u.Name, &u.PhoneNumber, &u.PasswordHash,
		&u.IsEmailVerified, &u.OTPCode, &u.OTPExpiry, &u.Role, &u.Status,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE email = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanUser(r.pool.QueryRow(ctx, q, domain.NormalizeEmail(email)))
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanUser(r.pool.QueryRow(ctx, q, id))
}

func (r *userRepository) FindByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE google_id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanUser(r.pool.QueryRow(ctx, q, googleID))
}

func (r *userRepository) UpsertPending(ctx context.Context, email, name, phone, otpCodeHash string, otpExpiry time.Time) (*domain.User, error) {
	// The unique constraint on email is the only guard against two racing
	// issues; last write wins on the OTP pair, which is acceptable because
	// only the latest code is meant to validate.
	const q = `
		INSERT INTO users (email, name, phone_number, otp_code, otp_expires_at, role, status, is_email_verified)
		VALUES ($1, $2, $3, $4, $5, 'customer', false, false)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			phone_number = EXCLUDED.phone_number,
			otp_code = EXCLUDED.otp_code,
			otp_expires_at = EXCLUDED.otp_expires_at,
			updated_at = now()
		WHERE users.is_email_verified = false
		RETURNING ` + userCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanUser(r.pool.QueryRow(ctx, q, domain.NormalizeEmail(email), name, phone, otpCodeHash, otpExpiry))
}

func (r *userRepository) CompleteRegistration(ctx context.Context, id, passwordHash string) (*domain.User, error) {
	const q = `
		UPDATE users
		SET
			password_hash = $2,
			is_email_verified = true,
			status = true,
			otp_code = NULL,
			otp_expires_at = NULL,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + userCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanUser(r.pool.QueryRow(ctx, q, id, passwordHash))
}

func (r *userRepository) LinkGoogle(ctx context.Context, id, googleID string) (*domain.User, error) {
	const q = `
		UPDATE users
		SET
			google_id = $2,
			is_email_verified = true,
			otp_code = NULL,
			otp_expires_at = NULL,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + userCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanUser(r.pool.QueryRow(ctx, q, id, googleID))
}

func (r *userRepository) CreateGoogleUser(ctx context.Context, googleID, email, name string) (*domain.User, error) {
	const q = `
		INSERT INTO users (email, google_id, name, role, status, is_email_verified)
		VALUES ($1, $2, $3, 'customer', true, true)
		RETURNING ` + userCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanUser(r.pool.QueryRow(ctx, q, domain.NormalizeEmail(email), googleID, name))
}
