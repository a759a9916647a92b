package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/booknest/booknest-server/internal/domain"
	"github.com/booknest/booknest-server/internal/mailer"
	"github.com/booknest/booknest-server/internal/repository"
	"github.com/booknest/booknest-server/pkg/auth"
	"github.com/booknest/booknest-server/pkg/config"
	"github.com/booknest/booknest-server/pkg/events"
	"github.com/booknest/booknest-server/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	SendOTP(ctx context.Context, req *domain.SendOTPRequest) error
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error)
	GetCurrentUser(ctx context.Context, userID string) (*domain.UserInfo, error)
	ResolveGoogleIdentity(ctx context.Context, googleID, email, name string) (*domain.AuthResponse, error)
}

type authService struct {
	userRepo    repository.UserRepository
	rateLimiter repository.OTPRateLimiter
	mailer      mailer.Service
	publisher   events.Publisher
	config      *config.Config
}

func NewAuthService(
	userRepo repository.UserRepository,
	rateLimiter repository.OTPRateLimiter,
	mailer mailer.Service,
	publisher events.Publisher,
	config *config.Config,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		rateLimiter: rateLimiter,
		mailer:      mailer,
		publisher:   publisher,
		config:      config,
	}
}

// SendOTP creates or refreshes a provisional registration and mails a fresh
// code. Reissuing overwrites the previous code; a send failure leaves the
// persisted code in place so the caller can simply retry.
func (s *authService) SendOTP(ctx context.Context, req *domain.SendOTPRequest) error {
	req.Normalize()
	if err := domain.Validate(req); err != nil {
		return err
	}

	allowed, err := s.rateLimiter.Allow(ctx, req.Email, s.config.Auth.OTPMaxPerWindow, s.config.Auth.OTPWindow)
	if err != nil {
		logger.WarnContext(ctx, "OTP rate limit check failed", "error", err)
	}
	if !allowed {
		return domain.ErrOTPRateLimited
	}

	existing, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil && existing.IsEmailVerified {
		return domain.ErrAlreadyRegistered
	}

	code, err := generateOTPCode()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash verification code: %w", err)
	}

	expiry := time.Now().Add(s.config.Auth.OTPTTL)
	user, err := s.userRepo.UpsertPending(ctx, req.Email, req.Name, req.PhoneNumber, string(codeHash), expiry)
	if err != nil {
		return fmt.Errorf("failed to store pending registration: %w", err)
	}
	if user == nil {
		// Lost a race with a concurrent verification.
		return domain.ErrAlreadyRegistered
	}

	if err := s.mailer.SendOTPEmail(req.Email, req.Name, code); err != nil {
		logger.ErrorContext(ctx, "Failed to send verification code", "error", err, "email", req.Email)
		return domain.ErrDeliveryFailed
	}

	return nil
}

// Register completes a pending registration: checks the code, sets the
// password, flips the record to verified and active, and issues a token.
func (s *authService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error) {
	req.Normalize()
	if err := domain.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNoPendingRegistration
	}
	if user.IsEmailVerified {
		return nil, domain.ErrAlreadyVerified
	}
	if user.OTPCode == nil || user.OTPExpiry == nil {
		return nil, domain.ErrNoOTPIssued
	}

	// Mismatch is reported before expiry.
	if bcrypt.CompareHashAndPassword([]byte(*user.OTPCode), []byte(req.OTP)) != nil {
		return nil, domain.ErrOTPMismatch
	}
	if isExpired(user.OTPExpiry) {
		return nil, domain.ErrOTPExpired
	}

	passwordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err = s.userRepo.CompleteRegistration(ctx, user.ID, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to complete registration: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNoPendingRegistration
	}

	s.publish(ctx, events.SubjectUserRegistered, user)

	return s.authResponse("Registration successful", user)
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	req.Normalize()
	if err := domain.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if user.PasswordHash != nil && !user.IsEmailVerified {
		return nil, domain.ErrEmailNotVerified
	}
	if user.PasswordHash == nil {
		// Google-only account; password login must be rejected explicitly.
		return nil, domain.ErrPasswordLoginUnavailable
	}

	valid, err := argon2id.ComparePasswordAndHash(req.Password, *user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, domain.ErrInvalidCredentials
	}

	// Checked after the password on purpose, matching existing behavior.
	if !user.Status {
		return nil, domain.ErrAccountDisabled
	}

	s.publish(ctx, events.SubjectUserLoggedIn, user)

	return s.authResponse("Login successful", user)
}

func (s *authService) GetCurrentUser(ctx context.Context, userID string) (*domain.UserInfo, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	return user.ToUserInfo(), nil
}

// ResolveGoogleIdentity maps a Google assertion to a local record: already
// linked by google id, else linked by email (marking it verified), else a new
// verified passwordless customer. Existing passwords and status are never
// touched.
func (s *authService) ResolveGoogleIdentity(ctx context.Context, googleID, email, name string) (*domain.AuthResponse, error) {
	if email == "" {
		return nil, domain.ErrMissingGoogleEmail
	}
	email = domain.NormalizeEmail(email)

	user, err := s.userRepo.FindByGoogleID(ctx, googleID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up google id: %w", err)
	}

	if user == nil {
		existing, err := s.userRepo.FindByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to look up email: %w", err)
		}

		if existing != nil {
			user, err = s.userRepo.LinkGoogle(ctx, existing.ID, googleID)
			if err != nil {
				return nil, fmt.Errorf("failed to link google account: %w", err)
			}
		} else {
			user, err = s.userRepo.CreateGoogleUser(ctx, googleID, email, name)
			if err != nil {
				return nil, fmt.Errorf("failed to create google user: %w", err)
			}
		}
		s.publish(ctx, events.SubjectUserGoogleLinked, user)
	}

	return s.authResponse("Login successful", user)
}

func (s *authService) authResponse(message string, user *domain.User) (*domain.AuthResponse, error) {
	token, err := auth.NewAccessToken(user.ID, user.Email, user.Role, s.config.Auth.JWTSecret, s.config.Auth.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	return &domain.AuthResponse{
		Message: message,
		Token:   token,
		User:    user.ToUserInfo(),
	}, nil
}

func (s *authService) publish(ctx context.Context, subject string, user *domain.User) {
	event := events.UserEvent{
		UserID:     user.ID,
		Email:      user.Email,
		Role:       user.Role,
		OccurredAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, subject, event); err != nil {
		logger.WarnContext(ctx, "Failed to publish event", "subject", subject, "error", err)
	}
}

// isExpired reports whether the OTP window has closed. A missing expiry counts
// as expired.
func isExpired(expiry *time.Time) bool {
	return expiry == nil || time.Now().After(*expiry)
}

func generateOTPCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
