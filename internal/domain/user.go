package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// User is the sole persisted identity record. A row is created either
// provisionally by the OTP issue step (unverified, no password) or fully by
// the Google bridge (verified, no password), and upgraded in place; rows are
// never deleted by the auth flow.
type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	GoogleID        *string    `json:"-"`
	Name            string     `json:"name"`
	PhoneNumber     string     `json:"phoneNumber"`
	PasswordHash    *string    `json:"-"`
	IsEmailVerified bool       `json:"isEmailVerified"`
	OTPCode         *string    `json:"-"`
	OTPExpiry       *time.Time `json:"-"`
	Role            string     `json:"role"`
	Status          bool       `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"-"`
}

// UserInfo is the sanitized projection returned to clients. It never carries
// the password hash or OTP fields.
type UserInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	Role        string    `json:"role"`
	Status      bool      `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (u *User) ToUserInfo() *UserInfo {
	return &UserInfo{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		Status:      u.Status,
		CreatedAt:   u.CreatedAt,
	}
}

const (
	RoleCustomer = "customer"
	RoleSeller   = "seller"
	RoleAdmin    = "admin"
)

var validRoles = map[string]bool{
	RoleCustomer: true,
	RoleSeller:   true,
	RoleAdmin:    true,
}

func IsValidRole(role string) bool {
	return validRoles[role]
}

// NormalizeEmail lower-cases and trims an email. Every read and write of the
// users table goes through this so lookups stay case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type SendOTPRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Name        string `json:"name" validate:"required,min=2,max=100"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,min=7,max=20"`
}

func (r *SendOTPRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	OTP      string `json:"otp" validate:"required,len=6,numeric"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

func (r *RegisterRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
	r.OTP = strings.TrimSpace(r.OTP)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
}

type AuthResponse struct {
	Message string    `json:"message"`
	Token   string    `json:"token"`
	User    *UserInfo `json:"user"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs struct-tag validation and flattens the result into per-field
// messages.
func Validate(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["request"] = "invalid request"
		return &ValidationError{Fields: fields}
	}
	for _, fe := range verrs {
		fields[fieldName(fe)] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return "request"
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "numeric":
		return "must contain only digits"
	default:
		return "is invalid"
	}
}
