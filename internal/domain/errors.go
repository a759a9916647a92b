package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Registration / OTP failures.
var (
	ErrAlreadyRegistered     = errors.New("email is already registered")
	ErrDeliveryFailed        = errors.New("failed to send verification email")
	ErrNoPendingRegistration = errors.New("no registration found for this email")
	ErrAlreadyVerified       = errors.New("email is already verified")
	ErrNoOTPIssued           = errors.New("no verification code was issued for this email")
	ErrOTPMismatch           = errors.New("invalid verification code")
	ErrOTPExpired            = errors.New("verification code has expired")
	ErrOTPRateLimited        = errors.New("too many verification codes requested; try again later")
)

// Login failures. Unknown email and wrong password share one error so the
// response does not reveal which part was wrong.
var (
	ErrInvalidCredentials       = errors.New("incorrect email or password")
	ErrEmailNotVerified         = errors.New("email is not verified")
	ErrPasswordLoginUnavailable = errors.New("this account uses Google sign-in; password login is unavailable")
	ErrAccountDisabled          = errors.New("account is disabled")
)

// Token / identity failures.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUserNotFound       = errors.New("user not found")
	ErrMissingGoogleEmail = errors.New("google account did not provide an email address")
)

var ErrBookNotFound = errors.New("book not found")

// ValidationError carries per-field messages and is reported before any store
// mutation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
