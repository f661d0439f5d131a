package service

import "errors"

var (
	ErrEmailTaken         = errors.New("Email already registered")
	ErrBadAdminCode       = errors.New("Invalid admin code")
	ErrAdminQuotaExceeded = errors.New("Maximum admin accounts reached")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrWrongPortal        = errors.New("Please use admin login")
	ErrNotAdmin           = errors.New("Admin access required")
	ErrUserNotFound       = errors.New("User not found")
	ErrWrongPassword      = errors.New("Current password is incorrect")
	ErrSameEmail          = errors.New("New email is the same as the current email")
	ErrWeakPassword       = errors.New("Password is too short")

	ErrNoActiveRequest = errors.New("No active reset request for this email")
	ErrOTPExpired      = errors.New("Reset code has expired")
	ErrOTPMismatch     = errors.New("Invalid reset code")

	ErrInvalidDay        = errors.New("Day number must be between 1 and 120")
	ErrNotIntern         = errors.New("Progress can only be changed for interns")
	ErrChatNotConfigured = errors.New("Chatbot not configured")
)
