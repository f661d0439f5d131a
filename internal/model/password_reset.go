package model

import "time"

// PasswordReset is the single live one-time code for an email address.
// A new request overwrites the previous record.
type PasswordReset struct {
	Email     string    `json:"email" bson:"email"`
	OTP       string    `json:"-" bson:"otp"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
	Used      bool      `json:"used" bson:"used"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// IsExpired reports whether now is past the record's expiry
func (r *PasswordReset) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// ForgotPasswordRequest is the payload of POST /auth/forgot-password
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest is the payload of POST /auth/reset-password
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}
