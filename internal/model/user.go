package model

import (
	"strings"
	"time"
)

const (
	RoleIntern = "intern"
	RoleAdmin  = "admin"
)

// DefaultCourse is assigned to interns who register without picking a course.
const DefaultCourse = "aiml"

// User represents an account on the platform
type User struct {
	ID           string    `json:"id" bson:"id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"` // Never leaves the server
	Role         string    `json:"role" bson:"role"`
	Course       *string   `json:"course,omitempty" bson:"course,omitempty"`
	Avatar       *string   `json:"avatar,omitempty" bson:"avatar,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PublicUser is the outward view of a user returned by the API
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Course    *string   `json:"course,omitempty"`
	Avatar    *string   `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Public strips secret fields from the user
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Course:    u.Course,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}

// NormalizeEmail lowercases and trims an email address so lookups are case-insensitive
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterRequest is the payload of POST /auth/register
type RegisterRequest struct {
	Name      string  `json:"name" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required"`
	AdminCode *string `json:"admin_code"`
	Course    *string `json:"course"`
}

// LoginRequest is the payload of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AdminLoginRequest is the payload of POST /auth/admin-login
type AdminLoginRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	AdminCode string `json:"admin_code" binding:"required"`
}

// UpdateEmailRequest is the payload of PUT /user/email
type UpdateEmailRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewEmail        string `json:"new_email" binding:"required,email"`
}

// UpdatePasswordRequest is the payload of PUT /user/password
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// UpdateAvatarRequest is the payload of PUT /user/avatar
type UpdateAvatarRequest struct {
	Avatar string `json:"avatar" binding:"required"`
}

// AuthResponse is returned by register and both login portals
type AuthResponse struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}
