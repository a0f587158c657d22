// Package models defines data structures for the application.
package models

import "time"

// User is a registered employee. Password holds a bcrypt hash and is part of
// the persisted record; API responses use Profile instead.
type User struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	Email      string    `json:"email"`
	Password   string    `json:"password"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Profile is the public view of a user.
type Profile struct {
	ID         string    `json:"id" example:"5b0f2c1e-8a3d-4b7e-9d61-0c7f1e2a4b9c"`
	EmployeeID string    `json:"employeeId" example:"E1001"`
	Email      string    `json:"email" example:"asha@example.com"`
	CreatedAt  time.Time `json:"createdAt" example:"2024-01-15T09:30:00Z"`
}

// Profile returns the public view of u.
func (u *User) Profile() Profile {
	return Profile{
		ID:         u.ID,
		EmployeeID: u.EmployeeID,
		Email:      u.Email,
		CreatedAt:  u.CreatedAt,
	}
}

// SignUpRequest is the payload for creating an account.
type SignUpRequest struct {
	EmployeeID      string `json:"employeeId" binding:"required,min=3" example:"E1001"`
	Email           string `json:"email" binding:"required,email" example:"asha@example.com"`
	Password        string `json:"password" binding:"required,min=6" example:"secret123"`
	ConfirmPassword string `json:"confirmPassword" binding:"required" example:"secret123"`
}

// LoginRequest is the payload for logging in with an employee ID or email.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required" example:"E1001"`
	Password   string `json:"password" binding:"required,min=6" example:"secret123"`
}

// AuthResponse is returned after a successful signup or login.
type AuthResponse struct {
	AccessToken string  `json:"accessToken" example:"eyJhbGciOiJIUzI1NiIs..."`
	ExpiresIn   int     `json:"expiresIn" example:"86400"`
	User        Profile `json:"user"`
}

// SessionResponse reports the directory's current session.
type SessionResponse struct {
	Authenticated bool     `json:"authenticated" example:"true"`
	User          *Profile `json:"user,omitempty"`
}
