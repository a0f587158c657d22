// Package errors provides custom error types for the application.
//
// Rule violations carry the user-facing message as their error text, so a
// handler can hand err.Error() straight back to the client.
package errors

import "errors"

// Directory errors
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrDuplicateEmployeeID = errors.New("Employee ID already registered")
	ErrDuplicateEmail      = errors.New("Email already registered")
	ErrPasswordMismatch    = errors.New("Passwords do not match")
	ErrInvalidCredentials  = errors.New("Invalid employee ID/email or password")
)

// Auth errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
)

// Ride board errors
var (
	ErrDuplicateEmployeeOffer = errors.New("Employee ID already exists. Each employee can only add one ride per day.")
	ErrRideNotFound           = errors.New("Ride not found.")
	ErrSelfBookingForbidden   = errors.New("You cannot book your own ride.")
	ErrAlreadyBooked          = errors.New("You have already booked this ride.")
	ErrNoVacantSeats          = errors.New("No vacant seats available.")
	ErrInvalidRide            = errors.New("invalid ride details")
	ErrInvalidTime            = errors.New("time must be in HH:MM format")
	ErrTimeInPast             = errors.New("Cannot select a time in the past. Time has to be in the future.")
)

// IsRuleViolation reports whether err is a predictable, user-facing outcome
// rather than an infrastructure failure.
func IsRuleViolation(err error) bool {
	for _, target := range ruleViolations {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var ruleViolations = []error{
	ErrUserNotFound,
	ErrDuplicateEmployeeID,
	ErrDuplicateEmail,
	ErrPasswordMismatch,
	ErrInvalidCredentials,
	ErrUnauthorized,
	ErrInvalidToken,
	ErrDuplicateEmployeeOffer,
	ErrRideNotFound,
	ErrSelfBookingForbidden,
	ErrAlreadyBooked,
	ErrNoVacantSeats,
	ErrInvalidRide,
	ErrInvalidTime,
	ErrTimeInPast,
}
