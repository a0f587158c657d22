package models

import apperrors "carpool/internal/errors"

// Result is the outcome of a directory or board operation as shown to the
// user: every rule violation is a failed result, never a fault.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Success messages.
const (
	MsgSignedUp   = "Account created successfully!"
	MsgLoggedIn   = "Login successful!"
	MsgLoggedOut  = "Logged out"
	MsgRideAdded  = "Ride added successfully!"
	MsgRideBooked = "Ride booked successfully!"
)

// ResultFrom converts an operation error into a Result. Infrastructure
// failures are reported with a generic message.
func ResultFrom(err error, okMessage string) Result {
	if err == nil {
		return Result{Success: true, Message: okMessage}
	}
	if apperrors.IsRuleViolation(err) {
		return Result{Success: false, Message: err.Error()}
	}
	return Result{Success: false, Message: "Something went wrong. Please try again."}
}
