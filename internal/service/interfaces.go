// Package service adapts the user directory and the ride board to the API:
// tokens, time-of-day guards and response shapes.
package service

import (
	"context"

	"carpool/internal/models"
)

// AuthServicer defines the interface for account and session operations.
type AuthServicer interface {
	SignUp(ctx context.Context, req *models.SignUpRequest) (*models.AuthResponse, error)
	LogIn(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	LogOut(ctx context.Context) error
	Session(ctx context.Context) *models.SessionResponse
}

// RideServicer defines the interface for ride board operations. employeeID
// is always the authenticated caller.
type RideServicer interface {
	AddRide(ctx context.Context, employeeID string, req *models.AddRideRequest) (*models.Ride, error)
	BookRide(ctx context.Context, employeeID, rideID string) (*models.Ride, error)
	AvailableRides(ctx context.Context, query *models.AvailableRidesQuery) ([]models.Ride, error)
	AllRides(ctx context.Context) []models.Ride
	BookedRides(ctx context.Context, employeeID string) []models.Ride
	OfferedRide(ctx context.Context, employeeID string) (*models.Ride, error)
}

// Ensure concrete types implement interfaces
var (
	_ AuthServicer = (*AuthService)(nil)
	_ RideServicer = (*RideService)(nil)
)
