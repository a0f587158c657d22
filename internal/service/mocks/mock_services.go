// Package mocks provides mock implementations of service interfaces for testing.
package mocks

import (
	"context"

	"carpool/internal/models"
)

// MockAuthService is a mock implementation of AuthServicer.
type MockAuthService struct {
	SignUpFunc  func(ctx context.Context, req *models.SignUpRequest) (*models.AuthResponse, error)
	LogInFunc   func(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	LogOutFunc  func(ctx context.Context) error
	SessionFunc func(ctx context.Context) *models.SessionResponse
}

func (m *MockAuthService) SignUp(ctx context.Context, req *models.SignUpRequest) (*models.AuthResponse, error) {
	if m.SignUpFunc != nil {
		return m.SignUpFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockAuthService) LogIn(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if m.LogInFunc != nil {
		return m.LogInFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockAuthService) LogOut(ctx context.Context) error {
	if m.LogOutFunc != nil {
		return m.LogOutFunc(ctx)
	}
	return nil
}

func (m *MockAuthService) Session(ctx context.Context) *models.SessionResponse {
	if m.SessionFunc != nil {
		return m.SessionFunc(ctx)
	}
	return &models.SessionResponse{}
}

// MockRideService is a mock implementation of RideServicer.
type MockRideService struct {
	AddRideFunc        func(ctx context.Context, employeeID string, req *models.AddRideRequest) (*models.Ride, error)
	BookRideFunc       func(ctx context.Context, employeeID, rideID string) (*models.Ride, error)
	AvailableRidesFunc func(ctx context.Context, query *models.AvailableRidesQuery) ([]models.Ride, error)
	AllRidesFunc       func(ctx context.Context) []models.Ride
	BookedRidesFunc    func(ctx context.Context, employeeID string) []models.Ride
	OfferedRideFunc    func(ctx context.Context, employeeID string) (*models.Ride, error)
}

func (m *MockRideService) AddRide(ctx context.Context, employeeID string, req *models.AddRideRequest) (*models.Ride, error) {
	if m.AddRideFunc != nil {
		return m.AddRideFunc(ctx, employeeID, req)
	}
	return nil, nil
}

func (m *MockRideService) BookRide(ctx context.Context, employeeID, rideID string) (*models.Ride, error) {
	if m.BookRideFunc != nil {
		return m.BookRideFunc(ctx, employeeID, rideID)
	}
	return nil, nil
}

func (m *MockRideService) AvailableRides(ctx context.Context, query *models.AvailableRidesQuery) ([]models.Ride, error) {
	if m.AvailableRidesFunc != nil {
		return m.AvailableRidesFunc(ctx, query)
	}
	return nil, nil
}

func (m *MockRideService) AllRides(ctx context.Context) []models.Ride {
	if m.AllRidesFunc != nil {
		return m.AllRidesFunc(ctx)
	}
	return nil
}

func (m *MockRideService) BookedRides(ctx context.Context, employeeID string) []models.Ride {
	if m.BookedRidesFunc != nil {
		return m.BookedRidesFunc(ctx, employeeID)
	}
	return nil
}

func (m *MockRideService) OfferedRide(ctx context.Context, employeeID string) (*models.Ride, error) {
	if m.OfferedRideFunc != nil {
		return m.OfferedRideFunc(ctx, employeeID)
	}
	return nil, nil
}
