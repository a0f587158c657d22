// Package fixtures provides request builders for the API tests.
package fixtures

import (
	"strings"

	"carpool/internal/models"
)

// DefaultPassword is used by every builder unless overridden.
const DefaultPassword = "password123"

// ===== Signup Fixtures =====

// SignUpBuilder provides fluent API for building signup requests.
type SignUpBuilder struct {
	req models.SignUpRequest
}

// NewSignUp starts a signup for employeeID with a matching email and the
// default password.
func NewSignUp(employeeID string) *SignUpBuilder {
	return &SignUpBuilder{
		req: models.SignUpRequest{
			EmployeeID:      employeeID,
			Email:           strings.ToLower(employeeID) + "@example.com",
			Password:        DefaultPassword,
			ConfirmPassword: DefaultPassword,
		},
	}
}

func (b *SignUpBuilder) WithEmail(email string) *SignUpBuilder {
	b.req.Email = email
	return b
}

func (b *SignUpBuilder) WithPassword(password string) *SignUpBuilder {
	b.req.Password = password
	b.req.ConfirmPassword = password
	return b
}

func (b *SignUpBuilder) WithConfirmation(confirm string) *SignUpBuilder {
	b.req.ConfirmPassword = confirm
	return b
}

func (b *SignUpBuilder) Build() models.SignUpRequest {
	return b.req
}

// ===== Ride Fixtures =====

// RideBuilder provides fluent API for building ride offers.
type RideBuilder struct {
	req models.AddRideRequest
}

// NewRide starts a two-seat car offer from Main Gate to Tech Park at 09:00.
func NewRide() *RideBuilder {
	return &RideBuilder{
		req: models.AddRideRequest{
			VehicleType: models.VehicleCar,
			VehicleNo:   "KA01AB1234",
			VacantSeats: 2,
			Time:        "09:00",
			PickUpPoint: "Main Gate",
			Destination: "Tech Park",
		},
	}
}

func (b *RideBuilder) At(hhmm string) *RideBuilder {
	b.req.Time = hhmm
	return b
}

func (b *RideBuilder) WithSeats(n int) *RideBuilder {
	b.req.VacantSeats = n
	return b
}

// Bike switches the offer to a one-seat bike.
func (b *RideBuilder) Bike() *RideBuilder {
	b.req.VehicleType = models.VehicleBike
	b.req.VehicleNo = "KA05XY9876"
	b.req.VacantSeats = 1
	return b
}

func (b *RideBuilder) Build() models.AddRideRequest {
	return b.req
}
