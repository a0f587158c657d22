package models

import (
	"slices"
	"time"
)

// VehicleType is the kind of vehicle offered for a ride.
type VehicleType string

const (
	VehicleBike VehicleType = "Bike"
	VehicleCar  VehicleType = "Car"
)

// Valid reports whether v is a known vehicle type.
func (v VehicleType) Valid() bool {
	return slices.Contains(VehicleTypes(), v)
}

// VehicleTypes lists the known vehicle types in display order.
func VehicleTypes() []VehicleType {
	return []VehicleType{VehicleBike, VehicleCar}
}

// Ride is a same-day ride offer posted by one employee.
type Ride struct {
	ID          string      `json:"id" example:"9f3c5d2a-1b4e-4c8f-a7d6-2e1b0c9f8a7d"`
	EmployeeID  string      `json:"employeeId" example:"E1001"`
	VehicleType VehicleType `json:"vehicleType" example:"Car"`
	VehicleNo   string      `json:"vehicleNo" example:"KA01AB1234"`
	VacantSeats int         `json:"vacantSeats" example:"3"`
	Time        string      `json:"time" example:"09:00"`
	PickUpPoint string      `json:"pickUpPoint" example:"Main Gate"`
	Destination string      `json:"destination" example:"Tech Park"`
	BookedBy    []string    `json:"bookedBy"`
	CreatedAt   time.Time   `json:"createdAt" example:"2024-01-15T08:10:00Z"`
}

// Clone returns a deep copy of r.
func (r Ride) Clone() Ride {
	r.BookedBy = slices.Clone(r.BookedBy)
	if r.BookedBy == nil {
		r.BookedBy = []string{}
	}
	return r
}

// IsBookedBy reports whether employeeID holds a seat on r.
func (r *Ride) IsBookedBy(employeeID string) bool {
	return slices.Contains(r.BookedBy, employeeID)
}

// AddRideRequest is the payload for offering a ride.
// EmployeeID is filled from the authenticated session, never from the body.
type AddRideRequest struct {
	EmployeeID  string      `json:"-"`
	VehicleType VehicleType `json:"vehicleType" binding:"required,vehicletype" example:"Car"`
	VehicleNo   string      `json:"vehicleNo" binding:"required" example:"KA01AB1234"`
	VacantSeats int         `json:"vacantSeats" binding:"required,min=1" example:"3"`
	Time        string      `json:"time" binding:"required,hhmm" example:"09:00"`
	PickUpPoint string      `json:"pickUpPoint" binding:"required" example:"Main Gate"`
	Destination string      `json:"destination" binding:"required" example:"Tech Park"`
}

// AvailableRidesQuery holds the filters for matching rides.
type AvailableRidesQuery struct {
	Time        string      `form:"time" binding:"omitempty,hhmm" example:"08:30"`
	VehicleType VehicleType `form:"vehicleType" binding:"omitempty,vehicletype" example:"Car"`
}

// RideListResponse is the response for ride listings.
type RideListResponse struct {
	Items []Ride `json:"items"`
	Count int    `json:"count"`
}

// NewRideListResponse wraps rides, never returning a nil Items slice.
func NewRideListResponse(rides []Ride) RideListResponse {
	if rides == nil {
		rides = []Ride{}
	}
	return RideListResponse{Items: rides, Count: len(rides)}
}
