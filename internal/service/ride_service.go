package service

import (
	"context"
	"time"

	"carpool/internal/board"
	"carpool/internal/clock"
	apperrors "carpool/internal/errors"
	"carpool/internal/models"
)

// RideService guards the board against departures in the past and fills in
// the default query time.
type RideService struct {
	board *board.Board
	now   func() time.Time
}

// NewRideService creates a RideService. A nil now means time.Now.
func NewRideService(b *board.Board, now func() time.Time) *RideService {
	if now == nil {
		now = time.Now
	}
	return &RideService{board: b, now: now}
}

// AddRide offers a ride as employeeID. The departure may not be earlier
// than the current minute.
func (s *RideService) AddRide(ctx context.Context, employeeID string, req *models.AddRideRequest) (*models.Ride, error) {
	if err := s.notInPast(req.Time); err != nil {
		return nil, err
	}
	offer := *req
	offer.EmployeeID = employeeID
	return s.board.AddRide(ctx, offer)
}

// BookRide books a seat for employeeID.
func (s *RideService) BookRide(ctx context.Context, employeeID, rideID string) (*models.Ride, error) {
	return s.board.BookRide(ctx, employeeID, rideID)
}

// AvailableRides matches rides from query.Time, defaulting to now.
func (s *RideService) AvailableRides(_ context.Context, query *models.AvailableRidesQuery) ([]models.Ride, error) {
	at := query.Time
	if at == "" {
		at = clock.FormatHHMM(s.minuteNow())
	} else if err := s.notInPast(at); err != nil {
		return nil, err
	}
	return s.board.AvailableRides(at, query.VehicleType)
}

// AllRides lists today's board.
func (s *RideService) AllRides(_ context.Context) []models.Ride {
	return s.board.AllRides()
}

// BookedRides lists the rides employeeID has a seat on.
func (s *RideService) BookedRides(_ context.Context, employeeID string) []models.Ride {
	return s.board.BookedRidesFor(employeeID)
}

// OfferedRide returns employeeID's own offer for today.
func (s *RideService) OfferedRide(_ context.Context, employeeID string) (*models.Ride, error) {
	return s.board.OfferedRideFor(employeeID)
}

func (s *RideService) minuteNow() int {
	return clock.MinuteOfDay(s.now().In(s.board.Location()))
}

func (s *RideService) notInPast(hhmm string) error {
	minutes, err := clock.ParseHHMM(hhmm)
	if err != nil {
		return err
	}
	if minutes < s.minuteNow() {
		return apperrors.ErrTimeInPast
	}
	return nil
}
