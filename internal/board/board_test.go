package board

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"carpool/internal/clock"
	apperrors "carpool/internal/errors"
	"carpool/internal/events"
	"carpool/internal/models"
	"carpool/internal/store"
	"carpool/internal/store/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var morning = time.Date(2024, 1, 15, 7, 30, 0, 0, time.UTC)

type fixture struct {
	board *Board
	store *store.Memory
	clock *clock.Manual
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	s := store.NewMemory()
	c := clock.NewManual(morning)
	seq := 0
	base := []Option{
		WithClock(c.Now),
		WithLocation(time.UTC),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("ride-%d", seq)
		}),
	}
	b := New(s, nil, append(base, opts...)...)
	require.NoError(t, b.Load(context.Background()))
	return &fixture{board: b, store: s, clock: c}
}

func rideRequest(employeeID string, vehicle models.VehicleType, seats int, at string) models.AddRideRequest {
	return models.AddRideRequest{
		EmployeeID:  employeeID,
		VehicleType: vehicle,
		VehicleNo:   "KA01AB1234",
		VacantSeats: seats,
		Time:        at,
		PickUpPoint: "Main Gate",
		Destination: "Tech Park",
	}
}

func (f *fixture) add(t *testing.T, req models.AddRideRequest) *models.Ride {
	t.Helper()
	ride, err := f.board.AddRide(context.Background(), req)
	require.NoError(t, err)
	return ride
}

func TestBoard_AddRide(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id, empty bookings and timestamp", func(t *testing.T) {
		f := newFixture(t)

		ride, err := f.board.AddRide(ctx, rideRequest("E1", models.VehicleCar, 2, "09:00"))

		require.NoError(t, err)
		assert.Equal(t, "ride-1", ride.ID)
		assert.Empty(t, ride.BookedBy)
		assert.NotNil(t, ride.BookedBy)
		assert.Equal(t, morning, ride.CreatedAt)
		assert.Len(t, f.board.AllRides(), 1)
	})

	t.Run("one offer per employee", func(t *testing.T) {
		f := newFixture(t)
		f.add(t, rideRequest("E1", models.VehicleCar, 2, "09:00"))

		_, err := f.board.AddRide(ctx, rideRequest("E1", models.VehicleBike, 1, "10:00"))

		assert.ErrorIs(t, err, apperrors.ErrDuplicateEmployeeOffer)
		assert.Len(t, f.board.AllRides(), 1)
	})

	t.Run("no two active rides share an owner", func(t *testing.T) {
		f := newFixture(t)
		owners := []string{"E1", "E2", "E1", "E3", "E2", "E1"}
		for _, owner := range owners {
			_, _ = f.board.AddRide(ctx, rideRequest(owner, models.VehicleCar, 1, "09:00"))
		}

		seen := map[string]bool{}
		for _, r := range f.board.AllRides() {
			assert.False(t, seen[r.EmployeeID], "duplicate owner %s", r.EmployeeID)
			seen[r.EmployeeID] = true
		}
		assert.Len(t, seen, 3)
	})

	t.Run("rejects invalid details", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*models.AddRideRequest)
		}{
			{"zero seats", func(r *models.AddRideRequest) { r.VacantSeats = 0 }},
			{"bad time", func(r *models.AddRideRequest) { r.Time = "9:00" }},
			{"unknown vehicle", func(r *models.AddRideRequest) { r.VehicleType = "Bus" }},
			{"missing vehicle number", func(r *models.AddRideRequest) { r.VehicleNo = " " }},
			{"missing pick-up", func(r *models.AddRideRequest) { r.PickUpPoint = "" }},
			{"missing destination", func(r *models.AddRideRequest) { r.Destination = "" }},
			{"missing employee", func(r *models.AddRideRequest) { r.EmployeeID = "" }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t)
				req := rideRequest("E1", models.VehicleCar, 2, "09:00")
				tt.mutate(&req)

				_, err := f.board.AddRide(ctx, req)

				assert.ErrorIs(t, err, apperrors.ErrInvalidRide)
				assert.Empty(t, f.board.AllRides())
			})
		}
	})

	t.Run("persists the board", func(t *testing.T) {
		f := newFixture(t)
		f.add(t, rideRequest("E1", models.VehicleCar, 2, "09:00"))

		var stored []models.Ride
		found, err := f.store.Get(ctx, store.RidesKey, &stored)

		require.NoError(t, err)
		require.True(t, found)
		require.Len(t, stored, 1)
		assert.Equal(t, "E1", stored[0].EmployeeID)
	})

	t.Run("publishes after save", func(t *testing.T) {
		f := newFixture(t)
		var persisted int
		f.board.Subscribe(func(e events.Event) {
			var stored []models.Ride
			_, _ = f.store.Get(ctx, store.RidesKey, &stored)
			persisted = len(stored)
			assert.Equal(t, events.RideAdded, e.Kind)
			assert.Equal(t, "E1", e.EmployeeID)
		})

		f.add(t, rideRequest("E1", models.VehicleCar, 2, "09:00"))

		assert.Equal(t, 1, persisted)
	})
}

func TestBoard_BookRide(t *testing.T) {
	ctx := context.Background()

	t.Run("takes a seat", func(t *testing.T) {
		f := newFixture(t)
		ride := f.add(t, rideRequest("E1", models.VehicleCar, 2, "09:00"))

		booked, err := f.board.BookRide(ctx, "E2", ride.ID)

		require.NoError(t, err)
		assert.Equal(t, 1, booked.VacantSeats)
		assert.Equal(t, []string{"E2"}, booked.BookedBy)
	})

	t.Run("own ride", func(t *testing.T) {
		f := newFixture(t)
		ride := f.add(t, rideRequest("E1", models.VehicleCar, 2, "09:00"))

		_, err := f.board.BookRide(ctx, "E1", ride.ID)

		assert.ErrorIs(t, err, apperrors.ErrSelfBookingForbidden)
	})

	t.Run("unknown ride", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.board.BookRide(ctx, "E2", "missing")

		assert.ErrorIs(t, err, apperrors.ErrRideNotFound)
	})

	t.Run("last seat then full", func(t *testing.T) {
		f := newFixture(t)
		ride := f.add(t, rideRequest("E1", models.VehicleCar, 1, "09:00"))

		booked, err := f.board.BookRide(ctx, "E2", ride.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, booked.VacantSeats)

		_, err = f.board.BookRide(ctx, "E3", ride.ID)
		assert.ErrorIs(t, err, apperrors.ErrNoVacantSeats)
		assert.Equal(t, 0, f.board.AllRides()[0].VacantSeats)
	})

	t.Run("already booked wins over no seats", func(t *testing.T) {
		f := newFixture(t)
		ride := f.add(t, rideRequest("E1", models.VehicleCar, 1, "09:00"))
		_, err := f.board.BookRide(ctx, "E2", ride.ID)
		require.NoError(t, err)

		_, err = f.board.BookRide(ctx, "E2", ride.ID)

		assert.ErrorIs(t, err, apperrors.ErrAlreadyBooked)
	})

	t.Run("self booking wins over no seats", func(t *testing.T) {
		f := newFixture(t)
		ride := f.add(t, rideRequest("E1", models.VehicleCar, 1, "09:00"))
		_, err := f.board.BookRide(ctx, "E2", ride.ID)
		require.NoError(t, err)

		_, err = f.board.BookRide(ctx, "E1", ride.ID)

		assert.ErrorIs(t, err, apperrors.ErrSelfBookingForbidden)
	})

	t.Run("concurrent bookings never oversell", func(t *testing.T) {
		f := newFixture(t)
		ride := f.add(t, rideRequest("E1", models.VehicleCar, 3, "09:00"))

		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded := 0
		for i := range 20 {
			wg.Add(1)
			go func(employeeID string) {
				defer wg.Done()
				if _, err := f.board.BookRide(ctx, employeeID, ride.ID); err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
				}
			}(fmt.Sprintf("P%d", i))
		}
		wg.Wait()

		assert.Equal(t, 3, succeeded)
		got := f.board.AllRides()[0]
		assert.Equal(t, 0, got.VacantSeats)
		assert.Len(t, got.BookedBy, 3)
	})

	t.Run("save failure leaves the board unchanged", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		s := mocks.NewMockStore(ctrl)
		existing := []models.Ride{{
			ID: "r1", EmployeeID: "E1", VehicleType: models.VehicleCar, VacantSeats: 1,
			Time: "09:00", BookedBy: []string{}, CreatedAt: morning,
		}}
		s.EXPECT().Get(gomock.Any(), store.RidesKey, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, dest any) (bool, error) {
				*dest.(*[]models.Ride) = existing
				return true, nil
			})
		s.EXPECT().Set(gomock.Any(), store.RidesKey, gomock.Any()).Return(errors.New("timeout"))

		b := New(s, nil, WithClock(func() time.Time { return morning }), WithLocation(time.UTC))
		require.NoError(t, b.Load(ctx))

		_, err := b.BookRide(ctx, "E2", "r1")

		assert.Error(t, err)
		got := b.AllRides()[0]
		assert.Equal(t, 1, got.VacantSeats)
		assert.Empty(t, got.BookedBy)
	})
}

func TestBoard_AvailableRides(t *testing.T) {
	f := newFixture(t)
	f.add(t, rideRequest("E1", models.VehicleCar, 2, "09:20"))
	f.add(t, rideRequest("E2", models.VehicleCar, 2, "09:35"))
	f.add(t, rideRequest("E3", models.VehicleBike, 1, "08:45"))
	full := f.add(t, rideRequest("E4", models.VehicleCar, 1, "09:00"))
	f.add(t, rideRequest("E5", models.VehicleCar, 1, "08:00"))
	_, err := f.board.BookRide(context.Background(), "E9", full.ID)
	require.NoError(t, err)

	owners := func(rides []models.Ride) []string {
		var out []string
		for _, r := range rides {
			out = append(out, r.EmployeeID)
		}
		return out
	}

	t.Run("window from query time", func(t *testing.T) {
		rides, err := f.board.AvailableRides("08:30", "")

		require.NoError(t, err)
		assert.Equal(t, []string{"E1", "E3"}, owners(rides))
	})

	t.Run("vehicle filter", func(t *testing.T) {
		rides, err := f.board.AvailableRides("08:30", models.VehicleCar)

		require.NoError(t, err)
		assert.Equal(t, []string{"E1"}, owners(rides))
	})

	t.Run("inclusive bounds", func(t *testing.T) {
		rides, err := f.board.AvailableRides("08:35", "")

		require.NoError(t, err)
		assert.Equal(t, []string{"E1", "E2", "E3"}, owners(rides))
	})

	t.Run("never returns full rides", func(t *testing.T) {
		for _, q := range []string{"07:00", "08:00", "08:30", "09:00"} {
			rides, err := f.board.AvailableRides(q, "")
			require.NoError(t, err)
			for _, r := range rides {
				assert.Positive(t, r.VacantSeats)
			}
		}
	})

	t.Run("invalid query time", func(t *testing.T) {
		_, err := f.board.AvailableRides("8:30", "")

		assert.ErrorIs(t, err, apperrors.ErrInvalidTime)
	})

	t.Run("unknown vehicle type", func(t *testing.T) {
		_, err := f.board.AvailableRides("08:30", "Bus")

		assert.ErrorIs(t, err, apperrors.ErrInvalidRide)
	})
}

func TestBoard_AvailableRidesNoMidnightWrap(t *testing.T) {
	f := newFixture(t)
	f.add(t, rideRequest("E1", models.VehicleCar, 1, "23:50"))
	f.add(t, rideRequest("E2", models.VehicleCar, 1, "00:10"))

	rides, err := f.board.AvailableRides("23:40", "")

	require.NoError(t, err)
	require.Len(t, rides, 1)
	assert.Equal(t, "E1", rides[0].EmployeeID)
}

func TestBoard_CustomWindow(t *testing.T) {
	f := newFixture(t, WithWindow(30*time.Minute))
	f.add(t, rideRequest("E1", models.VehicleCar, 1, "09:20"))

	rides, err := f.board.AvailableRides("08:30", "")

	require.NoError(t, err)
	assert.Empty(t, rides)
	assert.Equal(t, 30*time.Minute, f.board.Window())
}

func TestBoard_Queries(t *testing.T) {
	f := newFixture(t)
	r1 := f.add(t, rideRequest("E1", models.VehicleCar, 2, "09:00"))
	f.add(t, rideRequest("E2", models.VehicleBike, 1, "09:10"))
	_, err := f.board.BookRide(context.Background(), "E3", r1.ID)
	require.NoError(t, err)

	booked := f.board.BookedRidesFor("E3")
	require.Len(t, booked, 1)
	assert.Equal(t, r1.ID, booked[0].ID)
	assert.Empty(t, f.board.BookedRidesFor("E4"))

	offer, err := f.board.OfferedRideFor("E2")
	require.NoError(t, err)
	assert.Equal(t, models.VehicleBike, offer.VehicleType)

	_, err = f.board.OfferedRideFor("E3")
	assert.ErrorIs(t, err, apperrors.ErrRideNotFound)
}

func TestBoard_AllRidesIsACopy(t *testing.T) {
	f := newFixture(t)
	ride := f.add(t, rideRequest("E1", models.VehicleCar, 2, "09:00"))
	_, err := f.board.BookRide(context.Background(), "E2", ride.ID)
	require.NoError(t, err)

	rides := f.board.AllRides()
	rides[0].VacantSeats = 99
	rides[0].BookedBy[0] = "X"

	again := f.board.AllRides()
	assert.Equal(t, 1, again[0].VacantSeats)
	assert.Equal(t, []string{"E2"}, again[0].BookedBy)
}

func TestBoard_DayRollover(t *testing.T) {
	ctx := context.Background()

	t.Run("load drops rides from previous days", func(t *testing.T) {
		s := store.NewMemory()
		yesterday := morning.Add(-24 * time.Hour)
		require.NoError(t, s.Set(ctx, store.RidesKey, []models.Ride{
			{ID: "old", EmployeeID: "E1", VehicleType: models.VehicleCar, VacantSeats: 1, Time: "09:00", CreatedAt: yesterday},
			{ID: "new", EmployeeID: "E2", VehicleType: models.VehicleCar, VacantSeats: 1, Time: "09:00", CreatedAt: morning},
		}))
		b := New(s, nil, WithClock(func() time.Time { return morning }), WithLocation(time.UTC))
		var expired []models.Ride
		b.Subscribe(func(e events.Event) {
			if e.Kind == events.RidesExpired {
				expired = append(expired, e.Rides...)
			}
		})

		require.NoError(t, b.Load(ctx))

		rides := b.AllRides()
		require.Len(t, rides, 1)
		assert.Equal(t, "new", rides[0].ID)
		require.Len(t, expired, 1)
		assert.Equal(t, "old", expired[0].ID)
	})

	t.Run("long running board rolls over at midnight", func(t *testing.T) {
		f := newFixture(t)
		f.add(t, rideRequest("E1", models.VehicleCar, 2, "09:00"))
		var expiredEvents int
		f.board.Subscribe(func(e events.Event) {
			if e.Kind == events.RidesExpired {
				expiredEvents++
			}
		})

		f.clock.Advance(24 * time.Hour)

		assert.Empty(t, f.board.AllRides())
		assert.Equal(t, 1, expiredEvents)

		_, err := f.board.AddRide(ctx, rideRequest("E1", models.VehicleCar, 2, "09:00"))
		assert.NoError(t, err, "yesterday's offer no longer blocks a new one")

		var stored []models.Ride
		_, err = f.store.Get(ctx, store.RidesKey, &stored)
		require.NoError(t, err)
		assert.Len(t, stored, 1)
	})

	t.Run("calendar day follows the location", func(t *testing.T) {
		loc := time.FixedZone("IST", 5*3600+1800)
		late := time.Date(2024, 1, 15, 23, 0, 0, 0, loc)
		c := clock.NewManual(late)
		b := New(store.NewMemory(), nil, WithClock(c.Now), WithLocation(loc))
		require.NoError(t, b.Load(ctx))
		_, err := b.AddRide(ctx, rideRequest("E1", models.VehicleCar, 1, "23:30"))
		require.NoError(t, err)

		c.Advance(30 * time.Minute)
		assert.Len(t, b.AllRides(), 1)

		c.Advance(45 * time.Minute)
		assert.Empty(t, b.AllRides())
	})
}

func TestBoard_ExpiredRidesPublishedOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.add(t, rideRequest("E1", models.VehicleCar, 2, "09:00"))

	var published int
	count := func(e events.Event) {
		if e.Kind == events.RidesExpired {
			published += len(e.Rides)
		}
	}
	f.board.Subscribe(count)
	f.clock.Advance(24 * time.Hour)

	assert.Empty(t, f.board.AllRides())
	require.NoError(t, f.board.Load(ctx))

	restarted := New(f.store, nil, WithClock(f.clock.Now), WithLocation(time.UTC))
	restarted.Subscribe(count)
	require.NoError(t, restarted.Load(ctx))

	assert.Equal(t, 1, published)
	var stored []models.Ride
	_, err := f.store.Get(ctx, store.RidesKey, &stored)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestBoard_ReadsHydrateLazily(t *testing.T) {
	s := store.NewMemory()
	require.NoError(t, s.Set(context.Background(), store.RidesKey, []models.Ride{
		{ID: "r1", EmployeeID: "E1", VehicleType: models.VehicleCar, VacantSeats: 1, Time: "09:00", BookedBy: []string{"E2"}, CreatedAt: morning},
	}))
	newBoard := func() *Board {
		return New(s, nil, WithClock(func() time.Time { return morning }), WithLocation(time.UTC))
	}

	t.Run("available rides", func(t *testing.T) {
		rides, err := newBoard().AvailableRides("08:30", "")

		require.NoError(t, err)
		require.Len(t, rides, 1)
		assert.Equal(t, "r1", rides[0].ID)
	})

	t.Run("list queries", func(t *testing.T) {
		assert.Len(t, newBoard().AllRides(), 1)
		assert.Len(t, newBoard().BookedRidesFor("E2"), 1)

		offer, err := newBoard().OfferedRideFor("E1")
		require.NoError(t, err)
		assert.Equal(t, "r1", offer.ID)
	})

	t.Run("load failure surfaces on search", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		failing := mocks.NewMockStore(ctrl)
		failing.EXPECT().Get(gomock.Any(), store.RidesKey, gomock.Any()).Return(false, errors.New("connection refused"))

		_, err := New(failing, nil).AvailableRides("08:30", "")

		assert.Error(t, err)
	})
}

func TestBoard_CorruptStoreLoadsEmpty(t *testing.T) {
	s := store.NewMemory()
	s.SetRaw(store.RidesKey, []byte(`{"broken"`))
	b := New(s, nil)

	require.NoError(t, b.Load(context.Background()))

	assert.Empty(t, b.AllRides())
}
