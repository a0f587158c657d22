// Package board holds today's ride offers: adding, matching and booking.
package board

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"carpool/internal/clock"
	apperrors "carpool/internal/errors"
	"carpool/internal/events"
	"carpool/internal/models"
	"carpool/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultWindow is how far past the query time a departure still matches.
const DefaultWindow = 60 * time.Minute

// Board is the set of active rides. A ride is active while its creation date
// is today in the board's location; every operation drops rides from earlier
// days before doing anything else.
type Board struct {
	mu     sync.Mutex
	store  store.Store
	log    *zap.Logger
	bus    *events.Bus
	loc    *time.Location
	now    func() time.Time
	newID  func() string
	window int

	loaded bool
	rides  []models.Ride
}

// Option configures a Board.
type Option func(*Board)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

// WithLocation sets the time zone that decides calendar days.
func WithLocation(loc *time.Location) Option {
	return func(b *Board) {
		if loc != nil {
			b.loc = loc
		}
	}
}

// WithWindow sets the matching window. Values under a minute are ignored.
func WithWindow(d time.Duration) Option {
	return func(b *Board) {
		if d >= time.Minute {
			b.window = int(d / time.Minute)
		}
	}
}

// WithIDGenerator sets the ride id generator.
func WithIDGenerator(fn func() string) Option {
	return func(b *Board) { b.newID = fn }
}

// New creates a Board backed by s.
func New(s store.Store, log *zap.Logger, opts ...Option) *Board {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Board{
		store:  s,
		log:    log.Named("board"),
		loc:    time.Local,
		now:    time.Now,
		newID:  uuid.NewString,
		window: int(DefaultWindow / time.Minute),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.bus = events.NewBus(b.log)
	return b
}

// Subscribe registers h for board change events.
func (b *Board) Subscribe(h events.Handler) (unsubscribe func()) {
	return b.bus.Subscribe(h)
}

// Window returns the matching window.
func (b *Board) Window() time.Duration {
	return time.Duration(b.window) * time.Minute
}

// Location returns the time zone that decides calendar days.
func (b *Board) Location() *time.Location {
	return b.loc
}

// Load reads the persisted rides and keeps those created today. Rides from
// earlier days are published as expired and removed from the store. A
// corrupt payload loads as an empty board.
func (b *Board) Load(ctx context.Context) error {
	b.mu.Lock()
	err := b.load(ctx)
	expired := b.rollover(ctx)
	b.mu.Unlock()

	b.publishExpired(expired)
	return err
}

func (b *Board) ensureLoaded(ctx context.Context) error {
	if b.loaded {
		return nil
	}
	return b.load(ctx)
}

func (b *Board) load(ctx context.Context) error {
	var rides []models.Ride
	if _, err := b.store.Get(ctx, store.RidesKey, &rides); err != nil {
		if !errors.Is(err, store.ErrCorrupt) {
			return fmt.Errorf("load rides: %w", err)
		}
		b.log.Warn("stored rides are corrupt, starting empty", zap.Error(err))
		rides = nil
	}

	b.rides = cloneRides(rides)
	b.loaded = true
	b.log.Info("board loaded", zap.Int("rides", len(b.rides)))
	return nil
}

// rollover drops rides created before today, writes the pruned board back
// and returns the dropped rides.
func (b *Board) rollover(ctx context.Context) []models.Ride {
	now := b.now()
	var active, expired []models.Ride
	for _, r := range b.rides {
		if clock.SameDay(r.CreatedAt, now, b.loc) {
			active = append(active, r)
		} else {
			expired = append(expired, r)
		}
	}
	if len(expired) == 0 {
		return nil
	}

	if err := b.save(ctx, active); err != nil {
		b.log.Error("failed to persist pruned rides", zap.Error(err))
		b.rides = active
	}
	b.log.Info("rides expired",
		zap.Int("expired", len(expired)),
		zap.Int("active", len(active)),
	)
	return expired
}

// current hydrates the board on first use and rolls it over.
func (b *Board) current(ctx context.Context) ([]models.Ride, error) {
	if err := b.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return b.rollover(ctx), nil
}

func (b *Board) publishExpired(expired []models.Ride) {
	if len(expired) == 0 {
		return
	}
	b.bus.Publish(events.Event{Kind: events.RidesExpired, At: b.now(), Rides: expired})
}

// AddRide posts a new offer for req.EmployeeID. Each employee may hold one
// active offer.
func (b *Board) AddRide(ctx context.Context, req models.AddRideRequest) (*models.Ride, error) {
	b.mu.Lock()
	ride, expired, err := b.addRide(ctx, req)
	b.mu.Unlock()

	b.publishExpired(expired)
	if err != nil {
		return nil, err
	}

	b.bus.Publish(events.Event{
		Kind:       events.RideAdded,
		At:         ride.CreatedAt,
		EmployeeID: ride.EmployeeID,
		Rides:      []models.Ride{ride.Clone()},
	})
	return ride, nil
}

func (b *Board) addRide(ctx context.Context, req models.AddRideRequest) (*models.Ride, []models.Ride, error) {
	expired, err := b.current(ctx)
	if err != nil {
		return nil, nil, err
	}

	req.EmployeeID = strings.TrimSpace(req.EmployeeID)
	log := b.log.With(zap.String("employee_id", req.EmployeeID))

	if err := validateRide(req); err != nil {
		log.Info("ride rejected", zap.Error(err))
		return nil, expired, err
	}
	if b.indexByOwner(req.EmployeeID) >= 0 {
		log.Info("ride rejected", zap.String("reason", "duplicate_offer"))
		return nil, expired, apperrors.ErrDuplicateEmployeeOffer
	}

	ride := models.Ride{
		ID:          b.newID(),
		EmployeeID:  req.EmployeeID,
		VehicleType: req.VehicleType,
		VehicleNo:   strings.TrimSpace(req.VehicleNo),
		VacantSeats: req.VacantSeats,
		Time:        req.Time,
		PickUpPoint: strings.TrimSpace(req.PickUpPoint),
		Destination: strings.TrimSpace(req.Destination),
		BookedBy:    []string{},
		CreatedAt:   b.now(),
	}

	next := append(cloneRides(b.rides), ride)
	if err := b.save(ctx, next); err != nil {
		log.Error("failed to persist rides", zap.Error(err))
		return nil, expired, err
	}

	log.Info("ride added", zap.String("ride_id", ride.ID), zap.String("time", ride.Time))
	out := ride.Clone()
	return &out, expired, nil
}

// BookRide reserves a seat on rideID for employeeID. Failures are checked in
// order: unknown ride, own ride, already booked, no seats.
func (b *Board) BookRide(ctx context.Context, employeeID, rideID string) (*models.Ride, error) {
	b.mu.Lock()
	ride, expired, err := b.bookRide(ctx, employeeID, rideID)
	b.mu.Unlock()

	b.publishExpired(expired)
	if err != nil {
		return nil, err
	}

	b.bus.Publish(events.Event{
		Kind:       events.RideBooked,
		At:         b.now(),
		EmployeeID: employeeID,
		Rides:      []models.Ride{ride.Clone()},
	})
	return ride, nil
}

func (b *Board) bookRide(ctx context.Context, employeeID, rideID string) (*models.Ride, []models.Ride, error) {
	expired, err := b.current(ctx)
	if err != nil {
		return nil, nil, err
	}

	employeeID = strings.TrimSpace(employeeID)
	log := b.log.With(zap.String("employee_id", employeeID), zap.String("ride_id", rideID))

	i := slices.IndexFunc(b.rides, func(r models.Ride) bool { return r.ID == rideID })
	if i < 0 {
		log.Info("booking rejected", zap.String("reason", "not_found"))
		return nil, expired, apperrors.ErrRideNotFound
	}

	current := b.rides[i]
	switch {
	case current.EmployeeID == employeeID:
		log.Info("booking rejected", zap.String("reason", "self_booking"))
		return nil, expired, apperrors.ErrSelfBookingForbidden
	case current.IsBookedBy(employeeID):
		log.Info("booking rejected", zap.String("reason", "already_booked"))
		return nil, expired, apperrors.ErrAlreadyBooked
	case current.VacantSeats <= 0:
		log.Info("booking rejected", zap.String("reason", "no_seats"))
		return nil, expired, apperrors.ErrNoVacantSeats
	}

	next := cloneRides(b.rides)
	next[i].BookedBy = append(next[i].BookedBy, employeeID)
	next[i].VacantSeats--

	if err := b.save(ctx, next); err != nil {
		log.Error("failed to persist rides", zap.Error(err))
		return nil, expired, err
	}

	log.Info("ride booked", zap.Int("vacant_seats", next[i].VacantSeats))
	out := next[i].Clone()
	return &out, expired, nil
}

// AvailableRides returns rides with a free seat departing between queryTime
// and queryTime plus the window, in insertion order. An empty vehicleType
// matches every vehicle. Times are same-day minute offsets; the window does
// not wrap past midnight.
func (b *Board) AvailableRides(queryTime string, vehicleType models.VehicleType) ([]models.Ride, error) {
	from, err := clock.ParseHHMM(queryTime)
	if err != nil {
		return nil, err
	}
	if vehicleType != "" && !vehicleType.Valid() {
		return nil, fmt.Errorf("%w: unknown vehicle type %q", apperrors.ErrInvalidRide, vehicleType)
	}
	to := from + b.window

	b.mu.Lock()
	expired, err := b.current(context.Background())
	if err != nil {
		b.mu.Unlock()
		return nil, err
	}
	var out []models.Ride
	for _, r := range b.rides {
		if r.VacantSeats <= 0 {
			continue
		}
		if vehicleType != "" && r.VehicleType != vehicleType {
			continue
		}
		departs, err := clock.ParseHHMM(r.Time)
		if err != nil {
			b.log.Warn("skipping ride with unreadable time", zap.String("ride_id", r.ID), zap.String("time", r.Time))
			continue
		}
		if departs >= from && departs <= to {
			out = append(out, r.Clone())
		}
	}
	b.mu.Unlock()

	b.publishExpired(expired)
	return out, nil
}

// AllRides returns a copy of every active ride.
func (b *Board) AllRides() []models.Ride {
	return b.selectRides(func(models.Ride) bool { return true })
}

// BookedRidesFor returns the active rides employeeID holds a seat on.
func (b *Board) BookedRidesFor(employeeID string) []models.Ride {
	return b.selectRides(func(r models.Ride) bool { return r.IsBookedBy(employeeID) })
}

// OfferedRideFor returns the active ride posted by employeeID, if any.
func (b *Board) OfferedRideFor(employeeID string) (*models.Ride, error) {
	rides := b.selectRides(func(r models.Ride) bool { return r.EmployeeID == employeeID })
	if len(rides) == 0 {
		return nil, apperrors.ErrRideNotFound
	}
	return &rides[0], nil
}

func (b *Board) selectRides(keep func(models.Ride) bool) []models.Ride {
	b.mu.Lock()
	expired, err := b.current(context.Background())
	if err != nil {
		b.log.Warn("board not loaded, listing empty", zap.Error(err))
	}
	out := []models.Ride{}
	for _, r := range b.rides {
		if keep(r) {
			out = append(out, r.Clone())
		}
	}
	b.mu.Unlock()

	b.publishExpired(expired)
	return out
}

// save persists next and commits it as the live board.
func (b *Board) save(ctx context.Context, next []models.Ride) error {
	if err := b.store.Set(ctx, store.RidesKey, next); err != nil {
		return fmt.Errorf("save rides: %w", err)
	}
	b.rides = next
	return nil
}

func (b *Board) indexByOwner(employeeID string) int {
	return slices.IndexFunc(b.rides, func(r models.Ride) bool { return r.EmployeeID == employeeID })
}

func validateRide(req models.AddRideRequest) error {
	switch {
	case req.EmployeeID == "":
		return fmt.Errorf("%w: employee id is required", apperrors.ErrInvalidRide)
	case !req.VehicleType.Valid():
		return fmt.Errorf("%w: unknown vehicle type %q", apperrors.ErrInvalidRide, req.VehicleType)
	case strings.TrimSpace(req.VehicleNo) == "":
		return fmt.Errorf("%w: vehicle number is required", apperrors.ErrInvalidRide)
	case req.VacantSeats < 1:
		return fmt.Errorf("%w: vacant seats must be at least 1", apperrors.ErrInvalidRide)
	case strings.TrimSpace(req.PickUpPoint) == "":
		return fmt.Errorf("%w: pick-up point is required", apperrors.ErrInvalidRide)
	case strings.TrimSpace(req.Destination) == "":
		return fmt.Errorf("%w: destination is required", apperrors.ErrInvalidRide)
	}
	if _, err := clock.ParseHHMM(req.Time); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidRide, err)
	}
	return nil
}

func cloneRides(rides []models.Ride) []models.Ride {
	out := make([]models.Ride, len(rides))
	for i, r := range rides {
		out[i] = r.Clone()
	}
	return out
}
