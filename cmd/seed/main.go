package main

import (
	"context"
	"errors"
	"log"
	"time"

	"carpool/internal/board"
	"carpool/internal/clock"
	"carpool/internal/config"
	"carpool/internal/directory"
	apperrors "carpool/internal/errors"
	"carpool/internal/logger"
	"carpool/internal/models"
	"carpool/internal/store"

	"go.uber.org/zap"
)

const demoPassword = "password123"

var demoEmployees = []string{"E1001", "E1002", "E1003", "E1004"}

// demoRide is offered by its employee at now+Offset.
type demoRide struct {
	EmployeeID  string
	VehicleType models.VehicleType
	VehicleNo   string
	Seats       int
	Offset      time.Duration
	PickUp      string
	Destination string
}

var demoRides = []demoRide{
	{"E1001", models.VehicleCar, "KA01AB1234", 3, 30 * time.Minute, "Main Gate", "Tech Park"},
	{"E1002", models.VehicleBike, "KA05XY9876", 1, 45 * time.Minute, "Metro Station", "Tech Park"},
	{"E1003", models.VehicleCar, "KA03MN4567", 2, 2 * time.Hour, "Tech Park", "City Centre"},
}

func main() {
	cfg := config.Load()

	zlog, err := logger.New(logger.Config{Level: cfg.LogLevel, Environment: cfg.Environment, ServiceName: "carpool-seed"})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	kv, closeStore, err := store.Open(store.Options{
		Backend:       cfg.StoreBackend,
		RedisURI:      cfg.RedisURI,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
	}, zlog)
	if err != nil {
		zlog.Fatal("failed to open store", zap.Error(err))
	}
	defer closeStore()

	ctx := context.Background()

	// Clear existing state
	for _, key := range []string{store.UsersKey, store.SessionKey, store.RidesKey} {
		if err := kv.Delete(ctx, key); err != nil {
			zlog.Fatal("failed to clear key", zap.String("key", key), zap.Error(err))
		}
	}

	seedUsers(ctx, kv, zlog)
	seedRides(ctx, kv, cfg.Location(), zlog)

	zlog.Info("seed completed", zap.String("password", demoPassword))
}

func seedUsers(ctx context.Context, kv store.Store, zlog *zap.Logger) {
	dir := directory.New(kv, zlog)
	if err := dir.Load(ctx); err != nil {
		zlog.Fatal("failed to load users", zap.Error(err))
	}

	for _, id := range demoEmployees {
		_, err := dir.SignUp(ctx, models.SignUpRequest{
			EmployeeID:      id,
			Email:           id + "@example.com",
			Password:        demoPassword,
			ConfirmPassword: demoPassword,
		})
		if err != nil {
			zlog.Fatal("failed to seed user", zap.String("employee_id", id), zap.Error(err))
		}
	}

	// Signing up opens a session; leave the store logged out.
	if err := dir.LogOut(ctx); err != nil {
		zlog.Fatal("failed to clear session", zap.Error(err))
	}
	zlog.Info("seeded users", zap.Int("count", dir.Count()))
}

func seedRides(ctx context.Context, kv store.Store, loc *time.Location, zlog *zap.Logger) {
	b := board.New(kv, zlog, board.WithLocation(loc))
	if err := b.Load(ctx); err != nil {
		zlog.Fatal("failed to load rides", zap.Error(err))
	}

	now := time.Now().In(loc)
	for _, r := range demoRides {
		at := now.Add(r.Offset)
		if !clock.SameDay(now, at, loc) {
			zlog.Warn("skipping ride departing after midnight", zap.String("employee_id", r.EmployeeID))
			continue
		}

		_, err := b.AddRide(ctx, models.AddRideRequest{
			EmployeeID:  r.EmployeeID,
			VehicleType: r.VehicleType,
			VehicleNo:   r.VehicleNo,
			VacantSeats: r.Seats,
			Time:        clock.FormatHHMM(clock.MinuteOfDay(at)),
			PickUpPoint: r.PickUp,
			Destination: r.Destination,
		})
		if err != nil && !errors.Is(err, apperrors.ErrDuplicateEmployeeOffer) {
			zlog.Fatal("failed to seed ride", zap.String("employee_id", r.EmployeeID), zap.Error(err))
		}
	}
	zlog.Info("seeded rides", zap.Int("count", len(b.AllRides())))
}
