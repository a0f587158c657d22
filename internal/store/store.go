// Package store provides the key-value persistence the directory and the ride
// board mirror their collections to. Values are stored as JSON.
package store

import (
	"context"
	"errors"
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks carpool/internal/store Store

// Keys of the persisted state layout.
const (
	UsersKey   = "transport_facility_users"
	SessionKey = "transport_facility_current_user"
	RidesKey   = "rides"
)

// ErrCorrupt is returned by Get when a stored payload cannot be decoded.
// Callers treat it as "no data" rather than as a failure.
var ErrCorrupt = errors.New("store: corrupt payload")

// Store defines the key-value persistence operations.
type Store interface {
	// Get decodes the value under key into dest. Returns false if the key doesn't exist.
	Get(ctx context.Context, key string, dest any) (bool, error)
	// Set encodes value and stores it under key.
	Set(ctx context.Context, key string, value any) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Backend names accepted by STORE_BACKEND.
const (
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// Ensure implementations satisfy Store
var (
	_ Store = (*Redis)(nil)
	_ Store = (*Mongo)(nil)
	_ Store = (*Memory)(nil)
)
