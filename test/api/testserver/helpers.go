//go:build api

package testserver

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"carpool/internal/models"
	"carpool/test/fixtures"
	"carpool/test/testutil"

	"github.com/stretchr/testify/require"
)

// AuthHelper provides authentication helpers for API tests.
type AuthHelper struct {
	server *TestServer
}

// NewAuthHelper creates a new auth helper.
func NewAuthHelper(server *TestServer) *AuthHelper {
	return &AuthHelper{server: server}
}

// SignUp registers employeeID with the default fixture credentials and
// returns the auth response.
func (ah *AuthHelper) SignUp(t *testing.T, employeeID string) models.AuthResponse {
	t.Helper()

	w := testutil.MakeRequest(t, ah.server.Router, http.MethodPost, "/api/v1/auth/signup", fixtures.NewSignUp(employeeID).Build())
	require.Equal(t, http.StatusCreated, w.Code, "signup should return 201, got: %s", w.Body.String())

	return testutil.ParseData[models.AuthResponse](t, w)
}

// Token registers employeeID and returns just the access token.
func (ah *AuthHelper) Token(t *testing.T, employeeID string) string {
	t.Helper()
	return ah.SignUp(t, employeeID).AccessToken
}

// LogIn logs in with identifier and the default password.
func (ah *AuthHelper) LogIn(t *testing.T, identifier string) models.AuthResponse {
	t.Helper()

	req := models.LoginRequest{Identifier: identifier, Password: fixtures.DefaultPassword}
	w := testutil.MakeRequest(t, ah.server.Router, http.MethodPost, "/api/v1/auth/login", req)
	require.Equal(t, http.StatusOK, w.Code, "login should return 200, got: %s", w.Body.String())

	return testutil.ParseData[models.AuthResponse](t, w)
}

// RideHelper provides ride board helpers for API tests.
type RideHelper struct {
	server *TestServer
}

// NewRideHelper creates a new ride helper.
func NewRideHelper(server *TestServer) *RideHelper {
	return &RideHelper{server: server}
}

// Offer posts req as the token's employee and returns the created ride.
func (rh *RideHelper) Offer(t *testing.T, token string, req models.AddRideRequest) models.Ride {
	t.Helper()

	w := testutil.MakeAuthRequest(t, rh.server.Router, http.MethodPost, "/api/v1/rides", token, req)
	require.Equal(t, http.StatusCreated, w.Code, "offer should return 201, got: %s", w.Body.String())

	return testutil.ParseData[models.Ride](t, w)
}

// List fetches a ride listing endpoint and returns its items.
func (rh *RideHelper) List(t *testing.T, token, path string) []models.Ride {
	t.Helper()

	w := testutil.MakeAuthRequest(t, rh.server.Router, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code, "%s should return 200, got: %s", path, w.Body.String())

	return testutil.ParseData[models.RideListResponse](t, w).Items
}

// WaitForArchive waits until at least one object exists under prefix and
// returns the keys found.
func (ts *TestServer) WaitForArchive(t *testing.T, prefix string) []string {
	t.Helper()

	var keys []string
	require.Eventually(t, func() bool {
		found, err := ts.MinIO.Keys(context.Background(), prefix)
		if err != nil {
			return false
		}
		keys = found
		return len(keys) > 0
	}, 10*time.Second, 100*time.Millisecond, "no archive under %s", prefix)

	for _, k := range keys {
		require.True(t, strings.HasSuffix(k, ".json"), "unexpected archive key %s", k)
	}
	return keys
}
