//go:build api

package api

import (
	"context"
	"net/http"
	"testing"

	"carpool/internal/models"
	"carpool/internal/store"
	"carpool/test/api/testserver"
	"carpool/test/fixtures"
	"carpool/test/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSignUp tests the POST /api/v1/auth/signup endpoint.
func TestSignUp(t *testing.T) {
	const path = "/api/v1/auth/signup"

	t.Run("success - creates account, session and token", func(t *testing.T) {
		testServer.CleanupBetweenTests(t)

		w := testutil.MakeRequest(t, testServer.Router, http.MethodPost, path, fixtures.NewSignUp("E1001").WithEmail("Asha@Example.com").Build())

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		resp := testutil.ParseAPIResponse(t, w)
		assert.True(t, resp.Success)
		assert.Equal(t, models.MsgSignedUp, resp.Message)

		data := testutil.ParseData[models.AuthResponse](t, w)
		assert.NotEmpty(t, data.AccessToken)
		assert.Greater(t, data.ExpiresIn, 0)
		assert.Equal(t, "E1001", data.User.EmployeeID)
		assert.Equal(t, "asha@example.com", data.User.Email)

		ctx := context.Background()
		for _, key := range []string{store.UsersKey, store.SessionKey} {
			ok, err := testServer.Redis.Exists(ctx, key)
			require.NoError(t, err)
			assert.True(t, ok, "%s should be persisted", key)
		}
		assert.NotContains(t, w.Body.String(), fixtures.DefaultPassword)
	})

	tests := []struct {
		name           string
		existing       string
		req            models.SignUpRequest
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "duplicate employee id",
			existing:       "E1001",
			req:            fixtures.NewSignUp("E1001").WithEmail("other@example.com").Build(),
			expectedStatus: http.StatusConflict,
			expectedError:  "Employee ID already registered",
		},
		{
			name:           "duplicate employee id differing in case",
			existing:       "E1001",
			req:            fixtures.NewSignUp("e1001").WithEmail("other@example.com").Build(),
			expectedStatus: http.StatusConflict,
			expectedError:  "Employee ID already registered",
		},
		{
			name:           "duplicate email",
			existing:       "E1001",
			req:            fixtures.NewSignUp("E2002").WithEmail("E1001@EXAMPLE.COM").Build(),
			expectedStatus: http.StatusConflict,
			expectedError:  "Email already registered",
		},
		{
			name:           "password mismatch",
			req:            fixtures.NewSignUp("E1001").WithConfirmation("password124").Build(),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Passwords do not match",
		},
		{
			name:           "invalid email",
			req:            fixtures.NewSignUp("E1001").WithEmail("not-an-email").Build(),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "email must be a valid email address",
		},
	}

	for _, tt := range tests {
		t.Run("error - "+tt.name, func(t *testing.T) {
			testServer.CleanupBetweenTests(t)
			if tt.existing != "" {
				testserver.NewAuthHelper(testServer).SignUp(t, tt.existing)
			}

			w := testutil.MakeRequest(t, testServer.Router, http.MethodPost, path, tt.req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := testutil.ParseAPIResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectedError, resp.Error)
		})
	}
}

// TestLogIn tests the POST /api/v1/auth/login endpoint.
func TestLogIn(t *testing.T) {
	testServer.CleanupBetweenTests(t)
	helper := testserver.NewAuthHelper(testServer)
	helper.SignUp(t, "E1001")

	for _, identifier := range []string{"E1001", "e1001", " E1001 ", "e1001@example.com", "E1001@EXAMPLE.COM"} {
		t.Run("success - "+identifier, func(t *testing.T) {
			resp := helper.LogIn(t, identifier)
			assert.Equal(t, "E1001", resp.User.EmployeeID)
		})
	}

	t.Run("error - wrong password", func(t *testing.T) {
		req := models.LoginRequest{Identifier: "E1001", Password: "wrong-password"}
		w := testutil.MakeRequest(t, testServer.Router, http.MethodPost, "/api/v1/auth/login", req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid employee ID/email or password", testutil.ParseAPIResponse(t, w).Error)
	})

	t.Run("error - unknown employee", func(t *testing.T) {
		req := models.LoginRequest{Identifier: "E9999", Password: fixtures.DefaultPassword}
		w := testutil.MakeRequest(t, testServer.Router, http.MethodPost, "/api/v1/auth/login", req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

// TestSession covers logout and session restore across a restart.
func TestSession(t *testing.T) {
	testServer.CleanupBetweenTests(t)
	token := testserver.NewAuthHelper(testServer).Token(t, "E1001")

	session := func(t *testing.T) models.SessionResponse {
		t.Helper()
		w := testutil.MakeRequest(t, testServer.Router, http.MethodGet, "/api/v1/auth/session", nil)
		require.Equal(t, http.StatusOK, w.Code)
		return testutil.ParseData[models.SessionResponse](t, w)
	}

	t.Run("session survives restart", func(t *testing.T) {
		testServer.Restart(t)

		s := session(t)
		assert.True(t, s.Authenticated)
		require.NotNil(t, s.User)
		assert.Equal(t, "E1001", s.User.EmployeeID)
	})

	t.Run("logout clears the session", func(t *testing.T) {
		w := testutil.MakeAuthRequest(t, testServer.Router, http.MethodPost, "/api/v1/auth/logout", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		assert.False(t, session(t).Authenticated)

		ok, err := testServer.Redis.Exists(context.Background(), store.SessionKey)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
