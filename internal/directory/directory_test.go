package directory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	apperrors "carpool/internal/errors"
	"carpool/internal/events"
	"carpool/internal/models"
	"carpool/internal/store"
	"carpool/internal/store/mocks"
	"carpool/pkg/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

var fixedNow = time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)

func newTestDirectory(t *testing.T, s store.Store, opts ...Option) *Directory {
	t.Helper()
	seq := 0
	base := []Option{
		WithHasher(auth.BcryptHasher{Cost: bcrypt.MinCost}),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("user-%d", seq)
		}),
	}
	d := New(s, nil, append(base, opts...)...)
	require.NoError(t, d.Load(context.Background()))
	return d
}

func signUpRequest(employeeID, email string) models.SignUpRequest {
	return models.SignUpRequest{
		EmployeeID:      employeeID,
		Email:           email,
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
}

func TestDirectory_SignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user and session", func(t *testing.T) {
		d := newTestDirectory(t, store.NewMemory())

		user, err := d.SignUp(ctx, signUpRequest("E1", "A@X.com"))

		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
		assert.Equal(t, "E1", user.EmployeeID)
		assert.Equal(t, "a@x.com", user.Email)
		assert.NotEqual(t, "secret1", user.Password)
		assert.True(t, d.IsAuthenticated())
		assert.Equal(t, "E1", d.CurrentUser().EmployeeID)
		assert.Equal(t, 1, d.Count())
	})

	t.Run("duplicate employee id", func(t *testing.T) {
		d := newTestDirectory(t, store.NewMemory())
		_, err := d.SignUp(ctx, signUpRequest("E1", "a@x.com"))
		require.NoError(t, err)

		_, err = d.SignUp(ctx, signUpRequest("E1", "b@x.com"))

		assert.ErrorIs(t, err, apperrors.ErrDuplicateEmployeeID)
		assert.Equal(t, 1, d.Count())
	})

	t.Run("employee id differing only in case is a duplicate", func(t *testing.T) {
		d := newTestDirectory(t, store.NewMemory())
		_, err := d.SignUp(ctx, signUpRequest("e1", "a@x.com"))
		require.NoError(t, err)

		_, err = d.SignUp(ctx, signUpRequest("E1", "b@x.com"))

		assert.ErrorIs(t, err, apperrors.ErrDuplicateEmployeeID)
	})

	t.Run("case sensitive employee ids when configured", func(t *testing.T) {
		d := newTestDirectory(t, store.NewMemory(), WithCaseSensitiveEmployeeIDs())
		_, err := d.SignUp(ctx, signUpRequest("e1", "a@x.com"))
		require.NoError(t, err)

		_, err = d.SignUp(ctx, signUpRequest("E1", "b@x.com"))

		assert.NoError(t, err)
		assert.Equal(t, 2, d.Count())
	})

	t.Run("duplicate email is case insensitive", func(t *testing.T) {
		d := newTestDirectory(t, store.NewMemory())
		_, err := d.SignUp(ctx, signUpRequest("E1", "a@x.com"))
		require.NoError(t, err)

		_, err = d.SignUp(ctx, signUpRequest("E2", "A@X.COM"))

		assert.ErrorIs(t, err, apperrors.ErrDuplicateEmail)
	})

	t.Run("employee id checked before email", func(t *testing.T) {
		d := newTestDirectory(t, store.NewMemory())
		_, err := d.SignUp(ctx, signUpRequest("E1", "a@x.com"))
		require.NoError(t, err)

		_, err = d.SignUp(ctx, signUpRequest("E1", "a@x.com"))

		assert.ErrorIs(t, err, apperrors.ErrDuplicateEmployeeID)
	})

	t.Run("password mismatch", func(t *testing.T) {
		d := newTestDirectory(t, store.NewMemory())
		req := signUpRequest("E1", "a@x.com")
		req.ConfirmPassword = "other12"

		_, err := d.SignUp(ctx, req)

		assert.ErrorIs(t, err, apperrors.ErrPasswordMismatch)
		assert.Equal(t, 0, d.Count())
		assert.False(t, d.IsAuthenticated())
	})

	t.Run("publishes signup and session events", func(t *testing.T) {
		d := newTestDirectory(t, store.NewMemory())
		var kinds []events.Kind
		d.Subscribe(func(e events.Event) { kinds = append(kinds, e.Kind) })

		_, err := d.SignUp(ctx, signUpRequest("E1", "a@x.com"))

		require.NoError(t, err)
		assert.Equal(t, []events.Kind{events.UserSignedUp, events.SessionChanged}, kinds)
	})
}

func TestDirectory_LogIn(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) *Directory {
		d := newTestDirectory(t, store.NewMemory())
		_, err := d.SignUp(ctx, signUpRequest("E1", "a@x.com"))
		require.NoError(t, err)
		require.NoError(t, d.LogOut(ctx))
		return d
	}

	tests := []struct {
		name       string
		identifier string
		password   string
		wantErr    error
	}{
		{name: "employee id", identifier: "E1", password: "secret1"},
		{name: "email upper case with spaces", identifier: "  A@X.COM ", password: "secret1"},
		{name: "employee id lower case", identifier: "e1", password: "secret1"},
		{name: "wrong password", identifier: "E1", password: "wrong12", wantErr: apperrors.ErrInvalidCredentials},
		{name: "unknown identifier", identifier: "E9", password: "secret1", wantErr: apperrors.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setup(t)

			user, err := d.LogIn(ctx, tt.identifier, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.False(t, d.IsAuthenticated())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "E1", user.EmployeeID)
			assert.True(t, d.IsAuthenticated())
		})
	}
}

func TestDirectory_LogOut(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	d := newTestDirectory(t, s)
	_, err := d.SignUp(ctx, signUpRequest("E1", "a@x.com"))
	require.NoError(t, err)

	var got []events.Event
	d.Subscribe(func(e events.Event) { got = append(got, e) })

	require.NoError(t, d.LogOut(ctx))

	assert.False(t, d.IsAuthenticated())
	assert.Nil(t, d.CurrentUser())
	var session models.User
	found, err := s.Get(ctx, store.SessionKey, &session)
	require.NoError(t, err)
	assert.False(t, found)
	require.Len(t, got, 1)
	assert.Equal(t, events.SessionChanged, got[0].Kind)
	assert.Nil(t, got[0].User)
}

func TestDirectory_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("restores users and session", func(t *testing.T) {
		s := store.NewMemory()
		first := newTestDirectory(t, s)
		_, err := first.SignUp(ctx, signUpRequest("E1", "a@x.com"))
		require.NoError(t, err)

		second := newTestDirectory(t, s)

		assert.Equal(t, 1, second.Count())
		require.True(t, second.IsAuthenticated())
		assert.Equal(t, "E1", second.CurrentUser().EmployeeID)

		_, err = second.LogIn(ctx, "a@x.com", "secret1")
		assert.NoError(t, err)
	})

	t.Run("corrupt users start empty", func(t *testing.T) {
		s := store.NewMemory()
		s.SetRaw(store.UsersKey, []byte("{not json"))

		d := newTestDirectory(t, s)

		assert.Equal(t, 0, d.Count())
		_, err := d.SignUp(ctx, signUpRequest("E1", "a@x.com"))
		assert.NoError(t, err)
	})

	t.Run("corrupt session is ignored", func(t *testing.T) {
		s := store.NewMemory()
		s.SetRaw(store.SessionKey, []byte("[1,2"))

		d := newTestDirectory(t, s)

		assert.False(t, d.IsAuthenticated())
	})

	t.Run("session for unknown user is ignored", func(t *testing.T) {
		s := store.NewMemory()
		require.NoError(t, s.Set(ctx, store.SessionKey, models.User{ID: "ghost", EmployeeID: "E9"}))

		d := newTestDirectory(t, s)

		assert.False(t, d.IsAuthenticated())
	})

	t.Run("store failure is returned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		s := mocks.NewMockStore(ctrl)
		s.EXPECT().Get(gomock.Any(), store.UsersKey, gomock.Any()).Return(false, errors.New("connection refused"))

		d := New(s, nil)

		assert.Error(t, d.Load(ctx))
	})
}

func TestDirectory_SaveFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	s := mocks.NewMockStore(ctrl)
	s.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil).Times(2)
	s.EXPECT().Set(gomock.Any(), store.UsersKey, gomock.Any()).Return(errors.New("disk full"))

	d := newTestDirectory(t, s)
	var published int
	d.Subscribe(func(events.Event) { published++ })

	_, err := d.SignUp(ctx, signUpRequest("E1", "a@x.com"))

	assert.Error(t, err)
	assert.Equal(t, 0, d.Count())
	assert.False(t, d.IsAuthenticated())
	assert.Zero(t, published)
}

func TestDirectory_SessionSaveFailureRollsBackSignUp(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	s := mocks.NewMockStore(ctrl)
	s.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil).Times(2)
	var stored []models.User
	s.EXPECT().Set(gomock.Any(), store.UsersKey, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, value any) error {
			stored = value.([]models.User)
			return nil
		}).Times(2)
	s.EXPECT().Set(gomock.Any(), store.SessionKey, gomock.Any()).Return(errors.New("connection reset"))

	d := newTestDirectory(t, s)
	var published int
	d.Subscribe(func(events.Event) { published++ })

	_, err := d.SignUp(ctx, signUpRequest("E1", "a@x.com"))

	assert.Error(t, err)
	assert.Equal(t, 0, d.Count())
	assert.False(t, d.IsAuthenticated())
	assert.Empty(t, stored)
	assert.Zero(t, published)

	s.EXPECT().Set(gomock.Any(), store.UsersKey, gomock.Any()).Return(nil)
	s.EXPECT().Set(gomock.Any(), store.SessionKey, gomock.Any()).Return(nil)

	_, err = d.SignUp(ctx, signUpRequest("E1", "a@x.com"))

	require.NoError(t, err)
	assert.Equal(t, 1, d.Count())
	assert.True(t, d.IsAuthenticated())
}

func TestDirectory_FindByEmployeeID(t *testing.T) {
	ctx := context.Background()
	d := newTestDirectory(t, store.NewMemory())
	_, err := d.SignUp(ctx, signUpRequest("E1", "a@x.com"))
	require.NoError(t, err)

	user, err := d.FindByEmployeeID("E1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)

	_, err = d.FindByEmployeeID("E2")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
