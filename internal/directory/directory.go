// Package directory owns the registered users and the current session.
package directory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	apperrors "carpool/internal/errors"
	"carpool/internal/events"
	"carpool/internal/models"
	"carpool/internal/store"
	"carpool/pkg/auth"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Directory handles signup, credential checks and the session pointer.
// The session is held as a user id and resolved against the collection on
// every read.
type Directory struct {
	mu     sync.Mutex
	store  store.Store
	hasher auth.PasswordHasher
	bus    *events.Bus
	log    *zap.Logger
	now    func() time.Time
	newID  func() string

	caseSensitiveIDs bool

	loaded    bool
	users     []models.User
	sessionID string
}

// Option configures a Directory.
type Option func(*Directory)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(d *Directory) { d.now = now }
}

// WithHasher sets the password hasher.
func WithHasher(h auth.PasswordHasher) Option {
	return func(d *Directory) { d.hasher = h }
}

// WithIDGenerator sets the user id generator.
func WithIDGenerator(fn func() string) Option {
	return func(d *Directory) { d.newID = fn }
}

// WithCaseSensitiveEmployeeIDs makes signup treat "e1" and "E1" as different
// employee IDs. Login still matches identifiers case-insensitively.
func WithCaseSensitiveEmployeeIDs() Option {
	return func(d *Directory) { d.caseSensitiveIDs = true }
}

// New creates a Directory backed by s. State is read from s by Load, or
// lazily by the first mutating call.
func New(s store.Store, log *zap.Logger, opts ...Option) *Directory {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Directory{
		store:  s,
		hasher: auth.BcryptHasher{},
		log:    log.Named("directory"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.bus = events.NewBus(d.log)
	return d
}

// Subscribe registers h for directory change events.
func (d *Directory) Subscribe(h events.Handler) (unsubscribe func()) {
	return d.bus.Subscribe(h)
}

// Load hydrates users and the session from the store. Corrupt payloads are
// treated as absent.
func (d *Directory) Load(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.load(ctx)
}

func (d *Directory) ensureLoaded(ctx context.Context) error {
	if d.loaded {
		return nil
	}
	return d.load(ctx)
}

func (d *Directory) load(ctx context.Context) error {
	var users []models.User
	if _, err := d.store.Get(ctx, store.UsersKey, &users); err != nil {
		if !errors.Is(err, store.ErrCorrupt) {
			return fmt.Errorf("load users: %w", err)
		}
		d.log.Warn("stored users are corrupt, starting empty", zap.Error(err))
		users = nil
	}

	var session models.User
	found, err := d.store.Get(ctx, store.SessionKey, &session)
	if err != nil {
		if !errors.Is(err, store.ErrCorrupt) {
			return fmt.Errorf("load session: %w", err)
		}
		d.log.Warn("stored session is corrupt, ignoring it", zap.Error(err))
		found = false
	}

	d.users = users
	d.sessionID = ""
	if found && d.indexByID(session.ID) >= 0 {
		d.sessionID = session.ID
	}
	d.loaded = true

	d.log.Info("directory loaded",
		zap.Int("users", len(d.users)),
		zap.Bool("session", d.sessionID != ""),
	)
	return nil
}

// SignUp registers a new user and makes them the current session.
// Checks run in order: employee ID, email, password confirmation.
func (d *Directory) SignUp(ctx context.Context, req models.SignUpRequest) (*models.User, error) {
	d.mu.Lock()
	user, err := d.signUp(ctx, req)
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}

	profile := user.Profile()
	at := d.now()
	d.bus.Publish(events.Event{Kind: events.UserSignedUp, At: at, EmployeeID: user.EmployeeID, User: &profile})
	d.bus.Publish(events.Event{Kind: events.SessionChanged, At: at, EmployeeID: user.EmployeeID, User: &profile})
	return user, nil
}

func (d *Directory) signUp(ctx context.Context, req models.SignUpRequest) (*models.User, error) {
	if err := d.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	employeeID := strings.TrimSpace(req.EmployeeID)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	log := d.log.With(zap.String("employee_id", employeeID))

	if d.employeeIDTaken(employeeID) {
		log.Info("signup rejected", zap.String("reason", "duplicate_employee_id"))
		return nil, apperrors.ErrDuplicateEmployeeID
	}
	if d.emailTaken(email) {
		log.Info("signup rejected", zap.String("reason", "duplicate_email"))
		return nil, apperrors.ErrDuplicateEmail
	}
	if req.Password != req.ConfirmPassword {
		log.Info("signup rejected", zap.String("reason", "password_mismatch"))
		return nil, apperrors.ErrPasswordMismatch
	}

	hash, err := d.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:         d.newID(),
		EmployeeID: employeeID,
		Email:      email,
		Password:   hash,
		CreatedAt:  d.now(),
	}

	next := append(slices.Clone(d.users), user)
	if err := d.store.Set(ctx, store.UsersKey, next); err != nil {
		log.Error("failed to persist users", zap.Error(err))
		return nil, fmt.Errorf("save users: %w", err)
	}

	// The account only exists once its session is stored too.
	if err := d.store.Set(ctx, store.SessionKey, user); err != nil {
		log.Error("failed to persist session", zap.Error(err))
		if rerr := d.store.Set(ctx, store.UsersKey, d.users); rerr != nil {
			log.Error("failed to roll back users", zap.Error(rerr))
		}
		return nil, fmt.Errorf("save session: %w", err)
	}
	d.users = next
	d.sessionID = user.ID

	log.Info("user signed up", zap.String("user_id", user.ID))
	return &user, nil
}

// LogIn matches identifier case-insensitively against employee IDs and
// emails. Every failure is ErrInvalidCredentials.
func (d *Directory) LogIn(ctx context.Context, identifier, password string) (*models.User, error) {
	d.mu.Lock()
	user, err := d.logIn(ctx, identifier, password)
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}

	profile := user.Profile()
	d.bus.Publish(events.Event{Kind: events.SessionChanged, At: d.now(), EmployeeID: user.EmployeeID, User: &profile})
	return user, nil
}

func (d *Directory) logIn(ctx context.Context, identifier, password string) (*models.User, error) {
	if err := d.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	id := strings.ToLower(strings.TrimSpace(identifier))
	i := slices.IndexFunc(d.users, func(u models.User) bool {
		return strings.ToLower(u.EmployeeID) == id || strings.ToLower(u.Email) == id
	})
	if i < 0 {
		d.log.Info("login rejected", zap.String("reason", "unknown_identifier"))
		return nil, apperrors.ErrInvalidCredentials
	}

	user := d.users[i]
	if err := d.hasher.Compare(password, user.Password); err != nil {
		d.log.Info("login rejected", zap.String("reason", "wrong_password"), zap.String("employee_id", user.EmployeeID))
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := d.store.Set(ctx, store.SessionKey, user); err != nil {
		d.log.Error("failed to persist session", zap.Error(err))
		return nil, fmt.Errorf("save session: %w", err)
	}
	d.sessionID = user.ID

	d.log.Info("user logged in", zap.String("employee_id", user.EmployeeID))
	return &user, nil
}

// LogOut clears the current session.
func (d *Directory) LogOut(ctx context.Context) error {
	d.mu.Lock()
	err := d.store.Delete(ctx, store.SessionKey)
	if err == nil {
		d.sessionID = ""
	}
	d.mu.Unlock()

	if err != nil {
		d.log.Error("failed to clear session", zap.Error(err))
		return fmt.Errorf("clear session: %w", err)
	}

	d.bus.Publish(events.Event{Kind: events.SessionChanged, At: d.now()})
	return nil
}

// IsAuthenticated reports whether a current session exists.
func (d *Directory) IsAuthenticated() bool {
	return d.CurrentUser() != nil
}

// CurrentUser resolves the session against the user collection.
func (d *Directory) CurrentUser() *models.User {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.sessionID == "" {
		return nil
	}
	i := d.indexByID(d.sessionID)
	if i < 0 {
		return nil
	}
	user := d.users[i]
	return &user
}

// FindByEmployeeID returns the user with exactly this employee ID.
func (d *Directory) FindByEmployeeID(employeeID string) (*models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := slices.IndexFunc(d.users, func(u models.User) bool { return u.EmployeeID == employeeID })
	if i < 0 {
		return nil, apperrors.ErrUserNotFound
	}
	user := d.users[i]
	return &user, nil
}

// Count returns the number of registered users.
func (d *Directory) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.users)
}

func (d *Directory) indexByID(id string) int {
	return slices.IndexFunc(d.users, func(u models.User) bool { return u.ID == id })
}

func (d *Directory) employeeIDTaken(employeeID string) bool {
	return slices.ContainsFunc(d.users, func(u models.User) bool {
		if d.caseSensitiveIDs {
			return u.EmployeeID == employeeID
		}
		return strings.EqualFold(u.EmployeeID, employeeID)
	})
}

func (d *Directory) emailTaken(email string) bool {
	return slices.ContainsFunc(d.users, func(u models.User) bool {
		return strings.EqualFold(u.Email, email)
	})
}
