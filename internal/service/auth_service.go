package service

import (
	"context"
	"fmt"
	"time"

	"carpool/internal/directory"
	"carpool/internal/models"
	"carpool/pkg/auth"
)

// AuthService issues access tokens for directory signups and logins.
type AuthService struct {
	directory      *directory.Directory
	tokens         auth.TokenManager
	accessTokenTTL time.Duration
}

// AuthServiceConfig holds configuration for AuthService.
type AuthServiceConfig struct {
	Directory      *directory.Directory
	Tokens         auth.TokenManager
	AccessTokenTTL time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	return &AuthService{
		directory:      cfg.Directory,
		tokens:         cfg.Tokens,
		accessTokenTTL: cfg.AccessTokenTTL,
	}
}

// SignUp registers an employee and returns a token for them.
func (s *AuthService) SignUp(ctx context.Context, req *models.SignUpRequest) (*models.AuthResponse, error) {
	user, err := s.directory.SignUp(ctx, *req)
	if err != nil {
		return nil, err
	}
	return s.authResponse(user)
}

// LogIn checks credentials and returns a token.
func (s *AuthService) LogIn(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.directory.LogIn(ctx, req.Identifier, req.Password)
	if err != nil {
		return nil, err
	}
	return s.authResponse(user)
}

// LogOut ends the directory session. Issued tokens stay valid until they
// expire.
func (s *AuthService) LogOut(ctx context.Context) error {
	return s.directory.LogOut(ctx)
}

// Session reports the directory's current user.
func (s *AuthService) Session(_ context.Context) *models.SessionResponse {
	user := s.directory.CurrentUser()
	if user == nil {
		return &models.SessionResponse{}
	}
	profile := user.Profile()
	return &models.SessionResponse{Authenticated: true, User: &profile}
}

func (s *AuthService) authResponse(user *models.User) (*models.AuthResponse, error) {
	token, err := s.tokens.GenerateToken(user.ID, user.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	return &models.AuthResponse{
		AccessToken: token,
		ExpiresIn:   int(s.accessTokenTTL.Seconds()),
		User:        user.Profile(),
	}, nil
}
