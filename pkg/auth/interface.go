package auth

//go:generate mockgen -destination=mocks/mock_token_manager.go -package=mocks carpool/pkg/auth TokenManager

// TokenManager defines the interface for access token operations.
type TokenManager interface {
	// GenerateToken creates a token for a user.
	GenerateToken(userID, employeeID string) (string, error)
	// ValidateToken parses and validates a token, returning the claims if valid.
	ValidateToken(tokenString string) (*Claims, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(password, hash string) error
}

// Ensure implementations satisfy their interfaces
var (
	_ TokenManager   = (*JWTManager)(nil)
	_ PasswordHasher = BcryptHasher{}
)
