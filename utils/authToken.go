package utils

import (
	"errors"
	"fmt"
	"time"

	"MediLedger/models"

	"github.com/o1egl/paseto"
)

const (
	// Set expiration times for access and refresh tokens.
	AccessTokenExpiry  = 24 * time.Hour
	RefreshTokenExpiry = 7 * 24 * time.Hour
)

// TokenClaims struct represents the data in the token: the acting identity
// and the expiry.
type TokenClaims struct {
	UserID string      `json:"userId"`
	Role   models.Role `json:"role"`
	Name   string      `json:"name"`
	Email  string      `json:"email,omitempty"`
	Mobile string      `json:"mobile,omitempty"`
	Expiry time.Time   `json:"expiry"`
}

// Identity returns the portal identity carried by the claims.
func (c TokenClaims) Identity() models.Identity {
	return models.Identity{ID: c.UserID, Role: c.Role, Name: c.Name, Email: c.Email, Mobile: c.Mobile}
}

// TokenMaker issues and validates PASETO v2 local tokens.
type TokenMaker struct {
	symmetricKey []byte
	now          func() time.Time
}

// NewTokenMaker checks that the symmetric key has the correct length
// (32 bytes).
func NewTokenMaker(symmetricKey string) (*TokenMaker, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("SYMMETRIC_KEY must be 32 bytes long. Current length: %d", len(symmetricKey))
	}
	return &TokenMaker{symmetricKey: []byte(symmetricKey), now: time.Now}, nil
}

// GenerateTokens generates both the access token and refresh token for the
// given identity.
func (m *TokenMaker) GenerateTokens(identity models.Identity) (accessToken, refreshToken string, err error) {
	accessToken, err = m.generatePASEToken(identity, AccessTokenExpiry)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = m.generatePASEToken(identity, RefreshTokenExpiry)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// GenerateAccessToken generates only the access token for a user.
func (m *TokenMaker) GenerateAccessToken(identity models.Identity) (string, error) {
	return m.generatePASEToken(identity, AccessTokenExpiry)
}

func (m *TokenMaker) generatePASEToken(identity models.Identity, expiry time.Duration) (string, error) {
	claims := TokenClaims{
		UserID: identity.ID,
		Role:   identity.Role,
		Name:   identity.Name,
		Email:  identity.Email,
		Mobile: identity.Mobile,
		Expiry: m.now().Add(expiry),
	}

	token, err := paseto.NewV2().Encrypt(m.symmetricKey, claims, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// ValidateToken validates the given token string and checks for expiry and
// required roles.
func (m *TokenMaker) ValidateToken(tokenString string, requiredRoles ...models.Role) (*TokenClaims, error) {
	var claims TokenClaims
	if err := paseto.NewV2().Decrypt(tokenString, m.symmetricKey, &claims, nil); err != nil {
		return nil, fmt.Errorf("failed to decrypt token: %w", err)
	}

	if m.now().After(claims.Expiry) {
		return nil, errors.New("token expired")
	}

	// If no roles are required, any valid token is acceptable
	if len(requiredRoles) == 0 {
		return &claims, nil
	}
	for _, role := range requiredRoles {
		if claims.Role == role {
			return &claims, nil
		}
	}
	return nil, errors.New("insufficient permissions")
}
