package utils

import (
	"testing"
	"time"

	"MediLedger/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestNewTokenMakerRejectsShortKey(t *testing.T) {
	_, err := NewTokenMaker("short")
	assert.Error(t, err)
}

func TestTokenRoundTripCarriesIdentity(t *testing.T) {
	maker, err := NewTokenMaker(testKey)
	require.NoError(t, err)

	identity := models.Identity{ID: "P001", Role: models.RolePatient, Name: "Asha", Email: "asha@example.com"}
	access, refresh, err := maker.GenerateTokens(identity)
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)

	claims, err := maker.ValidateToken(access, models.RolePatient)
	require.NoError(t, err)
	assert.Equal(t, identity, claims.Identity())

	_, err = maker.ValidateToken(access, models.RoleDoctor)
	assert.Error(t, err)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	maker, err := NewTokenMaker(testKey)
	require.NoError(t, err)

	token, err := maker.GenerateAccessToken(models.Identity{ID: "D001", Role: models.RoleDoctor})
	require.NoError(t, err)

	maker.now = func() time.Time { return time.Now().Add(AccessTokenExpiry + time.Minute) }
	_, err = maker.ValidateToken(token)
	assert.EqualError(t, err, "token expired")
}
