package services

import (
	"context"
	"errors"
	"testing"

	"MediLedger/apperrors"
	"MediLedger/ledger"
	"MediLedger/ledger/ledgertest"
	"MediLedger/models"
	"MediLedger/repositories"
	"MediLedger/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthService(t *testing.T) (*AuthService, *ledgertest.Fake) {
	t.Helper()
	tokens, err := utils.NewTokenMaker("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	fake := ledgertest.NewFake()
	return NewAuthService(repositories.NewUserRepository(fake), tokens, zap.NewNop()), fake
}

func TestPatientRegistrationAndLogin(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()

	id, err := auth.RegisterPatient(ctx, models.PatientRegistration{
		Name:     "Asha",
		Email:    "asha@example.com",
		Mobile:   "5550101010",
		DOB:      "1990-04-12",
		Password: "Str0ng!pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "P001", id)

	session, err := auth.Login(ctx, models.RolePatient, id, "Str0ng!pass")
	require.NoError(t, err)
	assert.Equal(t, "Asha", session.Identity.Name)
	assert.Equal(t, "asha@example.com", session.Identity.Email)

	identity, err := auth.Authenticate(session.AccessToken, models.RolePatient)
	require.NoError(t, err)
	assert.Equal(t, session.Identity, identity)

	_, err = auth.Authenticate(session.AccessToken, models.RoleDoctor)
	assert.True(t, errors.Is(err, apperrors.ErrNotAuthorized))

	_, err = auth.Login(ctx, models.RolePatient, id, "wrong")
	assert.True(t, errors.Is(err, apperrors.ErrNotAuthorized))
}

func TestDoctorRegistrationKeepsRegID(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()
	form := models.DoctorRegistration{Name: "Dr. Rao", RegID: " MC-42 ", Phone: "5550202020", Password: "Str0ng!pass"}

	id, err := auth.RegisterDoctor(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, "MC-42", id)

	_, err = auth.RegisterDoctor(ctx, form)
	assert.True(t, errors.Is(err, apperrors.ErrRemoteRejected))

	session, err := auth.Login(ctx, models.RoleDoctor, "MC-42", "Str0ng!pass")
	require.NoError(t, err)
	assert.Equal(t, models.RoleDoctor, session.Identity.Role)

	access, err := auth.Refresh(session.RefreshToken)
	require.NoError(t, err)
	identity, err := auth.Authenticate(access, models.RoleDoctor)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Rao", identity.Name)
}

func TestLoginInputErrors(t *testing.T) {
	auth, fake := newAuthService(t)
	ctx := context.Background()

	_, err := auth.Login(ctx, models.Role("admin"), "X", "pw")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	_, err = auth.Login(ctx, models.RolePatient, " ", "pw")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	fake.Fail(ledger.OpLoginPatient, ledgertest.Unavailable())
	_, err = auth.Login(ctx, models.RolePatient, "P001", "pw")
	assert.True(t, errors.Is(err, apperrors.ErrRemoteUnavailable))

	_, err = auth.RegisterPatient(ctx, models.PatientRegistration{Name: "A"})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Zero(t, fake.Calls(ledger.OpRegisterPatient))
}
