package services

import (
	"context"
	"fmt"
	"strings"

	"MediLedger/apperrors"
	"MediLedger/models"
	"MediLedger/repositories"
	"MediLedger/utils"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Session is what a successful login returns.
type Session struct {
	Identity     models.Identity `json:"user"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
}

// AuthService registers portal users on the ledger and issues session
// tokens for them.
type AuthService struct {
	users  *repositories.UserRepository
	tokens *utils.TokenMaker
	logger *zap.Logger
}

func NewAuthService(users *repositories.UserRepository, tokens *utils.TokenMaker, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger}
}

// RegisterPatient validates the form and registers the patient. It returns
// the id the ledger assigned.
func (s *AuthService) RegisterPatient(ctx context.Context, form models.PatientRegistration) (string, error) {
	if err := utils.ValidatePatientRegistration(form); err != nil {
		return "", err
	}
	id, err := s.users.RegisterPatient(ctx, form)
	if err != nil {
		s.logger.Error("authService.RegisterPatient failed", zap.String("email", form.Email), zap.Error(err))
		return "", err
	}
	s.logger.Info("patient registered", zap.String("patient_id", id))
	return id, nil
}

// RegisterDoctor validates the form and registers the doctor.
func (s *AuthService) RegisterDoctor(ctx context.Context, form models.DoctorRegistration) (string, error) {
	form.RegID = strings.TrimSpace(form.RegID)
	if err := utils.ValidateDoctorRegistration(form); err != nil {
		return "", err
	}
	id, err := s.users.RegisterDoctor(ctx, form)
	if err != nil {
		s.logger.Error("authService.RegisterDoctor failed", zap.String("reg_id", form.RegID), zap.Error(err))
		return "", err
	}
	s.logger.Info("doctor registered", zap.String("doctor_id", id))
	return id, nil
}

// Login checks the credentials on the ledger and opens a session.
func (s *AuthService) Login(ctx context.Context, role models.Role, id, password string) (*Session, error) {
	if !role.Valid() {
		return nil, apperrors.Validation(fmt.Sprintf("unknown role %q", role))
	}
	id = strings.TrimSpace(id)
	if id == "" || password == "" {
		return nil, apperrors.Validation("id and password are required")
	}

	ok, err := s.users.Authenticate(ctx, role, id, password)
	if err != nil {
		s.logger.Warn("authService.Login failed", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}
	if !ok {
		return nil, apperrors.NotAuthorized("invalid id or password")
	}

	identity, err := s.users.Identity(ctx, role, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load profile")
	}
	access, refresh, err := s.tokens.GenerateTokens(identity)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user logged in", zap.String("user_id", id), zap.String("role", string(role)))
	return &Session{Identity: identity, AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh issues a new access token for a valid refresh token.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	claims, err := s.tokens.ValidateToken(refreshToken, models.RolePatient, models.RoleDoctor)
	if err != nil {
		return "", apperrors.NotAuthorized(err.Error())
	}
	return s.tokens.GenerateAccessToken(claims.Identity())
}

// Authenticate resolves an access token to the acting identity.
func (s *AuthService) Authenticate(token string, roles ...models.Role) (models.Identity, error) {
	claims, err := s.tokens.ValidateToken(token, roles...)
	if err != nil {
		return models.Identity{}, apperrors.NotAuthorized(err.Error())
	}
	return claims.Identity(), nil
}
