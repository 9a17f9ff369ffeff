package repositories

import (
	"context"
	"fmt"

	"MediLedger/ledger"
	"MediLedger/models"
)

// UserRepository registers and looks up portal identities on the ledger.
type UserRepository struct {
	ledger ledger.Ledger
}

func NewUserRepository(l ledger.Ledger) *UserRepository {
	return &UserRepository{ledger: l}
}

func (r *UserRepository) RegisterPatient(ctx context.Context, form models.PatientRegistration) (string, error) {
	id, err := r.ledger.RegisterPatient(ctx, form)
	if err != nil {
		return "", fmt.Errorf("failed to register patient: %w", err)
	}
	return id, nil
}

func (r *UserRepository) RegisterDoctor(ctx context.Context, form models.DoctorRegistration) (string, error) {
	id, err := r.ledger.RegisterDoctor(ctx, form)
	if err != nil {
		return "", fmt.Errorf("failed to register doctor: %w", err)
	}
	return id, nil
}

// Authenticate checks the credentials for the given role.
func (r *UserRepository) Authenticate(ctx context.Context, role models.Role, id, password string) (bool, error) {
	if role == models.RoleDoctor {
		return r.ledger.LoginDoctor(ctx, id, password)
	}
	return r.ledger.LoginPatient(ctx, id, password)
}

func (r *UserRepository) GetPatient(ctx context.Context, id string) (*models.PatientRecord, error) {
	return r.ledger.GetPatientByID(ctx, id)
}

func (r *UserRepository) GetDoctor(ctx context.Context, regID string) (*models.DoctorRecord, error) {
	return r.ledger.GetDoctorByRegID(ctx, regID)
}

// Identity loads the portal identity for an id of the given role.
func (r *UserRepository) Identity(ctx context.Context, role models.Role, id string) (models.Identity, error) {
	if role == models.RoleDoctor {
		d, err := r.GetDoctor(ctx, id)
		if err != nil {
			return models.Identity{}, err
		}
		return models.Identity{ID: d.RegID, Role: role, Name: d.Name, Mobile: d.Phone}, nil
	}
	p, err := r.GetPatient(ctx, id)
	if err != nil {
		return models.Identity{}, err
	}
	return models.Identity{ID: p.ID, Role: role, Name: p.Name, Email: p.Email, Mobile: p.Mobile}, nil
}
