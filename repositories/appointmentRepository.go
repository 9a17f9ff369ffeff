package repositories

import (
	"context"
	"fmt"

	"MediLedger/cache"
	"MediLedger/ledger"
	"MediLedger/models"

	"go.uber.org/zap"
)

// AppointmentRepository reads appointments from the ledger and keeps the
// local mirror of them.
type AppointmentRepository struct {
	ledger ledger.Ledger
	store  *cache.Store
	logger *zap.Logger
}

func NewAppointmentRepository(l ledger.Ledger, store *cache.Store, logger *zap.Logger) *AppointmentRepository {
	return &AppointmentRepository{ledger: l, store: store, logger: logger}
}

// Create writes the appointment to the ledger and returns it with the id the
// ledger assigned.
func (r *AppointmentRepository) Create(ctx context.Context, appointment models.Appointment) (models.Appointment, error) {
	id, err := r.ledger.CreateAppointment(ctx, appointment)
	if err != nil {
		return appointment, fmt.Errorf("failed to create appointment: %w", err)
	}
	appointment.ID = id
	return appointment, nil
}

// ListFromLedger returns every appointment the ledger holds for the identity.
func (r *AppointmentRepository) ListFromLedger(ctx context.Context, actor models.Identity) ([]models.Appointment, error) {
	var (
		ids []string
		err error
	)
	if actor.Role == models.RoleDoctor {
		ids, err = r.ledger.GetDoctorAppointments(ctx, actor.ID)
	} else {
		ids, err = r.ledger.GetPatientAppointments(ctx, actor.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	appointments := make([]models.Appointment, 0, len(ids))
	for _, id := range ids {
		a, err := r.ledger.GetAppointmentByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get appointment %s: %w", id, err)
		}
		appointments = append(appointments, *a)
	}
	return appointments, nil
}

// GetFromLedger returns one appointment from the ledger.
func (r *AppointmentRepository) GetFromLedger(ctx context.Context, id string) (*models.Appointment, error) {
	return r.ledger.GetAppointmentByID(ctx, id)
}

// Delete removes the appointment from the ledger.
func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	if err := r.ledger.DeleteAppointment(ctx, id); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return nil
}

// Cached returns the mirrored appointments that belong to the identity.
func (r *AppointmentRepository) Cached(ctx context.Context, actor models.Identity) ([]models.Appointment, error) {
	all, err := cache.ReadAll[models.Appointment](ctx, r.store, cache.CollectionAppointments)
	if err != nil {
		return nil, err
	}
	mine := make([]models.Appointment, 0, len(all))
	for _, a := range all {
		if a.BelongsTo(actor.ID, actor.Role) {
			mine = append(mine, a)
		}
	}
	return mine, nil
}

// FindCached looks an appointment up in the mirror by id.
func (r *AppointmentRepository) FindCached(ctx context.Context, id string) (*models.Appointment, error) {
	all, err := cache.ReadAll[models.Appointment](ctx, r.store, cache.CollectionAppointments)
	if err != nil {
		return nil, err
	}
	for _, a := range all {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, nil
}

// Mirror adds or replaces the appointment in the mirror. Failures are
// logged; the mirror never fails a confirmed ledger write.
func (r *AppointmentRepository) Mirror(ctx context.Context, appointment models.Appointment) {
	err := cache.Update(ctx, r.store, cache.CollectionAppointments, func(all []models.Appointment) []models.Appointment {
		for i := range all {
			if all[i].ID == appointment.ID || all[i].Key() == appointment.Key() {
				all[i] = appointment
				return all
			}
		}
		return append(all, appointment)
	})
	if err != nil {
		r.logger.Warn("failed to mirror appointment", zap.String("appointment_id", appointment.ID), zap.Error(err))
	}
}

// ReplaceFor rewrites the identity's part of the mirror with appointments,
// leaving other identities' entries untouched.
func (r *AppointmentRepository) ReplaceFor(ctx context.Context, actor models.Identity, appointments []models.Appointment) {
	err := cache.Update(ctx, r.store, cache.CollectionAppointments, func(all []models.Appointment) []models.Appointment {
		kept := make([]models.Appointment, 0, len(all)+len(appointments))
		for _, a := range all {
			if !a.BelongsTo(actor.ID, actor.Role) {
				kept = append(kept, a)
			}
		}
		return append(kept, appointments...)
	})
	if err != nil {
		r.logger.Warn("failed to refresh appointment mirror", zap.String("user_id", actor.ID), zap.Error(err))
	}
}

// Forget removes the appointment from the mirror.
func (r *AppointmentRepository) Forget(ctx context.Context, id string) {
	err := cache.Update(ctx, r.store, cache.CollectionAppointments, func(all []models.Appointment) []models.Appointment {
		kept := all[:0]
		for _, a := range all {
			if a.ID != id {
				kept = append(kept, a)
			}
		}
		return kept
	})
	if err != nil {
		r.logger.Warn("failed to remove appointment from mirror", zap.String("appointment_id", id), zap.Error(err))
	}
}
