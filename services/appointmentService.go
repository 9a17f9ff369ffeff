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

// Outcome reports the result of a workflow action. A failed notification is
// reported here instead of failing the action.
type Outcome struct {
	Request           *models.AppointmentRequest `json:"request,omitempty"`
	Appointment       *models.Appointment        `json:"appointment,omitempty"`
	Notified          bool                       `json:"notified"`
	NotificationError string                     `json:"notification_error,omitempty"`
}

// AppointmentService runs the appointment and appointment request
// workflows. The ledger is written first; the local mirror follows a
// confirmed write and backs reads when the ledger cannot be reached.
type AppointmentService struct {
	appointments *repositories.AppointmentRepository
	requests     *repositories.RequestRepository
	users        *repositories.UserRepository
	locker       Locker
	notifier     Notifier
	clock        utils.Clock
	logger       *zap.Logger
}

func NewAppointmentService(
	appointments *repositories.AppointmentRepository,
	requests *repositories.RequestRepository,
	users *repositories.UserRepository,
	locker Locker,
	notifier Notifier,
	clock utils.Clock,
	logger *zap.Logger,
) *AppointmentService {
	return &AppointmentService{
		appointments: appointments,
		requests:     requests,
		users:        users,
		locker:       locker,
		notifier:     notifier,
		clock:        clock,
		logger:       logger,
	}
}

// SubmitRequest records a patient's appointment request as pending.
func (s *AppointmentService) SubmitRequest(ctx context.Context, patient models.Identity, form models.RequestForm) (*models.AppointmentRequest, error) {
	if patient.Role != models.RolePatient {
		return nil, apperrors.NotAuthorized("only patients can request appointments")
	}
	if err := utils.ValidateRequestForm(form); err != nil {
		return nil, err
	}

	req := models.AppointmentRequest{
		PatientID:           patient.ID,
		PatientName:         patient.Name,
		PatientEmail:        patient.Email,
		PatientMobile:       patient.Mobile,
		Date:                strings.TrimSpace(form.Date),
		Time:                strings.TrimSpace(form.Time),
		Reason:              strings.TrimSpace(form.Reason),
		PreferredDoctorID:   strings.TrimSpace(form.PreferredDoctorID),
		PreferredDoctorName: strings.TrimSpace(form.PreferredDoctorName),
		Status:              models.RequestPending,
		RequestedAt:         s.clock.Now(),
	}
	if req.Reason == "" {
		req.Reason = models.DefaultReason
	}
	if req.OpenToAnyDoctor() {
		req.PreferredDoctorID = ""
		req.PreferredDoctorName = ""
	}

	id, err := s.requests.Create(ctx, req)
	if err != nil {
		s.logger.Error("appointmentService.SubmitRequest failed", zap.String("patient_id", patient.ID), zap.Error(err))
		return nil, err
	}
	req.ID = id
	s.requests.Mirror(ctx, req)

	s.logger.Info("appointment request submitted",
		zap.String("request_id", req.ID),
		zap.String("patient_id", req.PatientID),
		zap.String("preferred_doctor_id", req.PreferredDoctorID))
	return &req, nil
}

// ApproveRequest approves a pending request and creates its appointment with
// the acting doctor.
func (s *AppointmentService) ApproveRequest(ctx context.Context, requestID string, doctor models.Identity) (*Outcome, error) {
	req, release, err := s.beginResolve(ctx, requestID, doctor)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.requests.Resolve(ctx, req.ID, models.RequestApproved, doctor.ID); err != nil {
		s.logger.Error("appointmentService.ApproveRequest failed", zap.String("request_id", req.ID), zap.Error(err))
		return nil, err
	}
	now := s.clock.Now()
	req.Status = models.RequestApproved
	req.ApprovedBy = doctor.ID
	req.ApprovedAt = &now
	s.requests.Mirror(ctx, *req)

	appointment, err := s.appointments.Create(ctx, models.Appointment{
		PatientID:   req.PatientID,
		PatientName: req.PatientName,
		DoctorID:    doctor.ID,
		DoctorName:  doctor.Name,
		Date:        req.Date,
		Time:        req.Time,
		Reason:      req.Reason,
		Status:      models.AppointmentStatusScheduled,
		CreatedAt:   now,
		FromRequest: true,
	})
	if err != nil {
		s.logger.Error("request approved but appointment creation failed", zap.String("request_id", req.ID), zap.Error(err))
		return nil, errors.Wrapf(err, "request %s was approved but its appointment was not created", req.ID)
	}
	s.appointments.Mirror(ctx, appointment)

	outcome := &Outcome{Request: req, Appointment: &appointment}
	s.notify(ctx, outcome, models.Notification{
		Kind:           models.NotificationAppointmentApproved,
		RecipientID:    req.PatientID,
		RecipientRole:  models.RolePatient,
		RecipientEmail: req.PatientEmail,
		Subject:        "Appointment approved",
		Summary: fmt.Sprintf("%s approved your appointment request for %s at %s.\n\n%s",
			doctor.Name, req.Date, req.Time, utils.RenderSnapshot(models.SnapshotOf(appointment))),
	})

	s.logger.Info("appointment request approved",
		zap.String("request_id", req.ID),
		zap.String("appointment_id", appointment.ID),
		zap.String("doctor_id", doctor.ID),
		zap.Bool("notified", outcome.Notified))
	return outcome, nil
}

// RejectRequest rejects a pending request. No appointment is created.
func (s *AppointmentService) RejectRequest(ctx context.Context, requestID string, doctor models.Identity) (*Outcome, error) {
	req, release, err := s.beginResolve(ctx, requestID, doctor)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.requests.Resolve(ctx, req.ID, models.RequestRejected, doctor.ID); err != nil {
		s.logger.Error("appointmentService.RejectRequest failed", zap.String("request_id", req.ID), zap.Error(err))
		return nil, err
	}
	now := s.clock.Now()
	req.Status = models.RequestRejected
	req.RejectedBy = doctor.ID
	req.RejectedAt = &now
	s.requests.Mirror(ctx, *req)

	s.logger.Info("appointment request rejected", zap.String("request_id", req.ID), zap.String("doctor_id", doctor.ID))
	return &Outcome{Request: req}, nil
}

// beginResolve locks the request and checks that the doctor may move it out
// of pending. On success the caller must call release.
func (s *AppointmentService) beginResolve(ctx context.Context, requestID string, doctor models.Identity) (*models.AppointmentRequest, func(), error) {
	if doctor.Role != models.RoleDoctor {
		return nil, nil, apperrors.NotAuthorized("only doctors can resolve appointment requests")
	}
	release, err := s.locker.Acquire(ctx, requestLockKey(requestID))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to lock appointment request %s", requestID)
	}

	req, onLedger, err := s.findRequest(ctx, requestID)
	if err != nil {
		release()
		return nil, nil, err
	}
	if !onLedger {
		s.requests.Forget(ctx, requestID)
		release()
		return nil, nil, apperrors.NotFound("appointment request " + requestID)
	}
	if req.ReservedFor(doctor.ID) {
		release()
		return nil, nil, apperrors.NotAuthorized("this request is reserved for a specific doctor")
	}
	if req.Status.Terminal() {
		release()
		return nil, nil, apperrors.AlreadyResolved(fmt.Sprintf("request %s is already %s", req.ID, req.Status))
	}
	return req, release, nil
}

// findRequest looks the request up on the ledger, then in the mirror.
// onLedger is false when the ledger was read and no longer has the request.
func (s *AppointmentService) findRequest(ctx context.Context, requestID string) (*models.AppointmentRequest, bool, error) {
	requests, err := s.requests.ListFromLedger(ctx)
	if err == nil {
		for _, r := range requests {
			if r.ID == requestID {
				return &r, true, nil
			}
		}
	} else {
		s.logger.Warn("ledger unavailable, looking up request in cache", zap.String("request_id", requestID), zap.Error(err))
	}

	cached, cacheErr := s.requests.FindCached(ctx, requestID)
	if cacheErr != nil {
		return nil, false, cacheErr
	}
	if cached == nil {
		return nil, false, apperrors.NotFound("appointment request " + requestID)
	}
	return cached, err != nil, nil
}

// BookAppointment schedules an appointment directly, without a request.
func (s *AppointmentService) BookAppointment(ctx context.Context, doctor models.Identity, form models.BookingForm) (*Outcome, error) {
	if doctor.Role != models.RoleDoctor {
		return nil, apperrors.NotAuthorized("only doctors can book appointments")
	}
	if err := utils.ValidateBookingForm(form); err != nil {
		return nil, err
	}

	patientID := strings.TrimSpace(form.PatientID)
	patientName, patientEmail := "Patient "+patientID, ""
	if p, err := s.users.GetPatient(ctx, patientID); err != nil {
		s.logger.Warn("patient lookup failed, booking without patient details", zap.String("patient_id", patientID), zap.Error(err))
	} else {
		patientName, patientEmail = p.Name, p.Email
	}

	reason := strings.TrimSpace(form.Reason)
	if reason == "" {
		reason = models.DefaultReason
	}
	appointment, err := s.appointments.Create(ctx, models.Appointment{
		PatientID:   patientID,
		PatientName: patientName,
		DoctorID:    doctor.ID,
		DoctorName:  doctor.Name,
		Date:        strings.TrimSpace(form.Date),
		Time:        strings.TrimSpace(form.Time),
		Reason:      reason,
		Status:      models.AppointmentStatusScheduled,
		CreatedAt:   s.clock.Now(),
	})
	if err != nil {
		s.logger.Error("appointmentService.BookAppointment failed", zap.String("patient_id", patientID), zap.Error(err))
		return nil, err
	}
	s.appointments.Mirror(ctx, appointment)

	outcome := &Outcome{Appointment: &appointment}
	s.notify(ctx, outcome, models.Notification{
		Kind:           models.NotificationAppointmentBooked,
		RecipientID:    patientID,
		RecipientRole:  models.RolePatient,
		RecipientEmail: patientEmail,
		Subject:        "New appointment scheduled",
		Summary:        utils.RenderSnapshot(models.SnapshotOf(appointment)),
	})

	s.logger.Info("appointment booked",
		zap.String("appointment_id", appointment.ID),
		zap.String("doctor_id", doctor.ID),
		zap.String("patient_id", patientID))
	return outcome, nil
}

// DeleteAppointment deletes an appointment on behalf of its patient or its
// doctor.
func (s *AppointmentService) DeleteAppointment(ctx context.Context, appointmentID string, actor models.Identity) error {
	appointment, onLedger, err := s.findAppointment(ctx, appointmentID)
	if err != nil {
		return err
	}
	if !appointment.BelongsTo(actor.ID, actor.Role) {
		return apperrors.NotAuthorized("only the appointment's patient or doctor can delete it")
	}
	if onLedger {
		if err := s.appointments.Delete(ctx, appointmentID); err != nil {
			s.logger.Error("appointmentService.DeleteAppointment failed", zap.String("appointment_id", appointmentID), zap.Error(err))
			return err
		}
	}
	s.appointments.Forget(ctx, appointmentID)
	s.logger.Info("appointment deleted", zap.String("appointment_id", appointmentID), zap.String("user_id", actor.ID))
	return nil
}

// FindAppointment returns an appointment the actor takes part in.
func (s *AppointmentService) FindAppointment(ctx context.Context, appointmentID string, actor models.Identity) (*models.Appointment, error) {
	appointment, _, err := s.findAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !appointment.BelongsTo(actor.ID, actor.Role) {
		return nil, apperrors.NotAuthorized("appointment belongs to another patient or doctor")
	}
	return appointment, nil
}

// findAppointment looks the appointment up on the ledger, then in the
// mirror. onLedger is false only when the ledger explicitly has no such
// appointment.
func (s *AppointmentService) findAppointment(ctx context.Context, id string) (*models.Appointment, bool, error) {
	appointment, err := s.appointments.GetFromLedger(ctx, id)
	if err == nil {
		return appointment, true, nil
	}
	rejected := errors.Is(err, apperrors.ErrRemoteRejected)

	cached, cacheErr := s.appointments.FindCached(ctx, id)
	if cacheErr != nil {
		return nil, false, cacheErr
	}
	if cached == nil {
		if rejected {
			return nil, false, apperrors.NotFound("appointment " + id)
		}
		return nil, false, err
	}
	return cached, !rejected, nil
}

// LoadAppointments returns the actor's appointments: the ledger's, merged
// with the actor's cached entries. When the ledger cannot be read the cached
// entries alone are returned without error.
func (s *AppointmentService) LoadAppointments(ctx context.Context, actor models.Identity) ([]models.Appointment, error) {
	cached, err := s.appointments.Cached(ctx, actor)
	if err != nil {
		s.logger.Warn("failed to read cached appointments", zap.String("user_id", actor.ID), zap.Error(err))
		cached = []models.Appointment{}
	}

	fromLedger, err := s.appointments.ListFromLedger(ctx, actor)
	if err != nil {
		s.logger.Warn("ledger read failed, serving cached appointments",
			zap.String("user_id", actor.ID), zap.Int("cached", len(cached)), zap.Error(err))
		return cached, nil
	}

	merged := Reconcile(fromLedger, cached)
	s.appointments.ReplaceFor(ctx, actor, merged)
	return merged, nil
}

// LoadRequests returns a patient's own requests, or a doctor's inbox of
// pending requests that are open to any doctor or reserved for them.
func (s *AppointmentService) LoadRequests(ctx context.Context, actor models.Identity) ([]models.AppointmentRequest, error) {
	all, err := s.requests.Cached(ctx)
	if err != nil {
		s.logger.Warn("failed to read cached requests", zap.Error(err))
		all = []models.AppointmentRequest{}
	}

	if fromLedger, err := s.requests.ListFromLedger(ctx); err != nil {
		s.logger.Warn("ledger read failed, serving cached requests", zap.String("user_id", actor.ID), zap.Error(err))
	} else {
		all = fromLedger
		s.requests.ReplaceAll(ctx, fromLedger)
	}

	visible := make([]models.AppointmentRequest, 0, len(all))
	for _, r := range all {
		if requestVisibleTo(r, actor) {
			visible = append(visible, r)
		}
	}
	return visible, nil
}

func requestVisibleTo(r models.AppointmentRequest, actor models.Identity) bool {
	switch actor.Role {
	case models.RolePatient:
		return r.PatientID == actor.ID
	case models.RoleDoctor:
		return r.Status == models.RequestPending && !r.ReservedFor(actor.ID)
	}
	return false
}

// DeleteRequest removes a request the actor holds: the patient who made it,
// or a doctor it is not reserved away from.
func (s *AppointmentService) DeleteRequest(ctx context.Context, requestID string, actor models.Identity) error {
	req, onLedger, err := s.findRequest(ctx, requestID)
	if err != nil {
		return err
	}
	switch {
	case actor.Role == models.RolePatient && req.PatientID == actor.ID:
	case actor.Role == models.RoleDoctor && !req.ReservedFor(actor.ID):
	default:
		return apperrors.NotAuthorized("request belongs to another patient or doctor")
	}

	if onLedger {
		if err := s.requests.Delete(ctx, requestID); err != nil && !errors.Is(err, apperrors.ErrRemoteRejected) {
			s.logger.Error("appointmentService.DeleteRequest failed", zap.String("request_id", requestID), zap.Error(err))
			return err
		}
	}
	s.requests.Forget(ctx, requestID)
	s.logger.Info("appointment request deleted", zap.String("request_id", requestID), zap.String("user_id", actor.ID))
	return nil
}

func (s *AppointmentService) notify(ctx context.Context, outcome *Outcome, n models.Notification) {
	if err := s.notifier.Notify(ctx, n); err != nil {
		outcome.NotificationError = err.Error()
		return
	}
	outcome.Notified = true
}
