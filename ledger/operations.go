package ledger

import (
	"context"

	"MediLedger/models"
)

func (c *Client) RegisterPatient(ctx context.Context, f models.PatientRegistration) (string, error) {
	r, err := c.write(ctx, OpRegisterPatient, f.Name, f.Disease, f.DOB, f.Mobile, f.Email, f.SBP, f.Sugar, f.Password)
	if err != nil {
		return "", err
	}
	return r.EntityID, nil
}

func (c *Client) RegisterDoctor(ctx context.Context, f models.DoctorRegistration) (string, error) {
	r, err := c.write(ctx, OpRegisterDoctor, f.Name, f.RegID, f.Phone, f.Password)
	if err != nil {
		return "", err
	}
	return r.EntityID, nil
}

func (c *Client) LoginPatient(ctx context.Context, patientID, password string) (bool, error) {
	var ok bool
	err := c.read(ctx, OpLoginPatient, c.opts.LoginTimeout, &ok, patientID, password)
	return ok, err
}

func (c *Client) LoginDoctor(ctx context.Context, regID, password string) (bool, error) {
	var ok bool
	err := c.read(ctx, OpLoginDoctor, c.opts.LoginTimeout, &ok, regID, password)
	return ok, err
}

func (c *Client) GetPatientByID(ctx context.Context, patientID string) (*models.PatientRecord, error) {
	var p models.PatientRecord
	if err := c.read(ctx, OpGetPatientByID, c.opts.ReadTimeout, &p, patientID); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) GetDoctorByRegID(ctx context.Context, regID string) (*models.DoctorRecord, error) {
	var d models.DoctorRecord
	if err := c.read(ctx, OpGetDoctorByRegID, c.opts.ReadTimeout, &d, regID); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) CreateAppointment(ctx context.Context, a models.Appointment) (string, error) {
	r, err := c.write(ctx, OpCreateAppointment,
		a.PatientID, a.PatientName, a.DoctorID, a.DoctorName, a.Date, a.Time, a.Reason, a.Status, a.FromRequest)
	if err != nil {
		return "", err
	}
	return r.EntityID, nil
}

func (c *Client) GetPatientAppointments(ctx context.Context, patientID string) ([]string, error) {
	var ids []string
	err := c.read(ctx, OpGetPatientAppointments, c.opts.ReadTimeout, &ids, patientID)
	return ids, err
}

func (c *Client) GetDoctorAppointments(ctx context.Context, doctorID string) ([]string, error) {
	var ids []string
	err := c.read(ctx, OpGetDoctorAppointments, c.opts.ReadTimeout, &ids, doctorID)
	return ids, err
}

func (c *Client) GetAppointmentByID(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	var a models.Appointment
	if err := c.read(ctx, OpGetAppointmentByID, c.opts.ReadTimeout, &a, appointmentID); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) DeleteAppointment(ctx context.Context, appointmentID string) error {
	_, err := c.write(ctx, OpDeleteAppointment, appointmentID)
	return err
}

func (c *Client) CreateAppointmentRequest(ctx context.Context, r models.AppointmentRequest) (string, error) {
	receipt, err := c.write(ctx, OpCreateAppointmentRequest,
		r.PatientID, r.PatientName, r.PatientEmail, r.PatientMobile, r.Date, r.Time, r.Reason,
		r.PreferredDoctorID, r.PreferredDoctorName)
	if err != nil {
		return "", err
	}
	return receipt.EntityID, nil
}

func (c *Client) GetAppointmentRequests(ctx context.Context) ([]models.AppointmentRequest, error) {
	var requests []models.AppointmentRequest
	err := c.read(ctx, OpGetAppointmentRequests, c.opts.ReadTimeout, &requests)
	return requests, err
}

func (c *Client) ResolveAppointmentRequest(ctx context.Context, requestID string, status models.RequestStatus, actorID string) error {
	_, err := c.write(ctx, OpResolveAppointmentRequest, requestID, status, actorID)
	return err
}

func (c *Client) DeleteAppointmentRequest(ctx context.Context, requestID string) error {
	_, err := c.write(ctx, OpDeleteAppointmentRequest, requestID)
	return err
}

func (c *Client) SendChatMessage(ctx context.Context, m models.Message) (string, error) {
	r, err := c.write(ctx, OpSendChatMessage,
		m.PatientID, m.DoctorID, m.SenderID, m.SenderName, m.SenderType,
		m.Plaintext, m.Ciphertext, m.IsAppointmentInfo, m.SnapshotJSON)
	if err != nil {
		return "", err
	}
	return r.EntityID, nil
}

func (c *Client) GetChatMessages(ctx context.Context, patientID, doctorID string) ([]models.Message, error) {
	var messages []models.Message
	err := c.read(ctx, OpGetChatMessages, c.opts.ReadTimeout, &messages, patientID, doctorID)
	return messages, err
}
