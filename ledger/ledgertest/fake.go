// Package ledgertest provides an in-memory Ledger for tests.
package ledgertest

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"MediLedger/apperrors"
	"MediLedger/ledger"
	"MediLedger/models"
)

// Fake is an in-memory ledger with contract semantics and injectable
// failures. It is safe for concurrent use.
type Fake struct {
	mu sync.Mutex

	patients     map[string]models.PatientRecord
	doctors      map[string]models.DoctorRecord
	passwords    map[string]string
	appointments []models.Appointment
	requests     []models.AppointmentRequest
	messages     []models.Message
	nextID       int

	failures map[string]error
	calls    map[string]int

	// Now stamps created entities. Defaults to time.Now.
	Now func() time.Time
}

var _ ledger.Ledger = (*Fake)(nil)

func NewFake() *Fake {
	return &Fake{
		patients:  map[string]models.PatientRecord{},
		doctors:   map[string]models.DoctorRecord{},
		passwords: map[string]string{},
		failures:  map[string]error{},
		calls:     map[string]int{},
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

// Fail makes every later call of op return err. A nil err clears it.
func (f *Fake) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, op)
		return
	}
	f.failures[op] = err
}

// FailAll makes every operation return err. A nil err clears all failures.
func (f *Fake) FailAll(err error) {
	for _, op := range []string{
		ledger.OpRegisterPatient, ledger.OpRegisterDoctor, ledger.OpLoginPatient, ledger.OpLoginDoctor,
		ledger.OpGetPatientByID, ledger.OpGetDoctorByRegID, ledger.OpCreateAppointment,
		ledger.OpGetPatientAppointments, ledger.OpGetDoctorAppointments, ledger.OpGetAppointmentByID,
		ledger.OpDeleteAppointment, ledger.OpCreateAppointmentRequest, ledger.OpGetAppointmentRequests,
		ledger.OpResolveAppointmentRequest, ledger.OpDeleteAppointmentRequest, ledger.OpSendChatMessage,
		ledger.OpGetChatMessages,
	} {
		f.Fail(op, err)
	}
}

// Calls returns how many times op was invoked.
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// Unavailable is a ready-made transport failure.
func Unavailable() error {
	return fmt.Errorf("%w: connection refused", apperrors.ErrRemoteUnavailable)
}

func (f *Fake) enter(op string) error {
	f.calls[op]++
	return f.failures[op]
}

func (f *Fake) id() string {
	f.nextID++
	return strconv.Itoa(f.nextID)
}

// AddPatient seeds a patient record.
func (f *Fake) AddPatient(p models.PatientRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patients[p.ID] = p
}

// AddDoctor seeds a doctor record.
func (f *Fake) AddDoctor(d models.DoctorRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.doctors[d.RegID] = d
}

// Requests returns a copy of the stored requests.
func (f *Fake) Requests() []models.AppointmentRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.AppointmentRequest(nil), f.requests...)
}

// Appointments returns a copy of the stored appointments.
func (f *Fake) Appointments() []models.Appointment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Appointment(nil), f.appointments...)
}

// Messages returns a copy of the stored chat messages.
func (f *Fake) Messages() []models.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Message(nil), f.messages...)
}

func (f *Fake) RegisterPatient(_ context.Context, form models.PatientRegistration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ledger.OpRegisterPatient); err != nil {
		return "", err
	}
	id := fmt.Sprintf("P%03d", len(f.patients)+1)
	f.patients[id] = models.PatientRecord{
		ID: id, Name: form.Name, Disease: form.Disease, DOB: form.DOB,
		Mobile: form.Mobile, Email: form.Email, SBP: form.SBP, Sugar: form.Sugar,
	}
	f.passwords[id] = form.Password
	return id, nil
}

func (f *Fake) RegisterDoctor(_ context.Context, form models.DoctorRegistration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ledger.OpRegisterDoctor); err != nil {
		return "", err
	}
	id := form.RegID
	if id == "" {
		id = fmt.Sprintf("D%03d", len(f.doctors)+1)
	}
	if _, exists := f.doctors[id]; exists {
		return "", apperrors.Rejected("Doctor already registered")
	}
	f.doctors[id] = models.DoctorRecord{RegID: id, Name: form.Name, Phone: form.Phone}
	f.passwords[id] = form.Password
	return id, nil
}

func (f *Fake) login(op, id, password string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(op); err != nil {
		return false, err
	}
	stored, ok := f.passwords[id]
	return ok && stored == password, nil
}

func (f *Fake) LoginPatient(_ context.Context, id, password string) (bool, error) {
	return f.login(ledger.OpLoginPatient, id, password)
}

func (f *Fake) LoginDoctor(_ context.Context, id, password string) (bool, error) {
	return f.login(ledger.OpLoginDoctor, id, password)
}

func (f *Fake) GetPatientByID(_ context.Context, id string) (*models.PatientRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ledger.OpGetPatientByID); err != nil {
		return nil, err
	}
	p, ok := f.patients[id]
	if !ok {
		return nil, apperrors.Rejected("Patient not found")
	}
	return &p, nil
}

func (f *Fake) GetDoctorByRegID(_ context.Context, id string) (*models.DoctorRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ledger.OpGetDoctorByRegID); err != nil {
		return nil, err
	}
	d, ok := f.doctors[id]
	if !ok {
		return nil, apperrors.Rejected("Doctor not found")
	}
	return &d, nil
}

func (f *Fake) CreateAppointment(_ context.Context, a models.Appointment) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ledger.OpCreateAppointment); err != nil {
		return "", err
	}
	a.ID = f.id()
	a.CreatedAt = f.Now()
	f.appointments = append(f.appointments, a)
	return a.ID, nil
}

func (f *Fake) appointmentIDs(op string, match func(models.Appointment) bool) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(op); err != nil {
		return nil, err
	}
	ids := []string{}
	for _, a := range f.appointments {
		if match(a) {
			ids = append(ids, a.ID)
		}
	}
	return ids, nil
}

func (f *Fake) GetPatientAppointments(_ context.Context, id string) ([]string, error) {
	return f.appointmentIDs(ledger.OpGetPatientAppointments, func(a models.Appointment) bool { return a.PatientID == id })
}

func (f *Fake) GetDoctorAppointments(_ context.Context, id string) ([]string, error) {
	return f.appointmentIDs(ledger.OpGetDoctorAppointments, func(a models.Appointment) bool { return a.DoctorID == id })
}

func (f *Fake) GetAppointmentByID(_ context.Context, id string) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ledger.OpGetAppointmentByID); err != nil {
		return nil, err
	}
	for _, a := range f.appointments {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, apperrors.Rejected("Appointment not found")
}

func (f *Fake) DeleteAppointment(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ledger.OpDeleteAppointment); err != nil {
		return err
	}
	for i, a := range f.appointments {
		if a.ID == id {
			f.appointments = append(f.appointments[:i], f.appointments[i+1:]...)
			return nil
		}
	}
	return apperrors.Rejected("Appointment not found")
}

func (f *Fake) CreateAppointmentRequest(_ context.Context, r models.AppointmentRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ledger.OpCreateAppointmentRequest); err != nil {
		return "", err
	}
	r.ID = f.id()
	r.Status = models.RequestPending
	r.RequestedAt = f.Now()
	f.requests = append(f.requests, r)
	return r.ID, nil
}

func (f *Fake) GetAppointmentRequests(_ context.Context) ([]models.AppointmentRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ledger.OpGetAppointmentRequests); err != nil {
		return nil, err
	}
	return append([]models.AppointmentRequest{}, f.requests...), nil
}

func (f *Fake) ResolveAppointmentRequest(_ context.Context, id string, status models.RequestStatus, actorID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ledger.OpResolveAppointmentRequest); err != nil {
		return err
	}
	for i := range f.requests {
		r := &f.requests[i]
		if r.ID != id {
			continue
		}
		if r.Status != models.RequestPending {
			return apperrors.Rejected("Request already processed")
		}
		now := f.Now()
		r.Status = status
		if status == models.RequestApproved {
			r.ApprovedBy, r.ApprovedAt = actorID, &now
		} else {
			r.RejectedBy, r.RejectedAt = actorID, &now
		}
		return nil
	}
	return apperrors.Rejected("Request not found")
}

func (f *Fake) DeleteAppointmentRequest(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ledger.OpDeleteAppointmentRequest); err != nil {
		return err
	}
	for i, r := range f.requests {
		if r.ID == id {
			f.requests = append(f.requests[:i], f.requests[i+1:]...)
			return nil
		}
	}
	return apperrors.Rejected("Request not found")
}

func (f *Fake) SendChatMessage(_ context.Context, m models.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ledger.OpSendChatMessage); err != nil {
		return "", err
	}
	m.ID = f.id()
	m.Timestamp = f.Now()
	m.Local = false
	m.AppointmentSnapshot = nil
	f.messages = append(f.messages, m)
	return m.ID, nil
}

func (f *Fake) GetChatMessages(_ context.Context, patientID, doctorID string) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ledger.OpGetChatMessages); err != nil {
		return nil, err
	}
	out := []models.Message{}
	for _, m := range f.messages {
		if m.PatientID == patientID && m.DoctorID == doctorID {
			out = append(out, m)
		}
	}
	return out, nil
}
