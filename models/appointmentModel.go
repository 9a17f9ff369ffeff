package models

import (
	"strings"
	"time"
)

// AppointmentStatusScheduled is the only status an Appointment carries.
const AppointmentStatusScheduled = "scheduled"

// Appointment is a scheduled visit between one patient and one doctor.
type Appointment struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patient_id"`
	PatientName string    `json:"patient_name"`
	DoctorID    string    `json:"doctor_id"`
	DoctorName  string    `json:"doctor_name"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Reason      string    `json:"reason"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	FromRequest bool      `json:"from_request"`
}

// SlotKey is the dedup identity of an appointment: one patient, one doctor,
// one date and time.
type SlotKey struct {
	PatientID string
	DoctorID  string
	Date      string
	Time      string
}

// Key returns the appointment's SlotKey.
func (a Appointment) Key() SlotKey {
	return SlotKey{PatientID: a.PatientID, DoctorID: a.DoctorID, Date: a.Date, Time: a.Time}
}

// BelongsTo reports whether the identity owns the appointment on its side.
func (a Appointment) BelongsTo(id string, role Role) bool {
	switch role {
	case RoleDoctor:
		return a.DoctorID == id
	case RolePatient:
		return a.PatientID == id
	}
	return false
}

// RequestStatus is the lifecycle state of an AppointmentRequest.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// Terminal reports whether no further transition is possible.
func (s RequestStatus) Terminal() bool {
	return s == RequestApproved || s == RequestRejected
}

// AnyDoctorLabel is the label older clients store in place of an empty
// preferred doctor.
const AnyDoctorLabel = "Any available doctor"

// DefaultReason is used when a request is submitted without a reason.
const DefaultReason = "General consultation"

// AppointmentRequest is a patient's ask for an appointment, resolved by a
// doctor.
type AppointmentRequest struct {
	ID                  string        `json:"id"`
	PatientID           string        `json:"patient_id"`
	PatientName         string        `json:"patient_name"`
	PatientEmail        string        `json:"patient_email"`
	PatientMobile       string        `json:"patient_mobile"`
	Date                string        `json:"date"`
	Time                string        `json:"time"`
	Reason              string        `json:"reason"`
	PreferredDoctorID   string        `json:"preferred_doctor_id,omitempty"`
	PreferredDoctorName string        `json:"preferred_doctor_name,omitempty"`
	Status              RequestStatus `json:"status"`
	RequestedAt         time.Time     `json:"requested_at"`
	ApprovedBy          string        `json:"approved_by,omitempty"`
	ApprovedAt          *time.Time    `json:"approved_at,omitempty"`
	RejectedBy          string        `json:"rejected_by,omitempty"`
	RejectedAt          *time.Time    `json:"rejected_at,omitempty"`
}

// OpenToAnyDoctor reports whether any doctor may act on the request.
func (r AppointmentRequest) OpenToAnyDoctor() bool {
	id := strings.TrimSpace(r.PreferredDoctorID)
	return id == "" || id == AnyDoctorLabel
}

// ReservedFor reports whether the request is reserved for a doctor other
// than doctorID.
func (r AppointmentRequest) ReservedFor(doctorID string) bool {
	return !r.OpenToAnyDoctor() && r.PreferredDoctorID != doctorID
}

// RequestForm is what a patient submits to ask for an appointment.
type RequestForm struct {
	Date                string `json:"date"`
	Time                string `json:"time"`
	Reason              string `json:"reason"`
	PreferredDoctorID   string `json:"preferred_doctor_id"`
	PreferredDoctorName string `json:"preferred_doctor_name"`
}

// BookingForm is what a doctor submits to schedule an appointment directly.
type BookingForm struct {
	PatientID string `json:"patient_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Reason    string `json:"reason"`
}
