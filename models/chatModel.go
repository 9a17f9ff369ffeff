package models

import "time"

// Conversation is the single channel between one patient and one doctor.
type Conversation struct {
	ID        string `json:"id"`
	PatientID string `json:"patient_id"`
	DoctorID  string `json:"doctor_id"`

	// Partner fields are relative to the identity that listed the
	// conversation.
	PartnerID        string    `json:"partner_id,omitempty"`
	PartnerName      string    `json:"partner_name,omitempty"`
	PartnerRole      Role      `json:"partner_role,omitempty"`
	LastActivity     time.Time `json:"last_activity,omitempty"`
	AppointmentCount int       `json:"appointment_count,omitempty"`
}

// Participant returns the conversation member on the given side.
func (c Conversation) Participant(role Role) string {
	if role == RoleDoctor {
		return c.DoctorID
	}
	return c.PatientID
}

// AppointmentSnapshot is the structured payload of a snapshot message.
type AppointmentSnapshot struct {
	AppointmentID string `json:"appointment_id"`
	PatientID     string `json:"patient_id"`
	PatientName   string `json:"patient_name"`
	DoctorID      string `json:"doctor_id"`
	DoctorName    string `json:"doctor_name"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Reason        string `json:"reason"`
	Status        string `json:"status"`
	FromRequest   bool   `json:"from_request"`
}

// SnapshotOf captures the fields of an appointment that are shared in chat.
func SnapshotOf(a Appointment) AppointmentSnapshot {
	return AppointmentSnapshot{
		AppointmentID: a.ID,
		PatientID:     a.PatientID,
		PatientName:   a.PatientName,
		DoctorID:      a.DoctorID,
		DoctorName:    a.DoctorName,
		Date:          a.Date,
		Time:          a.Time,
		Reason:        a.Reason,
		Status:        a.Status,
		FromRequest:   a.FromRequest,
	}
}

// Message is one entry of a conversation. Ciphertext is the stored form;
// Plaintext is filled in on read by decoding it with the conversation key.
type Message struct {
	ID                  string               `json:"id"`
	PatientID           string               `json:"patient_id"`
	DoctorID            string               `json:"doctor_id"`
	SenderID            string               `json:"sender_id"`
	SenderName          string               `json:"sender_name"`
	SenderType          Role                 `json:"sender_type"`
	Plaintext           string               `json:"message"`
	Ciphertext          string               `json:"encrypted_message"`
	Timestamp           time.Time            `json:"timestamp"`
	IsAppointmentInfo   bool                 `json:"is_appointment_info"`
	SnapshotJSON        string               `json:"appointment_data,omitempty"`
	AppointmentSnapshot *AppointmentSnapshot `json:"appointment_snapshot,omitempty"`
	Unreadable          bool                 `json:"unreadable,omitempty"`
	// Local marks a message known only to this session's cache.
	Local bool `json:"local,omitempty"`
}

// History is a conversation's messages as presented to the UI.
type History struct {
	Conversation Conversation `json:"conversation"`
	Messages     []Message    `json:"messages"`
	// Degraded is set when the ledger could not be read and only locally
	// cached messages are shown.
	Degraded bool `json:"degraded"`
}
