package contract

import (
	"strconv"
	"time"

	"MediLedger/ledger"
	"MediLedger/models"
)

// PatientRow is a registered patient.
type PatientRow struct {
	ID           string    `gorm:"primaryKey;size:16;column:id"`
	Name         string    `gorm:"size:100;not null;column:name"`
	Disease      string    `gorm:"type:text;column:disease"`
	DOB          string    `gorm:"size:10;column:dob"`
	Mobile       string    `gorm:"size:20;column:mobile"`
	Email        string    `gorm:"size:255;index;column:email"`
	SBP          string    `gorm:"size:16;column:sbp"`
	Sugar        string    `gorm:"size:16;column:sugar"`
	PasswordHash string    `gorm:"size:255;not null;column:password_hash"`
	CreatedAt    time.Time `gorm:"autoCreateTime;column:created_at"`
}

func (PatientRow) TableName() string {
	return "patients"
}

func (p PatientRow) record() models.PatientRecord {
	return models.PatientRecord{
		ID: p.ID, Name: p.Name, Disease: p.Disease, DOB: p.DOB,
		Mobile: p.Mobile, Email: p.Email, SBP: p.SBP, Sugar: p.Sugar,
	}
}

// DoctorRow is a registered doctor, keyed by registration id.
type DoctorRow struct {
	RegID        string    `gorm:"primaryKey;size:32;column:reg_id"`
	Name         string    `gorm:"size:100;not null;column:name"`
	Phone        string    `gorm:"size:20;column:phone"`
	PasswordHash string    `gorm:"size:255;not null;column:password_hash"`
	CreatedAt    time.Time `gorm:"autoCreateTime;column:created_at"`
}

func (DoctorRow) TableName() string {
	return "doctors"
}

type AppointmentRow struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement;column:id"`
	PatientID   string    `gorm:"size:16;not null;index;column:patient_id"`
	PatientName string    `gorm:"size:100;column:patient_name"`
	DoctorID    string    `gorm:"size:32;not null;index;column:doctor_id"`
	DoctorName  string    `gorm:"size:100;column:doctor_name"`
	Date        string    `gorm:"size:10;not null;column:date"`
	Time        string    `gorm:"size:8;not null;column:time"`
	Reason      string    `gorm:"type:text;column:reason"`
	Status      string    `gorm:"size:20;column:status"`
	FromRequest bool      `gorm:"column:from_request"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (AppointmentRow) TableName() string {
	return "appointments"
}

func (a AppointmentRow) appointment() models.Appointment {
	return models.Appointment{
		ID:          strconv.FormatUint(a.ID, 10),
		PatientID:   a.PatientID,
		PatientName: a.PatientName,
		DoctorID:    a.DoctorID,
		DoctorName:  a.DoctorName,
		Date:        a.Date,
		Time:        a.Time,
		Reason:      a.Reason,
		Status:      a.Status,
		CreatedAt:   a.CreatedAt,
		FromRequest: a.FromRequest,
	}
}

type RequestRow struct {
	ID                  uint64     `gorm:"primaryKey;autoIncrement;column:id"`
	PatientID           string     `gorm:"size:16;not null;index;column:patient_id"`
	PatientName         string     `gorm:"size:100;column:patient_name"`
	PatientEmail        string     `gorm:"size:255;column:patient_email"`
	PatientMobile       string     `gorm:"size:20;column:patient_mobile"`
	Date                string     `gorm:"size:10;not null;column:date"`
	Time                string     `gorm:"size:8;not null;column:time"`
	Reason              string     `gorm:"type:text;column:reason"`
	PreferredDoctorID   string     `gorm:"size:32;column:preferred_doctor_id"`
	PreferredDoctorName string     `gorm:"size:100;column:preferred_doctor_name"`
	Status              string     `gorm:"size:20;not null;index;column:status"`
	RequestedAt         time.Time  `gorm:"column:requested_at"`
	ResolvedBy          string     `gorm:"size:32;column:resolved_by"`
	ResolvedAt          *time.Time `gorm:"column:resolved_at"`
}

func (RequestRow) TableName() string {
	return "appointment_requests"
}

func (r RequestRow) request() models.AppointmentRequest {
	out := models.AppointmentRequest{
		ID:                  strconv.FormatUint(r.ID, 10),
		PatientID:           r.PatientID,
		PatientName:         r.PatientName,
		PatientEmail:        r.PatientEmail,
		PatientMobile:       r.PatientMobile,
		Date:                r.Date,
		Time:                r.Time,
		Reason:              r.Reason,
		PreferredDoctorID:   r.PreferredDoctorID,
		PreferredDoctorName: r.PreferredDoctorName,
		Status:              models.RequestStatus(r.Status),
		RequestedAt:         r.RequestedAt,
	}
	switch out.Status {
	case models.RequestApproved:
		out.ApprovedBy, out.ApprovedAt = r.ResolvedBy, r.ResolvedAt
	case models.RequestRejected:
		out.RejectedBy, out.RejectedAt = r.ResolvedBy, r.ResolvedAt
	}
	return out
}

// MessageRow stores a chat message. Only the ciphertext is kept.
type MessageRow struct {
	ID                uint64    `gorm:"primaryKey;autoIncrement;column:id"`
	PatientID         string    `gorm:"size:16;not null;index:idx_conversation;column:patient_id"`
	DoctorID          string    `gorm:"size:32;not null;index:idx_conversation;column:doctor_id"`
	SenderID          string    `gorm:"size:32;not null;column:sender_id"`
	SenderName        string    `gorm:"size:100;column:sender_name"`
	SenderType        string    `gorm:"size:10;column:sender_type"`
	Ciphertext        string    `gorm:"type:text;not null;column:ciphertext"`
	IsAppointmentInfo bool      `gorm:"column:is_appointment_info"`
	SnapshotJSON      string    `gorm:"type:text;column:snapshot_json"`
	CreatedAt         time.Time `gorm:"column:created_at"`
}

func (MessageRow) TableName() string {
	return "chat_messages"
}

func (m MessageRow) message() models.Message {
	return models.Message{
		ID:                strconv.FormatUint(m.ID, 10),
		PatientID:         m.PatientID,
		DoctorID:          m.DoctorID,
		SenderID:          m.SenderID,
		SenderName:        m.SenderName,
		SenderType:        models.Role(m.SenderType),
		Ciphertext:        m.Ciphertext,
		Timestamp:         m.CreatedAt,
		IsAppointmentInfo: m.IsAppointmentInfo,
		SnapshotJSON:      m.SnapshotJSON,
	}
}

// TxRow is a submitted write and, once executed, its receipt.
type TxRow struct {
	Hash         string     `gorm:"primaryKey;size:66;column:hash"`
	Op           string     `gorm:"size:40;not null;column:op"`
	Args         string     `gorm:"type:text;column:args"`
	Status       string     `gorm:"size:10;not null;index;column:status"`
	EntityID     string     `gorm:"size:32;column:entity_id"`
	Reason       string     `gorm:"type:text;column:reason"`
	GasLimit     uint64     `gorm:"column:gas_limit"`
	GasPriceGwei uint64     `gorm:"column:gas_price_gwei"`
	SubmittedAt  time.Time  `gorm:"column:submitted_at"`
	ConfirmedAt  *time.Time `gorm:"column:confirmed_at"`
}

func (TxRow) TableName() string {
	return "transactions"
}

func (t TxRow) receipt() *ledger.Receipt {
	r := &ledger.Receipt{
		TxHash:       t.Hash,
		Op:           t.Op,
		Status:       ledger.ReceiptStatus(t.Status),
		EntityID:     t.EntityID,
		Reason:       t.Reason,
		GasLimit:     t.GasLimit,
		GasPriceGwei: t.GasPriceGwei,
	}
	if t.ConfirmedAt != nil {
		r.ConfirmedAt = *t.ConfirmedAt
	}
	return r
}

// Tables lists the rows the node migrates at start-up.
func Tables() []interface{} {
	return []interface{}{&PatientRow{}, &DoctorRow{}, &AppointmentRow{}, &RequestRow{}, &MessageRow{}, &TxRow{}}
}
