package contract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"MediLedger/ledger"
	"MediLedger/models"
	"MediLedger/utils"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// query runs a read-only operation.
func query(db *gorm.DB, op string, args []json.RawMessage) (interface{}, error) {
	switch op {
	case ledger.OpLoginPatient, ledger.OpLoginDoctor:
		var id, password string
		if err := decodeArgs(args, &id, &password); err != nil {
			return nil, err
		}
		return login(db, op, id, password)

	case ledger.OpGetPatientByID:
		var id string
		if err := decodeArgs(args, &id); err != nil {
			return nil, err
		}
		var row PatientRow
		if err := first(db, &row, "id = ?", id); err != nil {
			return nil, notFound(err, "Patient not found")
		}
		return row.record(), nil

	case ledger.OpGetDoctorByRegID:
		var id string
		if err := decodeArgs(args, &id); err != nil {
			return nil, err
		}
		var row DoctorRow
		if err := first(db, &row, "reg_id = ?", id); err != nil {
			return nil, notFound(err, "Doctor not found")
		}
		return models.DoctorRecord{RegID: row.RegID, Name: row.Name, Phone: row.Phone}, nil

	case ledger.OpGetPatientAppointments, ledger.OpGetDoctorAppointments:
		var id string
		if err := decodeArgs(args, &id); err != nil {
			return nil, err
		}
		column := "patient_id"
		if op == ledger.OpGetDoctorAppointments {
			column = "doctor_id"
		}
		var ids []uint64
		if err := db.Model(&AppointmentRow{}).Where(column+" = ?", id).Order("id").Pluck("id", &ids).Error; err != nil {
			return nil, errors.Wrap(err, "failed to list appointments")
		}
		out := make([]string, len(ids))
		for i, v := range ids {
			out[i] = strconv.FormatUint(v, 10)
		}
		return out, nil

	case ledger.OpGetAppointmentByID:
		var id string
		if err := decodeArgs(args, &id); err != nil {
			return nil, err
		}
		row, err := appointmentByID(db, id)
		if err != nil {
			return nil, err
		}
		return row.appointment(), nil

	case ledger.OpGetAppointmentRequests:
		if err := decodeArgs(args); err != nil {
			return nil, err
		}
		var rows []RequestRow
		if err := db.Order("id").Find(&rows).Error; err != nil {
			return nil, errors.Wrap(err, "failed to list appointment requests")
		}
		out := make([]models.AppointmentRequest, len(rows))
		for i, r := range rows {
			out[i] = r.request()
		}
		return out, nil

	case ledger.OpGetChatMessages:
		var patientID, doctorID string
		if err := decodeArgs(args, &patientID, &doctorID); err != nil {
			return nil, err
		}
		var rows []MessageRow
		if err := db.Where("patient_id = ? AND doctor_id = ?", patientID, doctorID).
			Order("created_at, id").Find(&rows).Error; err != nil {
			return nil, errors.Wrap(err, "failed to list chat messages")
		}
		out := make([]models.Message, len(rows))
		for i, m := range rows {
			out[i] = m.message()
		}
		return out, nil
	}
	return nil, revert("unknown operation " + op)
}

func login(db *gorm.DB, op, id, password string) (bool, error) {
	var hash string
	var err error
	if op == ledger.OpLoginDoctor {
		var row DoctorRow
		err = first(db, &row, "reg_id = ?", id)
		hash = row.PasswordHash
	} else {
		var row PatientRow
		err = first(db, &row, "id = ?", id)
		hash = row.PasswordHash
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "failed to load credentials")
	}
	return utils.CheckPassword(hash, password), nil
}

// apply executes a write inside tx and returns the id of the entity it
// created, if any.
func apply(tx *gorm.DB, op string, args []json.RawMessage, now time.Time) (string, error) {
	switch op {
	case ledger.OpRegisterPatient:
		var p PatientRow
		var password string
		if err := decodeArgs(args, &p.Name, &p.Disease, &p.DOB, &p.Mobile, &p.Email, &p.SBP, &p.Sugar, &password); err != nil {
			return "", err
		}
		if strings.TrimSpace(p.Name) == "" || password == "" {
			return "", revert("Name and password are required")
		}
		var count int64
		if err := tx.Model(&PatientRow{}).Count(&count).Error; err != nil {
			return "", errors.Wrap(err, "failed to count patients")
		}
		hash, err := utils.HashPassword(password)
		if err != nil {
			return "", err
		}
		p.ID = fmt.Sprintf("P%03d", count+1)
		p.PasswordHash = hash
		if err := tx.Create(&p).Error; err != nil {
			return "", errors.Wrap(err, "failed to store patient")
		}
		return p.ID, nil

	case ledger.OpRegisterDoctor:
		var d DoctorRow
		var password string
		if err := decodeArgs(args, &d.Name, &d.RegID, &d.Phone, &password); err != nil {
			return "", err
		}
		if strings.TrimSpace(d.Name) == "" || password == "" {
			return "", revert("Name and password are required")
		}
		d.RegID = strings.TrimSpace(d.RegID)
		if d.RegID == "" {
			var count int64
			if err := tx.Model(&DoctorRow{}).Count(&count).Error; err != nil {
				return "", errors.Wrap(err, "failed to count doctors")
			}
			d.RegID = fmt.Sprintf("D%03d", count+1)
		}
		var existing int64
		if err := tx.Model(&DoctorRow{}).Where("reg_id = ?", d.RegID).Count(&existing).Error; err != nil {
			return "", errors.Wrap(err, "failed to check doctor")
		}
		if existing > 0 {
			return "", revert("Doctor already registered")
		}
		hash, err := utils.HashPassword(password)
		if err != nil {
			return "", err
		}
		d.PasswordHash = hash
		if err := tx.Create(&d).Error; err != nil {
			return "", errors.Wrap(err, "failed to store doctor")
		}
		return d.RegID, nil

	case ledger.OpCreateAppointment:
		var a AppointmentRow
		if err := decodeArgs(args, &a.PatientID, &a.PatientName, &a.DoctorID, &a.DoctorName,
			&a.Date, &a.Time, &a.Reason, &a.Status, &a.FromRequest); err != nil {
			return "", err
		}
		if a.PatientID == "" || a.DoctorID == "" || a.Date == "" || a.Time == "" {
			return "", revert("Patient, doctor, date and time are required")
		}
		a.CreatedAt = now
		if err := tx.Create(&a).Error; err != nil {
			return "", errors.Wrap(err, "failed to store appointment")
		}
		return strconv.FormatUint(a.ID, 10), nil

	case ledger.OpDeleteAppointment:
		var id string
		if err := decodeArgs(args, &id); err != nil {
			return "", err
		}
		row, err := appointmentByID(tx, id)
		if err != nil {
			return "", err
		}
		if err := tx.Delete(&row).Error; err != nil {
			return "", errors.Wrap(err, "failed to delete appointment")
		}
		return id, nil

	case ledger.OpCreateAppointmentRequest:
		var r RequestRow
		if err := decodeArgs(args, &r.PatientID, &r.PatientName, &r.PatientEmail, &r.PatientMobile,
			&r.Date, &r.Time, &r.Reason, &r.PreferredDoctorID, &r.PreferredDoctorName); err != nil {
			return "", err
		}
		if r.PatientID == "" || r.Date == "" || r.Time == "" {
			return "", revert("Patient, date and time are required")
		}
		r.Status = string(models.RequestPending)
		r.RequestedAt = now
		if err := tx.Create(&r).Error; err != nil {
			return "", errors.Wrap(err, "failed to store appointment request")
		}
		return strconv.FormatUint(r.ID, 10), nil

	case ledger.OpResolveAppointmentRequest:
		var id, actorID string
		var status models.RequestStatus
		if err := decodeArgs(args, &id, &status, &actorID); err != nil {
			return "", err
		}
		if !status.Terminal() {
			return "", revert("Invalid status")
		}
		row, err := requestByID(tx, id)
		if err != nil {
			return "", err
		}
		if models.RequestStatus(row.Status) != models.RequestPending {
			return "", revert("Request already processed")
		}
		if row.request().ReservedFor(actorID) {
			return "", revert("Request is reserved for another doctor")
		}
		err = tx.Model(&row).Updates(map[string]interface{}{
			"status":      string(status),
			"resolved_by": actorID,
			"resolved_at": now,
		}).Error
		if err != nil {
			return "", errors.Wrap(err, "failed to resolve appointment request")
		}
		return id, nil

	case ledger.OpDeleteAppointmentRequest:
		var id string
		if err := decodeArgs(args, &id); err != nil {
			return "", err
		}
		row, err := requestByID(tx, id)
		if err != nil {
			return "", err
		}
		if err := tx.Delete(&row).Error; err != nil {
			return "", errors.Wrap(err, "failed to delete appointment request")
		}
		return id, nil

	case ledger.OpSendChatMessage:
		var m MessageRow
		var plaintext string
		if err := decodeArgs(args, &m.PatientID, &m.DoctorID, &m.SenderID, &m.SenderName, &m.SenderType,
			&plaintext, &m.Ciphertext, &m.IsAppointmentInfo, &m.SnapshotJSON); err != nil {
			return "", err
		}
		if m.Ciphertext == "" {
			return "", revert("Empty message")
		}
		if m.SenderID != m.PatientID && m.SenderID != m.DoctorID {
			return "", revert("Sender is not part of this conversation")
		}
		m.CreatedAt = now
		if err := tx.Create(&m).Error; err != nil {
			return "", errors.Wrap(err, "failed to store chat message")
		}
		return strconv.FormatUint(m.ID, 10), nil
	}
	return "", revert("unknown operation " + op)
}

func first(db *gorm.DB, dst interface{}, where string, args ...interface{}) error {
	return db.Where(where, args...).First(dst).Error
}

func notFound(err error, reason string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return revert(reason)
	}
	return errors.Wrap(err, reason)
}

func appointmentByID(db *gorm.DB, id string) (AppointmentRow, error) {
	var row AppointmentRow
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return row, revert("Appointment not found")
	}
	if err := first(db, &row, "id = ?", n); err != nil {
		return row, notFound(err, "Appointment not found")
	}
	return row, nil
}

func requestByID(db *gorm.DB, id string) (RequestRow, error) {
	var row RequestRow
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return row, revert("Request not found")
	}
	if err := first(db, &row, "id = ?", n); err != nil {
		return row, notFound(err, "Request not found")
	}
	return row, nil
}
