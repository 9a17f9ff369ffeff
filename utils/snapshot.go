package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	"MediLedger/models"

	"github.com/xeipuuv/gojsonschema"
)

const snapshotSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["appointment_id", "patient_id", "doctor_id", "date", "time"],
  "properties": {
    "appointment_id": {"type": "string"},
    "patient_id":     {"type": "string", "minLength": 1},
    "patient_name":   {"type": "string"},
    "doctor_id":      {"type": "string", "minLength": 1},
    "doctor_name":    {"type": "string"},
    "date":           {"type": "string", "minLength": 1},
    "time":           {"type": "string", "minLength": 1},
    "reason":         {"type": "string"},
    "status":         {"type": "string"},
    "from_request":   {"type": "boolean"}
  }
}`

var snapshotSchemaLoader = gojsonschema.NewStringLoader(snapshotSchema)

// RenderSnapshot renders an appointment as the human readable text of a
// snapshot message. The output depends only on the appointment's fields.
func RenderSnapshot(s models.AppointmentSnapshot) string {
	source := "Doctor scheduled"
	if s.FromRequest {
		source = "Approved from patient request"
	}
	var b strings.Builder
	b.WriteString("APPOINTMENT CONFIRMED\n\n")
	fmt.Fprintf(&b, "Patient: %s\n", s.PatientName)
	fmt.Fprintf(&b, "Doctor: %s\n", s.DoctorName)
	fmt.Fprintf(&b, "Date: %s\n", s.Date)
	fmt.Fprintf(&b, "Time: %s\n", s.Time)
	fmt.Fprintf(&b, "Reason: %s\n", s.Reason)
	fmt.Fprintf(&b, "Status: %s\n", s.Status)
	fmt.Fprintf(&b, "Appointment ID: %s\n\n", s.AppointmentID)
	fmt.Fprintf(&b, "Source: %s\n", source)
	b.WriteString("Please save this information for your records.")
	return b.String()
}

// MarshalSnapshot encodes a snapshot for the ledger's snapshotJson field.
func MarshalSnapshot(s models.AppointmentSnapshot) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal appointment snapshot: %w", err)
	}
	return string(raw), nil
}

// ParseSnapshot validates a snapshot payload against its schema and decodes
// it.
func ParseSnapshot(payload string) (*models.AppointmentSnapshot, error) {
	result, err := gojsonschema.Validate(snapshotSchemaLoader, gojsonschema.NewStringLoader(payload))
	if err != nil {
		return nil, fmt.Errorf("snapshot schema validation error: %w", err)
	}
	if !result.Valid() {
		var errs []string
		for _, e := range result.Errors() {
			errs = append(errs, e.String())
		}
		return nil, fmt.Errorf("snapshot failed schema validation: %s", strings.Join(errs, "; "))
	}
	var snapshot models.AppointmentSnapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snapshot, nil
}
