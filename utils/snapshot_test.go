package utils

import (
	"testing"

	"MediLedger/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() models.AppointmentSnapshot {
	return models.AppointmentSnapshot{
		AppointmentID: "7",
		PatientID:     "P001",
		PatientName:   "Asha",
		DoctorID:      "D001",
		DoctorName:    "Dr. Rao",
		Date:          "2025-09-01",
		Time:          "10:00",
		Reason:        "checkup",
		Status:        models.AppointmentStatusScheduled,
		FromRequest:   true,
	}
}

func TestRenderSnapshotIsDeterministic(t *testing.T) {
	s := sampleSnapshot()
	text := RenderSnapshot(s)

	assert.Equal(t, text, RenderSnapshot(s))
	assert.Contains(t, text, "APPOINTMENT CONFIRMED")
	assert.Contains(t, text, "Date: 2025-09-01")
	assert.Contains(t, text, "Time: 10:00")
	assert.Contains(t, text, "Approved from patient request")

	s.FromRequest = false
	assert.Contains(t, RenderSnapshot(s), "Doctor scheduled")
}

func TestSnapshotMarshalParse(t *testing.T) {
	payload, err := MarshalSnapshot(sampleSnapshot())
	require.NoError(t, err)

	parsed, err := ParseSnapshot(payload)
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), *parsed)
}

func TestParseSnapshotRejectsInvalidPayloads(t *testing.T) {
	_, err := ParseSnapshot(`{"appointment_id": "7", "patient_id": "", "doctor_id": "D001", "date": "x", "time": "y"}`)
	assert.Error(t, err)

	_, err = ParseSnapshot(`{"appointment_id": 7}`)
	assert.Error(t, err)

	_, err = ParseSnapshot(`not json`)
	assert.Error(t, err)
}
