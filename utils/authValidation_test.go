package utils

import (
	"testing"

	"MediLedger/apperrors"
	"MediLedger/models"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidateRequestFormRequiresDateAndTime(t *testing.T) {
	err := ValidateRequestForm(models.RequestForm{Time: "10:00"})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	err = ValidateRequestForm(models.RequestForm{Date: "2025-09-01", Time: "   "})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	assert.NoError(t, ValidateRequestForm(models.RequestForm{Date: "2025-09-01", Time: "10:00"}))
}

func TestValidateBookingFormRequiresPatient(t *testing.T) {
	err := ValidateBookingForm(models.BookingForm{Date: "2025-09-01", Time: "10:00"})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Contains(t, err.Error(), "patient_id")
}

func TestValidateMessageText(t *testing.T) {
	assert.True(t, errors.Is(ValidateMessageText(" \n\t"), apperrors.ErrValidation))
	assert.NoError(t, ValidateMessageText("hello"))
}

func TestValidatePatientRegistrationPassword(t *testing.T) {
	form := models.PatientRegistration{
		Name:     "Asha",
		Email:    "asha@example.com",
		Mobile:   "5550101010",
		DOB:      "1990-04-12",
		Password: "weak",
	}
	assert.Error(t, ValidatePatientRegistration(form))

	form.Password = "Str0ng!pass"
	assert.NoError(t, ValidatePatientRegistration(form))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Str0ng!pass")
	assert.NoError(t, err)
	assert.True(t, CheckPassword(hash, "Str0ng!pass"))
	assert.False(t, CheckPassword(hash, "other"))
}
