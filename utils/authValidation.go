package utils

import (
	"errors"
	"regexp"
	"strings"

	"MediLedger/apperrors"
	"MediLedger/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Validation errors
var (
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters long")
	ErrPasswordNotComplex = errors.New("password must include at least one uppercase letter, one lowercase letter, one digit, and one special character")
)

var (
	lowercaseRegex = regexp.MustCompile(`[a-z]`)
	uppercaseRegex = regexp.MustCompile(`[A-Z]`)
	digitRegex     = regexp.MustCompile(`\d`)
	specialRegex   = regexp.MustCompile(`[@$!%*?&#_\-]`)
)

// notBlank rejects values that are empty once whitespace is trimmed.
var notBlank = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
})

// ValidatePatientRegistration validates a patient registration form.
func ValidatePatientRegistration(form models.PatientRegistration) error {
	err := validation.ValidateStruct(&form,
		validation.Field(&form.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&form.Email, validation.Required, is.Email),
		validation.Field(&form.Mobile, validation.Required, validation.Length(7, 20)),
		validation.Field(&form.DOB, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&form.Password, validation.Required.Error("password cannot be blank"), validation.By(validatePassword)),
	)
	return asValidation(err)
}

// ValidateDoctorRegistration validates a doctor registration form. RegID is
// optional.
func ValidateDoctorRegistration(form models.DoctorRegistration) error {
	err := validation.ValidateStruct(&form,
		validation.Field(&form.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&form.RegID, validation.Length(0, 32)),
		validation.Field(&form.Phone, validation.Required, validation.Length(7, 20)),
		validation.Field(&form.Password, validation.Required.Error("password cannot be blank"), validation.By(validatePassword)),
	)
	return asValidation(err)
}

// ValidateRequestForm validates a patient's appointment request. Only the
// date and time are required.
func ValidateRequestForm(form models.RequestForm) error {
	err := validation.ValidateStruct(&form,
		validation.Field(&form.Date, validation.Required, notBlank),
		validation.Field(&form.Time, validation.Required, notBlank),
		validation.Field(&form.Reason, validation.Length(0, 500)),
	)
	return asValidation(err)
}

// ValidateBookingForm validates a doctor's direct booking.
func ValidateBookingForm(form models.BookingForm) error {
	err := validation.ValidateStruct(&form,
		validation.Field(&form.PatientID, validation.Required, notBlank),
		validation.Field(&form.Date, validation.Required, notBlank),
		validation.Field(&form.Time, validation.Required, notBlank),
		validation.Field(&form.Reason, validation.Length(0, 500)),
	)
	return asValidation(err)
}

// ValidateMessageText rejects blank chat messages.
func ValidateMessageText(text string) error {
	return asValidation(validation.Validate(text, validation.Required, notBlank))
}

func asValidation(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Validation(err.Error())
}

// validatePassword checks the password for length and complexity.
func validatePassword(value interface{}) error {
	password, _ := value.(string)

	if len(password) < 8 {
		return ErrPasswordTooShort
	}

	if !lowercaseRegex.MatchString(password) ||
		!uppercaseRegex.MatchString(password) ||
		!digitRegex.MatchString(password) ||
		!specialRegex.MatchString(password) {
		return ErrPasswordNotComplex
	}

	return nil
}
