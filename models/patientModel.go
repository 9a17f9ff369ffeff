package models

// PatientRecord is a patient identity as stored on the ledger.
type PatientRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Disease string `json:"disease"`
	DOB     string `json:"dob"`
	Mobile  string `json:"mobile"`
	Email   string `json:"email"`
	SBP     string `json:"sbp"`
	Sugar   string `json:"sugar"`
}

// DoctorRecord is a doctor identity as stored on the ledger.
type DoctorRecord struct {
	RegID string `json:"reg_id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// PatientRegistration is the registration form for a patient. Field order
// matches the ledger's registerPatient arguments.
type PatientRegistration struct {
	Name     string `json:"name"`
	Disease  string `json:"disease"`
	DOB      string `json:"dob"`
	Mobile   string `json:"mobile"`
	Email    string `json:"email"`
	SBP      string `json:"sbp"`
	Sugar    string `json:"sugar"`
	Password string `json:"password"`
}

// DoctorRegistration is the registration form for a doctor. RegID is
// optional; the ledger assigns one when it is empty.
type DoctorRegistration struct {
	Name     string `json:"name"`
	RegID    string `json:"reg_id"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}
