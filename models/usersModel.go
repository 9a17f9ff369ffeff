package models

// Role identifies which side of the portal a user acts on.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDoctor
}

// Counterpart returns the opposite role.
func (r Role) Counterpart() Role {
	if r == RolePatient {
		return RoleDoctor
	}
	return RolePatient
}

// Identity is the acting user of a portal operation, as carried by the
// session token.
type Identity struct {
	ID     string `json:"id"`
	Role   Role   `json:"role"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Mobile string `json:"mobile,omitempty"`
}

// Notification is the payload handed to the notification collaborator.
type Notification struct {
	Kind           string `json:"kind"`
	RecipientID    string `json:"recipient_id"`
	RecipientRole  Role   `json:"recipient_role"`
	RecipientEmail string `json:"recipient_email,omitempty"`
	Subject        string `json:"subject"`
	Summary        string `json:"summary"`
}

const (
	NotificationAppointmentApproved = "appointment_approved"
	NotificationAppointmentBooked   = "appointment_booked"
	NotificationNewMessage          = "new_message"
)
