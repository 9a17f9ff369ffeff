// Package ledger is the client side of the authoritative contract. Every
// call is bounded by a timeout; writes are submitted and then confirmed by
// waiting for the transaction receipt.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"MediLedger/models"
)

// Ledger is the set of contract operations the portal uses.
type Ledger interface {
	RegisterPatient(ctx context.Context, form models.PatientRegistration) (string, error)
	RegisterDoctor(ctx context.Context, form models.DoctorRegistration) (string, error)
	LoginPatient(ctx context.Context, patientID, password string) (bool, error)
	LoginDoctor(ctx context.Context, regID, password string) (bool, error)
	GetPatientByID(ctx context.Context, patientID string) (*models.PatientRecord, error)
	GetDoctorByRegID(ctx context.Context, regID string) (*models.DoctorRecord, error)

	CreateAppointment(ctx context.Context, a models.Appointment) (string, error)
	GetPatientAppointments(ctx context.Context, patientID string) ([]string, error)
	GetDoctorAppointments(ctx context.Context, doctorID string) ([]string, error)
	GetAppointmentByID(ctx context.Context, appointmentID string) (*models.Appointment, error)
	DeleteAppointment(ctx context.Context, appointmentID string) error

	CreateAppointmentRequest(ctx context.Context, r models.AppointmentRequest) (string, error)
	GetAppointmentRequests(ctx context.Context) ([]models.AppointmentRequest, error)
	ResolveAppointmentRequest(ctx context.Context, requestID string, status models.RequestStatus, actorID string) error
	DeleteAppointmentRequest(ctx context.Context, requestID string) error

	SendChatMessage(ctx context.Context, m models.Message) (string, error)
	GetChatMessages(ctx context.Context, patientID, doctorID string) ([]models.Message, error)
}

// Contract operation names. They are part of the wire contract.
const (
	OpRegisterPatient           = "registerPatient"
	OpRegisterDoctor            = "registerDoctor"
	OpLoginPatient              = "loginPatient"
	OpLoginDoctor               = "loginDoctor"
	OpGetPatientByID            = "getPatientById"
	OpGetDoctorByRegID          = "getDoctorByRegId"
	OpCreateAppointment         = "createAppointment"
	OpGetPatientAppointments    = "getPatientAppointments"
	OpGetDoctorAppointments     = "getDoctorAppointments"
	OpGetAppointmentByID        = "getAppointmentById"
	OpDeleteAppointment         = "deleteAppointment"
	OpCreateAppointmentRequest  = "createAppointmentRequest"
	OpGetAppointmentRequests    = "getAppointmentRequests"
	OpResolveAppointmentRequest = "resolveAppointmentRequest"
	OpDeleteAppointmentRequest  = "deleteAppointmentRequest"
	OpSendChatMessage           = "sendChatMessage"
	OpGetChatMessages           = "getChatMessages"
)

// FeeTier is one step of the write retry policy. Auto leaves gas estimation
// and pricing to the ledger node.
type FeeTier struct {
	Auto         bool   `json:"auto"`
	GasLimit     uint64 `json:"gas_limit,omitempty"`
	GasPriceGwei uint64 `json:"gas_price_gwei,omitempty"`
}

func (f FeeTier) String() string {
	if f.Auto {
		return "auto"
	}
	return fmt.Sprintf("gas=%d price=%dgwei", f.GasLimit, f.GasPriceGwei)
}

// DefaultFeePolicy is the escalation used when none is configured.
func DefaultFeePolicy() []FeeTier {
	return []FeeTier{
		{Auto: true},
		{GasLimit: 500000, GasPriceGwei: 20},
		{GasLimit: 1000000, GasPriceGwei: 30},
	}
}

// ReceiptStatus is the final state of a submitted transaction.
type ReceiptStatus string

const (
	ReceiptPending  ReceiptStatus = "pending"
	ReceiptSuccess  ReceiptStatus = "success"
	ReceiptReverted ReceiptStatus = "reverted"
)

// Receipt confirms a submitted write. EntityID is the id the contract
// assigned to the entity the write created, if any.
type Receipt struct {
	TxHash       string        `json:"tx_hash"`
	Op           string        `json:"op"`
	Status       ReceiptStatus `json:"status"`
	EntityID     string        `json:"entity_id,omitempty"`
	Reason       string        `json:"reason,omitempty"`
	GasLimit     uint64        `json:"gas_limit"`
	GasPriceGwei uint64        `json:"gas_price_gwei"`
	ConfirmedAt  time.Time     `json:"confirmed_at"`
}

// Transport carries contract calls to a ledger node.
type Transport interface {
	// Call executes a read-only operation.
	Call(ctx context.Context, op string, args []interface{}) (json.RawMessage, error)
	// Send submits a write at the given fee and returns its transaction hash.
	Send(ctx context.Context, op string, args []interface{}, fee FeeTier) (string, error)
	// Receipt blocks until the transaction is final.
	Receipt(ctx context.Context, txHash string) (*Receipt, error)
}

// RevertError is returned by a Transport when the node refuses or reverts
// an operation. Reason is the node's message, verbatim.
type RevertError struct {
	Reason string
}

func (e *RevertError) Error() string {
	return "reverted: " + e.Reason
}
