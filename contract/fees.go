package contract

import (
	"encoding/json"

	"MediLedger/ledger"
)

const (
	baseGas       = 21000
	gasPerArgByte = 16
)

// Revert reasons for refused fee tiers.
const (
	ReasonUnderpriced = "transaction underpriced"
	ReasonGasTooLow   = "intrinsic gas too low"
)

// opGas is the execution cost of each write on top of the base cost.
var opGas = map[string]uint64{
	ledger.OpRegisterPatient:           180000,
	ledger.OpRegisterDoctor:            120000,
	ledger.OpCreateAppointment:         200000,
	ledger.OpDeleteAppointment:         40000,
	ledger.OpCreateAppointmentRequest:  220000,
	ledger.OpResolveAppointmentRequest: 60000,
	ledger.OpDeleteAppointmentRequest:  40000,
	ledger.OpSendChatMessage:           90000,
}

// IsWrite reports whether op changes contract state.
func IsWrite(op string) bool {
	_, ok := opGas[op]
	return ok
}

// EstimateGas returns the gas a write of op with the given arguments uses.
func EstimateGas(op string, args []json.RawMessage) uint64 {
	gas := baseGas + opGas[op]
	for _, a := range args {
		gas += uint64(len(a)) * gasPerArgByte
	}
	return gas
}

// FeeSchedule is the node's pricing policy.
type FeeSchedule struct {
	MinGasPriceGwei       uint64
	SuggestedGasPriceGwei uint64
}

// Accept checks a submission's fee tier and returns the fee it is charged
// at. An auto tier is priced at the suggested price with a 20% gas margin.
// A tier the node refuses comes back as a *ledger.RevertError.
func (s FeeSchedule) Accept(op string, args []json.RawMessage, fee ledger.FeeTier) (ledger.FeeTier, error) {
	needed := EstimateGas(op, args)
	if fee.Auto {
		fee = ledger.FeeTier{GasLimit: needed + needed/5, GasPriceGwei: s.SuggestedGasPriceGwei}
	}
	if fee.GasPriceGwei < s.MinGasPriceGwei {
		return fee, &ledger.RevertError{Reason: ReasonUnderpriced}
	}
	if fee.GasLimit < needed {
		return fee, &ledger.RevertError{Reason: ReasonGasTooLow}
	}
	return fee, nil
}
