package contract

import (
	"encoding/json"
	"testing"
	"time"

	"MediLedger/ledger"
	"MediLedger/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawArgs(t *testing.T, values ...interface{}) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, len(values))
	for i, v := range values {
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		out[i] = raw
	}
	return out
}

func TestFeeScheduleAcceptsDefaultPolicyTiers(t *testing.T) {
	fees := FeeSchedule{MinGasPriceGwei: 1, SuggestedGasPriceGwei: 10}
	args := rawArgs(t, "P001", "D001", "P001", "Asha", "patient", "", "aGVsbG8=", false, "")

	for _, tier := range ledger.DefaultFeePolicy() {
		accepted, err := fees.Accept(ledger.OpSendChatMessage, args, tier)
		require.NoError(t, err, tier.String())
		assert.GreaterOrEqual(t, accepted.GasLimit, EstimateGas(ledger.OpSendChatMessage, args))
	}
}

func TestFeeScheduleRefusals(t *testing.T) {
	args := rawArgs(t, "1")
	fees := FeeSchedule{MinGasPriceGwei: 25, SuggestedGasPriceGwei: 10}

	_, err := fees.Accept(ledger.OpDeleteAppointment, args, ledger.FeeTier{Auto: true})
	var revertErr *ledger.RevertError
	require.ErrorAs(t, err, &revertErr)
	assert.Equal(t, ReasonUnderpriced, revertErr.Reason)

	_, err = fees.Accept(ledger.OpDeleteAppointment, args, ledger.FeeTier{GasLimit: 500000, GasPriceGwei: 20})
	require.ErrorAs(t, err, &revertErr)
	assert.Equal(t, ReasonUnderpriced, revertErr.Reason)

	accepted, err := fees.Accept(ledger.OpDeleteAppointment, args, ledger.FeeTier{GasLimit: 1000000, GasPriceGwei: 30})
	require.NoError(t, err)
	assert.Equal(t, uint64(30), accepted.GasPriceGwei)

	_, err = fees.Accept(ledger.OpDeleteAppointment, args, ledger.FeeTier{GasLimit: 100, GasPriceGwei: 30})
	require.ErrorAs(t, err, &revertErr)
	assert.Equal(t, ReasonGasTooLow, revertErr.Reason)
}

func TestEstimateGasGrowsWithPayload(t *testing.T) {
	short := EstimateGas(ledger.OpSendChatMessage, rawArgs(t, "hi"))
	long := EstimateGas(ledger.OpSendChatMessage, rawArgs(t, "a much longer message body"))
	assert.Greater(t, long, short)
	assert.True(t, IsWrite(ledger.OpResolveAppointmentRequest))
	assert.False(t, IsWrite(ledger.OpGetChatMessages))
}

func TestDecodeArgs(t *testing.T) {
	var id string
	var status models.RequestStatus
	var flag bool
	require.NoError(t, decodeArgs(rawArgs(t, "7", "approved", true), &id, &status, &flag))
	assert.Equal(t, "7", id)
	assert.Equal(t, models.RequestApproved, status)
	assert.True(t, flag)

	var revertErr *ledger.RevertError
	assert.ErrorAs(t, decodeArgs(rawArgs(t, "7"), &id, &status), &revertErr)
	assert.ErrorAs(t, decodeArgs(rawArgs(t, 7), &id), &revertErr)
}

func TestRowConversions(t *testing.T) {
	at := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	r := RequestRow{ID: 4, PatientID: "P001", Status: "rejected", ResolvedBy: "D001", ResolvedAt: &at}
	req := r.request()
	assert.Equal(t, "4", req.ID)
	assert.Equal(t, "D001", req.RejectedBy)
	assert.Empty(t, req.ApprovedBy)
	assert.Equal(t, &at, req.RejectedAt)

	tx := TxRow{Hash: "0xabc", Op: ledger.OpCreateAppointment, Status: "success", EntityID: "9", ConfirmedAt: &at}
	receipt := tx.receipt()
	assert.Equal(t, ledger.ReceiptSuccess, receipt.Status)
	assert.Equal(t, "9", receipt.EntityID)
	assert.Equal(t, at, receipt.ConfirmedAt)

	msg := MessageRow{ID: 2, PatientID: "P001", DoctorID: "D001", SenderType: "doctor", Ciphertext: "x", CreatedAt: at}.message()
	assert.Equal(t, models.RoleDoctor, msg.SenderType)
	assert.Empty(t, msg.Plaintext)
	assert.Equal(t, at, msg.Timestamp)
}
