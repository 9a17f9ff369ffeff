package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"MediLedger/apperrors"
	"MediLedger/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) Call(ctx context.Context, op string, args []interface{}) (json.RawMessage, error) {
	a := m.Called(op, args)
	raw, _ := a.Get(0).(json.RawMessage)
	return raw, a.Error(1)
}

func (m *mockTransport) Send(ctx context.Context, op string, args []interface{}, fee FeeTier) (string, error) {
	a := m.Called(op, args, fee)
	return a.String(0), a.Error(1)
}

func (m *mockTransport) Receipt(ctx context.Context, txHash string) (*Receipt, error) {
	a := m.Called(txHash)
	r, _ := a.Get(0).(*Receipt)
	return r, a.Error(1)
}

func newTestClient(t *mockTransport) *Client {
	return NewClient(t, Options{
		ReadTimeout:    50 * time.Millisecond,
		LoginTimeout:   50 * time.Millisecond,
		SubmitTimeout:  50 * time.Millisecond,
		ConfirmTimeout: 50 * time.Millisecond,
	}, zap.NewNop())
}

func TestReadDecodesResult(t *testing.T) {
	tr := new(mockTransport)
	tr.On("Call", OpGetPatientByID, []interface{}{"P001"}).
		Return(json.RawMessage(`{"id":"P001","name":"Asha"}`), nil)

	p, err := newTestClient(tr).GetPatientByID(context.Background(), "P001")
	require.NoError(t, err)
	assert.Equal(t, "Asha", p.Name)
	tr.AssertExpectations(t)
}

func TestReadTimesOut(t *testing.T) {
	tr := new(mockTransport)
	tr.On("Call", OpGetAppointmentRequests, mock.Anything).
		Run(func(mock.Arguments) { time.Sleep(300 * time.Millisecond) }).
		Return(json.RawMessage(`[]`), nil)

	_, err := newTestClient(tr).GetAppointmentRequests(context.Background())
	assert.True(t, errors.Is(err, apperrors.ErrTimeout))
}

func TestReadMapsRevertAndUnavailable(t *testing.T) {
	tr := new(mockTransport)
	tr.On("Call", OpGetDoctorByRegID, mock.Anything).Return(nil, &RevertError{Reason: "Doctor not found"})
	tr.On("Call", OpGetPatientByID, mock.Anything).Return(nil, errors.New("dial tcp: connection refused"))
	c := newTestClient(tr)

	_, err := c.GetDoctorByRegID(context.Background(), "D404")
	assert.True(t, errors.Is(err, apperrors.ErrRemoteRejected))
	assert.Contains(t, err.Error(), "Doctor not found")

	_, err = c.GetPatientByID(context.Background(), "P001")
	assert.True(t, errors.Is(err, apperrors.ErrRemoteUnavailable))
}

func TestWriteEscalatesFeeTiers(t *testing.T) {
	policy := DefaultFeePolicy()
	tr := new(mockTransport)
	tr.On("Send", OpCreateAppointment, mock.Anything, policy[0]).Return("", &RevertError{Reason: "intrinsic gas too low"}).Once()
	tr.On("Send", OpCreateAppointment, mock.Anything, policy[1]).Return("", &RevertError{Reason: "transaction underpriced"}).Once()
	tr.On("Send", OpCreateAppointment, mock.Anything, policy[2]).Return("0xabc", nil).Once()
	tr.On("Receipt", "0xabc").Return(&Receipt{TxHash: "0xabc", Status: ReceiptSuccess, EntityID: "7"}, nil)

	id, err := newTestClient(tr).CreateAppointment(context.Background(), models.Appointment{PatientID: "P001", DoctorID: "D001"})
	require.NoError(t, err)
	assert.Equal(t, "7", id)
	tr.AssertNumberOfCalls(t, "Send", 3)
}

func TestWriteRejectedAtEveryTier(t *testing.T) {
	tr := new(mockTransport)
	tr.On("Send", OpDeleteAppointment, mock.Anything, mock.Anything).Return("", &RevertError{Reason: "transaction underpriced"})

	err := newTestClient(tr).DeleteAppointment(context.Background(), "7")
	assert.True(t, errors.Is(err, apperrors.ErrRemoteRejected))
	assert.Contains(t, err.Error(), "transaction underpriced")
	tr.AssertNumberOfCalls(t, "Send", len(DefaultFeePolicy()))
	tr.AssertNotCalled(t, "Receipt", mock.Anything)
}

func TestWriteStopsOnUnavailable(t *testing.T) {
	tr := new(mockTransport)
	tr.On("Send", OpDeleteAppointmentRequest, mock.Anything, mock.Anything).Return("", errors.New("connection reset"))

	err := newTestClient(tr).DeleteAppointmentRequest(context.Background(), "3")
	assert.True(t, errors.Is(err, apperrors.ErrRemoteUnavailable))
	tr.AssertNumberOfCalls(t, "Send", 1)
}

func TestWriteRevertedReceipt(t *testing.T) {
	tr := new(mockTransport)
	tr.On("Send", OpResolveAppointmentRequest, []interface{}{"3", models.RequestApproved, "D001"}, mock.Anything).Return("0x1", nil)
	tr.On("Receipt", "0x1").Return(&Receipt{TxHash: "0x1", Status: ReceiptReverted, Reason: "Request already processed"}, nil)

	err := newTestClient(tr).ResolveAppointmentRequest(context.Background(), "3", models.RequestApproved, "D001")
	assert.True(t, errors.Is(err, apperrors.ErrRemoteRejected))
	assert.Contains(t, err.Error(), "Request already processed")
}

func TestConfirmationTimesOut(t *testing.T) {
	tr := new(mockTransport)
	tr.On("Send", OpSendChatMessage, mock.Anything, mock.Anything).Return("0x2", nil)
	tr.On("Receipt", "0x2").
		Run(func(mock.Arguments) { time.Sleep(300 * time.Millisecond) }).
		Return(&Receipt{Status: ReceiptSuccess}, nil)

	_, err := newTestClient(tr).SendChatMessage(context.Background(), models.Message{PatientID: "P001", DoctorID: "D001"})
	assert.True(t, errors.Is(err, apperrors.ErrTimeout))
}
