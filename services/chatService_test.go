package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"MediLedger/apperrors"
	"MediLedger/ledger"
	"MediLedger/ledger/ledgertest"
	"MediLedger/models"
	"MediLedger/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenConversationIsIdempotent(t *testing.T) {
	h := newHarness(t)
	a, err := h.chat.OpenConversation("P1", "D1")
	require.NoError(t, err)
	b, err := h.chat.OpenWith(doctor1, "P1")
	require.NoError(t, err)
	c, err := h.chat.OpenWith(patient1, "D1")
	require.NoError(t, err)

	assert.Equal(t, "chat_P1_D1", a.ID)
	assert.Equal(t, a, b)
	assert.Equal(t, a, c)

	_, err = h.chat.OpenConversation("", "D1")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestSendingTheSameTextTwiceKeepsBothMessages(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	conv, err := h.chat.OpenConversation("P1", "D1")
	require.NoError(t, err)

	first, err := h.chat.SendMessage(ctx, conv.ID, patient1, "see you soon")
	require.NoError(t, err)
	second, err := h.chat.SendMessage(ctx, conv.ID, patient1, "see you soon")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	history, err := h.chat.LoadHistory(ctx, conv.ID)
	require.NoError(t, err)
	assert.False(t, history.Degraded)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, first.ID, history.Messages[0].ID)
	assert.Equal(t, second.ID, history.Messages[1].ID)
	for _, m := range history.Messages {
		assert.Equal(t, "see you soon", m.Plaintext)
		assert.False(t, m.Unreadable)
	}
	assert.False(t, history.Messages[1].Timestamp.Before(history.Messages[0].Timestamp))
}

func TestSendMessageStoresCiphertextAndNotifiesCounterpart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.ledger.AddPatient(models.PatientRecord{ID: "P1", Name: "Asha", Email: "asha@example.com"})
	conv, err := h.chat.OpenConversation("P1", "D1")
	require.NoError(t, err)

	_, err = h.chat.SendMessage(ctx, conv.ID, doctor1, "results are fine")
	require.NoError(t, err)

	stored := h.ledger.Messages()
	require.Len(t, stored, 1)
	key := utils.DeriveChatKey("P1", "D1")
	assert.Equal(t, utils.EncodeMessage("results are fine", key), stored[0].Ciphertext)
	assert.Equal(t, models.RoleDoctor, stored[0].SenderType)

	sent := h.notifier.all()
	require.Len(t, sent, 1)
	assert.Equal(t, models.NotificationNewMessage, sent[0].Kind)
	assert.Equal(t, "P1", sent[0].RecipientID)
	assert.Equal(t, models.RolePatient, sent[0].RecipientRole)
	assert.Equal(t, "asha@example.com", sent[0].RecipientEmail)
}

func TestSendMessageRules(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	conv, err := h.chat.OpenConversation("P1", "D1")
	require.NoError(t, err)

	_, err = h.chat.SendMessage(ctx, conv.ID, patient2, "hello")
	assert.True(t, errors.Is(err, apperrors.ErrNotAuthorized))
	_, err = h.chat.SendMessage(ctx, conv.ID, doctor2, "hello")
	assert.True(t, errors.Is(err, apperrors.ErrNotAuthorized))
	_, err = h.chat.SendMessage(ctx, conv.ID, patient1, "   ")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	_, err = h.chat.SendMessage(ctx, "chat_P9_D9", patient1, "hello")
	assert.True(t, errors.Is(err, apperrors.ErrNotAuthorized))
	_, err = h.chat.SendMessage(ctx, "room-9", patient1, "hello")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	assert.Zero(t, h.ledger.Calls(ledger.OpSendChatMessage))
}

func TestLoadHistoryDegradesToCache(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	conv, err := h.chat.OpenConversation("P1", "D1")
	require.NoError(t, err)

	h.ledger.Fail(ledger.OpSendChatMessage, fmt.Errorf("%w: no confirmation", apperrors.ErrTimeout))
	_, err = h.chat.SendMessage(ctx, conv.ID, patient1, "are you there?")
	assert.True(t, errors.Is(err, apperrors.ErrTimeout))
	h.reconciler.Wait()

	h.ledger.Fail(ledger.OpGetChatMessages, ledgertest.Unavailable())
	history, err := h.chat.LoadHistory(ctx, conv.ID)
	require.NoError(t, err)
	assert.True(t, history.Degraded)
	require.Len(t, history.Messages, 1)
	assert.Equal(t, "are you there?", history.Messages[0].Plaintext)
	assert.True(t, history.Messages[0].Local)
}

func TestRefusedSendLeavesNoLocalCopy(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	conv, err := h.chat.OpenConversation("P1", "D1")
	require.NoError(t, err)

	for _, refusal := range []error{apperrors.Rejected("transaction underpriced"), ledgertest.Unavailable()} {
		h.ledger.Fail(ledger.OpSendChatMessage, refusal)
		_, err = h.chat.SendMessage(ctx, conv.ID, patient1, "hello")
		require.Error(t, err)
	}
	h.ledger.Fail(ledger.OpSendChatMessage, nil)

	sent, err := h.chat.SendMessage(ctx, conv.ID, patient1, "hello")
	require.NoError(t, err)
	h.reconciler.Wait()

	history, err := h.chat.LoadHistory(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, history.Messages, 1)
	assert.Equal(t, sent.ID, history.Messages[0].ID)
	assert.False(t, history.Messages[0].Local)

	h.ledger.Fail(ledger.OpGetChatMessages, ledgertest.Unavailable())
	history, err = h.chat.LoadHistory(ctx, conv.ID)
	require.NoError(t, err)
	assert.Len(t, history.Messages, 1)
}

func TestConversationsAreDerivedFromTheirID(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.chat.SendMessage(ctx, "chat_P1_D1", doctor1, "no open call needed")
	require.NoError(t, err)
	history, err := h.chat.LoadHistory(ctx, utils.ConversationID("P1", "D1"))
	require.NoError(t, err)
	assert.Equal(t, "P1", history.Conversation.PatientID)
	assert.Equal(t, "D1", history.Conversation.DoctorID)
	require.Len(t, history.Messages, 1)

	_, err = h.chat.OpenConversation("P_1", "D1")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestCorruptCiphertextRendersSentinel(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	conv, err := h.chat.OpenConversation("P1", "D1")
	require.NoError(t, err)

	_, err = h.ledger.SendChatMessage(ctx, models.Message{PatientID: "P1", DoctorID: "D1", SenderID: "P1", Ciphertext: "%%%not-base64"})
	require.NoError(t, err)
	_, err = h.chat.SendMessage(ctx, conv.ID, patient1, "readable")
	require.NoError(t, err)

	history, err := h.chat.LoadHistory(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, utils.DecryptionErrorText, history.Messages[0].Plaintext)
	assert.True(t, history.Messages[0].Unreadable)
	assert.Equal(t, "readable", history.Messages[1].Plaintext)
}

func TestShareAppointmentSnapshot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	outcome, err := h.appointments.BookAppointment(ctx, doctor1, models.BookingForm{PatientID: "P1", Date: "2025-09-01", Time: "10:00", Reason: "checkup"})
	require.NoError(t, err)
	conv, err := h.chat.OpenConversation("P1", "D1")
	require.NoError(t, err)

	msg, err := h.chat.ShareAppointmentSnapshot(ctx, conv.ID, doctor1, *outcome.Appointment)
	require.NoError(t, err)
	assert.True(t, msg.IsAppointmentInfo)
	assert.Equal(t, utils.RenderSnapshot(models.SnapshotOf(*outcome.Appointment)), msg.Plaintext)

	history, err := h.chat.LoadHistory(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, history.Messages, 1)
	got := history.Messages[0]
	assert.Contains(t, got.Plaintext, "APPOINTMENT CONFIRMED")
	require.NotNil(t, got.AppointmentSnapshot)
	assert.Equal(t, outcome.Appointment.ID, got.AppointmentSnapshot.AppointmentID)

	other := *outcome.Appointment
	other.DoctorID = "D2"
	_, err = h.chat.ShareAppointmentSnapshot(ctx, conv.ID, doctor1, other)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestPhaseTwoReplacesLocalCopies(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	conv, err := h.chat.OpenConversation("P1", "D1")
	require.NoError(t, err)

	msg, err := h.chat.SendMessage(ctx, conv.ID, patient1, "hello doctor")
	require.NoError(t, err)
	h.reconciler.Wait()

	h.ledger.Fail(ledger.OpGetChatMessages, ledgertest.Unavailable())
	history, err := h.chat.LoadHistory(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, history.Messages, 1)
	assert.Equal(t, msg.ID, history.Messages[0].ID)
	assert.False(t, history.Messages[0].Local)
	assert.Equal(t, "hello doctor", history.Messages[0].Plaintext)
}

func TestListConversations(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for _, f := range []models.BookingForm{
		{PatientID: "P1", Date: "2025-09-01", Time: "10:00"},
		{PatientID: "P1", Date: "2025-09-02", Time: "10:00"},
		{PatientID: "P2", Date: "2025-09-03", Time: "10:00"},
	} {
		_, err := h.appointments.BookAppointment(ctx, doctor1, f)
		require.NoError(t, err)
	}

	convs, err := h.chat.ListConversations(ctx, doctor1)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, "chat_P2_D1", convs[0].ID)
	assert.Equal(t, "P2", convs[0].PartnerID)
	assert.Equal(t, models.RolePatient, convs[0].PartnerRole)
	assert.Equal(t, 2, convs[1].AppointmentCount)

	convs, err = h.chat.ListConversations(ctx, patient1)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "D1", convs[0].PartnerID)
	assert.Equal(t, "Dr. Rao", convs[0].PartnerName)
}
