package repositories

import (
	"context"
	"fmt"

	"MediLedger/cache"
	"MediLedger/ledger"
	"MediLedger/models"

	"go.uber.org/zap"
)

// MessageRepository stores chat messages on the ledger and in the
// per-conversation mirror collections.
type MessageRepository struct {
	ledger ledger.Ledger
	store  *cache.Store
	logger *zap.Logger
}

func NewMessageRepository(l ledger.Ledger, store *cache.Store, logger *zap.Logger) *MessageRepository {
	return &MessageRepository{ledger: l, store: store, logger: logger}
}

// Send writes the message to the ledger and returns the ledger's id for it.
// Only the ciphertext leaves the process.
func (r *MessageRepository) Send(ctx context.Context, m models.Message) (string, error) {
	m.Plaintext = ""
	m.AppointmentSnapshot = nil
	id, err := r.ledger.SendChatMessage(ctx, m)
	if err != nil {
		return "", fmt.Errorf("failed to send chat message: %w", err)
	}
	return id, nil
}

// ListFromLedger returns the conversation's messages in ledger order.
func (r *MessageRepository) ListFromLedger(ctx context.Context, conv models.Conversation) ([]models.Message, error) {
	messages, err := r.ledger.GetChatMessages(ctx, conv.PatientID, conv.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat messages: %w", err)
	}
	return messages, nil
}

// Cached returns the conversation's mirrored messages.
func (r *MessageRepository) Cached(ctx context.Context, conv models.Conversation) ([]models.Message, error) {
	return cache.ReadAll[models.Message](ctx, r.store, cache.ChatCollection(conv.PatientID, conv.DoctorID))
}

// Append adds a message to the end of the conversation's mirror.
func (r *MessageRepository) Append(ctx context.Context, conv models.Conversation, m models.Message) error {
	return cache.Append(ctx, r.store, cache.ChatCollection(conv.PatientID, conv.DoctorID), m)
}

// Replace rewrites the conversation's mirror with fn applied to it.
func (r *MessageRepository) Replace(ctx context.Context, conv models.Conversation, fn func([]models.Message) []models.Message) error {
	return cache.Update(ctx, r.store, cache.ChatCollection(conv.PatientID, conv.DoctorID), fn)
}

// Discard removes a message from the conversation's mirror.
func (r *MessageRepository) Discard(ctx context.Context, conv models.Conversation, id string) error {
	return r.Replace(ctx, conv, func(all []models.Message) []models.Message {
		kept := all[:0]
		for _, m := range all {
			if m.ID != id {
				kept = append(kept, m)
			}
		}
		return kept
	})
}
