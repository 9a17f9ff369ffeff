package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"MediLedger/apperrors"
	"MediLedger/models"
	"MediLedger/repositories"
	"MediLedger/utils"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var errNotParticipant = apperrors.NotAuthorized("only the conversation's patient and doctor can post to it")

// ChatService manages the encrypted conversations between patients and
// doctors.
type ChatService struct {
	messages     *repositories.MessageRepository
	users        *repositories.UserRepository
	appointments *AppointmentService
	notifier     Notifier
	reconciler   *Reconciler
	clock        utils.Clock
	logger       *zap.Logger
}

func NewChatService(
	messages *repositories.MessageRepository,
	users *repositories.UserRepository,
	appointments *AppointmentService,
	notifier Notifier,
	reconciler *Reconciler,
	clock utils.Clock,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		messages:     messages,
		users:        users,
		appointments: appointments,
		notifier:     notifier,
		reconciler:   reconciler,
		clock:        clock,
		logger:       logger,
	}
}

// OpenConversation returns the conversation between the pair. The
// conversation is derived from the pair alone, so opening it again returns
// the same conversation.
func (s *ChatService) OpenConversation(patientID, doctorID string) (models.Conversation, error) {
	patientID, doctorID = strings.TrimSpace(patientID), strings.TrimSpace(doctorID)
	if patientID == "" || doctorID == "" {
		return models.Conversation{}, apperrors.Validation("a conversation needs a patient and a doctor")
	}
	if strings.Contains(patientID, "_") {
		return models.Conversation{}, apperrors.Validation("invalid patient id " + patientID)
	}
	return models.Conversation{ID: utils.ConversationID(patientID, doctorID), PatientID: patientID, DoctorID: doctorID}, nil
}

// OpenWith opens the actor's conversation with a counterpart.
func (s *ChatService) OpenWith(actor models.Identity, counterpartID string) (models.Conversation, error) {
	if actor.Role == models.RoleDoctor {
		return s.OpenConversation(counterpartID, actor.ID)
	}
	return s.OpenConversation(actor.ID, counterpartID)
}

func (s *ChatService) conversation(id string) (models.Conversation, error) {
	patientID, doctorID, ok := utils.ParseConversationID(id)
	if !ok {
		return models.Conversation{}, apperrors.NotFound("conversation " + id)
	}
	return models.Conversation{ID: id, PatientID: patientID, DoctorID: doctorID}, nil
}

// LoadHistory returns the conversation's messages, decoded and ordered by
// timestamp. When the ledger cannot be read only the locally cached messages
// are returned and the history is marked degraded.
func (s *ChatService) LoadHistory(ctx context.Context, conversationID string) (*models.History, error) {
	conv, err := s.conversation(conversationID)
	if err != nil {
		return nil, err
	}

	cached, err := s.messages.Cached(ctx, conv)
	if err != nil {
		s.logger.Warn("failed to read cached messages", zap.String("conversation_id", conv.ID), zap.Error(err))
		cached = []models.Message{}
	}

	history := &models.History{Conversation: conv}
	fromLedger, err := s.messages.ListFromLedger(ctx, conv)
	if err != nil {
		s.logger.Warn("ledger read failed, serving cached messages",
			zap.String("conversation_id", conv.ID), zap.Int("cached", len(cached)), zap.Error(err))
		history.Degraded = true
		history.Messages = cached
	} else {
		history.Messages = ReconcileMessages(fromLedger, cached)
	}

	key := utils.DeriveChatKey(conv.PatientID, conv.DoctorID)
	for i := range history.Messages {
		s.decode(&history.Messages[i], key)
	}
	SortMessages(history.Messages)
	return history, nil
}

func (s *ChatService) decode(m *models.Message, key string) {
	if m.Ciphertext != "" {
		plaintext, ok := utils.DecodeMessage(m.Ciphertext, key)
		m.Plaintext = plaintext
		m.Unreadable = !ok
	}
	if m.IsAppointmentInfo && m.SnapshotJSON != "" && m.AppointmentSnapshot == nil {
		snapshot, err := utils.ParseSnapshot(m.SnapshotJSON)
		if err != nil {
			s.logger.Warn("invalid appointment snapshot", zap.String("message_id", m.ID), zap.Error(err))
			return
		}
		m.AppointmentSnapshot = snapshot
	}
}

// SendMessage encrypts and sends a message from one of the conversation's
// participants.
func (s *ChatService) SendMessage(ctx context.Context, conversationID string, sender models.Identity, plaintext string) (*models.Message, error) {
	conv, err := s.conversation(conversationID)
	if err != nil {
		return nil, err
	}
	if conv.Participant(sender.Role) != sender.ID {
		return nil, errNotParticipant
	}
	if err := utils.ValidateMessageText(plaintext); err != nil {
		return nil, err
	}
	return s.send(ctx, conv, sender, plaintext, nil)
}

// ShareAppointmentSnapshot posts a rendering of the appointment to its
// conversation, with the structured snapshot attached.
func (s *ChatService) ShareAppointmentSnapshot(ctx context.Context, conversationID string, sender models.Identity, appointment models.Appointment) (*models.Message, error) {
	conv, err := s.conversation(conversationID)
	if err != nil {
		return nil, err
	}
	if appointment.PatientID != conv.PatientID || appointment.DoctorID != conv.DoctorID {
		return nil, apperrors.Validation("appointment does not belong to this conversation")
	}
	snapshot := models.SnapshotOf(appointment)
	return s.send(ctx, conv, sender, utils.RenderSnapshot(snapshot), &snapshot)
}

// send writes a message in two phases. Phase one appends it to the local
// mirror; phase two, scheduled on the reconciler, replaces the mirror with
// the ledger's confirmed copy.
func (s *ChatService) send(ctx context.Context, conv models.Conversation, sender models.Identity, plaintext string, snapshot *models.AppointmentSnapshot) (*models.Message, error) {
	if conv.Participant(sender.Role) != sender.ID {
		return nil, errNotParticipant
	}

	msg := models.Message{
		ID:                  "local-" + uuid.New().String(),
		PatientID:           conv.PatientID,
		DoctorID:            conv.DoctorID,
		SenderID:            sender.ID,
		SenderName:          sender.Name,
		SenderType:          sender.Role,
		Plaintext:           plaintext,
		Ciphertext:          utils.EncodeMessage(plaintext, utils.DeriveChatKey(conv.PatientID, conv.DoctorID)),
		Timestamp:           s.clock.Now(),
		IsAppointmentInfo:   snapshot != nil,
		AppointmentSnapshot: snapshot,
		Local:               true,
	}
	if snapshot != nil {
		payload, err := utils.MarshalSnapshot(*snapshot)
		if err != nil {
			return nil, err
		}
		msg.SnapshotJSON = payload
	}

	if err := s.messages.Append(ctx, conv, msg); err != nil {
		s.logger.Warn("failed to append message to cache", zap.String("conversation_id", conv.ID), zap.Error(err))
	}

	id, err := s.messages.Send(ctx, msg)
	if err != nil {
		s.logger.Error("chatService.SendMessage failed", zap.String("conversation_id", conv.ID), zap.Error(err))
		if errors.Is(err, apperrors.ErrTimeout) {
			// The write may still land; let the follow-up read pick it up.
			s.scheduleReconcile(conv)
			return nil, err
		}
		if discardErr := s.messages.Discard(ctx, conv, msg.ID); discardErr != nil {
			s.logger.Warn("failed to drop unsent message from cache",
				zap.String("conversation_id", conv.ID), zap.String("message_id", msg.ID), zap.Error(discardErr))
		}
		return nil, err
	}
	msg.ID = id
	msg.Local = false
	s.scheduleReconcile(conv)

	s.notifyCounterpart(ctx, conv, sender, msg)
	return &msg, nil
}

func (s *ChatService) scheduleReconcile(conv models.Conversation) {
	s.reconciler.Schedule("chat:"+conv.ID, func(ctx context.Context) error {
		fromLedger, err := s.messages.ListFromLedger(ctx, conv)
		if err != nil {
			return err
		}
		return s.messages.Replace(ctx, conv, func(cached []models.Message) []models.Message {
			merged := ReconcileMessages(fromLedger, cached)
			for i := range merged {
				merged[i].Plaintext = ""
				merged[i].AppointmentSnapshot = nil
			}
			return merged
		})
	})
}

func (s *ChatService) notifyCounterpart(ctx context.Context, conv models.Conversation, sender models.Identity, msg models.Message) {
	role := sender.Role.Counterpart()
	n := models.Notification{
		Kind:          models.NotificationNewMessage,
		RecipientID:   conv.Participant(role),
		RecipientRole: role,
		Subject:       "New message from " + sender.Name,
		Summary:       fmt.Sprintf("%s sent you a message in your conversation %s.", sender.Name, conv.ID),
	}
	if msg.IsAppointmentInfo {
		n.Summary = fmt.Sprintf("%s shared appointment details with you.", sender.Name)
	}
	if role == models.RolePatient {
		if p, err := s.users.GetPatient(ctx, n.RecipientID); err == nil {
			n.RecipientEmail = p.Email
		}
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Warn("counterpart notification failed", zap.String("conversation_id", conv.ID), zap.Error(err))
	}
}

// ListConversations returns one conversation per counterpart the actor has
// appointments with, most recent first.
func (s *ChatService) ListConversations(ctx context.Context, actor models.Identity) ([]models.Conversation, error) {
	appointments, err := s.appointments.LoadAppointments(ctx, actor)
	if err != nil {
		return nil, err
	}

	byID := map[string]*models.Conversation{}
	var order []string
	for _, a := range appointments {
		conv, err := s.OpenConversation(a.PatientID, a.DoctorID)
		if err != nil {
			continue
		}
		entry, ok := byID[conv.ID]
		if !ok {
			entry = &conv
			entry.PartnerRole = actor.Role.Counterpart()
			entry.PartnerID = conv.Participant(entry.PartnerRole)
			byID[conv.ID] = entry
			order = append(order, conv.ID)
		}
		entry.AppointmentCount++
		if entry.PartnerRole == models.RoleDoctor {
			entry.PartnerName = a.DoctorName
		} else {
			entry.PartnerName = a.PatientName
		}
		if a.CreatedAt.After(entry.LastActivity) {
			entry.LastActivity = a.CreatedAt
		}
	}

	conversations := make([]models.Conversation, 0, len(order))
	for _, id := range order {
		conversations = append(conversations, *byID[id])
	}
	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].LastActivity.After(conversations[j].LastActivity)
	})
	return conversations, nil
}
