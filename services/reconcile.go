package services

import (
	"sort"

	"MediLedger/models"
)

// Reconcile merges ledger and cached appointments. Every ledger entry is
// kept. A cached entry is kept only when no ledger entry has the same
// patient, doctor, date and time. Ledger entries come first.
func Reconcile(fromLedger, cached []models.Appointment) []models.Appointment {
	onLedger := make(map[models.SlotKey]bool, len(fromLedger))
	merged := make([]models.Appointment, 0, len(fromLedger)+len(cached))
	for _, a := range fromLedger {
		onLedger[a.Key()] = true
		merged = append(merged, a)
	}
	for _, a := range cached {
		if !onLedger[a.Key()] {
			merged = append(merged, a)
		}
	}
	return merged
}

type messageKey struct {
	senderID   string
	ciphertext string
	snapshot   bool
}

func keyOf(m models.Message) messageKey {
	return messageKey{senderID: m.SenderID, ciphertext: m.Ciphertext, snapshot: m.IsAppointmentInfo}
}

// ReconcileMessages merges a conversation's ledger messages with its cached
// ones. Each cached message is matched against at most one ledger message
// with the same sender and ciphertext, so repeated identical messages are
// all kept. Unmatched cached messages are kept as local.
func ReconcileMessages(fromLedger, cached []models.Message) []models.Message {
	available := make(map[messageKey]int, len(fromLedger))
	merged := make([]models.Message, 0, len(fromLedger)+len(cached))
	for _, m := range fromLedger {
		m.Local = false
		available[keyOf(m)]++
		merged = append(merged, m)
	}
	for _, m := range cached {
		k := keyOf(m)
		if available[k] > 0 {
			available[k]--
			continue
		}
		m.Local = true
		merged = append(merged, m)
	}
	return merged
}

// SortMessages orders messages by timestamp. Equal timestamps keep their
// store order.
func SortMessages(messages []models.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
}
