// Package cache is the local mirror of ledger state. Each collection is one
// JSON array stored under one key and is always read and written whole.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"MediLedger/apperrors"
	"MediLedger/utils"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	CollectionAppointments = "appointments"
	CollectionRequests     = "appointmentRequests"
)

// ChatCollection names the collection holding one conversation's messages.
func ChatCollection(patientID, doctorID string) string {
	return utils.ConversationID(patientID, doctorID)
}

// Store reads and writes whole collections on a Backend.
type Store struct {
	backend Backend
	logger  *zap.Logger

	// mu serializes read-modify-write cycles within this process.
	mu sync.Mutex
}

func NewStore(backend Backend, logger *zap.Logger) *Store {
	return &Store{backend: backend, logger: logger}
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// ReadAll returns every record of the collection. A missing collection is
// empty; so is one that fails to deserialize, which is logged and otherwise
// ignored.
func ReadAll[T any](ctx context.Context, s *Store, collection string) ([]T, error) {
	raw, err := s.backend.Get(ctx, collection)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read cache collection %s", collection)
	}
	records := []T{}
	if strings.TrimSpace(raw) == "" {
		return records, nil
	}
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		s.logger.Warn("cache collection is corrupt, reading as empty",
			zap.String("collection", collection),
			zap.Error(errors.Wrap(apperrors.ErrCorruptState, err.Error())))
		return []T{}, nil
	}
	return records, nil
}

// WriteAll replaces the collection with records.
func WriteAll[T any](ctx context.Context, s *Store, collection string, records []T) error {
	if records == nil {
		records = []T{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return errors.Wrapf(err, "failed to encode cache collection %s", collection)
	}
	if err := s.backend.Set(ctx, collection, string(raw)); err != nil {
		return errors.Wrapf(err, "failed to write cache collection %s", collection)
	}
	return nil
}

// Update applies fn to the collection and writes back the result. Updates in
// the same process do not interleave.
func Update[T any](ctx context.Context, s *Store, collection string, fn func([]T) []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := ReadAll[T](ctx, s, collection)
	if err != nil {
		return err
	}
	return WriteAll(ctx, s, collection, fn(records))
}

// Append adds one record to the end of the collection.
func Append[T any](ctx context.Context, s *Store, collection string, record T) error {
	return Update(ctx, s, collection, func(records []T) []T {
		return append(records, record)
	})
}
