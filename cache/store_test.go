package cache

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"MediLedger/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func backends(t *testing.T) map[string]Backend {
	level, err := NewLevelCache(filepath.Join(t.TempDir(), "mirror"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = level.Close() })
	return map[string]Backend{
		"memory":  NewMemoryCache(),
		"leveldb": level,
	}
}

func TestReadWriteCollections(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := NewStore(backend, zap.NewNop())

			empty, err := ReadAll[models.Appointment](ctx, s, CollectionAppointments)
			require.NoError(t, err)
			assert.Empty(t, empty)

			records := []models.Appointment{
				{ID: "1", PatientID: "P001", DoctorID: "D001", Date: "2025-09-01", Time: "10:00"},
				{ID: "2", PatientID: "P002", DoctorID: "D001", Date: "2025-09-02", Time: "11:00"},
			}
			require.NoError(t, WriteAll(ctx, s, CollectionAppointments, records))

			got, err := ReadAll[models.Appointment](ctx, s, CollectionAppointments)
			require.NoError(t, err)
			assert.Equal(t, records, got)

			require.NoError(t, WriteAll(ctx, s, CollectionAppointments, records[:1]))
			got, err = ReadAll[models.Appointment](ctx, s, CollectionAppointments)
			require.NoError(t, err)
			assert.Len(t, got, 1)
		})
	}
}

func TestCorruptCollectionReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryCache()
	require.NoError(t, backend.Set(ctx, CollectionRequests, "{not json"))
	s := NewStore(backend, zap.NewNop())

	got, err := ReadAll[models.AppointmentRequest](ctx, s, CollectionRequests)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, Append(ctx, s, CollectionRequests, models.AppointmentRequest{ID: "1"}))
	got, err = ReadAll[models.AppointmentRequest](ctx, s, CollectionRequests)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestConcurrentAppendsKeepEveryRecord(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemoryCache(), zap.NewNop())
	collection := ChatCollection("P001", "D001")
	assert.Equal(t, "chat_P001_D001", collection)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, Append(ctx, s, collection, models.Message{SenderID: "P001"}))
		}()
	}
	wg.Wait()

	got, err := ReadAll[models.Message](ctx, s, collection)
	require.NoError(t, err)
	assert.Len(t, got, 20)
}
