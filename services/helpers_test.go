package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"MediLedger/cache"
	"MediLedger/ledger/ledgertest"
	"MediLedger/models"
	"MediLedger/repositories"

	"go.uber.org/zap"
)

// stepClock advances one second on every reading.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func (c *stepClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, note models.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, note)
	return n.err
}

func (n *recordingNotifier) all() []models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.Notification(nil), n.sent...)
}

type harness struct {
	ledger       *ledgertest.Fake
	store        *cache.Store
	clock        *stepClock
	notifier     *recordingNotifier
	reconciler   *Reconciler
	appointments *AppointmentService
	chat         *ChatService
	apptRepo     *repositories.AppointmentRepository
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := zap.NewNop()
	clock := &stepClock{now: time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)}
	fake := ledgertest.NewFake()
	fake.Now = clock.Now
	store := cache.NewStore(cache.NewMemoryCache(), logger)
	notifier := &recordingNotifier{}
	reconciler := NewReconciler(5*time.Millisecond, clock, logger)
	t.Cleanup(reconciler.Close)

	apptRepo := repositories.NewAppointmentRepository(fake, store, logger)
	users := repositories.NewUserRepository(fake)
	appointments := NewAppointmentService(
		apptRepo,
		repositories.NewRequestRepository(fake, store, logger),
		users,
		NewLocalLocker(),
		notifier,
		clock,
		logger,
	)
	chat := NewChatService(repositories.NewMessageRepository(fake, store, logger), users, appointments, notifier, reconciler, clock, logger)

	return &harness{
		ledger:       fake,
		store:        store,
		clock:        clock,
		notifier:     notifier,
		reconciler:   reconciler,
		appointments: appointments,
		chat:         chat,
		apptRepo:     apptRepo,
	}
}

var (
	patient1 = models.Identity{ID: "P1", Role: models.RolePatient, Name: "Asha", Email: "asha@example.com", Mobile: "5550101"}
	patient2 = models.Identity{ID: "P2", Role: models.RolePatient, Name: "Ben"}
	doctor1  = models.Identity{ID: "D1", Role: models.RoleDoctor, Name: "Dr. Rao"}
	doctor2  = models.Identity{ID: "D2", Role: models.RoleDoctor, Name: "Dr. Lee"}
)
