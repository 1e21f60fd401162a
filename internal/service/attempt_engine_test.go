package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"relay/internal/domain"
	"relay/internal/repository"
)

// memoryLedger mimics the delivery ledger with in-memory state so rounds can
// be chained in a test.
type memoryLedger struct {
	mu         sync.Mutex
	deliveries map[string]*domain.Delivery
	order      []string
	rollup     domain.MessageStatus
}

func newMemoryLedger(deliveries ...domain.Delivery) *memoryLedger {
	l := &memoryLedger{
		deliveries: make(map[string]*domain.Delivery),
		rollup:     domain.MessageStatusQueued,
	}
	for i := range deliveries {
		d := deliveries[i]
		l.deliveries[d.ID] = &d
		l.order = append(l.order, d.ID)
	}
	return l
}

func (l *memoryLedger) EnsureDeliveries(ctx context.Context, messageID string, recipientIDs []string) (int, error) {
	return 0, nil
}

func (l *memoryLedger) ListByMessage(ctx context.Context, messageID string) ([]domain.Delivery, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.Delivery, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.deliveries[id])
	}
	return out, nil
}

func (l *memoryLedger) ApplyAttemptRound(ctx context.Context, messageID string, updates []repository.AttemptUpdate) (domain.MessageStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, update := range updates {
		d, ok := l.deliveries[update.DeliveryID]
		if !ok {
			return "", fmt.Errorf("unknown delivery %s", update.DeliveryID)
		}
		d.Status = update.Status
		d.Retries = update.Retries
		d.LastError = update.LastError
	}

	statuses := make([]domain.DeliveryStatus, 0, len(l.order))
	for _, id := range l.order {
		statuses = append(statuses, l.deliveries[id].Status)
	}
	l.rollup = domain.RollupStatus(statuses)
	return l.rollup, nil
}

func (l *memoryLedger) Acknowledge(ctx context.Context, deliveryID string, at time.Time) error {
	return nil
}

func (l *memoryLedger) AggregateStatus(ctx context.Context, messageID string) (domain.MessageStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rollup, nil
}

func (l *memoryLedger) get(t *testing.T, id string) domain.Delivery {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	d, ok := l.deliveries[id]
	if !ok {
		t.Fatalf("delivery %s not found", id)
	}
	return *d
}

func testMessage(maxRetries int) *domain.VoiceMessage {
	return &domain.VoiceMessage{
		ID:          "m1",
		SenderName:  "Principal",
		SenderRole:  domain.RolePrincipal,
		TargetGroup: domain.TargetGroupBoth,
		Priority:    domain.PriorityNormal,
		Status:      domain.MessageStatusQueued,
		STTStatus:   domain.TranscriptionPending,
		MaxRetries:  maxRetries,
	}
}

func newTestEngine(t *testing.T, ledger repository.DeliveryRepository, message *domain.VoiceMessage, send func(ctx context.Context, recipient domain.Contact, message domain.VoiceMessage) error) *AttemptEngine {
	t.Helper()

	messages := &fakeVoiceMessageRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.VoiceMessage, error) {
			if message == nil || id != message.ID {
				return nil, domain.ErrNotFound
			}
			copied := *message
			return &copied, nil
		},
	}

	engine, err := NewAttemptEngine(
		messages,
		ledger,
		&fakeContactRepo{},
		&fakeNotifier{sendFn: send},
		&fakeRateLimiter{},
		nil,
		3,
		time.Second,
		nil,
	)
	if err != nil {
		t.Fatalf("NewAttemptEngine() error = %v", err)
	}
	return engine
}

func TestAttemptEnginePartialFailureRound(t *testing.T) {
	t.Parallel()

	ledger := newMemoryLedger(
		domain.Delivery{ID: "d1", MessageID: "m1", RecipientID: "c1", Status: domain.DeliveryPending},
		domain.Delivery{ID: "d2", MessageID: "m1", RecipientID: "c2", Status: domain.DeliveryPending},
		domain.Delivery{ID: "d3", MessageID: "m1", RecipientID: "c3", Status: domain.DeliveryPending},
	)

	engine := newTestEngine(t, ledger, testMessage(3), func(ctx context.Context, recipient domain.Contact, message domain.VoiceMessage) error {
		if recipient.ID == "c3" {
			return errors.New("endpoint unreachable")
		}
		return nil
	})

	status, err := engine.Attempt(context.Background(), "m1")
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if status != domain.MessageStatusSent {
		t.Fatalf("rollup = %s, want SENT", status)
	}

	if got := ledger.get(t, "d1"); got.Status != domain.DeliveryDelivered {
		t.Fatalf("d1 status = %s, want DELIVERED", got.Status)
	}
	if got := ledger.get(t, "d2"); got.Status != domain.DeliveryDelivered {
		t.Fatalf("d2 status = %s, want DELIVERED", got.Status)
	}

	d3 := ledger.get(t, "d3")
	if d3.Status != domain.DeliveryPending {
		t.Fatalf("d3 status = %s, want PENDING", d3.Status)
	}
	if d3.Retries != 1 {
		t.Fatalf("d3 retries = %d, want 1", d3.Retries)
	}
	if d3.LastError == "" {
		t.Fatal("d3 should record the failure reason")
	}
}

func TestAttemptEngineRetryExhaustionMarksFailed(t *testing.T) {
	t.Parallel()

	ledger := newMemoryLedger(
		domain.Delivery{ID: "d1", MessageID: "m1", RecipientID: "c1", Status: domain.DeliveryPending},
		domain.Delivery{ID: "d2", MessageID: "m1", RecipientID: "c2", Status: domain.DeliveryPending},
		domain.Delivery{ID: "d3", MessageID: "m1", RecipientID: "c3", Status: domain.DeliveryPending},
	)

	engine := newTestEngine(t, ledger, testMessage(3), func(ctx context.Context, recipient domain.Contact, message domain.VoiceMessage) error {
		if recipient.ID == "c3" {
			return errors.New("endpoint unreachable")
		}
		return nil
	})

	var status domain.MessageStatus
	var err error
	for round := 0; round < 3; round++ {
		status, err = engine.Attempt(context.Background(), "m1")
		if err != nil {
			t.Fatalf("Attempt() round %d error = %v", round+1, err)
		}
	}

	if status != domain.MessageStatusFailed {
		t.Fatalf("rollup = %s, want FAILED", status)
	}

	d3 := ledger.get(t, "d3")
	if d3.Status != domain.DeliveryFailed {
		t.Fatalf("d3 status = %s, want FAILED", d3.Status)
	}
	if d3.Retries != 3 {
		t.Fatalf("d3 retries = %d, want 3", d3.Retries)
	}

	// The other two stay delivered; failure is sticky at the message level.
	if got := ledger.get(t, "d1"); got.Status != domain.DeliveryDelivered {
		t.Fatalf("d1 status = %s, want DELIVERED", got.Status)
	}
}

func TestAttemptEngineAllDeliveredCompletes(t *testing.T) {
	t.Parallel()

	ledger := newMemoryLedger(
		domain.Delivery{ID: "d1", MessageID: "m1", RecipientID: "c1", Status: domain.DeliveryPending},
		domain.Delivery{ID: "d2", MessageID: "m1", RecipientID: "c2", Status: domain.DeliveryPending},
	)

	engine := newTestEngine(t, ledger, testMessage(3), nil)

	status, err := engine.Attempt(context.Background(), "m1")
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if status != domain.MessageStatusCompleted {
		t.Fatalf("rollup = %s, want COMPLETED", status)
	}
}

func TestAttemptEngineZeroRecipientsCompletes(t *testing.T) {
	t.Parallel()

	// A fan-out that resolved no recipients has an empty ledger. The round
	// must still roll the message up to COMPLETED so the sweeper stops
	// picking it up.
	ledger := newMemoryLedger()

	engine := newTestEngine(t, ledger, testMessage(3), func(ctx context.Context, recipient domain.Contact, message domain.VoiceMessage) error {
		t.Fatalf("unexpected attempt for recipient %s", recipient.ID)
		return nil
	})

	status, err := engine.Attempt(context.Background(), "m1")
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if status != domain.MessageStatusCompleted {
		t.Fatalf("rollup = %s, want COMPLETED", status)
	}

	got, err := ledger.AggregateStatus(context.Background(), "m1")
	if err != nil {
		t.Fatalf("AggregateStatus() error = %v", err)
	}
	if got != domain.MessageStatusCompleted {
		t.Fatalf("persisted rollup = %s, want COMPLETED", got)
	}
}

func TestAttemptEngineSkipsTerminalDeliveries(t *testing.T) {
	t.Parallel()

	ledger := newMemoryLedger(
		domain.Delivery{ID: "d1", MessageID: "m1", RecipientID: "c1", Status: domain.DeliveryRead, Retries: 1},
		domain.Delivery{ID: "d2", MessageID: "m1", RecipientID: "c2", Status: domain.DeliveryDelivered},
		domain.Delivery{ID: "d3", MessageID: "m1", RecipientID: "c3", Status: domain.DeliveryFailed, Retries: 3},
	)

	attempted := make(map[string]int)
	var mu sync.Mutex
	engine := newTestEngine(t, ledger, testMessage(3), func(ctx context.Context, recipient domain.Contact, message domain.VoiceMessage) error {
		mu.Lock()
		attempted[recipient.ID]++
		mu.Unlock()
		return nil
	})

	for round := 0; round < 3; round++ {
		if _, err := engine.Attempt(context.Background(), "m1"); err != nil {
			t.Fatalf("Attempt() round %d error = %v", round+1, err)
		}
	}

	if len(attempted) != 0 {
		t.Fatalf("terminal deliveries were attempted: %v", attempted)
	}

	// READ stays frozen: status and retry counter untouched across rounds.
	d1 := ledger.get(t, "d1")
	if d1.Status != domain.DeliveryRead || d1.Retries != 1 {
		t.Fatalf("d1 = %s retries=%d, want READ retries=1", d1.Status, d1.Retries)
	}
	d3 := ledger.get(t, "d3")
	if d3.Status != domain.DeliveryFailed || d3.Retries != 3 {
		t.Fatalf("d3 = %s retries=%d, want FAILED retries=3", d3.Status, d3.Retries)
	}
}

func TestAttemptEngineUnknownMessage(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, newMemoryLedger(), nil, nil)

	_, err := engine.Attempt(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestAttemptEngineSerializesSameMessage(t *testing.T) {
	t.Parallel()

	ledger := newMemoryLedger(
		domain.Delivery{ID: "d1", MessageID: "m1", RecipientID: "c1", Status: domain.DeliveryPending},
	)

	var mu sync.Mutex
	inflight := 0
	maxInflight := 0

	engine := newTestEngine(t, ledger, testMessage(3), func(ctx context.Context, recipient domain.Contact, message domain.VoiceMessage) error {
		mu.Lock()
		inflight++
		if inflight > maxInflight {
			maxInflight = inflight
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		inflight--
		mu.Unlock()
		return errors.New("keep pending")
	})

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = engine.Attempt(context.Background(), "m1")
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if maxInflight > 1 {
		t.Fatalf("concurrent rounds for the same message overlapped: maxInflight=%d", maxInflight)
	}
}
