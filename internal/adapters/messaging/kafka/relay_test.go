package kafka_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/erp_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/erp_ledger/internal/adapters/messaging/kafka"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/erp_ledger/internal/core/ports/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, messages ...kafka.Message) error {
	args := m.Called(ctx, topic, messages)
	return args.Error(0)
}

var relayNow = time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)

func seedOutbox(t *testing.T, store *memory.Store, n int) {
	t.Helper()
	entries := make([]domain.OutboxEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, domain.OutboxEntry{
			ID:            fmt.Sprintf("evt-%02d", i),
			AggregateID:   fmt.Sprintf("je-%02d", i),
			AggregateType: domain.AggregateJournalEntry,
			EventType:     domain.EventJournalEntryPosted,
			Payload:       []byte(`{"ok":true}`),
			CreatedAt:     relayNow.Add(time.Duration(i) * time.Second),
		})
	}
	require.NoError(t, store.StoreOutboxEntries(context.Background(), entries))
}

func newRelay(store *memory.Store, pub kafka.Publisher, batch int) *kafka.OutboxRelay {
	clock := portssvc.ClockFunc(func() time.Time { return relayNow })
	return kafka.NewOutboxRelay(store, pub, "ledger.events", batch, clock, nil)
}

func TestOutboxRelay_RelayOnceMarksPublished(t *testing.T) {
	store := memory.New()
	seedOutbox(t, store, 3)
	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, "ledger.events", mock.MatchedBy(func(msgs []kafka.Message) bool {
		if len(msgs) != 3 {
			return false
		}
		first := msgs[0]
		return string(first.Key) == "je-00" &&
			first.Headers["event-id"] == "evt-00" &&
			first.Headers["event-type"] == domain.EventJournalEntryPosted
	})).Return(nil).Once()

	n, err := newRelay(store, pub, 10).RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	pub.AssertExpectations(t)

	pending, err := store.FetchUnpublished(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestOutboxRelay_PublishFailureKeepsEntries(t *testing.T) {
	store := memory.New()
	seedOutbox(t, store, 2)
	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, "ledger.events", mock.Anything).Return(errors.New("broker down"))

	n, err := newRelay(store, pub, 10).RelayOnce(context.Background())
	require.Error(t, err)
	assert.Zero(t, n)

	pending, err := store.FetchUnpublished(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestOutboxRelay_EmptyOutboxDoesNotPublish(t *testing.T) {
	pub := new(MockPublisher)

	n, err := newRelay(memory.New(), pub, 10).RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestOutboxRelay_DrainInBatches(t *testing.T) {
	store := memory.New()
	seedOutbox(t, store, 5)
	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, "ledger.events", mock.Anything).Return(nil)

	n, err := newRelay(store, pub, 2).Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	pub.AssertNumberOfCalls(t, "Publish", 3)
}

func TestNewProducer(t *testing.T) {
	p := kafka.NewProducer([]string{"localhost:9092"})
	require.NotNil(t, p)
	assert.NoError(t, p.Publish(context.Background(), "ledger.events"))
	assert.NoError(t, p.Close())
}

func TestOutboxRelay_RunDrainsUntilCanceled(t *testing.T) {
	store := memory.New()
	seedOutbox(t, store, 3)
	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, "ledger.events", mock.Anything).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- newRelay(store, pub, 2).Run(ctx, 10*time.Millisecond) }()

	require.Eventually(t, func() bool {
		pending, err := store.FetchUnpublished(context.Background(), 10)
		return err == nil && len(pending) == 0
	}, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not stop after cancel")
	}
	pub.AssertNumberOfCalls(t, "Publish", 2)
}

func TestOutboxRelay_RunCanceledContext(t *testing.T) {
	store := memory.New()
	seedOutbox(t, store, 1)
	pub := new(MockPublisher)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, newRelay(store, pub, 10).Run(ctx, time.Hour))
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)

	pending, err := store.FetchUnpublished(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
