package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twitch-chat-bot/model"
)

type stubSender struct {
	mu      sync.Mutex
	batches [][]*pgx.QueuedQuery
}

type stubBatchResults struct{}

func (s *stubSender) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	s.mu.Lock()
	defer s.mu.Unlock()

	copyQueries := append([]*pgx.QueuedQuery(nil), b.QueuedQueries...)
	s.batches = append(s.batches, copyQueries)
	return &stubBatchResults{}
}

func (s *stubSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

func (s *stubBatchResults) Exec() (pgconn.CommandTag, error) { return pgconn.CommandTag{}, nil }
func (s *stubBatchResults) Query() (pgx.Rows, error)         { return nil, nil }
func (s *stubBatchResults) QueryRow() pgx.Row                { return nil }
func (s *stubBatchResults) Close() error                     { return nil }

func logEntry(id string) model.CommandLog {
	return model.CommandLog{MessageID: id, Channel: "ch", UserID: "u", Username: "name", Trigger: "!roll", Args: "10", Reply: "The roll returns 7!", HandledAt: time.Now()}
}

func TestBatcherFlushesOnMaxBatch(t *testing.T) {
	sender := &stubSender{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	batcher := NewBatcher(ctx, sender, BatchConfig{
		MaxBatch:      2,
		FlushEvery:    time.Hour,
		ChanBuffer:    10,
		StatsLogEvery: time.Hour,
		FlushTimeout:  time.Second,
	})

	assert.True(t, batcher.Enqueue(logEntry("1")))
	assert.True(t, batcher.Enqueue(logEntry("2")))

	require.Eventually(t, func() bool { return sender.count() >= 1 }, 2*time.Second, 10*time.Millisecond)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Len(t, sender.batches[0], 2)
	assert.Equal(t, "1", sender.batches[0][0].Arguments[0])
	assert.Equal(t, "!roll", sender.batches[0][0].Arguments[4])
}

func TestBatcherFlushesOnTimer(t *testing.T) {
	sender := &stubSender{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	batcher := NewBatcher(ctx, sender, BatchConfig{
		MaxBatch:      10,
		FlushEvery:    50 * time.Millisecond,
		ChanBuffer:    10,
		StatsLogEvery: time.Hour,
		FlushTimeout:  time.Second,
	})

	batcher.Enqueue(logEntry("3"))

	require.Eventually(t, func() bool { return sender.count() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestBatcherFlushesOnShutdown(t *testing.T) {
	sender := &stubSender{}
	ctx, cancel := context.WithCancel(context.Background())

	batcher := NewBatcher(ctx, sender, BatchConfig{
		MaxBatch:      10,
		FlushEvery:    time.Hour,
		ChanBuffer:    10,
		StatsLogEvery: time.Hour,
		FlushTimeout:  time.Second,
	})

	batcher.Enqueue(logEntry("4"))
	// даём горутине забрать запись из очереди до отмены
	require.Eventually(t, func() bool { return len(batcher.input) == 0 }, time.Second, 5*time.Millisecond)
	cancel()

	require.Eventually(t, func() bool { return sender.count() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestBatcherDropsWhenFull(t *testing.T) {
	b := &Batcher{input: make(chan model.CommandLog, 1)}

	assert.True(t, b.Enqueue(logEntry("a")))
	assert.False(t, b.Enqueue(logEntry("b")))
	assert.Equal(t, uint64(1), b.Dropped())
}
