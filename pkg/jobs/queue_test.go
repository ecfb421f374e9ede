package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	var mu sync.Mutex
	var handled []string
	q := NewQueue("trail", func(ctx context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		handled = append(handled, job.ID)
		return nil
	}, QueueConfig{Workers: 2, RetryDelay: 10 * time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "entry-1", Type: "booking.reserve"}))
	require.NoError(t, q.Enqueue(Job{ID: "entry-2", Type: "booking.cancel"}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(handled) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestQueueRetriesFailedJob(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	q := NewQueue("trail", func(ctx context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 1 {
			return errors.New("transient")
		}
		return nil
	}, QueueConfig{Workers: 1, RetryDelay: 5 * time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "entry-1", Type: "seat.maintenance"}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return attempts == 2
	}, time.Second, 5*time.Millisecond)
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("trail", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})

	err := q.Enqueue(Job{ID: "entry-1"})
	require.Error(t, err)
}

func TestQueueRejectsWhenSaturated(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue("trail", func(ctx context.Context, job Job) error {
		<-block
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})

	q.Start(context.Background())
	defer q.Stop()
	defer close(block)

	// First job occupies the worker, second fills the buffer; with both
	// stuck the third must be rejected rather than block the caller.
	require.NoError(t, q.Enqueue(Job{ID: "entry-1"}))
	require.Eventually(t, func() bool {
		if err := q.Enqueue(Job{ID: "entry-2"}); err != nil {
			return errors.Is(err, ErrQueueFull)
		}
		return false
	}, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, q.Enqueue(Job{ID: "entry-3"}), ErrQueueFull)
}
