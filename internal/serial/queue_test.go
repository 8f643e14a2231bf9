package serial

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestQueue_Do_ReturnsResult(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	sentinel := errors.New("boom")
	err := q.Do(context.Background(), func(context.Context) error { return sentinel })
	assert.ErrorIs(t, err, sentinel)

	ran := false
	err = q.Do(context.Background(), func(context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestQueue_Do_RunsJobsOneAtATime(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	var (
		mu      sync.Mutex
		active  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = q.Do(context.Background(), func(context.Context) error {
				mu.Lock()
				active++
				if active > maxSeen {
					maxSeen = active
				}
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestQueue_Do_AfterClose(t *testing.T) {
	q := NewQueue()
	q.Close()

	err := q.Do(context.Background(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrClosed)
}

func TestQueue_Do_BusyWhenBlocked(t *testing.T) {
	q := NewQueueWithTimeout(10 * time.Millisecond)
	defer q.Close()

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = q.Do(context.Background(), func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	err := q.Do(context.Background(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrBusy)
	close(release)
}

func TestQueue_Do_CanceledContext(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := q.Do(ctx, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
