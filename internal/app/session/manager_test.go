package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mahaveer86619/mindguide/internal/domain"
)

func TestWithLockSerializesSameKey(t *testing.T) {
	m := NewManager()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.WithLock(context.Background(), "user-1", func(context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					cur := atomic.LoadInt32(&maxInside)
					if n <= cur || atomic.CompareAndSwapInt32(&maxInside, cur, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, m.active(), "entries are released once unused")
}

func TestWithLockDifferentKeysRunConcurrently(t *testing.T) {
	m := NewManager()
	started := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = m.WithLock(context.Background(), "a", func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	done := make(chan error, 1)
	go func() {
		done <- m.WithLock(context.Background(), "b", func(context.Context) error { return nil })
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked behind a")
	}
	close(release)
}

func TestWithLockPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	err := NewManager().WithLock(context.Background(), "k", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

type fakeLocker struct {
	err      error
	locked   []string
	unlocked int
}

func (f *fakeLocker) Lock(_ context.Context, key string, _ time.Duration) (domain.UnlockFunc, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.locked = append(f.locked, key)
	return func(context.Context) error {
		f.unlocked++
		return nil
	}, nil
}

func TestWithLockUsesDistributedLocker(t *testing.T) {
	fl := &fakeLocker{}
	m := NewManager(WithLocker(fl))

	require.NoError(t, m.WithLock(context.Background(), "user-9", func(context.Context) error { return nil }))
	assert.Equal(t, []string{"user-9"}, fl.locked)
	assert.Equal(t, 1, fl.unlocked)
}

func TestWithLockLockerFailureIsUnavailable(t *testing.T) {
	m := NewManager(WithLocker(&fakeLocker{err: errors.New("redis down")}))

	called := false
	err := m.WithLock(context.Background(), "user-9", func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrSessionUnavailable)
	assert.False(t, called)
}

func TestWithLockWaiterGivesUpWhenContextEnds(t *testing.T) {
	m := NewManager()
	held := make(chan struct{})
	release := make(chan struct{})
	holderDone := make(chan error, 1)

	go func() {
		holderDone <- m.WithLock(context.Background(), "k", func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	ran := false
	waiterDone := make(chan error, 1)
	go func() {
		waiterDone <- m.WithLock(ctx, "k", func(context.Context) error {
			ran = true
			return nil
		})
	}()

	select {
	case err := <-waiterDone:
		assert.ErrorIs(t, err, domain.ErrSessionUnavailable)
	case <-time.After(time.Second):
		t.Fatal("waiter ignored its deadline")
	}
	assert.False(t, ran)

	close(release)
	require.NoError(t, <-holderDone)
	assert.Equal(t, 0, m.active())
}

func TestWithLockCancelledContextSkipsFn(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	err := NewManager().WithLock(ctx, "k", func(context.Context) error {
		ran = true
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrSessionUnavailable)
	assert.False(t, ran)
}
