/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(eng Engine) *Store {
	return NewStore(Options{Engine: eng, Logger: zerolog.Nop()}, 0)
}

func TestStoreCreatesSessionsLazily(t *testing.T) {
	st := newTestStore(&scriptedEngine{})
	defer st.Close()

	assert.Zero(t, st.Len())

	var first, second *Session
	require.NoError(t, st.Do("a", func(s *Session) error {
		first = s
		return s.SubmitName("Mia")
	}))
	require.NoError(t, st.Do("a", func(s *Session) error {
		second = s
		return nil
	}))
	require.NoError(t, st.Do("b", func(s *Session) error { return nil }))

	assert.Same(t, first, second)
	assert.Equal(t, ReadyToStart, second.State())
	assert.Equal(t, "a", second.Monitor().SessionID())
	assert.Equal(t, 2, st.Len())
}

func TestStoreReapFinalizesIdleSessions(t *testing.T) {
	st := newTestStore(&scriptedEngine{replies: []Reply{{Text: "Q?", Usage: &Usage{Input: 3, Output: 4}}}})
	defer st.Close()

	var torn []string
	var totals []int64
	st.OnTeardown(func(s *Session) {
		torn = append(torn, s.ID())
		totals = append(totals, s.Monitor().Total())
	})

	require.NoError(t, st.Do("idle", func(s *Session) error {
		if err := s.SubmitName("Mia"); err != nil {
			return err
		}
		return s.Start(context.Background())
	}))

	assert.Zero(t, st.Reap(time.Now().Add(-time.Hour)))
	assert.Equal(t, 1, st.Len())

	assert.Equal(t, 1, st.Reap(time.Now().Add(time.Second)))
	assert.Zero(t, st.Len())
	assert.Equal(t, []string{"idle"}, torn)
	assert.Equal(t, []int64{7}, totals)

	require.NoError(t, st.Do("idle", func(s *Session) error {
		assert.Equal(t, AwaitingName, s.State())
		assert.Zero(t, s.Monitor().Total())
		return nil
	}))
}

func TestStoreReapSkipsBusySessions(t *testing.T) {
	st := newTestStore(&scriptedEngine{})
	defer st.Close()

	inside := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_ = st.Do("busy", func(s *Session) error {
			close(inside)
			<-release
			return nil
		})
	}()

	<-inside
	assert.Zero(t, st.Reap(time.Now().Add(time.Hour)))
	close(release)
	<-done

	assert.Equal(t, 1, st.Reap(time.Now().Add(time.Hour)))
}

func TestStoreSerializesOneSession(t *testing.T) {
	st := newTestStore(&scriptedEngine{})
	defer st.Close()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		running int
		maxSeen int
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.Do("shared", func(s *Session) error {
				mu.Lock()
				running++
				if running > maxSeen {
					maxSeen = running
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				running--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
}

func TestStoreCloseTearsDownEverything(t *testing.T) {
	st := newTestStore(nil)

	var torn int
	st.OnTeardown(func(*Session) { torn++ })

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, st.Do(id, func(*Session) error { return nil }))
	}

	st.Close()
	st.Close()

	assert.Equal(t, 3, torn)
	assert.Zero(t, st.Len())
}

func TestStoreEmptyIDUsesSentinel(t *testing.T) {
	st := newTestStore(nil)
	defer st.Close()

	require.NoError(t, st.Do("", func(s *Session) error {
		assert.Equal(t, UnknownSession, s.ID())
		return nil
	}))
}

func TestStoreReaperLoop(t *testing.T) {
	st := NewStore(Options{Logger: zerolog.Nop()}, 20*time.Millisecond)
	defer st.Close()

	require.NoError(t, st.Do("x", func(*Session) error { return nil }))

	assert.Eventually(t, func() bool { return st.Len() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestStoreReaperLoopTinyTimeout(t *testing.T) {
	st := NewStore(Options{Logger: zerolog.Nop()}, time.Nanosecond)
	defer st.Close()

	require.NoError(t, st.Do("x", func(*Session) error { return nil }))

	assert.Eventually(t, func() bool { return st.Len() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestStoreDoAfterClose(t *testing.T) {
	st := newTestStore(&scriptedEngine{})
	st.Close()

	called := false
	err := st.Do("late", func(*Session) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrIgnored)
	assert.False(t, called)
	assert.Zero(t, st.Len())

	require.NotPanics(t, st.Close)
}
