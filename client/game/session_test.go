package game

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	mu      sync.Mutex
	results []Result
	err     error
}

func (m *memorySink) SaveResult(r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, r)
	return m.err
}

func (m *memorySink) saved() []Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Result(nil), m.results...)
}

func TestSessionClassifyUntilEmpty(t *testing.T) {
	sink := &memorySink{}
	small := Catalog()[:5]
	s := NewSession(Config{Catalog: small, Sink: sink, Rand: seeded()})
	defer s.Close()

	s.Start(1)
	for s.State().Phase == Playing {
		it := s.State().Items[0]
		out := s.Classify(it.ID, it.Category)
		require.True(t, out.Handled)
	}
	s.Wait()

	res, ok := s.LastResult()
	require.True(t, ok)
	assert.Equal(t, 5, res.Correct)
	assert.Equal(t, 50, res.Score)
	assert.Equal(t, 100, res.Accuracy)
	assert.Equal(t, []Result{res}, sink.saved())
}

func TestSessionClockExpiry(t *testing.T) {
	rules := DefaultRules()
	rules.Levels[0].TimeLimit = 3

	ended := make(chan Result, 1)
	var ticks []int
	var mu sync.Mutex
	s := NewSession(Config{
		Rules:        rules,
		Rand:         seeded(),
		TickInterval: 20 * time.Millisecond,
		OnEnd:        func(r Result) { ended <- r },
		OnChange: func(st State) {
			mu.Lock()
			ticks = append(ticks, st.TimeLeft)
			mu.Unlock()
		},
	})
	defer s.Close()

	s.Start(1)
	it := s.State().Items[0]
	s.Classify(it.ID, it.Category)

	select {
	case r := <-ended:
		assert.Equal(t, 3, r.PlayTime)
		assert.Equal(t, 1, r.Total)
		assert.Equal(t, 10, r.Score)
	case <-time.After(2 * time.Second):
		t.Fatal("level did not end")
	}
	assert.Equal(t, Ended, s.State().Phase)
	assert.Zero(t, s.State().TimeLeft)

	mu.Lock()
	assert.Contains(t, ticks, 1)
	mu.Unlock()

	assert.False(t, s.Classify(s.State().Items[0].ID, Paper).Handled)
}

func TestSessionSinkErrorKeepsResult(t *testing.T) {
	sink := &memorySink{err: errors.New("offline")}
	errs := make(chan error, 1)
	rules := DefaultRules()
	rules.Levels[0].TimeLimit = 1

	s := NewSession(Config{
		Rules:        rules,
		Sink:         sink,
		Rand:         seeded(),
		TickInterval: time.Millisecond,
		OnError:      func(err error) { errs <- err },
	})
	defer s.Close()

	s.Start(1)
	select {
	case err := <-errs:
		assert.EqualError(t, err, "offline")
	case <-time.After(2 * time.Second):
		t.Fatal("sink error was not reported")
	}

	_, ok := s.LastResult()
	assert.True(t, ok)
	assert.Equal(t, Ended, s.State().Phase)
	assert.True(t, s.RetryLevel(), "a failed save does not block play")
}

func TestSessionLevelProgression(t *testing.T) {
	s := NewSession(Config{Rand: seeded(), TickInterval: time.Hour})
	defer s.Close()

	assert.False(t, s.NextLevel(), "nothing has ended yet")

	s.Start(3)
	assert.False(t, s.RetryLevel())
	for s.State().Phase == Playing {
		it := s.State().Items[0]
		s.Classify(it.ID, it.Category)
	}

	require.True(t, s.NextLevel())
	assert.Equal(t, 3, s.State().Level)
	assert.Equal(t, 40, s.State().TimeLeft)
	assert.Zero(t, s.State().Score)
}

func TestSessionCloseStopsTicks(t *testing.T) {
	var mu sync.Mutex
	changes := 0
	s := NewSession(Config{
		Rand:         seeded(),
		TickInterval: time.Millisecond,
		OnChange: func(State) {
			mu.Lock()
			changes++
			mu.Unlock()
		},
	})

	s.Start(1)
	time.Sleep(10 * time.Millisecond)
	s.Close()

	mu.Lock()
	after := changes
	mu.Unlock()
	time.Sleep(10 * time.Millisecond)

	mu.Lock()
	assert.Equal(t, after, changes)
	mu.Unlock()
}

func TestSessionRestartDuringFinalTick(t *testing.T) {
	rules := DefaultRules()
	rules.Levels[0].TimeLimit = 1
	rules.Levels[1].TimeLimit = 1000

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	sink := &memorySink{}
	s := NewSession(Config{
		Rules:        rules,
		Sink:         sink,
		Rand:         seeded(),
		TickInterval: 5 * time.Millisecond,
		OnChange: func(st State) {
			if st.Level == 1 && st.Phase == Playing && st.TimeLeft == 0 {
				once.Do(func() {
					close(entered)
					<-release
				})
			}
		},
	})
	defer s.Close()

	s.Start(1)
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("final tick never arrived")
	}

	started := make(chan struct{})
	go func() {
		s.Start(2)
		close(started)
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return")
	}

	st := s.State()
	assert.Equal(t, 2, st.Level)
	assert.Equal(t, Playing, st.Phase)
	assert.Greater(t, st.TimeLeft, 900)

	s.Wait()
	saved := sink.saved()
	require.Len(t, saved, 1, "only the first level finished")
	assert.Equal(t, 1, saved[0].Level)
}

func TestSessionIgnoresActionsAfterClose(t *testing.T) {
	s := NewSession(Config{Rand: seeded(), TickInterval: time.Hour})
	s.Start(1)
	s.Close()

	s.Start(2)
	assert.Equal(t, 1, s.State().Level)
	assert.False(t, s.RetryLevel())
}
