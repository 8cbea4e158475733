package game

import (
	"math/rand"
	"sync"
	"time"

	"ecoaware/client/clock"
)

// ResultSink receives every finished level, typically to store it on the server.
type ResultSink interface {
	SaveResult(r Result) error
}

type ResultSinkFunc func(r Result) error

func (f ResultSinkFunc) SaveResult(r Result) error { return f(r) }

type Config struct {
	Rules   Rules
	Catalog []Item
	Sink    ResultSink
	// OnChange is called with a snapshot after every state change, ticks included.
	OnChange func(State)
	// OnEnd is called once per finished level.
	OnEnd func(Result)
	// OnError reports sink failures. The result is kept either way.
	OnError      func(error)
	TickInterval time.Duration
	Rand         *rand.Rand
}

// Session runs levels one after another. User actions may come from one
// goroutine while the clock ticks on another.
type Session struct {
	cfg Config

	// ctl serialises user actions and guards clock and closed; mu guards
	// state and is the only lock the clock callbacks take.
	ctl    sync.Mutex
	clock  *clock.Clock
	closed bool

	mu    sync.Mutex
	state State
	last  *Result
	// gen identifies the level in play; callbacks of an earlier level's
	// clock carry an older value and are dropped.
	gen uint64

	pending sync.WaitGroup
}

func NewSession(cfg Config) *Session {
	if cfg.Rules == (Rules{}) {
		cfg.Rules = DefaultRules()
	}
	if cfg.Catalog == nil {
		cfg.Catalog = Catalog()
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Session{cfg: cfg}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastResult is the result of the most recently finished level.
func (s *Session) LastResult() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Result{}, false
	}
	return *s.last, true
}

// Start begins level (clamped to 1..3) regardless of the current phase.
func (s *Session) Start(level int) {
	s.ctl.Lock()
	defer s.ctl.Unlock()
	if s.closed {
		return
	}

	s.stopClock()
	s.begin(Start(s.cfg.Rules, s.cfg.Catalog, level, s.cfg.Rand))
}

// NextLevel advances from an ended level. It reports false in any other phase.
func (s *Session) NextLevel() bool {
	return s.restart(func(st State) (State, bool) {
		return st.NextLevel(s.cfg.Rules, s.cfg.Catalog, s.cfg.Rand)
	})
}

// RetryLevel replays an ended level.
func (s *Session) RetryLevel() bool {
	return s.restart(func(st State) (State, bool) {
		return st.Retry(s.cfg.Rules, s.cfg.Catalog, s.cfg.Rand)
	})
}

func (s *Session) restart(next func(State) (State, bool)) bool {
	s.ctl.Lock()
	defer s.ctl.Unlock()

	if s.closed {
		return false
	}
	st, ok := next(s.State())
	if !ok {
		return false
	}
	s.stopClock()
	s.begin(st)
	return true
}

// begin installs a freshly dealt level with a clock of its own; the previous
// clock must be stopped.
func (s *Session) begin(st State) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.state = st
	s.mu.Unlock()
	s.notify(st)

	if st.Phase == Ended {
		// nothing to deal
		s.finish(st)
		return
	}

	var opts []clock.Option
	if s.cfg.TickInterval > 0 {
		opts = append(opts, clock.WithInterval(s.cfg.TickInterval))
	}
	s.clock = clock.New(
		func(remaining int) { s.onTick(gen, remaining) },
		func() { s.onExpire(gen) },
		opts...,
	)
	s.clock.Start(st.TimeLimit)
}

// stopClock must be called with ctl held and mu released.
func (s *Session) stopClock() {
	if s.clock != nil {
		s.clock.Stop()
	}
}

func (s *Session) Classify(itemID int, target Category) Outcome {
	s.ctl.Lock()
	defer s.ctl.Unlock()

	s.mu.Lock()
	next, out := s.state.Classify(s.cfg.Rules, itemID, target)
	if out.Handled {
		s.state = next
	}
	s.mu.Unlock()

	if !out.Handled {
		return out
	}
	s.notify(next)
	if out.Ended {
		s.stopClock()
		s.finish(next)
	}
	return out
}

func (s *Session) onTick(gen uint64, remaining int) {
	s.mu.Lock()
	if s.gen != gen || s.state.Phase != Playing {
		s.mu.Unlock()
		return
	}
	s.state = s.state.Tick(remaining)
	st := s.state
	s.mu.Unlock()
	s.notify(st)
}

func (s *Session) onExpire(gen uint64) {
	s.mu.Lock()
	if s.gen != gen || s.state.Phase != Playing {
		s.mu.Unlock()
		return
	}
	s.state = s.state.Expire()
	st := s.state
	s.mu.Unlock()

	s.notify(st)
	s.finish(st)
}

// finish records the result and hands it to the sink in the background.
func (s *Session) finish(st State) {
	res := st.Result()
	s.mu.Lock()
	s.last = &res
	s.mu.Unlock()

	if s.cfg.OnEnd != nil {
		s.cfg.OnEnd(res)
	}
	if s.cfg.Sink == nil {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.cfg.Sink.SaveResult(res); err != nil && s.cfg.OnError != nil {
			s.cfg.OnError(err)
		}
	}()
}

func (s *Session) notify(st State) {
	if s.cfg.OnChange != nil {
		s.cfg.OnChange(st)
	}
}

// Wait blocks until every result handed to the sink has been processed.
func (s *Session) Wait() {
	s.pending.Wait()
}

// Close stops the clock and waits for pending sink calls. Later Start,
// NextLevel and RetryLevel calls do nothing.
func (s *Session) Close() {
	s.ctl.Lock()
	s.closed = true
	s.stopClock()
	s.ctl.Unlock()
	s.Wait()
}
