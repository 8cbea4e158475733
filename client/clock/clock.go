// Package clock is the countdown that drives one game level.
package clock

import (
	"sync"
	"time"
)

const DefaultInterval = time.Second

type Option func(*Clock)

// WithInterval shortens the tick period, mostly for tests.
func WithInterval(d time.Duration) Option {
	return func(c *Clock) {
		if d > 0 {
			c.interval = d
		}
	}
}

// Clock counts down whole seconds. At most one countdown runs at a time:
// Start cancels the previous one before arming a new one.
//
// Callbacks run on the clock's goroutine and must not call Start or Stop,
// since both wait for that goroutine to finish.
type Clock struct {
	interval time.Duration
	onTick   func(remaining int)
	onExpire func()

	mu        sync.Mutex
	remaining int
	running   bool
	// cancel and done belong to the current run; nil when none was started
	// since the last Stop. done closes once the run goroutine has returned.
	cancel chan struct{}
	done   chan struct{}
}

func New(onTick func(remaining int), onExpire func(), opts ...Option) *Clock {
	c := &Clock{
		interval: DefaultInterval,
		onTick:   onTick,
		onExpire: onExpire,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins a countdown of seconds ticks. A non-positive duration expires
// on the first tick.
func (c *Clock) Start(seconds int) {
	c.Stop()

	c.mu.Lock()
	if seconds < 0 {
		seconds = 0
	}
	c.remaining = seconds
	c.running = true
	c.cancel = make(chan struct{})
	c.done = make(chan struct{})
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	go c.run(cancel, done)
}

// Stop cancels the countdown and waits for its goroutine to return, so no
// callback of it runs after Stop returns. This holds even when the countdown
// has already reached zero and is delivering its final callbacks. Stop is
// safe to call at any time and more than once.
func (c *Clock) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.running = false
	if cancel != nil {
		close(cancel)
	}
	c.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (c *Clock) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Clock) run(cancel <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-cancel:
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		select {
		case <-cancel:
			// Stop won the race with this tick
			c.mu.Unlock()
			return
		default:
		}
		if c.remaining > 0 {
			c.remaining--
		}
		remaining := c.remaining
		expired := remaining == 0
		if expired {
			c.running = false
		}
		c.mu.Unlock()

		if c.onTick != nil {
			c.onTick(remaining)
		}
		if expired {
			if c.onExpire != nil {
				c.onExpire()
			}
			return
		}
	}
}
