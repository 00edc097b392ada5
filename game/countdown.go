package game

import "time"

// TimerKind identifies which session countdown expired.
type TimerKind int

const (
	TimerTurn TimerKind = iota
	TimerMemorizePrep
	TimerMemorize
	TimerPenalty
	TimerReveal
	TimerReconnect
)

// String returns the log label for a TimerKind.
func (k TimerKind) String() string {
	switch k {
	case TimerTurn:
		return "turn"
	case TimerMemorizePrep:
		return "memorize_prep"
	case TimerMemorize:
		return "memorize"
	case TimerPenalty:
		return "penalty"
	case TimerReveal:
		return "reveal"
	case TimerReconnect:
		return "reconnect"
	default:
		return "unknown"
	}
}

// Countdown is a cancellable, freezable timer owned by the session loop.
// Expiry is reported through the emit callback (which posts into the
// session's action channel) so timer fires are serialized with player
// actions. A sequence number guards against stale fires: every Start or
// Resume bumps it, and the session ignores expiries whose sequence does not
// match the current one.
//
// Freeze stops the underlying timer but remembers the remaining duration;
// Resume restarts from that value rather than resetting. All methods must be
// called from the session loop.
type Countdown struct {
	kind      TimerKind
	seq       int
	remaining time.Duration
	deadline  time.Time
	running   bool
	frozen    bool
	cancel    chan struct{}
	emit      func(kind TimerKind, seq int)
}

func newCountdown(kind TimerKind, emit func(TimerKind, int)) *Countdown {
	return &Countdown{kind: kind, emit: emit}
}

// Start arms the countdown for d. Any previous run is cancelled.
func (c *Countdown) Start(d time.Duration) {
	c.Stop()
	if d <= 0 {
		return
	}
	c.seq++
	c.remaining = d
	c.arm(d)
}

// Stop cancels the countdown entirely, clearing any frozen remainder.
func (c *Countdown) Stop() {
	c.disarm()
	c.frozen = false
	c.remaining = 0
}

// Freeze suspends a running countdown, keeping its remaining time. No-op if
// the countdown is not running.
func (c *Countdown) Freeze() {
	if !c.running {
		return
	}
	c.remaining = time.Until(c.deadline)
	if c.remaining < 0 {
		c.remaining = 0
	}
	c.disarm()
	c.frozen = true
}

// Resume restarts a frozen countdown with its prior remaining value.
func (c *Countdown) Resume() {
	if !c.frozen {
		return
	}
	c.frozen = false
	c.seq++
	c.arm(c.remaining)
}

// Active reports whether the countdown is running or frozen.
func (c *Countdown) Active() bool { return c.running || c.frozen }

// Frozen reports whether the countdown is suspended.
func (c *Countdown) Frozen() bool { return c.frozen }

// Remaining returns the time left: live for a running countdown, the stored
// remainder for a frozen one.
func (c *Countdown) Remaining() time.Duration {
	if c.running {
		r := time.Until(c.deadline)
		if r < 0 {
			r = 0
		}
		return r
	}
	return c.remaining
}

// Deadline returns the wall-clock expiry of a running countdown, or the zero
// time when stopped or frozen.
func (c *Countdown) Deadline() time.Time {
	if !c.running {
		return time.Time{}
	}
	return c.deadline
}

// matches reports whether an expiry with the given sequence is current.
func (c *Countdown) matches(seq int) bool {
	return c.running && c.seq == seq
}

func (c *Countdown) arm(d time.Duration) {
	c.deadline = time.Now().Add(d)
	c.running = true
	c.cancel = make(chan struct{})
	cancel := c.cancel
	kind, seq := c.kind, c.seq
	emit := c.emit
	go func() {
		select {
		case <-time.After(d):
			emit(kind, seq)
		case <-cancel:
		}
	}()
}

func (c *Countdown) disarm() {
	if c.cancel != nil {
		close(c.cancel)
		c.cancel = nil
	}
	c.running = false
	c.deadline = time.Time{}
}
