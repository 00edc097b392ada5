package game

import (
	"testing"
	"time"
)

type timerFire struct {
	kind TimerKind
	seq  int
}

func newTestCountdown(kind TimerKind) (*Countdown, chan timerFire) {
	fires := make(chan timerFire, 10)
	cd := newCountdown(kind, func(k TimerKind, seq int) {
		fires <- timerFire{kind: k, seq: seq}
	})
	return cd, fires
}

func TestCountdownFires(t *testing.T) {
	cd, fires := newTestCountdown(TimerTurn)
	cd.Start(30 * time.Millisecond)

	select {
	case f := <-fires:
		if f.kind != TimerTurn {
			t.Errorf("expected kind turn, got %v", f.kind)
		}
		if !cd.matches(f.seq) {
			t.Error("a normal expiry should match the current sequence")
		}
	case <-time.After(time.Second):
		t.Fatal("countdown did not fire")
	}
}

func TestCountdownStopCancels(t *testing.T) {
	cd, fires := newTestCountdown(TimerTurn)
	cd.Start(30 * time.Millisecond)
	cd.Stop()

	if cd.Active() {
		t.Error("stopped countdown should not be active")
	}
	select {
	case <-fires:
		t.Error("stopped countdown should not fire")
	case <-time.After(80 * time.Millisecond):
	}
}

func TestCountdownRestartInvalidatesOldFire(t *testing.T) {
	cd, fires := newTestCountdown(TimerTurn)
	cd.Start(20 * time.Millisecond)
	oldSeq := cd.seq

	// Restart before checking the firelands.
	cd.Start(500 * time.Millisecond)

	select {
	case f := <-fires:
		// The first run may have fired in the window between Stop and the
		// restart; its sequence must be stale.
		if f.seq == cd.seq {
			t.Error("a fire from the previous run must not carry the current sequence")
		}
		if cd.matches(oldSeq) {
			t.Error("the old sequence must be stale after restart")
		}
	case <-time.After(100 * time.Millisecond):
		// The cancel won the race; equally fine.
	}
	cd.Stop()
}

func TestCountdownFreezeHoldsRemaining(t *testing.T) {
	cd, fires := newTestCountdown(TimerPenalty)
	cd.Start(200 * time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	cd.Freeze()
	if !cd.Frozen() {
		t.Fatal("countdown should be frozen")
	}
	remaining := cd.Remaining()
	if remaining <= 0 || remaining > 200*time.Millisecond {
		t.Fatalf("frozen remaining out of range: %v", remaining)
	}

	// Frozen time does not elapse.
	time.Sleep(100 * time.Millisecond)
	if got := cd.Remaining(); got != remaining {
		t.Errorf("remaining changed while frozen: %v -> %v", remaining, got)
	}
	select {
	case <-fires:
		t.Fatal("frozen countdown must not fire")
	default:
	}

	cd.Resume()
	if cd.Frozen() {
		t.Error("resumed countdown should not report frozen")
	}
	select {
	case f := <-fires:
		if !cd.matches(f.seq) {
			t.Error("resume fire should carry the current sequence")
		}
	case <-time.After(time.Second):
		t.Fatal("resumed countdown did not fire")
	}
}

func TestCountdownFreezeWhenIdleIsNoop(t *testing.T) {
	cd, _ := newTestCountdown(TimerTurn)
	cd.Freeze()
	if cd.Active() {
		t.Error("freezing an idle countdown should not activate it")
	}
	cd.Resume()
	if cd.Active() {
		t.Error("resuming an idle countdown should not activate it")
	}
}

func TestCountdownStopClearsFrozenRemainder(t *testing.T) {
	cd, _ := newTestCountdown(TimerTurn)
	cd.Start(time.Second)
	cd.Freeze()
	cd.Stop()
	if cd.Active() {
		t.Error("stop should clear the frozen state")
	}
	if cd.Remaining() != 0 {
		t.Errorf("stop should clear the remainder, got %v", cd.Remaining())
	}
	cd.Resume()
	if cd.Active() {
		t.Error("resume after stop should be a no-op")
	}
}
