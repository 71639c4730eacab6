/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package slot

import (
	"testing"
	"time"
)

func TestIdleTimeoutClosesUnreleased(t *testing.T) {
	slot, factory := newTestSlot(500 * time.Millisecond)

	handle := mustAcquire(t, slot)
	time.Sleep(600 * time.Millisecond)

	if closed := factory.resource(0).closed.Load(); closed != 1 {
		t.Fatalf("expected one close, got %d", closed)
	}
	if slot.Active() != 0 || slot.Live() {
		t.Errorf("unexpected state after idle timeout %+v", slot.Stats())
	}

	if err := handle.Release(); err != nil {
		t.Errorf("release after timeout returned %v", err)
	}
	if closed := factory.resource(0).closed.Load(); closed != 1 {
		t.Errorf("release after timeout closed again")
	}
}

func TestIdleTimeoutFiresFromFirstAcquire(t *testing.T) {
	slot, factory := newTestSlot(500 * time.Millisecond)

	mustAcquire(t, slot)

	time.Sleep(200 * time.Millisecond)
	if factory.resource(0).closed.Load() != 0 || slot.Active() != 1 {
		t.Fatalf("closed before the idle timeout")
	}

	time.Sleep(400 * time.Millisecond)
	if closed := factory.resource(0).closed.Load(); closed != 1 {
		t.Errorf("expected one close, got %d", closed)
	}
}

func TestAcquireRestartsIdleTimeout(t *testing.T) {
	slot, factory := newTestSlot(500 * time.Millisecond)

	mustAcquire(t, slot)
	time.Sleep(200 * time.Millisecond)
	mustAcquire(t, slot)
	time.Sleep(400 * time.Millisecond)

	if factory.resource(0).closed.Load() != 0 {
		t.Fatalf("closed although the second acquisition restarted the deadline")
	}
	if slot.Active() != 2 {
		t.Errorf("expected 2 active, got %d", slot.Active())
	}

	time.Sleep(200 * time.Millisecond)
	if closed := factory.resource(0).closed.Load(); closed != 1 {
		t.Errorf("expected one close once the restarted deadline passed, got %d", closed)
	}
	if slot.Active() != 0 {
		t.Errorf("timeout did not collapse all holders, %d active", slot.Active())
	}
}

func TestReleaseDisarmsIdleTimeout(t *testing.T) {
	slot, factory := newTestSlot(500 * time.Millisecond)

	handle := mustAcquire(t, slot)
	time.Sleep(200 * time.Millisecond)

	if err := handle.Release(); err != nil {
		t.Fatal(err)
	}
	if closed := factory.resource(0).closed.Load(); closed != 1 {
		t.Fatalf("expected close on release, got %d", closed)
	}

	time.Sleep(400 * time.Millisecond)
	if closed := factory.resource(0).closed.Load(); closed != 1 {
		t.Errorf("idle timeout closed a second time")
	}
}

func TestNonPositiveTimeoutDisablesTeardown(t *testing.T) {
	for _, timeout := range []time.Duration{0, -time.Second} {
		slot, factory := newTestSlot(timeout)

		handle := mustAcquire(t, slot)
		time.Sleep(300 * time.Millisecond)

		if factory.resource(0).closed.Load() != 0 || !slot.Live() {
			t.Fatalf("timeout %v closed the resource", timeout)
		}

		handle.Release()
		if factory.resource(0).closed.Load() != 1 {
			t.Errorf("timeout %v: release did not close", timeout)
		}
	}
}

func TestSetTimeoutRearmsLiveTimer(t *testing.T) {
	slot, factory := newTestSlot(0)

	handle := mustAcquire(t, slot)
	slot.SetTimeout(100 * time.Millisecond)

	if slot.Timeout() != 100*time.Millisecond {
		t.Errorf("unexpected timeout %v", slot.Timeout())
	}

	time.Sleep(250 * time.Millisecond)
	if closed := factory.resource(0).closed.Load(); closed != 1 {
		t.Fatalf("expected the new timeout to close the instance, got %d closes", closed)
	}

	handle.Release()
}

func TestSetTimeoutDisablesLiveTimer(t *testing.T) {
	slot, factory := newTestSlot(100 * time.Millisecond)

	handle := mustAcquire(t, slot)
	slot.SetTimeout(0)

	time.Sleep(250 * time.Millisecond)
	if factory.resource(0).closed.Load() != 0 || slot.Active() != 1 {
		t.Fatalf("disabled timeout still closed the instance")
	}

	handle.Release()
}

func TestStaleTimerFireIsIgnored(t *testing.T) {
	slot, factory := newTestSlot(time.Hour)

	first := mustAcquire(t, slot)

	slot.mutex.Lock()
	stale := slot.idle.generation
	slot.mutex.Unlock()

	first.Release()
	second := mustAcquire(t, slot)
	defer second.Release()

	// A fire that was already waiting on the lock when the first era ended.
	slot.expire(stale)

	if factory.resource(1).closed.Load() != 0 || slot.Active() != 1 {
		t.Errorf("stale timer fire tore down the next era")
	}
}

func TestTimeoutRacingRelease(t *testing.T) {
	for i := 0; i < 50; i++ {
		slot, factory := newTestSlot(time.Millisecond)

		handle := mustAcquire(t, slot)
		time.Sleep(time.Millisecond)
		handle.Release()
		time.Sleep(5 * time.Millisecond)

		if closed := factory.resource(0).closed.Load(); closed != 1 {
			t.Fatalf("iteration %d: expected exactly one close, got %d", i, closed)
		}
		if slot.Live() || slot.Active() != 0 {
			t.Fatalf("iteration %d: slot not empty", i)
		}
	}
}
