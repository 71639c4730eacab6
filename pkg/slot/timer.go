/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package slot

import "time"

// idleTimer is the idle deadline of a slot. It has no lock of its own, every
// method is called with the owning slot's lock held.
//
// Each arm bumps the generation. A callback that was already running when the
// timer got stopped or re-armed carries an old generation and is ignored by
// current, so it cannot tear down a later era.
type idleTimer struct {
	timeout    time.Duration
	timer      *time.Timer
	generation uint64
}

// arm cancels any pending deadline and, when the timeout is positive, starts
// a new one that calls fire from the timer goroutine.
func (idle *idleTimer) arm(fire func(generation uint64)) {
	idle.disarm()

	if idle.timeout <= 0 {
		return
	}

	generation := idle.generation
	idle.timer = time.AfterFunc(idle.timeout, func() {
		fire(generation)
	})
}

func (idle *idleTimer) disarm() {
	if idle.timer != nil {
		idle.timer.Stop()
		idle.timer = nil
	}

	idle.generation++
}

func (idle *idleTimer) armed() bool {
	return idle.timer != nil
}

func (idle *idleTimer) current(generation uint64) bool {
	return idle.timer != nil && idle.generation == generation
}
