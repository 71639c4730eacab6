/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package slot

import (
	"fmt"
	"sync"
	"time"

	"github.com/Juice-Labs/borrow/pkg/logger"
)

// Resource is anything a slot can hold. Close is called exactly once per
// instance, by the slot, on the goroutine performing the teardown.
type Resource interface {
	Close() error
}

// Factory creates a new instance. It is called with the slot lock held.
type Factory[T Resource] func() (T, error)

type Option[T Resource] func(*Slot[T])

func WithFactory[T Resource](factory Factory[T]) Option[T] {
	return func(slot *Slot[T]) { slot.factory = factory }
}

// WithTimeout sets the idle timeout. Zero or less disables idle teardown.
func WithTimeout[T Resource](timeout time.Duration) Option[T] {
	return func(slot *Slot[T]) { slot.idle.timeout = timeout }
}

func WithName[T Resource](name string) Option[T] {
	return func(slot *Slot[T]) { slot.name = name }
}

// WithObserver adds an observer. It may be given more than once.
func WithObserver[T Resource](observer Observer) Option[T] {
	return func(slot *Slot[T]) { slot.observers = append(slot.observers, observer) }
}

type Stats struct {
	Name    string
	Live    bool
	Active  int
	Era     uint64
	Timeout time.Duration
}

// Slot holds at most one live instance of T. The zero value is not usable,
// create slots with New.
type Slot[T Resource] struct {
	mutex sync.Mutex

	name      string
	factory   Factory[T]
	observers []Observer

	instance T
	live     bool
	active   int
	era      uint64

	idle idleTimer
}

func New[T Resource](opts ...Option[T]) *Slot[T] {
	slot := &Slot[T]{}
	for _, opt := range opts {
		opt(slot)
	}

	if slot.name == "" {
		var zero T
		slot.name = fmt.Sprintf("%T", zero)
	}

	return slot
}

func (slot *Slot[T]) Name() string {
	return slot.name
}

// Register replaces the factory. The new factory is used from the next era
// on, an instance that is already live is kept.
func (slot *Slot[T]) Register(factory Factory[T]) {
	slot.mutex.Lock()
	defer slot.mutex.Unlock()

	slot.factory = factory
}

func (slot *Slot[T]) Timeout() time.Duration {
	slot.mutex.Lock()
	defer slot.mutex.Unlock()

	return slot.idle.timeout
}

// SetTimeout changes the idle timeout. When an instance is live the pending
// deadline is restarted with the new value from now, a value of zero or less
// cancels it.
func (slot *Slot[T]) SetTimeout(timeout time.Duration) {
	slot.mutex.Lock()
	defer slot.mutex.Unlock()

	slot.idle.timeout = timeout
	if slot.live {
		slot.idle.arm(slot.expire)
	}
}

// Acquire returns a handle on the live instance, creating it first if the
// slot is empty. Each call restarts the idle deadline.
func (slot *Slot[T]) Acquire() (*Handle[T], error) {
	slot.mutex.Lock()
	defer slot.mutex.Unlock()

	if slot.factory == nil {
		return nil, ErrConfiguration
	}

	if !slot.live {
		instance, err := slot.factory()
		if err != nil {
			return nil, ErrCreate.Wrap(err)
		}

		slot.instance = instance
		slot.live = true
		slot.era++

		logger.Debugw("slot: created resource", "slot", slot.name, "era", slot.era)
		for _, observer := range slot.observers {
			observer.Created(slot.name, slot.era)
		}
	}

	slot.active++
	slot.idle.arm(slot.expire)

	for _, observer := range slot.observers {
		observer.Acquired(slot.name, slot.era, slot.active)
	}

	return newHandle(slot, slot.instance, slot.era), nil
}

// Release releases handle. It is the same as handle.Release and is a no-op
// for a nil handle or one issued by another slot.
func (slot *Slot[T]) Release(handle *Handle[T]) error {
	if handle == nil || handle.slot != slot {
		return nil
	}

	return handle.Release()
}

func (slot *Slot[T]) release(era uint64) error {
	slot.mutex.Lock()
	defer slot.mutex.Unlock()

	// The era this handle belonged to already ended through a timeout or a
	// reset.
	if !slot.live || slot.era != era || slot.active == 0 {
		return nil
	}

	slot.active--

	for _, observer := range slot.observers {
		observer.Released(slot.name, slot.era, slot.active)
	}

	if slot.active > 0 {
		return nil
	}

	return slot.teardown(ReasonReleased)
}

// expire runs on the timer goroutine.
func (slot *Slot[T]) expire(generation uint64) {
	slot.mutex.Lock()
	defer slot.mutex.Unlock()

	if !slot.live || !slot.idle.current(generation) {
		return
	}

	era, holders := slot.era, slot.active

	err := slot.teardown(ReasonTimeout)
	if err != nil {
		logger.Errorw("slot: idle teardown failed to close resource", "slot", slot.name, "era", era, "holders", holders, "error", err)
	} else {
		logger.Debugw("slot: idle teardown", "slot", slot.name, "era", era, "holders", holders)
	}
}

// teardown ends the current era. The state is cleared before Close runs so the
// slot is empty whatever Close does.
func (slot *Slot[T]) teardown(reason CloseReason) error {
	instance, era := slot.instance, slot.era

	slot.idle.disarm()
	slot.clear()

	err := closeResource(instance)
	for _, observer := range slot.observers {
		observer.Ended(slot.name, era, reason, err)
	}

	if err != nil {
		return ErrRelease.Wrap(err)
	}

	logger.Debugw("slot: closed resource", "slot", slot.name, "era", era, "reason", reason.String())
	return nil
}

func (slot *Slot[T]) clear() {
	var zero T

	slot.instance = zero
	slot.live = false
	slot.active = 0
}

// Reset empties the slot without closing the live instance and leaves every
// outstanding handle inert. It is meant for tests and administrative use, the
// caller is responsible for the abandoned instance.
func (slot *Slot[T]) Reset() {
	slot.mutex.Lock()
	defer slot.mutex.Unlock()

	slot.idle.disarm()
	if !slot.live {
		return
	}

	era := slot.era
	slot.clear()

	logger.Debugw("slot: reset", "slot", slot.name, "era", era)
	for _, observer := range slot.observers {
		observer.Ended(slot.name, era, ReasonReset, nil)
	}
}

// Close tears down the live instance regardless of outstanding handles, the
// way an idle timeout does. The slot stays usable, a later Acquire starts a
// new era.
func (slot *Slot[T]) Close() error {
	slot.mutex.Lock()
	defer slot.mutex.Unlock()

	if !slot.live {
		return nil
	}

	return slot.teardown(ReasonClosed)
}

func (slot *Slot[T]) Stats() Stats {
	slot.mutex.Lock()
	defer slot.mutex.Unlock()

	return Stats{
		Name:    slot.name,
		Live:    slot.live,
		Active:  slot.active,
		Era:     slot.era,
		Timeout: slot.idle.timeout,
	}
}

func (slot *Slot[T]) Active() int {
	slot.mutex.Lock()
	defer slot.mutex.Unlock()

	return slot.active
}

func (slot *Slot[T]) Live() bool {
	slot.mutex.Lock()
	defer slot.mutex.Unlock()

	return slot.live
}

func closeResource[T Resource](instance T) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic during close: %v", recovered)
		}
	}()

	return instance.Close()
}
