/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package slot

import (
	"sync/atomic"

	"github.com/Juice-Labs/borrow/pkg/errors"
)

// Handle is one acquisition of a slot's instance. Only the first Release has
// an effect.
type Handle[T Resource] struct {
	slot     *Slot[T]
	value    T
	era      uint64
	released atomic.Bool
}

func newHandle[T Resource](slot *Slot[T], value T, era uint64) *Handle[T] {
	return &Handle[T]{
		slot:  slot,
		value: value,
		era:   era,
	}
}

// Value returns the shared instance. Holders must not close it themselves and
// must not use it after Release.
func (handle *Handle[T]) Value() T {
	return handle.value
}

func (handle *Handle[T]) Era() uint64 {
	return handle.era
}

func (handle *Handle[T]) Released() bool {
	return handle.released.Load()
}

// Release gives the acquisition back. When it was the last one the instance is
// closed and a Close failure is returned wrapped in ErrRelease.
func (handle *Handle[T]) Release() error {
	if handle == nil || !handle.released.CompareAndSwap(false, true) {
		return nil
	}

	return handle.slot.release(handle.era)
}

// Close implements io.Closer.
func (handle *Handle[T]) Close() error {
	return handle.Release()
}

// With acquires the slot's instance for the duration of callback. The handle
// is released on every exit path, panics included, and a release failure is
// joined to the callback's error.
func With[T Resource](slot *Slot[T], callback func(value T) error) (err error) {
	handle, err := slot.Acquire()
	if err != nil {
		return err
	}

	defer func() {
		if releaseErr := handle.Release(); releaseErr != nil {
			err = errors.Join(err, releaseErr)
		}
	}()

	return callback(handle.Value())
}

func WithReturn[T Resource, R any](slot *Slot[T], callback func(value T) (R, error)) (result R, err error) {
	handle, err := slot.Acquire()
	if err != nil {
		return result, err
	}

	defer func() {
		if releaseErr := handle.Release(); releaseErr != nil {
			err = errors.Join(err, releaseErr)
		}
	}()

	return callback(handle.Value())
}
