/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */

// Package slot lends a single, lazily created resource to any number of
// callers without passing it down the call chain.
//
// A Slot holds at most one live instance. The first Acquire creates it through
// the registered Factory, later acquisitions share it and bump an acquisition
// count, and the Release that brings the count back to zero closes it. An era
// is the span between one creation and the matching teardown; the factory runs
// once per era.
//
// Every acquisition also pushes back an idle deadline. If the deadline passes
// while holders are still outstanding the slot closes the instance anyway and
// every handle issued in that era becomes inert: releasing it later is a no-op.
// A timeout of zero or less disables the idle teardown.
//
//	db := slot.New(slot.WithFactory(openDatabase), slot.WithTimeout[*Database](30*time.Second))
//
//	handle, err := db.Acquire()
//	if err != nil {
//		return err
//	}
//	defer handle.Release()
//
// With and WithReturn wrap that pattern for a single callback.
package slot
