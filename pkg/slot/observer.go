/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package slot

import "fmt"

type CloseReason int

const (
	// ReasonReleased is the last outstanding handle being released.
	ReasonReleased CloseReason = iota
	// ReasonTimeout is the idle deadline passing with holders outstanding.
	ReasonTimeout
	// ReasonReset is an administrative Reset. The instance is not closed.
	ReasonReset
	// ReasonClosed is the slot itself being closed.
	ReasonClosed
)

func (reason CloseReason) String() string {
	switch reason {
	case ReasonReleased:
		return "released"
	case ReasonTimeout:
		return "timeout"
	case ReasonReset:
		return "reset"
	case ReasonClosed:
		return "closed"
	}

	return fmt.Sprintf("CloseReason(%d)", int(reason))
}

// Observer is notified of lifecycle transitions. Calls are made with the slot
// lock held, in the order the transitions happen, so implementations must be
// quick and must not call back into the slot.
type Observer interface {
	Created(slot string, era uint64)
	Acquired(slot string, era uint64, active int)
	Released(slot string, era uint64, active int)
	// Ended reports the end of an era. err is the Close failure, if any.
	Ended(slot string, era uint64, reason CloseReason, err error)
}
