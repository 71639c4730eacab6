/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package slot

import (
	"github.com/Juice-Labs/borrow/pkg/errors"
)

var (
	// ErrConfiguration is returned by Acquire when no factory is registered.
	ErrConfiguration = errors.New("slot: no factory registered")

	// ErrCreate wraps a failure returned by the factory.
	ErrCreate = errors.New("slot: failed to create resource")

	// ErrRelease wraps a failure returned by the resource's Close. The slot is
	// already empty when it is reported.
	ErrRelease = errors.New("slot: failed to close resource")
)
