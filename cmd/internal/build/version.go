/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package build

import "fmt"

// Set with -ldflags "-X github.com/Juice-Labs/borrow/cmd/internal/build.Version=..."
var (
	Major    = 0
	Minor    = 1
	Revision = 0

	Version = fmt.Sprintf("%d.%d.%d", Major, Minor, Revision)
)
