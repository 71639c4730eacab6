/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package utilities

import (
	"reflect"

	"github.com/Juice-Labs/borrow/pkg/errors"
	"github.com/Juice-Labs/borrow/pkg/logger"
)

var (
	ErrInvalidCast = errors.New("utilities: invalid cast")
)

func Cast[T any](value any) (T, error) {
	converted, ok := value.(T)
	if !ok {
		return converted, ErrInvalidCast.Wrap(errors.Newf("invalid cast from type '%s' to type '%s'", reflect.TypeOf(value), reflect.TypeOf((*T)(nil)).Elem()))
	}

	return converted, nil
}

// Require is Cast for values whose type is guaranteed by construction, such as
// rows read back from a typed table. A mismatch is a programming error.
func Require[T any](value any) T {
	result, err := Cast[T](value)
	if err != nil {
		logger.Panic(err)
	}

	return result
}
