/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package utilities

import (
	"strings"
)

// CommaValue is a flag.Value that splits a comma separated string into a
// slice, dropping blank entries.
type CommaValue struct {
	Value *[]string
}

func (v CommaValue) String() string {
	if v.Value != nil {
		return strings.Join(*v.Value, ",")
	}
	return ""
}

func (v CommaValue) Set(s string) error {
	values := []string{}
	for _, value := range strings.Split(s, ",") {
		if value = strings.TrimSpace(value); value != "" {
			values = append(values, value)
		}
	}

	*v.Value = values
	return nil
}
