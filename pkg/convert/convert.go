// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package convert provides quick, fault-tolerant type conversions.

Legacy backend payloads carry numbers as JSON numbers, plain strings ("100.5")
or Brazilian-formatted strings ("1.234,56"). The helpers here return a zero
value instead of an error when a value cannot be parsed.

Do not use this package if distinguishing between malformed data and zero values
is important in your domain logic; use explicit standard libraries instead.
*/
package convert

import (
	"strconv"
	"strings"
)

// ToFloat64 converts a decimal string to a float64, swallowing errors.
//
// Both "1234.56" and "1.234,56" are accepted. A currency prefix such as
// "R$" is ignored.
func ToFloat64(s string) float64 {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if s == "" {
		return 0
	}

	// A comma after the last dot marks the comma as the decimal separator.
	if comma := strings.LastIndex(s, ","); comma > strings.LastIndex(s, ".") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	v, _ := strconv.ParseFloat(s, 64)
	return v
}
