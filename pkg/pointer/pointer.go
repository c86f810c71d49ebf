// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pointer provides utilities for working with optional values.

Optional claims and optional request parameters are modeled as pointers, so
"absent" stays distinguishable from the zero value.

Key Functions:
  - Clone: Copies the pointee so that two owners never share it.
  - Val: Safely dereferences a pointer, returning the zero value if nil.
  - NonZero: Returns nil for a zero value, a pointer otherwise.
*/
package pointer

// Val safely dereferences a pointer.
// If the pointer is nil, it returns the zero value of the underlying type.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// NonZero returns nil when v is the zero value of its type, else a pointer to v.
func NonZero[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}

// Clone returns a pointer to a copy of *p, or nil.
func Clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
