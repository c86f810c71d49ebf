// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package slice complements the standard [slices] package with the generic
helpers the dashboard reshaping code leans on.

Every helper returns a non-nil slice for a non-nil input, so encoded lists
come out as [] rather than null.
*/
package slice

// Map transforms every element of input.
func Map[T any, U any](input []T, transform func(T) U) []U {
	if input == nil {
		return nil
	}

	result := make([]U, len(input))
	for i, v := range input {
		result[i] = transform(v)
	}
	return result
}

// Reduce folds input into a single accumulated value.
func Reduce[T any, U any](input []T, initial U, reducer func(accumulator U, current T) U) U {
	result := initial
	for _, v := range input {
		result = reducer(result, v)
	}
	return result
}

// SumBy adds up the value selected from every element.
func SumBy[T any](input []T, value func(T) float64) float64 {
	return Reduce(input, 0.0, func(total float64, current T) float64 {
		return total + value(current)
	})
}

// Take returns at most the first n elements. A negative n keeps nothing.
// The result shares input's backing array.
func Take[T any](input []T, n int) []T {
	switch {
	case n <= 0:
		return input[:0]
	case len(input) > n:
		return input[:n]
	default:
		return input
	}
}
