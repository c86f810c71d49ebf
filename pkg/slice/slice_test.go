// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/finboard/pkg/slice"
)

func TestMapReduceSum(t *testing.T) {
	values := []int{1, 2, 3, 4}

	doubled := slice.Map(values, func(v int) int { return v * 2 })
	longest := slice.Reduce(values, 0, func(best, v int) int { return max(best, v) })
	total := slice.SumBy(values, func(v int) float64 { return float64(v) })

	assert.Equal(t, []int{2, 4, 6, 8}, doubled)
	assert.Equal(t, 4, longest)
	assert.InDelta(t, 10.0, total, 1e-9)
	assert.Nil(t, slice.Map[int, int](nil, nil))
}

func TestTake(t *testing.T) {
	values := []string{"a", "b", "c"}

	assert.Equal(t, []string{"a", "b"}, slice.Take(values, 2))
	assert.Equal(t, values, slice.Take(values, 10))

	none := slice.Take(values, -1)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
