/*
Copyright © 2021 the OceanSlice authors.
This file is part of OceanSlice.

OceanSlice is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

OceanSlice is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with OceanSlice.  If not, see <http://www.gnu.org/licenses/>.
*/

package oceanslice

import (
	"fmt"
	"math"
	"sort"
)

type ordering int

const (
	unordered ordering = iota
	increasing
	decreasing
)

// CoordinateIndex answers exact, nearest and range queries over the values
// of a single coordinate. Strictly monotonic coordinates are searched with
// binary search; anything else (duplicate time stamps in observational
// records, missing values) falls back to a linear scan.
// A CoordinateIndex is immutable once built.
type CoordinateIndex struct {
	values []float64
	order  ordering
}

// NewCoordinateIndex creates an index over a copy of values.
func NewCoordinateIndex(values []float64) *CoordinateIndex {
	v := make([]float64, len(values))
	copy(v, values)
	return &CoordinateIndex{values: v, order: orderOf(v)}
}

func orderOf(v []float64) ordering {
	for _, x := range v {
		if math.IsNaN(x) {
			return unordered
		}
	}
	if len(v) < 2 {
		return increasing
	}
	inc, dec := true, true
	for i := 1; i < len(v); i++ {
		if v[i] <= v[i-1] {
			inc = false
		}
		if v[i] >= v[i-1] {
			dec = false
		}
	}
	switch {
	case inc:
		return increasing
	case dec:
		return decreasing
	default:
		return unordered
	}
}

// Len returns the number of coordinate values.
func (ci *CoordinateIndex) Len() int { return len(ci.values) }

// Monotonic reports whether the coordinate is strictly increasing or
// strictly decreasing.
func (ci *CoordinateIndex) Monotonic() bool { return ci.order != unordered }

// Value returns the coordinate value at index i.
func (ci *CoordinateIndex) Value(i int) float64 { return ci.values[i] }

// search returns the insertion point of v: the first index whose value is
// not before v in storage order.
func (ci *CoordinateIndex) search(v float64) int {
	if ci.order == decreasing {
		return sort.Search(len(ci.values), func(i int) bool { return ci.values[i] <= v })
	}
	return sort.Search(len(ci.values), func(i int) bool { return ci.values[i] >= v })
}

// Exact returns the index whose value equals v exactly.
func (ci *CoordinateIndex) Exact(v float64) (int, error) {
	if ci.order == unordered {
		for i, x := range ci.values {
			if x == v {
				return i, nil
			}
		}
		return -1, fmt.Errorf("%w: %g", ErrNotFound, v)
	}
	i := ci.search(v)
	if i < len(ci.values) && ci.values[i] == v {
		return i, nil
	}
	return -1, fmt.Errorf("%w: %g", ErrNotFound, v)
}

// Nearest returns the index whose value is closest to v, along with its
// distance from v. Ties go to the smallest index. Use math.Inf(1) as the
// tolerance for an unbounded search.
func (ci *CoordinateIndex) Nearest(v, tolerance float64) (int, float64, error) {
	if math.IsNaN(v) || math.IsNaN(tolerance) {
		return -1, math.NaN(), fmt.Errorf("oceanslice: invalid nearest query %g (tolerance %g)", v, tolerance)
	}
	best, dist := -1, math.Inf(1)
	if ci.order == unordered {
		for i, x := range ci.values {
			if d := math.Abs(x - v); d < dist {
				best, dist = i, d
			}
		}
	} else {
		i := ci.search(v)
		for _, j := range [2]int{i - 1, i} {
			if j < 0 || j >= len(ci.values) {
				continue
			}
			if d := math.Abs(ci.values[j] - v); d < dist {
				best, dist = j, d
			}
		}
	}
	if best < 0 {
		return -1, math.Inf(1), fmt.Errorf("%w: no coordinate values to match %g", ErrValueOutOfRange, v)
	}
	if dist > tolerance {
		return -1, dist, fmt.Errorf("%w: nearest value %g is %g from %g (tolerance %g)",
			ErrValueOutOfRange, ci.values[best], dist, v, tolerance)
	}
	return best, dist, nil
}

// Range returns, in storage order, every index whose value lies in
// [lo, hi]. The result is empty, not an error, when nothing qualifies.
func (ci *CoordinateIndex) Range(lo, hi float64) []int {
	if math.IsNaN(lo) || math.IsNaN(hi) || lo > hi {
		return []int{}
	}
	var begin, end int
	switch ci.order {
	case increasing:
		begin = sort.Search(len(ci.values), func(i int) bool { return ci.values[i] >= lo })
		end = sort.Search(len(ci.values), func(i int) bool { return ci.values[i] > hi })
	case decreasing:
		begin = sort.Search(len(ci.values), func(i int) bool { return ci.values[i] <= hi })
		end = sort.Search(len(ci.values), func(i int) bool { return ci.values[i] < lo })
	default:
		o := []int{}
		for i, x := range ci.values {
			if x >= lo && x <= hi {
				o = append(o, i)
			}
		}
		return o
	}
	o := make([]int, 0, end-begin)
	for i := begin; i < end; i++ {
		o = append(o, i)
	}
	return o
}
