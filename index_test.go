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
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestCoordinateIndexNearest(t *testing.T) {
	inf := math.Inf(1)
	tests := []struct {
		name   string
		values []float64
		v, tol float64
		want   int
		dist   float64
	}{
		{name: "increasing", values: []float64{0, 1, 2, 3}, v: 2.2, tol: inf, want: 2, dist: 0.2},
		{name: "increasing tie", values: []float64{0, 1, 2, 3}, v: 1.5, tol: inf, want: 1, dist: 0.5},
		{name: "below range", values: []float64{0, 1, 2, 3}, v: -10, tol: inf, want: 0, dist: 10},
		{name: "above range", values: []float64{0, 1, 2, 3}, v: 10, tol: inf, want: 3, dist: 7},
		{name: "decreasing", values: []float64{3, 2, 1, 0}, v: 0.9, tol: inf, want: 2, dist: 0.1},
		{name: "decreasing tie", values: []float64{3, 2, 1, 0}, v: 1.5, tol: inf, want: 1, dist: 0.5},
		{name: "unordered tie", values: []float64{2, 0, 3, 1}, v: 1.5, tol: inf, want: 0, dist: 0.5},
		{name: "duplicates", values: []float64{0, 1, 1, 2}, v: 1, tol: inf, want: 1, dist: 0},
		{name: "within tolerance", values: []float64{0, 10}, v: 4, tol: 4, want: 0, dist: 4},
		{name: "single", values: []float64{5}, v: 1e6, tol: inf, want: 0, dist: 1e6 - 5},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ci := NewCoordinateIndex(test.values)
			i, d, err := ci.Nearest(test.v, test.tol)
			if err != nil {
				t.Fatal(err)
			}
			if i != test.want {
				t.Errorf("index: have %d, want %d", i, test.want)
			}
			if math.Abs(d-test.dist) > 1e-12 {
				t.Errorf("distance: have %g, want %g", d, test.dist)
			}
		})
	}
}

// Every nearest match minimizes the distance over all indices, with ties
// going to the smallest index.
func TestCoordinateIndexNearestBruteForce(t *testing.T) {
	arrays := [][]float64{
		{-5, -2.5, 0, 0.5, 4, 9},
		{9, 4, 0.5, 0, -2.5, -5},
		{1, 3, 5, 7},
	}
	for _, values := range arrays {
		ci := NewCoordinateIndex(values)
		for v := -7.0; v <= 11; v += 0.25 {
			i, _, err := ci.Nearest(v, math.Inf(1))
			if err != nil {
				t.Fatal(err)
			}
			best := 0
			for j, x := range values {
				if math.Abs(x-v) < math.Abs(values[best]-v) {
					best = j
				}
			}
			if i != best {
				t.Errorf("%v nearest %g: have %d, want %d", values, v, i, best)
			}
		}
	}
}

func TestCoordinateIndexNearestErrors(t *testing.T) {
	ci := NewCoordinateIndex([]float64{0, 10})
	if _, _, err := ci.Nearest(4, 3); !errors.Is(err, ErrValueOutOfRange) {
		t.Errorf("tolerance exceeded: have %v, want ErrValueOutOfRange", err)
	}
	if _, _, err := NewCoordinateIndex(nil).Nearest(4, math.Inf(1)); !errors.Is(err, ErrValueOutOfRange) {
		t.Errorf("empty index: have %v, want ErrValueOutOfRange", err)
	}
	if _, _, err := ci.Nearest(math.NaN(), math.Inf(1)); err == nil {
		t.Error("NaN query should fail")
	}
}

func TestCoordinateIndexExact(t *testing.T) {
	for _, values := range [][]float64{
		{0.5, 10, 50},
		{50, 10, 0.5},
		{10, 0.5, 50, 10},
	} {
		ci := NewCoordinateIndex(values)
		for _, v := range values {
			i, err := ci.Exact(v)
			if err != nil {
				t.Fatal(err)
			}
			j, d, err := ci.Nearest(v, 0)
			if err != nil {
				t.Fatal(err)
			}
			if i != j || d != 0 {
				t.Errorf("%v: exact %g = %d but nearest = %d at distance %g", values, v, i, j, d)
			}
		}
		_, err := ci.Exact(10.000001)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("%v: have %v, want ErrNotFound", values, err)
		}
		if !errors.Is(err, ErrValueOutOfRange) {
			t.Errorf("%v: ErrNotFound should wrap ErrValueOutOfRange", values)
		}
	}
}

func TestCoordinateIndexRange(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		lo, hi float64
		want   []int
	}{
		{name: "increasing", values: []float64{0, 1, 2, 3, 4, 5, 6}, lo: 2, hi: 4, want: []int{2, 3, 4}},
		{name: "decreasing", values: []float64{6, 5, 4, 3, 2, 1, 0}, lo: 2, hi: 4, want: []int{2, 3, 4}},
		{name: "between values", values: []float64{0, 1, 2, 3}, lo: 0.5, hi: 2.5, want: []int{1, 2}},
		{name: "unordered", values: []float64{3, 1, 2, 7, 2}, lo: 2, hi: 3, want: []int{0, 2, 4}},
		{name: "none", values: []float64{0, 1, 2}, lo: 5, hi: 6, want: []int{}},
		{name: "inverted", values: []float64{0, 1, 2}, lo: 2, hi: 0, want: []int{}},
		{name: "NaN bound", values: []float64{0, 1, 2}, lo: math.NaN(), hi: 2, want: []int{}},
		{name: "empty index", values: nil, lo: 0, hi: 1, want: []int{}},
		{name: "all", values: []float64{13, 13.5, 15, 16.5}, lo: 13, hi: 16.5, want: []int{0, 1, 2, 3}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			have := NewCoordinateIndex(test.values).Range(test.lo, test.hi)
			if !reflect.DeepEqual(have, test.want) {
				t.Errorf("have %v, want %v", have, test.want)
			}
			for _, i := range have {
				if x := test.values[i]; x < test.lo || x > test.hi {
					t.Errorf("index %d value %g outside [%g, %g]", i, x, test.lo, test.hi)
				}
			}
		})
	}
}

func TestCoordinateIndexIsACopy(t *testing.T) {
	v := []float64{1, 2, 3}
	ci := NewCoordinateIndex(v)
	v[0] = 100
	if ci.Value(0) != 1 {
		t.Errorf("index changed with its source: %g", ci.Value(0))
	}
	if !ci.Monotonic() {
		t.Error("should be monotonic")
	}
	if NewCoordinateIndex([]float64{1, 1, 2}).Monotonic() {
		t.Error("duplicates are not strictly monotonic")
	}
}
