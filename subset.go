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
	"sort"

	"github.com/ctessum/sparse"
)

// SelectOption configures Select.
type SelectOption func(*selectConfig)

type selectConfig struct {
	squeeze    bool
	allowEmpty bool
}

// Squeeze removes every dimension of length 1 from the result, keeping
// its coordinate as a scalar.
func Squeeze() SelectOption {
	return func(c *selectConfig) { c.squeeze = true }
}

// AllowEmpty returns an empty subset instead of ErrEmptyResult when a
// range predicate matches nothing.
func AllowEmpty() SelectOption {
	return func(c *selectConfig) { c.allowEmpty = true }
}

// Select applies sel to ds and returns the reduced dataset. Dimensions
// not named in sel are passed through unchanged. ds is not modified.
func Select(ds Dataset, sel Selection, opts ...SelectOption) (Dataset, error) {
	cfg := new(selectConfig)
	for _, o := range opts {
		o(cfg)
	}

	dims := make([]string, 0, len(sel))
	for dim := range sel {
		dims = append(dims, dim)
	}
	sort.Strings(dims)

	// Resolve every predicate before gathering anything, so that the
	// indices refer to the original coordinates.
	indices := make(map[string][]int, len(sel))
	for _, dim := range dims {
		c, err := ds.Coordinate(dim)
		if err != nil {
			return nil, &SelectionError{Dim: dim, Err: ErrDimensionNotFound}
		}
		p := sel[dim]
		idx, err := p.indices(c)
		if err != nil {
			return nil, &SelectionError{Dim: dim, Err: err}
		}
		if len(idx) == 0 && !cfg.allowEmpty {
			return nil, &SelectionError{Dim: dim, Err: fmt.Errorf("%w: no %s values in %s", ErrEmptyResult, dim, p)}
		}
		indices[dim] = idx
	}

	out := ds
	for _, dim := range dims {
		var err error
		out, err = out.Gather(dim, indices[dim])
		if err != nil {
			return nil, &SelectionError{Dim: dim, Err: err}
		}
	}
	if cfg.squeeze {
		return SqueezeAll(out)
	}
	return out, nil
}

// SqueezeAll removes every dimension of length 1 from ds.
func SqueezeAll(ds Dataset) (Dataset, error) {
	var ones []string
	for _, dim := range ds.Dims() {
		if n, _ := ds.Len(dim); n == 1 {
			ones = append(ones, dim)
		}
	}
	if len(ones) == 0 {
		return ds, nil
	}
	return ds.Squeeze(ones...)
}

// Isel gathers ds by position: for each dimension, the given indices are
// kept in the given order.
func Isel(ds Dataset, positions map[string][]int) (Dataset, error) {
	dims := make([]string, 0, len(positions))
	for dim := range positions {
		dims = append(dims, dim)
	}
	sort.Strings(dims)
	out := ds
	for _, dim := range dims {
		var err error
		if out, err = out.Gather(dim, positions[dim]); err != nil {
			return nil, &SelectionError{Dim: dim, Err: err}
		}
	}
	return out, nil
}

// Expand restores a squeezed dimension as a length-1 dimension at the
// position it occupied before squeezing, in the dataset and in every
// variable that spanned it. Squeezed dimensions can be restored in any
// order.
func Expand(ds Dataset, dim string) (*GriddedDataset, error) {
	var scalar *Scalar
	var rest []Scalar
	for _, s := range ds.Scalars() {
		s := s
		if s.Name == dim && scalar == nil {
			scalar = &s
			continue
		}
		rest = append(rest, s)
	}
	if scalar == nil {
		return nil, fmt.Errorf("oceanslice: %w: no squeezed dimension %s", ErrDimensionNotFound, dim)
	}
	restored := NewCoordinate(dim, []float64{scalar.Value}, scalar.Attrs.clone())
	restored.Kind = scalar.Kind

	var full []string
	if o, ok := ds.(interface{ dimOrder() []string }); ok {
		full = o.dimOrder()
	}
	order := restoreOrder(full, ds.Dims(), dim)
	coords := make([]*Coordinate, len(order))
	for i, d := range order {
		if d == dim {
			coords[i] = restored
			continue
		}
		c, err := ds.Coordinate(d)
		if err != nil {
			return nil, err
		}
		coords[i] = c
	}

	var vars []*Variable
	for _, v := range ds.Variables() {
		v = v.copyVar()
		if v.Axis(dim) < 0 && containsString(v.unsqueezed, dim) {
			lengths := make(map[string]int, len(v.Dims)+1)
			for i, d := range v.Dims {
				lengths[d] = v.Data.Shape[i]
			}
			lengths[dim] = 1
			dims := restoreOrder(v.unsqueezed, v.Dims, dim)
			shape := make([]int, len(dims))
			for i, d := range dims {
				shape[i] = lengths[d]
			}
			data := sparse.ZerosDense(shape...)
			copy(data.Elements, v.Data.Elements)
			v.Dims, v.Data = dims, data
			if len(dims) == len(v.unsqueezed) {
				v.unsqueezed = nil
			}
		}
		vars = append(vars, v)
	}
	o, err := NewGriddedDataset(coords, vars, ds.Attributes())
	if err != nil {
		return nil, err
	}
	o.scalars = rest
	if len(order) < len(full) {
		o.unsqueezed = full
	}
	return o, nil
}

// restoreOrder returns the dimensions in current plus dim, in the order
// they appear in full. Dimensions missing from full keep their relative
// order after it; without a recorded order, dim goes first.
func restoreOrder(full, current []string, dim string) []string {
	present := map[string]bool{dim: true}
	for _, d := range current {
		present[d] = true
	}
	var o []string
	for _, d := range full {
		if present[d] {
			o = append(o, d)
			delete(present, d)
		}
	}
	if present[dim] {
		o = append(o, dim)
		delete(present, dim)
	}
	for _, d := range current {
		if present[d] {
			o = append(o, d)
		}
	}
	return o
}

func containsString(s []string, x string) bool {
	for _, e := range s {
		if e == x {
			return true
		}
	}
	return false
}
