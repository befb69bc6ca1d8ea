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

// Package oceanslice extracts coordinate-addressed subsets from gridded
// oceanographic datasets (model output, satellite grids and moored
// time series) and writes them back to self-describing NetCDF files.
package oceanslice

import (
	"fmt"
	"math"

	"github.com/ctessum/sparse"
)

// Version is the version of this program.
const Version = "1.0.0"

// Attribute is a named metadata value. Value is one of string, []uint8,
// []int16, []int32, []float32 or []float64.
type Attribute struct {
	Name  string
	Value interface{}
}

// Attributes is an ordered list of attributes.
type Attributes []Attribute

// Get returns the value of the named attribute, or nil.
func (a Attributes) Get(name string) interface{} {
	for _, at := range a {
		if at.Name == name {
			return at.Value
		}
	}
	return nil
}

// Float returns the first element of a numeric attribute.
func (a Attributes) Float(name string) (float64, bool) {
	switch v := a.Get(name).(type) {
	case []float64:
		if len(v) > 0 {
			return v[0], true
		}
	case []float32:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	case []int32:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	case []int16:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	case []uint8:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	}
	return 0, false
}

// Set returns a copy of a with the named attribute set to v.
func (a Attributes) Set(name string, v interface{}) Attributes {
	o := make(Attributes, 0, len(a)+1)
	found := false
	for _, at := range a {
		if at.Name == name {
			at.Value = v
			found = true
		}
		o = append(o, at)
	}
	if !found {
		o = append(o, Attribute{Name: name, Value: v})
	}
	return o
}

func (a Attributes) clone() Attributes {
	if a == nil {
		return nil
	}
	o := make(Attributes, len(a))
	copy(o, a)
	return o
}

// Coordinate holds the physical values along one dimension.
type Coordinate struct {
	Name   string
	Values []float64
	Attrs  Attributes

	// Kind is the on-disk storage type.
	Kind DataKind

	// Synthetic is true for a coordinate made up of positional indices
	// because the source had no coordinate variable for the dimension.
	Synthetic bool

	index *CoordinateIndex
}

// NewCoordinate creates a coordinate and builds its index.
func NewCoordinate(name string, values []float64, attrs Attributes) *Coordinate {
	c := &Coordinate{Name: name, Values: values, Attrs: attrs}
	c.index = NewCoordinateIndex(values)
	return c
}

// Index returns the lookup index of the coordinate.
func (c *Coordinate) Index() *CoordinateIndex {
	if c.index == nil {
		c.index = NewCoordinateIndex(c.Values)
	}
	return c.index
}

func (c *Coordinate) gather(idx []int) *Coordinate {
	v := make([]float64, len(idx))
	for i, j := range idx {
		v[i] = c.Values[j]
	}
	o := NewCoordinate(c.Name, v, c.Attrs.clone())
	o.Kind = c.Kind
	o.Synthetic = c.Synthetic
	return o
}

// DataKind is the numeric storage type of a variable on disk.
type DataKind int

// Storage types supported by the NetCDF classic format.
const (
	Float64 DataKind = iota
	Float32
	Int32
	Int16
	Byte
)

func (k DataKind) String() string {
	switch k {
	case Float32:
		return "float"
	case Int32:
		return "int"
	case Int16:
		return "short"
	case Byte:
		return "byte"
	default:
		return "double"
	}
}

// Variable is an N-dimensional array over named dimensions. Data is stored
// in row-major order with one axis per entry of Dims.
type Variable struct {
	Name  string
	Dims  []string
	Data  *sparse.DenseArray
	Attrs Attributes
	Kind  DataKind

	// unsqueezed holds the dimensions of the variable before any were
	// squeezed away, so that they can be restored in place. It is nil when
	// nothing has been squeezed.
	unsqueezed []string
}

// NewVariable creates a variable from row-major values.
func NewVariable(name string, dims []string, shape []int, values []float64, attrs Attributes) (*Variable, error) {
	if len(dims) != len(shape) {
		return nil, fmt.Errorf("oceanslice: variable %s has %d dimensions but shape %v", name, len(dims), shape)
	}
	data := sparse.ZerosDense(append([]int(nil), shape...)...)
	if len(data.Elements) != len(values) {
		return nil, fmt.Errorf("oceanslice: variable %s has shape %v but %d values", name, shape, len(values))
	}
	copy(data.Elements, values)
	if len(dims) == 0 {
		dims = nil
	}
	return &Variable{Name: name, Dims: dims, Data: data, Attrs: attrs}, nil
}

// Axis returns the position of dim in the variable's dimensions, or -1.
func (v *Variable) Axis(dim string) int {
	for i, d := range v.Dims {
		if d == dim {
			return i
		}
	}
	return -1
}

// Len returns the number of elements in the variable.
func (v *Variable) Len() int { return len(v.Data.Elements) }

// FillValue returns the variable's _FillValue (or missing_value) attribute.
func (v *Variable) FillValue() (float64, bool) {
	if f, ok := v.Attrs.Float("_FillValue"); ok {
		return f, true
	}
	return v.Attrs.Float("missing_value")
}

// Missing reports whether x is a gap in the variable: NaN or equal to the
// fill value.
func (v *Variable) Missing(x float64) bool {
	if math.IsNaN(x) {
		return true
	}
	if f, ok := v.FillValue(); ok {
		if v.Kind == Float32 {
			return float32(x) == float32(f)
		}
		return x == f
	}
	return false
}

// Valid returns the values of the variable that are not missing.
func (v *Variable) Valid() []float64 {
	o := make([]float64, 0, v.Len())
	for _, x := range v.Data.Elements {
		if !v.Missing(x) {
			o = append(o, x)
		}
	}
	return o
}

func (v *Variable) copyVar() *Variable {
	o := *v
	o.Dims = append([]string(nil), v.Dims...)
	o.Data = sparse.ZerosDense(append([]int(nil), v.Data.Shape...)...)
	copy(o.Data.Elements, v.Data.Elements)
	o.Attrs = v.Attrs.clone()
	o.unsqueezed = append([]string(nil), v.unsqueezed...)
	return &o
}

// gather returns a copy of v holding only the entries at positions idx
// along axis.
func (v *Variable) gather(axis int, idx []int) *Variable {
	shape := v.Data.Shape
	outer, inner := 1, 1
	for i := 0; i < axis; i++ {
		outer *= shape[i]
	}
	for i := axis + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	n := shape[axis]
	newShape := append([]int(nil), shape...)
	newShape[axis] = len(idx)

	o := *v
	o.Dims = append([]string(nil), v.Dims...)
	o.Attrs = v.Attrs.clone()
	o.unsqueezed = append([]string(nil), v.unsqueezed...)
	o.Data = sparse.ZerosDense(newShape...)
	for k := 0; k < outer; k++ {
		for j, ii := range idx {
			dst := (k*len(idx) + j) * inner
			src := (k*n + ii) * inner
			copy(o.Data.Elements[dst:dst+inner], v.Data.Elements[src:src+inner])
		}
	}
	return &o
}

// Scalar is a coordinate whose dimension has been squeezed away.
type Scalar struct {
	Name  string
	Value float64
	Attrs Attributes
	Kind  DataKind
}

// Dataset is the capability shared by every kind of dataset: access by
// named dimension, coordinate lookup and indexed gather.
type Dataset interface {
	// Dims returns the dimension names in order.
	Dims() []string

	// Len returns the length of dim.
	Len(dim string) (int, error)

	// Coordinate returns the coordinate of dim.
	Coordinate(dim string) (*Coordinate, error)

	// Variables returns the data variables in order.
	Variables() []*Variable

	// Variable returns the named data variable.
	Variable(name string) (*Variable, error)

	// Scalars returns the coordinates of squeezed dimensions.
	Scalars() []Scalar

	// Attributes returns the global attributes.
	Attributes() Attributes

	// Gather returns a new dataset holding the entries at positions idx
	// along dim.
	Gather(dim string, idx []int) (Dataset, error)

	// Squeeze returns a new dataset with the given length-1 dimensions
	// removed and their coordinates kept as scalars.
	Squeeze(dims ...string) (Dataset, error)

	// Empty reports whether any dimension has length zero.
	Empty() bool
}

// GriddedDataset is a collection of variables over named dimensions, each
// with a coordinate.
type GriddedDataset struct {
	dims    []string
	coords  map[string]*Coordinate
	vars    []*Variable
	scalars []Scalar
	attrs   Attributes

	// unsqueezed is the dimension order before any were squeezed away.
	unsqueezed []string
}

// NewGriddedDataset creates a dataset. The order of coords sets the order
// of the dimensions. Every dimension of every variable must have a
// coordinate of matching length.
func NewGriddedDataset(coords []*Coordinate, vars []*Variable, attrs Attributes) (*GriddedDataset, error) {
	d := &GriddedDataset{
		coords: make(map[string]*Coordinate, len(coords)),
		attrs:  attrs,
	}
	for _, c := range coords {
		if _, ok := d.coords[c.Name]; ok {
			return nil, fmt.Errorf("oceanslice: duplicate dimension %s", c.Name)
		}
		c.Index()
		d.dims = append(d.dims, c.Name)
		d.coords[c.Name] = c
	}
	names := make(map[string]bool)
	for _, v := range vars {
		if names[v.Name] {
			return nil, fmt.Errorf("oceanslice: duplicate variable %s", v.Name)
		}
		names[v.Name] = true
		if len(v.Dims) != len(v.Data.Shape) {
			return nil, fmt.Errorf("oceanslice: variable %s has %d dimensions but shape %v", v.Name, len(v.Dims), v.Data.Shape)
		}
		for i, dim := range v.Dims {
			c, ok := d.coords[dim]
			if !ok {
				return nil, fmt.Errorf("oceanslice: variable %s: %w: %s", v.Name, ErrDimensionNotFound, dim)
			}
			if len(c.Values) != v.Data.Shape[i] {
				return nil, fmt.Errorf("oceanslice: variable %s has length %d along %s but the coordinate has length %d",
					v.Name, v.Data.Shape[i], dim, len(c.Values))
			}
		}
	}
	d.vars = vars
	return d, nil
}

// WithScalars returns a copy of d with the given scalar coordinates added.
func (d *GriddedDataset) WithScalars(s ...Scalar) *GriddedDataset {
	o := d.shallow()
	o.scalars = append(o.scalars, s...)
	return o
}

func (d *GriddedDataset) shallow() *GriddedDataset {
	o := &GriddedDataset{
		dims:    append([]string(nil), d.dims...),
		coords:  make(map[string]*Coordinate, len(d.coords)),
		vars:    append([]*Variable(nil), d.vars...),
		scalars: append([]Scalar(nil), d.scalars...),
		attrs:   d.attrs.clone(),

		unsqueezed: append([]string(nil), d.unsqueezed...),
	}
	for k, c := range d.coords {
		o.coords[k] = c
	}
	return o
}

// Dims implements Dataset.
func (d *GriddedDataset) Dims() []string { return append([]string(nil), d.dims...) }

// Len implements Dataset.
func (d *GriddedDataset) Len(dim string) (int, error) {
	c, err := d.Coordinate(dim)
	if err != nil {
		return 0, err
	}
	return len(c.Values), nil
}

// Coordinate implements Dataset.
func (d *GriddedDataset) Coordinate(dim string) (*Coordinate, error) {
	c, ok := d.coords[dim]
	if !ok {
		return nil, fmt.Errorf("oceanslice: %w: %s", ErrDimensionNotFound, dim)
	}
	return c, nil
}

// Variables implements Dataset.
func (d *GriddedDataset) Variables() []*Variable { return append([]*Variable(nil), d.vars...) }

// Variable implements Dataset.
func (d *GriddedDataset) Variable(name string) (*Variable, error) {
	for _, v := range d.vars {
		if v.Name == name {
			return v, nil
		}
	}
	return nil, fmt.Errorf("oceanslice: no variable named %s", name)
}

// dimOrder returns the dimensions of d as they were before any were
// squeezed away, or nil if none were.
func (d *GriddedDataset) dimOrder() []string {
	return append([]string(nil), d.unsqueezed...)
}

// Scalars implements Dataset.
func (d *GriddedDataset) Scalars() []Scalar { return append([]Scalar(nil), d.scalars...) }

// Attributes implements Dataset.
func (d *GriddedDataset) Attributes() Attributes { return d.attrs.clone() }

// Empty implements Dataset.
func (d *GriddedDataset) Empty() bool {
	for _, c := range d.coords {
		if len(c.Values) == 0 {
			return true
		}
	}
	return false
}

// Gather implements Dataset.
func (d *GriddedDataset) Gather(dim string, idx []int) (Dataset, error) {
	return d.gather(dim, idx)
}

func (d *GriddedDataset) gather(dim string, idx []int) (*GriddedDataset, error) {
	c, err := d.Coordinate(dim)
	if err != nil {
		return nil, err
	}
	for _, i := range idx {
		if i < 0 || i >= len(c.Values) {
			return nil, fmt.Errorf("oceanslice: index %d out of bounds for dimension %s of length %d", i, dim, len(c.Values))
		}
	}
	o := d.shallow()
	o.coords[dim] = c.gather(idx)
	for i, v := range d.vars {
		if axis := v.Axis(dim); axis >= 0 {
			o.vars[i] = v.gather(axis, idx)
		} else {
			o.vars[i] = v.copyVar()
		}
	}
	return o, nil
}

// Squeeze implements Dataset.
func (d *GriddedDataset) Squeeze(dims ...string) (Dataset, error) {
	return d.squeeze(dims...)
}

func (d *GriddedDataset) squeeze(dims ...string) (*GriddedDataset, error) {
	o := d.shallow()
	for i, v := range o.vars {
		o.vars[i] = v.copyVar()
	}
	if o.unsqueezed == nil && len(dims) > 0 {
		o.unsqueezed = append([]string(nil), d.dims...)
	}
	for _, dim := range dims {
		c, err := o.Coordinate(dim)
		if err != nil {
			return nil, err
		}
		if len(c.Values) != 1 {
			return nil, fmt.Errorf("oceanslice: cannot squeeze dimension %s of length %d", dim, len(c.Values))
		}
		for _, v := range o.vars {
			axis := v.Axis(dim)
			if axis < 0 {
				continue
			}
			if v.unsqueezed == nil {
				v.unsqueezed = append([]string(nil), v.Dims...)
			}
			v.Dims = removeString(v.Dims, axis)
			data := sparse.ZerosDense(removeInt(v.Data.Shape, axis)...)
			copy(data.Elements, v.Data.Elements)
			v.Data = data
		}
		delete(o.coords, dim)
		for i, dd := range o.dims {
			if dd == dim {
				o.dims = append(o.dims[:i:i], o.dims[i+1:]...)
				break
			}
		}
		if !c.Synthetic {
			o.scalars = append(o.scalars, Scalar{Name: dim, Value: c.Values[0], Attrs: c.Attrs.clone(), Kind: c.Kind})
		}
	}
	return o, nil
}

// removeString returns s without element i, or nil if nothing is left.
func removeString(s []string, i int) []string {
	if len(s) <= 1 {
		return nil
	}
	return append(s[:i:i], s[i+1:]...)
}

// removeInt returns s without element i, or nil if nothing is left.
func removeInt(s []int, i int) []int {
	if len(s) <= 1 {
		return nil
	}
	return append(s[:i:i], s[i+1:]...)
}

// Only returns a dataset restricted to the named variables and the
// coordinates they use.
func (d *GriddedDataset) Only(names ...string) (*GriddedDataset, error) {
	used := make(map[string]bool)
	var vars []*Variable
	for _, n := range names {
		v, err := d.Variable(n)
		if err != nil {
			return nil, err
		}
		vars = append(vars, v.copyVar())
		for _, dim := range v.Dims {
			used[dim] = true
		}
	}
	var coords []*Coordinate
	for _, dim := range d.dims {
		if used[dim] {
			coords = append(coords, d.coords[dim])
		}
	}
	o, err := NewGriddedDataset(coords, vars, d.attrs.clone())
	if err != nil {
		return nil, err
	}
	o.scalars = append(o.scalars, d.scalars...)
	o.unsqueezed = append([]string(nil), d.unsqueezed...)
	return o, nil
}
