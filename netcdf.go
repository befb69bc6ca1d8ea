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
	"io"
	"os"
	"strings"

	"github.com/ctessum/cdf"
)

// Open reads the NetCDF (classic or 64-bit offset) file at path into
// memory.
func Open(path string) (*GriddedDataset, error) {
	f, err := os.Open(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("oceanslice: opening dataset: %w", err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("oceanslice: opening dataset: %w", err)
	}
	d, err := ReadNetCDF(f, fi.Size())
	if err != nil {
		return nil, fmt.Errorf("oceanslice: reading %s: %w", path, err)
	}
	return d, nil
}

// ReadNetCDF reads a NetCDF file of the given size from rw.
func ReadNetCDF(rw cdf.ReaderWriterAt, size int64) (*GriddedDataset, error) {
	ff, err := cdf.Open(rw)
	if err != nil {
		return nil, err
	}
	h := ff.Header
	nrec := int(h.NumRecs(size))

	dimNames := h.Dimensions("")
	dimLens := h.Lengths("")
	for i, n := range dimLens {
		if n == 0 {
			dimLens[i] = nrec
		}
	}

	// Scalars are 0-d variables listed as auxiliary coordinates.
	auxiliary := make(map[string]bool)
	for _, v := range h.Variables() {
		if c, ok := h.GetAttribute(v, "coordinates").(string); ok {
			for _, name := range strings.Fields(c) {
				auxiliary[name] = true
			}
		}
	}

	coords := make(map[string]*Coordinate)
	var vars []*Variable
	var scalars []Scalar
	for _, name := range h.Variables() {
		if _, isChar := h.ZeroValue(name, 0).(string); isChar {
			continue
		}
		v, err := readVariable(ff, name, nrec)
		if err != nil {
			return nil, err
		}
		switch {
		case len(v.Dims) == 1 && v.Dims[0] == name:
			c := NewCoordinate(name, v.Data.Elements, v.Attrs)
			c.Kind = v.Kind
			coords[name] = c
		case len(v.Dims) == 0 && auxiliary[name]:
			scalars = append(scalars, Scalar{Name: name, Value: v.Data.Elements[0], Attrs: v.Attrs, Kind: v.Kind})
		default:
			vars = append(vars, v)
		}
	}

	var coordList []*Coordinate
	for i, dim := range dimNames {
		c, ok := coords[dim]
		if !ok {
			idx := make([]float64, dimLens[i])
			for j := range idx {
				idx[j] = float64(j)
			}
			c = NewCoordinate(dim, idx, nil)
			c.Kind = Int32
			c.Synthetic = true
		}
		coordList = append(coordList, c)
	}

	var global Attributes
	for _, a := range h.Attributes("") {
		global = append(global, Attribute{Name: a, Value: h.GetAttribute("", a)})
	}
	d, err := NewGriddedDataset(coordList, vars, global)
	if err != nil {
		return nil, err
	}
	d.scalars = scalars
	return d, nil
}

// readVariable reads all of variable name from ff.
func readVariable(ff *cdf.File, name string, nrec int) (*Variable, error) {
	h := ff.Header
	lengths := append([]int(nil), h.Lengths(name)...)
	if h.IsRecordVariable(name) {
		lengths[0] = nrec
	}
	n := 1
	for _, l := range lengths {
		n *= l
	}
	var attrs Attributes
	for _, a := range h.Attributes(name) {
		attrs = append(attrs, Attribute{Name: a, Value: h.GetAttribute(name, a)})
	}
	values := make([]float64, n)
	if n > 0 {
		r := ff.Reader(name, make([]int, len(lengths)), lengths)
		buf := r.Zero(n)
		if _, err := r.Read(buf); err != nil && err != io.EOF {
			return nil, fmt.Errorf("reading variable %s: %w", name, err)
		}
		switch b := buf.(type) {
		case []float64:
			copy(values, b)
		case []float32:
			for i, x := range b {
				values[i] = float64(x)
			}
		case []int32:
			for i, x := range b {
				values[i] = float64(x)
			}
		case []int16:
			for i, x := range b {
				values[i] = float64(x)
			}
		case []uint8:
			for i, x := range b {
				values[i] = float64(x)
			}
		default:
			return nil, fmt.Errorf("reading variable %s: unsupported type %T", name, buf)
		}
	}
	v, err := NewVariable(name, h.Dimensions(name), lengths, values, attrs)
	if err != nil {
		return nil, err
	}
	v.Kind = kindOfZero(h.ZeroValue(name, 0))
	return v, nil
}

func kindOfZero(z interface{}) DataKind {
	switch z.(type) {
	case []float32:
		return Float32
	case []int32:
		return Int32
	case []int16:
		return Int16
	case []uint8:
		return Byte
	default:
		return Float64
	}
}
