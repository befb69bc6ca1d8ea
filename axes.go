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
	"strings"
)

// Axis is the physical role of a coordinate.
type Axis int

// Coordinate roles.
const (
	OtherAxis Axis = iota
	XAxis          // longitude
	YAxis          // latitude
	ZAxis          // depth
	TAxis          // time
)

func (a Axis) String() string {
	switch a {
	case XAxis:
		return "X"
	case YAxis:
		return "Y"
	case ZAxis:
		return "Z"
	case TAxis:
		return "T"
	}
	return "other"
}

var axisNames = map[string]Axis{
	"lon": XAxis, "longitude": XAxis, "nav_lon": XAxis, "x": XAxis,
	"lat": YAxis, "latitude": YAxis, "nav_lat": YAxis, "y": YAxis,
	"depth": ZAxis, "deph": ZAxis, "lev": ZAxis, "z": ZAxis, "pres": ZAxis,
	"time": TAxis, "t": TAxis, "time_counter": TAxis,
}

// AxisOf classifies a coordinate by its CF attributes, falling back to
// its name.
func AxisOf(c *Coordinate) Axis {
	return axisOf(c.Name, c.Attrs)
}

func axisOf(name string, attrs Attributes) Axis {
	if a, ok := attrs.Get("axis").(string); ok {
		switch strings.ToUpper(strings.TrimSpace(a)) {
		case "X":
			return XAxis
		case "Y":
			return YAxis
		case "Z":
			return ZAxis
		case "T":
			return TAxis
		}
	}
	if sn, ok := attrs.Get("standard_name").(string); ok {
		switch sn {
		case "longitude":
			return XAxis
		case "latitude":
			return YAxis
		case "depth":
			return ZAxis
		case "time":
			return TAxis
		}
	}
	if _, ok := attrs.Get("positive").(string); ok {
		return ZAxis
	}
	if u, ok := attrs.Get("units").(string); ok {
		switch strings.ToLower(u) {
		case "degrees_east", "degree_east", "degrees_e":
			return XAxis
		case "degrees_north", "degree_north", "degrees_n":
			return YAxis
		}
		if _, err := ParseTimeAxis(u); err == nil {
			return TAxis
		}
	}
	if a, ok := axisNames[strings.ToLower(name)]; ok {
		return a
	}
	return OtherAxis
}

// DimOfAxis returns the first dimension of ds with the given role.
func DimOfAxis(ds Dataset, a Axis) (string, error) {
	for _, dim := range ds.Dims() {
		c, err := ds.Coordinate(dim)
		if err != nil {
			return "", err
		}
		if AxisOf(c) == a {
			return dim, nil
		}
	}
	return "", fmt.Errorf("oceanslice: %w: no %v axis", ErrDimensionNotFound, a)
}

// ScalarOfAxis returns the first squeezed coordinate of ds with the given
// role.
func ScalarOfAxis(ds Dataset, a Axis) (Scalar, bool) {
	for _, s := range ds.Scalars() {
		if axisOf(s.Name, s.Attrs) == a {
			return s, true
		}
	}
	return Scalar{}, false
}
