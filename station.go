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
)

// StationSeries is the record of a single fixed point (a mooring or buoy)
// over time: one free time dimension and a scalar location.
type StationSeries struct {
	data    *GriddedDataset
	timeDim string

	Longitude, Latitude, Depth float64
}

// StationOptions names the parts of an in-situ dataset that make up a
// StationSeries. Empty fields are found by axis.
type StationOptions struct {
	TimeDim string

	// Longitude, Latitude and Depth name the coordinates or variables
	// holding the station location. The first element of each is used.
	Longitude, Latitude, Depth string
}

// NewStationSeries reduces every dimension of ds other than time to its
// first position and returns the remaining time series. Variables that do
// not vary over time only are dropped.
func NewStationSeries(ds Dataset, opts StationOptions) (*StationSeries, error) {
	timeDim := opts.TimeDim
	if timeDim == "" {
		var err error
		if timeDim, err = DimOfAxis(ds, TAxis); err != nil {
			return nil, fmt.Errorf("oceanslice: creating station series: %w", err)
		}
	}
	if _, err := ds.Coordinate(timeDim); err != nil {
		return nil, fmt.Errorf("oceanslice: creating station series: %w", err)
	}
	s := &StationSeries{timeDim: timeDim}
	var err error
	if s.Longitude, err = locate(ds, opts.Longitude, XAxis); err != nil {
		return nil, err
	}
	if s.Latitude, err = locate(ds, opts.Latitude, YAxis); err != nil {
		return nil, err
	}
	if s.Depth, err = locate(ds, opts.Depth, ZAxis); err != nil {
		s.Depth = math.NaN()
	}

	reduced := ds
	var others []string
	for _, dim := range ds.Dims() {
		if dim == timeDim {
			continue
		}
		if reduced, err = reduced.Gather(dim, []int{0}); err != nil {
			return nil, fmt.Errorf("oceanslice: creating station series: %w", err)
		}
		others = append(others, dim)
	}
	if len(others) > 0 {
		if reduced, err = reduced.Squeeze(others...); err != nil {
			return nil, fmt.Errorf("oceanslice: creating station series: %w", err)
		}
	}
	tc, err := reduced.Coordinate(timeDim)
	if err != nil {
		return nil, err
	}
	var vars []*Variable
	for _, v := range reduced.Variables() {
		if len(v.Dims) == 1 && v.Dims[0] == timeDim {
			vars = append(vars, v)
		}
	}
	d, err := NewGriddedDataset([]*Coordinate{tc}, vars, reduced.Attributes())
	if err != nil {
		return nil, err
	}
	d.scalars = reduced.Scalars()
	if o, ok := reduced.(interface{ dimOrder() []string }); ok && len(others) > 0 {
		d.unsqueezed = o.dimOrder()
	}
	s.data = d
	return s, nil
}

// locate finds the first value of the named coordinate or variable, or of
// the first one with the given axis.
func locate(ds Dataset, name string, a Axis) (float64, error) {
	if name != "" {
		if c, err := ds.Coordinate(name); err == nil && len(c.Values) > 0 && !c.Synthetic {
			return c.Values[0], nil
		}
		if v, err := ds.Variable(name); err == nil && v.Len() > 0 {
			return v.Data.Elements[0], nil
		}
		for _, sc := range ds.Scalars() {
			if sc.Name == name {
				return sc.Value, nil
			}
		}
		return math.NaN(), fmt.Errorf("oceanslice: no station location named %s", name)
	}
	for _, dim := range ds.Dims() {
		c, err := ds.Coordinate(dim)
		if err != nil {
			return math.NaN(), err
		}
		if !c.Synthetic && len(c.Values) > 0 && AxisOf(c) == a {
			return c.Values[0], nil
		}
	}
	for _, v := range ds.Variables() {
		if v.Len() > 0 && axisOf(v.Name, v.Attrs) == a {
			return v.Data.Elements[0], nil
		}
	}
	if sc, ok := ScalarOfAxis(ds, a); ok {
		return sc.Value, nil
	}
	return math.NaN(), fmt.Errorf("oceanslice: no %v location for station", a)
}

// TimeDim returns the name of the time dimension.
func (s *StationSeries) TimeDim() string { return s.timeDim }

// Dims implements Dataset.
func (s *StationSeries) Dims() []string { return s.data.Dims() }

// Len implements Dataset.
func (s *StationSeries) Len(dim string) (int, error) { return s.data.Len(dim) }

// Coordinate implements Dataset.
func (s *StationSeries) Coordinate(dim string) (*Coordinate, error) { return s.data.Coordinate(dim) }

// Variables implements Dataset.
func (s *StationSeries) Variables() []*Variable { return s.data.Variables() }

// Variable implements Dataset.
func (s *StationSeries) Variable(name string) (*Variable, error) { return s.data.Variable(name) }

func (s *StationSeries) dimOrder() []string { return s.data.dimOrder() }

// Scalars implements Dataset.
func (s *StationSeries) Scalars() []Scalar { return s.data.Scalars() }

// Attributes implements Dataset.
func (s *StationSeries) Attributes() Attributes { return s.data.Attributes() }

// Empty implements Dataset.
func (s *StationSeries) Empty() bool { return s.data.Empty() }

// Gather implements Dataset. The result is still a station series.
func (s *StationSeries) Gather(dim string, idx []int) (Dataset, error) {
	d, err := s.data.gather(dim, idx)
	if err != nil {
		return nil, err
	}
	o := *s
	o.data = d
	return &o, nil
}

// Squeeze implements Dataset. Squeezing the time dimension leaves a
// single observation, which is returned as a GriddedDataset.
func (s *StationSeries) Squeeze(dims ...string) (Dataset, error) {
	if len(dims) == 0 {
		o := *s
		return &o, nil
	}
	return s.data.Squeeze(dims...)
}
