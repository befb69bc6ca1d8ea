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
	"io/ioutil"
	"os"
	"testing"
)

// modelGrid returns a small 4-D model grid. Element values encode their
// position: 1000*time + 100*depth + 10*latitude + longitude indices.
func modelGrid(t *testing.T) *GriddedDataset {
	t.Helper()
	tc := NewCoordinate("time", []float64{0, 7, 61}, Attributes{
		{Name: "standard_name", Value: "time"},
		{Name: "units", Value: "days since 2021-11-01 00:00:00"},
	})
	zc := NewCoordinate("depth", []float64{0.5, 10, 50}, Attributes{
		{Name: "units", Value: "m"},
		{Name: "positive", Value: "down"},
	})
	yc := NewCoordinate("latitude", []float64{41.9, 42.8, 43.7, 44.6}, Attributes{
		{Name: "units", Value: "degrees_north"},
	})
	xc := NewCoordinate("longitude", []float64{5.1, 10, 13, 13.5, 15, 16.5, 17}, Attributes{
		{Name: "units", Value: "degrees_east"},
	})
	shape := []int{3, 3, 4, 7}
	vals := make([]float64, 3*3*4*7)
	i := 0
	for it := 0; it < 3; it++ {
		for iz := 0; iz < 3; iz++ {
			for iy := 0; iy < 4; iy++ {
				for ix := 0; ix < 7; ix++ {
					vals[i] = float64(1000*it + 100*iz + 10*iy + ix)
					i++
				}
			}
		}
	}
	vals[len(vals)-1] = 1e20
	thetao, err := NewVariable("thetao", []string{"time", "depth", "latitude", "longitude"}, shape, vals, Attributes{
		{Name: "units", Value: "degrees_C"},
		{Name: "_FillValue", Value: []float64{1e20}},
	})
	if err != nil {
		t.Fatal(err)
	}
	bathy, err := NewVariable("deptho", []string{"latitude", "longitude"}, []int{4, 7}, make([]float64, 28), nil)
	if err != nil {
		t.Fatal(err)
	}
	bathy.Kind = Float32
	ds, err := NewGriddedDataset([]*Coordinate{tc, zc, yc, xc}, []*Variable{thetao, bathy}, Attributes{
		{Name: "title", Value: "test model grid"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func tempDir(t *testing.T) (string, func()) {
	t.Helper()
	dir, err := ioutil.TempDir("", "oceanslice")
	if err != nil {
		t.Fatal(err)
	}
	return dir, func() { os.RemoveAll(dir) }
}
