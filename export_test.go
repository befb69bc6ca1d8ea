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
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kr/pretty"
)

func TestExportRoundTrip(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()

	ds := modelGrid(t)
	profile, err := Select(ds, Selection{
		"longitude": Nearest(Float(5)),
		"latitude":  Nearest(Float(42)),
		"time":      Nearest(date("2022-01-01")),
	}, Squeeze())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "profile.nc")
	if err := Export(profile, path); err != nil {
		t.Fatal(err)
	}
	back, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(back.Dims(), profile.Dims()) {
		t.Errorf("dims: have %v, want %v", back.Dims(), profile.Dims())
	}
	for _, dim := range profile.Dims() {
		want, _ := profile.Coordinate(dim)
		have, err := back.Coordinate(dim)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(have.Values, want.Values) {
			t.Errorf("coordinate %s: have %v, want %v", dim, have.Values, want.Values)
		}
		if have.Attrs.Get("units") != want.Attrs.Get("units") {
			t.Errorf("coordinate %s units: have %v, want %v", dim, have.Attrs.Get("units"), want.Attrs.Get("units"))
		}
	}
	for _, want := range profile.Variables() {
		have, err := back.Variable(want.Name)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(have.Data.Elements, want.Data.Elements) {
			t.Errorf("variable %s: %v", want.Name, pretty.Diff(have.Data.Elements, want.Data.Elements))
		}
		if !reflect.DeepEqual(have.Data.Shape, want.Data.Shape) {
			t.Errorf("variable %s shape: have %v, want %v", want.Name, have.Data.Shape, want.Data.Shape)
		}
		if have.Kind != want.Kind {
			t.Errorf("variable %s kind: have %v, want %v", want.Name, have.Kind, want.Kind)
		}
	}
	haveScalars := make(map[string]float64)
	for _, s := range back.Scalars() {
		haveScalars[s.Name] = s.Value
	}
	wantScalars := map[string]float64{"time": 61, "latitude": 41.9, "longitude": 5.1}
	if !reflect.DeepEqual(haveScalars, wantScalars) {
		t.Errorf("scalars: %v", pretty.Diff(haveScalars, wantScalars))
	}
	th, _ := back.Variable("thetao")
	if f, ok := th.FillValue(); !ok || f != 1e20 {
		t.Errorf("fill value: have %g, %v", f, ok)
	}
	if h, ok := back.Attributes().Get("history").(string); !ok || !strings.Contains(h, "oceanslice") {
		t.Errorf("history: have %v", back.Attributes().Get("history"))
	}
	if back.Attributes().Get("title") != "test model grid" {
		t.Errorf("title: have %v", back.Attributes().Get("title"))
	}
}

func TestExportFullGrid(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()

	ds := modelGrid(t)
	path := filepath.Join(dir, "grid.nc")
	if err := (&Exporter{}).Export(ds, path); err != nil {
		t.Fatal(err)
	}
	back, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"thetao", "deptho"} {
		want, _ := ds.Variable(name)
		have, err := back.Variable(name)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(have.Dims, want.Dims) {
			t.Errorf("%s dims: have %v, want %v", name, have.Dims, want.Dims)
		}
		if !reflect.DeepEqual(have.Data.Elements, want.Data.Elements) {
			t.Errorf("%s values differ", name)
		}
	}
	d, _ := back.Variable("deptho")
	if d.Kind != Float32 {
		t.Errorf("deptho kind: have %v, want float", d.Kind)
	}
	// The reopened file selects the same way as the original.
	a, err := Select(ds, Selection{"latitude": Nearest(Float(43.7)), "longitude": Between(Float(13.2), Float(16.5))})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Select(back, Selection{"latitude": Nearest(Float(43.7)), "longitude": Between(Float(13.2), Float(16.5))})
	if err != nil {
		t.Fatal(err)
	}
	av, _ := a.Variable("thetao")
	bv, _ := b.Variable("thetao")
	if !reflect.DeepEqual(av.Data.Elements, bv.Data.Elements) {
		t.Error("selection from the reopened file differs")
	}
}

func TestExportSyntheticDimension(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()

	station := NewCoordinate("station", []float64{0, 1, 2}, nil)
	station.Kind = Int32
	station.Synthetic = true
	v, err := NewVariable("count", []string{"station"}, []int{3}, []float64{4, 5, 6}, nil)
	if err != nil {
		t.Fatal(err)
	}
	v.Kind = Int16
	ds, err := NewGriddedDataset([]*Coordinate{station}, []*Variable{v}, nil)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "stations.nc")
	if err := Export(ds, path); err != nil {
		t.Fatal(err)
	}
	back, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	c, err := back.Coordinate("station")
	if err != nil {
		t.Fatal(err)
	}
	if !c.Synthetic {
		t.Error("station coordinate should still be synthetic")
	}
	bv, err := back.Variable("count")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(bv.Data.Elements, []float64{4, 5, 6}) || bv.Kind != Int16 {
		t.Errorf("count: have %v (%v)", bv.Data.Elements, bv.Kind)
	}
}

func TestExportErrors(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()

	ds := modelGrid(t)
	empty, err := Select(ds, Selection{"longitude": Between(Float(100), Float(120))}, AllowEmpty())
	if err != nil {
		t.Fatal(err)
	}
	if err := Export(empty, filepath.Join(dir, "empty.nc")); !errors.Is(err, ErrEmptyResult) {
		t.Errorf("empty subset: have %v, want ErrEmptyResult", err)
	}
	if err := Export(ds, filepath.Join(dir, "missing", "dir", "x.nc")); !errors.Is(err, ErrWriteFailure) {
		t.Errorf("unwritable path: have %v, want ErrWriteFailure", err)
	}
}

func TestMergeCoordinates(t *testing.T) {
	have := mergeCoordinates("lat lon", []string{"lon", "time"})
	if have != "lat lon time" {
		t.Errorf("have %q", have)
	}
	if have := mergeCoordinates(nil, []string{"time"}); have != "time" {
		t.Errorf("have %q", have)
	}
}

func TestExportScalarKind(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()

	ds := modelGrid(t)
	tc, _ := ds.Coordinate("time")
	tc.Kind = Int32
	yc, _ := ds.Coordinate("latitude")
	yc.Kind = Float32
	sub, err := Select(ds, Selection{
		"time":     Exact(Float(61)),
		"latitude": Exact(Float(42.8)),
	}, Squeeze())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "slice.nc")
	if err := Export(sub, path); err != nil {
		t.Fatal(err)
	}
	back, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	kinds := make(map[string]DataKind)
	for _, s := range back.Scalars() {
		kinds[s.Name] = s.Kind
	}
	want := map[string]DataKind{"time": Int32, "latitude": Float32}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("scalar kinds: %v", pretty.Diff(kinds, want))
	}
}

// failingDataset fails every coordinate lookup after the first n.
type failingDataset struct {
	*GriddedDataset
	n int
}

func (d *failingDataset) Coordinate(dim string) (*Coordinate, error) {
	if d.n == 0 {
		return nil, errors.New("coordinate unavailable")
	}
	d.n--
	return d.GriddedDataset.Coordinate(dim)
}

func TestExportRemovesPartialFile(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()

	ds := modelGrid(t)
	// The header takes one lookup per dimension, so the data writing fails.
	failing := &failingDataset{GriddedDataset: ds, n: len(ds.Dims())}
	path := filepath.Join(dir, "partial.nc")
	if err := Export(failing, path); !errors.Is(err, ErrWriteFailure) {
		t.Fatalf("have %v, want ErrWriteFailure", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("partial file left behind: %v", err)
	}
}
