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

package oceanutil

import (
	"bytes"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spatialmodel/oceanslice"
)

func tempDir(t *testing.T) (string, func()) {
	t.Helper()
	dir, err := ioutil.TempDir("", "oceanutil")
	if err != nil {
		t.Fatal(err)
	}
	return dir, func() { os.RemoveAll(dir) }
}

// writeGrid writes a small model grid to dir and returns its path.
func writeGrid(t *testing.T, dir string) string {
	t.Helper()
	tc := oceanslice.NewCoordinate("time", []float64{0, 7}, oceanslice.Attributes{
		{Name: "standard_name", Value: "time"},
		{Name: "units", Value: "days since 2021-11-01 00:00:00"},
	})
	zc := oceanslice.NewCoordinate("depth", []float64{0.5, 10}, oceanslice.Attributes{
		{Name: "units", Value: "m"},
		{Name: "positive", Value: "down"},
	})
	yc := oceanslice.NewCoordinate("latitude", []float64{41, 42, 43}, oceanslice.Attributes{
		{Name: "units", Value: "degrees_north"},
	})
	xc := oceanslice.NewCoordinate("longitude", []float64{10, 11, 12, 13}, oceanslice.Attributes{
		{Name: "units", Value: "degrees_east"},
	})
	vals := make([]float64, 2*2*3*4)
	for i := range vals {
		vals[i] = 13 + float64(i)/10
	}
	thetao, err := oceanslice.NewVariable("thetao", []string{"time", "depth", "latitude", "longitude"},
		[]int{2, 2, 3, 4}, vals, oceanslice.Attributes{
			{Name: "long_name", Value: "Sea temperature"},
			{Name: "units", Value: "degrees_C"},
		})
	if err != nil {
		t.Fatal(err)
	}
	ds, err := oceanslice.NewGriddedDataset([]*oceanslice.Coordinate{tc, zc, yc, xc},
		[]*oceanslice.Variable{thetao}, oceanslice.Attributes{{Name: "title", Value: "test grid"}})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "grid.nc")
	if err := oceanslice.Export(ds, path); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeStation writes a small mooring record to dir and returns its path.
func writeStation(t *testing.T, dir string) string {
	t.Helper()
	tc := oceanslice.NewCoordinate("TIME", []float64{0, 1, 2}, oceanslice.Attributes{
		{Name: "axis", Value: "T"},
		{Name: "units", Value: "days since 2021-11-01T00:00:00Z"},
	})
	zc := oceanslice.NewCoordinate("DEPTH", []float64{2}, oceanslice.Attributes{
		{Name: "positive", Value: "down"},
	})
	yc := oceanslice.NewCoordinate("LATITUDE", []float64{40.3}, oceanslice.Attributes{
		{Name: "standard_name", Value: "latitude"},
	})
	xc := oceanslice.NewCoordinate("LONGITUDE", []float64{23.9}, oceanslice.Attributes{
		{Name: "standard_name", Value: "longitude"},
	})
	temp, err := oceanslice.NewVariable("TEMP", []string{"TIME", "DEPTH"}, []int{3, 1},
		[]float64{15.1, 15.3, 15.2}, nil)
	if err != nil {
		t.Fatal(err)
	}
	ds, err := oceanslice.NewGriddedDataset([]*oceanslice.Coordinate{tc, zc, yc, xc},
		[]*oceanslice.Variable{temp}, nil)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "mooring.nc")
	if err := oceanslice.Export(ds, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg := InitializeConfig()
	var buf bytes.Buffer
	cfg.Root.SetOutput(&buf)
	cfg.Root.SetArgs(args)
	err := cfg.Root.Execute()
	return buf.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if want := "oceanslice v" + oceanslice.Version; !strings.Contains(out, want) {
		t.Errorf("have %q, want %q", out, want)
	}
}

func TestInfo(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	path := writeGrid(t, dir)
	out, err := execute(t, "info", path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"thetao", "longitude", "latitude"} {
		if !strings.Contains(out, want) {
			t.Errorf("info output does not mention %s:\n%s", want, out)
		}
	}
	if _, err := execute(t, "info"); err == nil {
		t.Error("info without a file should fail")
	}
}

func TestSelectCommand(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	path := writeGrid(t, dir)
	out := filepath.Join(dir, "subset.nc")
	if _, err := execute(t, "select", "--input", path,
		"--nearest", `{"time": "2021-11-08"}`,
		"--range", `{"longitude": "11/12"}`,
		"--squeeze", "--output", out); err != nil {
		t.Fatal(err)
	}
	sub, err := oceanslice.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	if have, want := sub.Dims(), []string{"depth", "latitude", "longitude"}; !reflect.DeepEqual(have, want) {
		t.Errorf("dims: have %v, want %v", have, want)
	}
	lon, err := sub.Coordinate("longitude")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(lon.Values, []float64{11, 12}) {
		t.Errorf("longitude: have %v", lon.Values)
	}
	time, ok := oceanslice.ScalarOfAxis(sub, oceanslice.TAxis)
	if !ok || time.Value != 7 {
		t.Errorf("time scalar: have %+v, %v", time, ok)
	}
}

func TestSelectCommandErrors(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	path := writeGrid(t, dir)
	out := filepath.Join(dir, "subset.nc")
	_, err := execute(t, "select", "--input", path, "--exact", `{"salinity": "1"}`, "--output", out)
	if !errors.Is(err, oceanslice.ErrDimensionNotFound) {
		t.Errorf("unknown dimension: have %v", err)
	}
	_, err = execute(t, "select", "--input", path, "--range", `{"longitude": "30/31"}`, "--output", out)
	if !errors.Is(err, oceanslice.ErrEmptyResult) {
		t.Errorf("empty range: have %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("no file should be written: %v", err)
	}
}

func TestFigureCommands(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	grid := writeGrid(t, dir)
	station := writeStation(t, dir)
	land := filepath.Join(dir, "land.geojson")
	if err := ioutil.WriteFile(land, []byte(`{"type": "Polygon", "coordinates": [[[9, 40], [10.5, 40], [10.5, 44], [9, 44], [9, 40]]]}`), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
	}{
		{
			name: "map",
			args: []string{"map", "--input", grid, "--var", "thetao", "--land", land,
				"--exact", `{"depth": "0.5"}`, "--nearest", `{"time": "2021-11-01"}`,
				"--cmap", "bluered_r", "--extent", "9,14,40,44", "--points", "[[11, 42]]",
				"--output", filepath.Join(dir, "map.png")},
		},
		{
			name: "timeseries",
			args: []string{"timeseries", "--input", station, "--var", "TEMP",
				"--range", `{"TIME": "2021-11-01/2021-11-02T12"}`,
				"--output", filepath.Join(dir, "timeseries.svg")},
		},
		{
			name: "profile",
			args: []string{"profile", "--input", grid, "--var", "thetao",
				"--nearest", `{"latitude": "42", "longitude": "11"}`,
				"--dates", "2021-11-01,2021-11-08",
				"--locations", filepath.Join(dir, "profile_points.shp"),
				"--export", filepath.Join(dir, "profile.nc"),
				"--output", filepath.Join(dir, "profile.png")},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out, err := execute(t, append(test.args, "--dpi", "30")...)
			if err != nil {
				t.Fatal(err)
			}
			written := strings.TrimSpace(out)
			fi, err := os.Stat(written)
			if err != nil {
				t.Fatal(err)
			}
			if fi.Size() == 0 {
				t.Errorf("%s is empty", written)
			}
		})
	}

	p, err := oceanslice.Open(filepath.Join(dir, "profile.nc"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(p.Dims(), []string{"depth"}) {
		t.Errorf("exported profile dims: %v", p.Dims())
	}
	locs, err := oceanslice.ReadLocations(filepath.Join(dir, "profile_points.shp"))
	if err != nil {
		t.Fatal(err)
	}
	if len(locs) != 1 || locs[0].X != 11 || locs[0].Y != 42 || locs[0].Name != "profile 1" {
		t.Errorf("profile locations: %+v", locs)
	}
}

func TestFigureEmpty(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	grid := writeGrid(t, dir)
	_, err := execute(t, "map", "--input", grid, "--var", "thetao",
		"--exact", `{"depth": "0.5"}`, "--nearest", `{"time": "2021-11-01"}`,
		"--range", `{"longitude": "30/31"}`,
		"--output", filepath.Join(dir, "map.png"))
	if !errors.Is(err, oceanslice.ErrEmptyPrimaryData) {
		t.Errorf("have %v, want ErrEmptyPrimaryData", err)
	}
}

func TestConfigFile(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	grid := writeGrid(t, dir)
	out := filepath.Join(dir, "from_config.nc")
	cfgPath := filepath.Join(dir, "oceanslice.toml")
	conf := `input = "` + grid + `"
output = "` + out + `"
var = ["thetao"]

[nearest]
time = "2021-11-01"
depth = "3"
`
	if err := ioutil.WriteFile(cfgPath, []byte(conf), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "select", "--config", cfgPath); err != nil {
		t.Fatal(err)
	}
	sub, err := oceanslice.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	if n, err := sub.Len("depth"); err != nil || n != 1 {
		t.Errorf("depth length: have %d, %v", n, err)
	}
}
