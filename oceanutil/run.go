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
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/oceanslice"
	"github.com/spatialmodel/oceanslice/figure"
)

// Info writes a description of the dataset at path to w.
func Info(w io.Writer, path string) error {
	ds, err := oceanslice.Open(path)
	if err != nil {
		return err
	}
	return oceanslice.Describe(w, ds)
}

// Run carries out r and returns the path of the file it wrote.
func Run(r *Request, log logrus.FieldLogger) (string, error) {
	if r.Input == "" {
		return "", fmt.Errorf("oceanslice: no input file for %s job", r.Kind)
	}
	g, err := oceanslice.Open(r.Input)
	if err != nil {
		return "", err
	}
	var ds oceanslice.Dataset = g
	if r.Kind == "select" && len(r.Variables) > 0 {
		if ds, err = g.Only(r.Variables...); err != nil {
			return "", err
		}
	}
	if len(r.Isel) > 0 {
		if ds, err = oceanslice.Isel(ds, r.Isel); err != nil {
			return "", err
		}
	}
	sel, err := r.selection()
	if err != nil {
		return "", err
	}
	out := r.output()
	log = log.WithFields(logrus.Fields{"job": r.Kind, "input": r.Input, "output": out})

	switch r.Kind {
	case "select":
		var opts []oceanslice.SelectOption
		if r.Squeeze {
			opts = append(opts, oceanslice.Squeeze())
		}
		sub, err := oceanslice.Select(ds, sel, opts...)
		if err != nil {
			return "", err
		}
		if err := (&oceanslice.Exporter{Log: log}).Export(sub, out); err != nil {
			return "", err
		}
		return out, nil
	case "map", "timeseries", "profile":
		return out, plot(r, ds, sel, out, log)
	default:
		return "", fmt.Errorf("oceanslice: unknown job kind %q", r.Kind)
	}
}

func plot(r *Request, ds oceanslice.Dataset, sel oceanslice.Selection, out string, log logrus.FieldLogger) error {
	kind, err := figure.ParseKind(r.Kind)
	if err != nil {
		return err
	}
	variable, err := r.variable()
	if err != nil {
		return err
	}
	land, err := loadLand(r.Land)
	if err != nil {
		return err
	}
	p := figure.PrimarySpec{
		Kind:          kind,
		Title:         r.Title,
		Suptitle:      r.Suptitle,
		XLabel:        r.XLabel,
		YLabel:        r.YLabel,
		ColorbarLabel: r.ColorbarLabel,
		VMin:          r.VMin,
		VMax:          r.VMax,
		Colormap:      r.Colormap,
	}
	if p.Extent, err = r.extent(); err != nil {
		return err
	}
	points, err := r.points()
	if err != nil {
		return err
	}

	var first oceanslice.Dataset
	switch kind {
	case figure.Map:
		sub, err := oceanslice.Select(ds, sel, oceanslice.Squeeze(), oceanslice.AllowEmpty())
		if err != nil {
			return err
		}
		p.Series = []figure.Series{{Data: sub, Variable: variable}}
	case figure.TimeSeries:
		station, err := oceanslice.NewStationSeries(ds, oceanslice.StationOptions{})
		if err != nil {
			return err
		}
		sub, err := oceanslice.Select(station, sel, oceanslice.AllowEmpty())
		if err != nil {
			return err
		}
		p.Series = []figure.Series{{Label: filepath.Base(r.Input), Data: sub, Variable: variable}}
		if len(points) == 0 {
			points = []geom.Point{{X: station.Longitude, Y: station.Latitude}}
		}
		if p.Suptitle == "" {
			p.Suptitle = locationTitle(station.Longitude, station.Latitude, station.Depth)
		}
	case figure.Profile:
		dates := r.Dates
		if len(dates) == 0 {
			dates = []string{""}
		}
		timeDim, _ := oceanslice.DimOfAxis(ds, oceanslice.TAxis)
		for _, date := range dates {
			s := make(oceanslice.Selection, len(sel)+1)
			for k, v := range sel {
				s[k] = v
			}
			if date != "" {
				if timeDim == "" {
					return fmt.Errorf("oceanslice: profile dates given but %s has no time dimension", r.Input)
				}
				v, err := oceanslice.ParseValue(date)
				if err != nil {
					return err
				}
				s[timeDim] = oceanslice.Nearest(v)
			}
			sub, err := oceanslice.Select(ds, s, oceanslice.Squeeze(), oceanslice.AllowEmpty())
			if err != nil {
				return err
			}
			p.Series = append(p.Series, figure.Series{Label: date, Data: sub, Variable: variable})
		}
		first = p.Series[0].Data
		lon, lok := oceanslice.ScalarOfAxis(first, oceanslice.XAxis)
		lat, aok := oceanslice.ScalarOfAxis(first, oceanslice.YAxis)
		if lok && aok {
			if len(points) == 0 {
				points = []geom.Point{{X: lon.Value, Y: lat.Value}}
			}
			if p.Suptitle == "" {
				p.Suptitle = locationTitle(lon.Value, lat.Value, math.NaN())
			}
		}
	}

	c, err := figure.NewComposer(figure.Config{DPI: r.DPI, Land: land, Log: log})
	if err != nil {
		return err
	}
	f, err := c.Compose(p, figure.LocatorSpec{Points: points})
	if err != nil {
		return err
	}
	if err := f.Save(out); err != nil {
		return err
	}
	log.Info("oceanslice: figure written")

	if r.Locations != "" {
		var locs []oceanslice.Location
		for i, pt := range f.Points() {
			locs = append(locs, oceanslice.Location{Point: pt, Name: fmt.Sprintf("%s %d", r.Kind, i+1)})
		}
		if err := oceanslice.WriteLocations(r.Locations, locs); err != nil {
			return err
		}
	}

	if r.Export != "" && first != nil {
		if err := (&oceanslice.Exporter{Log: log}).Export(first, r.Export); err != nil {
			return err
		}
	}
	return nil
}

// variable returns the single variable a figure plots.
func (r *Request) variable() (string, error) {
	switch len(r.Variables) {
	case 0:
		return "", nil
	case 1:
		return r.Variables[0], nil
	default:
		return "", fmt.Errorf("oceanslice: a %s plots one variable, not %s", r.Kind, strings.Join(r.Variables, ", "))
	}
}

// locationTitle formats a station location for a figure header.
func locationTitle(lon, lat, depth float64) string {
	s := fmt.Sprintf("Longitude : %g°E\nLatitude : %g°N", lon, lat)
	if !math.IsNaN(depth) {
		s += fmt.Sprintf("\nDepth : %g m", depth)
	}
	return s
}

// loadLand opens the land polygons at path, choosing the reader by file
// extension.
func loadLand(path string) (figure.LandProvider, error) {
	if path == "" {
		return nil, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return figure.NewShapefileLand(path)
	case ".json", ".geojson":
		return figure.NewGeoJSONLand(path)
	default:
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("oceanslice: land file: %v", err)
		}
		return nil, fmt.Errorf("oceanslice: land file %s is not a shapefile or GeoJSON", path)
	}
}
