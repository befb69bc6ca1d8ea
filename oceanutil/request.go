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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/geom"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/oceanslice"
	"github.com/spatialmodel/oceanslice/figure"
	"github.com/spatialmodel/oceanslice/internal/hash"
	"github.com/spf13/cast"
)

// Request is a single subset or figure job, as given on the command line
// or as one entry of a batch plan.
type Request struct {
	// Kind is one of select, map, timeseries or profile.
	Kind string

	Input     string
	Variables []string

	// Exact, Nearest and Range map dimension names to query values.
	// Range values are "low/high". Tolerance bounds Nearest queries on
	// the same dimension.
	Exact, Nearest, Range, Tolerance map[string]string

	// Isel selects positions along dimensions before any value query.
	Isel map[string][]int

	Squeeze bool

	// Output is the file to write. If empty, a name is derived from the
	// request.
	Output string

	// Export, for profiles, writes the first profile to a NetCDF file.
	Export string

	// Locations, for figures, writes the points marked on the locator
	// inset to a shapefile.
	Locations string

	Title, Suptitle, XLabel, YLabel, ColorbarLabel string
	VMin, VMax                                     float64
	Colormap                                       string
	Extent                                         []float64
	Land                                           string
	Points                                         [][]float64
	Dates                                          []string
	DPI                                            int
}

// requestFromConfig builds a request of the given kind from the options
// in cfg.
func requestFromConfig(kind string, cfg *viper.Viper) (*Request, error) {
	r := &Request{
		Kind:          kind,
		Input:         os.ExpandEnv(cfg.GetString("input")),
		Variables:     cfg.GetStringSlice("var"),
		Squeeze:       cfg.GetBool("squeeze"),
		Output:        os.ExpandEnv(cfg.GetString("output")),
		Export:        os.ExpandEnv(cfg.GetString("export")),
		Locations:     os.ExpandEnv(cfg.GetString("locations")),
		Title:         cfg.GetString("title"),
		Suptitle:      strings.Replace(cfg.GetString("suptitle"), `\n`, "\n", -1),
		XLabel:        cfg.GetString("xlabel"),
		YLabel:        cfg.GetString("ylabel"),
		ColorbarLabel: cfg.GetString("cbarlabel"),
		VMin:          cfg.GetFloat64("vmin"),
		VMax:          cfg.GetFloat64("vmax"),
		Colormap:      cfg.GetString("cmap"),
		Land:          os.ExpandEnv(cfg.GetString("land")),
		Dates:         cfg.GetStringSlice("dates"),
		DPI:           cfg.GetInt("dpi"),
	}
	var err error
	for _, m := range []struct {
		name string
		dst  *map[string]string
	}{
		{"exact", &r.Exact},
		{"nearest", &r.Nearest},
		{"range", &r.Range},
		{"tolerance", &r.Tolerance},
	} {
		if *m.dst, err = getStringMapString(m.name, cfg); err != nil {
			return nil, err
		}
	}
	if r.Isel, err = getStringMapIntSlice("isel", cfg); err != nil {
		return nil, err
	}
	if r.Extent, err = toFloat64SliceE(cfg.Get("extent")); err != nil {
		return nil, fmt.Errorf("oceanslice: extent: %v", err)
	}
	if r.Points, err = toPointsE(cfg.Get("points")); err != nil {
		return nil, fmt.Errorf("oceanslice: points: %v", err)
	}
	return r, nil
}

// getStringMapString returns a map[string]string from a viper
// configuration, accounting for the fact that it might be a JSON object if
// it was set from a command line argument.
func getStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	switch i := cfg.Get(varName).(type) {
	case nil:
		return nil, nil
	case map[string]string:
		return i, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(i)
	case string:
		if strings.TrimSpace(i) == "" {
			return nil, nil
		}
		o := make(map[string]string)
		if err := json.NewDecoder(bytes.NewBufferString(i)).Decode(&o); err != nil {
			return nil, fmt.Errorf("oceanslice: %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("oceanslice: invalid type for %s: %#v", varName, i)
	}
}

// getStringMapIntSlice is like getStringMapString for maps of integer
// lists.
func getStringMapIntSlice(varName string, cfg *viper.Viper) (map[string][]int, error) {
	switch i := cfg.Get(varName).(type) {
	case nil:
		return nil, nil
	case map[string][]int:
		return i, nil
	case map[string]interface{}:
		o := make(map[string][]int, len(i))
		for k, v := range i {
			s, err := cast.ToIntSliceE(v)
			if err != nil {
				return nil, fmt.Errorf("oceanslice: %s.%s: %v", varName, k, err)
			}
			o[k] = s
		}
		return o, nil
	case string:
		if strings.TrimSpace(i) == "" {
			return nil, nil
		}
		o := make(map[string][]int)
		if err := json.Unmarshal([]byte(i), &o); err != nil {
			return nil, fmt.Errorf("oceanslice: %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("oceanslice: invalid type for %s: %#v", varName, i)
	}
}

// toFloat64SliceE converts a comma-separated string or a list into
// floats.
func toFloat64SliceE(v interface{}) ([]float64, error) {
	var parts []interface{}
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []float64:
		return t, nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, nil
		}
		for _, s := range strings.Split(t, ",") {
			parts = append(parts, strings.TrimSpace(s))
		}
	case []interface{}:
		parts = t
	default:
		return nil, fmt.Errorf("invalid list %#v", v)
	}
	o := make([]float64, len(parts))
	for i, p := range parts {
		f, err := cast.ToFloat64E(p)
		if err != nil {
			return nil, err
		}
		o[i] = f
	}
	return o, nil
}

// toPointsE converts a JSON list of [longitude, latitude] pairs, or the
// equivalent configuration file list, into points.
func toPointsE(v interface{}) ([][]float64, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case [][]float64:
		return t, nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, nil
		}
		var o [][]float64
		if err := json.Unmarshal([]byte(t), &o); err != nil {
			return nil, err
		}
		return o, nil
	case []interface{}:
		o := make([][]float64, len(t))
		for i, p := range t {
			var err error
			if o[i], err = toFloat64SliceE(p); err != nil {
				return nil, err
			}
		}
		return o, nil
	default:
		return nil, fmt.Errorf("invalid point list %#v", v)
	}
}

// selection returns the value queries of r.
func (r *Request) selection() (oceanslice.Selection, error) {
	sel := make(oceanslice.Selection)
	add := func(dim string, p oceanslice.Predicate) error {
		if _, ok := sel[dim]; ok {
			return fmt.Errorf("oceanslice: dimension %s has more than one query", dim)
		}
		sel[dim] = p
		return nil
	}
	for dim, s := range r.Exact {
		v, err := oceanslice.ParseValue(s)
		if err != nil {
			return nil, err
		}
		if err := add(dim, oceanslice.Exact(v)); err != nil {
			return nil, err
		}
	}
	for dim, s := range r.Nearest {
		v, err := oceanslice.ParseValue(s)
		if err != nil {
			return nil, err
		}
		p := oceanslice.Nearest(v)
		if ts, ok := r.Tolerance[dim]; ok {
			tol, err := oceanslice.ParseValue(ts)
			if err != nil {
				return nil, err
			}
			p = oceanslice.NearestWithin(v, tol)
		}
		if err := add(dim, p); err != nil {
			return nil, err
		}
	}
	for dim := range r.Tolerance {
		if _, ok := r.Nearest[dim]; !ok {
			return nil, fmt.Errorf("oceanslice: tolerance given for %s without a nearest query", dim)
		}
	}
	for dim, s := range r.Range {
		bounds := strings.Split(s, "/")
		if len(bounds) != 2 {
			return nil, fmt.Errorf("oceanslice: range for %s must be low/high, not %q", dim, s)
		}
		lo, err := oceanslice.ParseValue(strings.TrimSpace(bounds[0]))
		if err != nil {
			return nil, err
		}
		hi, err := oceanslice.ParseValue(strings.TrimSpace(bounds[1]))
		if err != nil {
			return nil, err
		}
		if err := add(dim, oceanslice.Between(lo, hi)); err != nil {
			return nil, err
		}
	}
	return sel, nil
}

// extent returns the requested map extent, if any.
func (r *Request) extent() (*figure.Extent, error) {
	switch len(r.Extent) {
	case 0:
		return nil, nil
	case 4:
		e := figure.Extent{r.Extent[0], r.Extent[1], r.Extent[2], r.Extent[3]}
		if !(e[0] < e[1] && e[2] < e[3]) {
			return nil, fmt.Errorf("oceanslice: invalid extent %v", r.Extent)
		}
		return &e, nil
	default:
		return nil, fmt.Errorf("oceanslice: extent needs 4 values (lon min, lon max, lat min, lat max), not %d", len(r.Extent))
	}
}

func (r *Request) points() ([]geom.Point, error) {
	o := make([]geom.Point, len(r.Points))
	for i, p := range r.Points {
		if len(p) != 2 {
			return nil, fmt.Errorf("oceanslice: point %v is not a longitude, latitude pair", p)
		}
		o[i] = geom.Point{X: p[0], Y: p[1]}
	}
	return o, nil
}

// output returns the path to write r to, deriving one from the contents of
// the request if none was given.
func (r *Request) output() string {
	if r.Output != "" {
		return r.Output
	}
	ext := ".png"
	if r.Kind == "select" {
		ext = ".nc"
	}
	base := strings.TrimSuffix(filepath.Base(r.Input), filepath.Ext(r.Input))
	return fmt.Sprintf("%s_%s_%s%s", base, r.Kind, hash.Key(*r), ext)
}
