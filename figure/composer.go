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

// Package figure composes subsets of ocean datasets into labelled plots:
// maps, time series and vertical profiles, each with a locator inset
// showing where the data come from.
package figure

import (
	"fmt"
	"image/color"
	"io/ioutil"
	"math"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/oceanslice"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Kind is the kind of primary plot in a figure.
type Kind int

// Figure kinds.
const (
	Map Kind = iota
	TimeSeries
	Profile
)

func (k Kind) String() string {
	switch k {
	case Map:
		return "map"
	case TimeSeries:
		return "timeseries"
	case Profile:
		return "profile"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind returns the Kind named by s.
func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{Map, TimeSeries, Profile} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("figure: unknown figure kind %q", s)
}

// DefaultSize returns the default width and height of a figure of kind k.
func DefaultSize(k Kind) (width, height vg.Length) {
	switch k {
	case TimeSeries:
		return 12 * vg.Inch, 10 * vg.Inch
	case Profile:
		return 8 * vg.Inch, 12 * vg.Inch
	default:
		return 15 * vg.Inch, 8 * vg.Inch
	}
}

// Config holds rendering settings. It is owned by the caller and is not
// modified by the Composer.
type Config struct {
	// Width and Height override the default size for the figure kind
	// when both are non-zero.
	Width, Height vg.Length

	// DPI is the resolution of raster output. Zero means 96.
	DPI int

	// Font and FontSize set the text style. Empty means plot.DefaultFont
	// at 12 points.
	Font     string
	FontSize vg.Length

	// Land supplies land polygons for maps and the locator inset. If nil,
	// no land is drawn.
	Land LandProvider

	// Log receives diagnostic messages. If nil, nothing is logged.
	Log logrus.FieldLogger
}

// Series is one dataset plotted in a figure.
type Series struct {
	// Label identifies the series in the legend, for example the query
	// date of a profile.
	Label string

	Data oceanslice.Dataset

	// Variable is the variable to plot. It may be empty if Data holds a
	// single variable.
	Variable string
}

// Extent is a geographic extent: longitude min, longitude max, latitude
// min, latitude max.
type Extent [4]float64

// Bounds returns the extent as a bounding box.
func (e Extent) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: e[0], Y: e[2]},
		Max: geom.Point{X: e[1], Y: e[3]},
	}
}

// Contains reports whether p lies within the extent, edges included.
func (e Extent) Contains(p geom.Point) bool {
	return p.X >= e[0] && p.X <= e[1] && p.Y >= e[2] && p.Y <= e[3]
}

// PrimarySpec describes the main plot of a figure.
type PrimarySpec struct {
	Kind   Kind
	Series []Series

	Title, Suptitle string
	XLabel, YLabel  string

	// ColorbarLabel, VMin, VMax and Colormap apply to maps. If VMin is not
	// less than VMax, the range of the data is used.
	ColorbarLabel string
	VMin, VMax    float64
	Colormap      string

	// Extent, if set, fixes the area shown by a map.
	Extent *Extent
}

// LocatorSpec lists the points marked on the locator inset.
type LocatorSpec struct {
	Points []geom.Point
}

// Composer builds figures.
type Composer struct {
	cfg  Config
	log  logrus.FieldLogger
	font vg.Font
}

// NewComposer returns a composer that renders with cfg.
func NewComposer(cfg Config) (*Composer, error) {
	c := &Composer{cfg: cfg, log: cfg.Log}
	if c.log == nil {
		l := logrus.New()
		l.Out = ioutil.Discard
		c.log = l
	}
	name := cfg.Font
	if name == "" {
		name = plot.DefaultFont
	}
	size := cfg.FontSize
	if size == 0 {
		size = vg.Points(12)
	}
	var err error
	if c.font, err = vg.MakeFont(name, size); err != nil {
		return nil, fmt.Errorf("figure: loading font: %v", err)
	}
	if c.cfg.DPI == 0 {
		c.cfg.DPI = 96
	}
	return c, nil
}

func (cm *Composer) textStyle() draw.TextStyle {
	return draw.TextStyle{Color: color.Black, Font: cm.font}
}

func (cm *Composer) size(k Kind) (vg.Length, vg.Length) {
	if cm.cfg.Width > 0 && cm.cfg.Height > 0 {
		return cm.cfg.Width, cm.cfg.Height
	}
	return DefaultSize(k)
}

// Compose builds a figure from p with a locator inset marking the points
// in l. It fails with oceanslice.ErrEmptyPrimaryData if p holds no data.
// Neither p nor its datasets are modified.
func (cm *Composer) Compose(p PrimarySpec, l LocatorSpec) (*Figure, error) {
	if len(p.Series) == 0 {
		return nil, fmt.Errorf("figure: composing %v: %w: no series", p.Kind, oceanslice.ErrEmptyPrimaryData)
	}
	for i, s := range p.Series {
		if s.Data == nil || s.Data.Empty() {
			return nil, fmt.Errorf("figure: composing %v: %w: series %d (%s) is empty",
				p.Kind, oceanslice.ErrEmptyPrimaryData, i, s.Label)
		}
	}
	w, h := cm.size(p.Kind)
	f := &Figure{
		Kind:     p.Kind,
		width:    w,
		height:   h,
		dpi:      cm.cfg.DPI,
		suptitle: p.Suptitle,
		style:    cm.textStyle(),
		inset:    newInset(w, h),
	}
	var err error
	switch p.Kind {
	case Map:
		f.main, f.colorbar, err = cm.mapPlot(p)
	case TimeSeries:
		f.main, err = cm.timeSeriesPlot(p)
	case Profile:
		f.main, err = cm.profilePlot(p)
	default:
		err = fmt.Errorf("figure: unknown figure kind %v", p.Kind)
	}
	if err != nil {
		return nil, err
	}
	if err := cm.locate(f, l); err != nil {
		return nil, err
	}
	cm.log.WithFields(logrus.Fields{
		"kind":   p.Kind,
		"series": len(p.Series),
		"points": len(f.points),
	}).Info("figure composed")
	return f, nil
}

// locate fills in the locator inset of f. The inset's extent and position
// do not depend on l.
func (cm *Composer) locate(f *Figure, l LocatorSpec) error {
	for _, pt := range l.Points {
		if !LocatorExtent().Contains(pt) {
			cm.log.WithFields(logrus.Fields{
				"longitude": pt.X,
				"latitude":  pt.Y,
			}).Warn("figure: point outside the locator extent is not marked")
			continue
		}
		f.points = append(f.points, pt)
	}
	if cm.cfg.Land != nil {
		land, err := cm.cfg.Land.Land(LocatorExtent().Bounds())
		if err != nil {
			return fmt.Errorf("figure: getting land for locator: %v", err)
		}
		f.insetLand = land
	}
	return nil
}

func (cm *Composer) newPlot(p PrimarySpec) (*plot.Plot, error) {
	pl, err := plot.New()
	if err != nil {
		return nil, err
	}
	ts := cm.textStyle()
	pl.Title.Text = p.Title
	pl.Title.TextStyle = ts
	pl.X.Label.TextStyle = ts
	pl.X.Tick.Label = ts
	pl.Y.Label.TextStyle = ts
	pl.Y.Tick.Label = ts
	pl.X.Label.Text = p.XLabel
	pl.Y.Label.Text = p.YLabel
	pl.Legend.TextStyle = ts
	return pl, nil
}

// variableOf returns the variable of s to plot.
func variableOf(s Series) (*oceanslice.Variable, error) {
	if s.Variable != "" {
		return s.Data.Variable(s.Variable)
	}
	vars := s.Data.Variables()
	if len(vars) != 1 {
		return nil, fmt.Errorf("figure: series %s has %d variables; choose one", s.Label, len(vars))
	}
	return vars[0], nil
}

func (cm *Composer) mapPlot(p PrimarySpec) (*plot.Plot, *plot.Plot, error) {
	if len(p.Series) != 1 {
		return nil, nil, fmt.Errorf("figure: a map takes one series, not %d", len(p.Series))
	}
	s := p.Series[0]
	v, err := variableOf(s)
	if err != nil {
		return nil, nil, err
	}
	if len(v.Dims) != 2 {
		return nil, nil, fmt.Errorf("figure: map variable %s has dimensions %v; select a 2-D (latitude, longitude) slice", v.Name, v.Dims)
	}
	yDim, xDim := v.Dims[0], v.Dims[1]
	xAxis := 1
	if c, err := s.Data.Coordinate(v.Dims[0]); err == nil && oceanslice.AxisOf(c) == oceanslice.XAxis {
		yDim, xDim = v.Dims[1], v.Dims[0]
		xAxis = 0
	}
	xc, err := s.Data.Coordinate(xDim)
	if err != nil {
		return nil, nil, err
	}
	yc, err := s.Data.Coordinate(yDim)
	if err != nil {
		return nil, nil, err
	}
	valid := v.Valid()
	if len(valid) == 0 {
		return nil, nil, fmt.Errorf("figure: map of %s: %w: every value is missing", v.Name, oceanslice.ErrEmptyPrimaryData)
	}
	vmin, vmax := p.VMin, p.VMax
	if !(vmin < vmax) {
		vmin, vmax = floats.Min(valid), floats.Max(valid)
		if vmin == vmax {
			vmin, vmax = vmin-0.5, vmax+0.5
		}
	}
	cmap, err := Colormap(p.Colormap, vmin, vmax)
	if err != nil {
		return nil, nil, err
	}

	nx := len(xc.Values)
	ny := len(yc.Values)
	data := v.Data.Elements
	value := func(i, j int) float64 {
		if xAxis == 1 {
			return data[j*nx+i]
		}
		return data[i*ny+j]
	}

	pl, err := cm.newPlot(p)
	if err != nil {
		return nil, nil, err
	}
	grid := newGridLayer(xc.Values, yc.Values, value, v.Missing, cmap)
	pl.Add(grid)

	var extent *geom.Bounds
	if p.Extent != nil {
		extent = p.Extent.Bounds()
	} else {
		xmin, xmax, ymin, ymax := grid.DataRange()
		extent = &geom.Bounds{Min: geom.Point{X: xmin, Y: ymin}, Max: geom.Point{X: xmax, Y: ymax}}
	}
	if cm.cfg.Land != nil {
		land, err := cm.cfg.Land.Land(extent)
		if err != nil {
			return nil, nil, fmt.Errorf("figure: getting land for map: %v", err)
		}
		pl.Add(&landLayer{
			polygons: land,
			fill:     color.NRGBA{R: 0xd3, G: 0xd3, B: 0xd3, A: 0xff},
			edge:     draw.LineStyle{Color: color.Black, Width: vg.Points(0.5)},
		})
	}
	pl.Add(plotter.NewGrid())
	pl.X.Min, pl.X.Max = extent.Min.X, extent.Max.X
	pl.Y.Min, pl.Y.Max = extent.Min.Y, extent.Max.Y
	if pl.X.Label.Text == "" {
		pl.X.Label.Text = "Longitude"
	}
	if pl.Y.Label.Text == "" {
		pl.Y.Label.Text = "Latitude"
	}

	cb, err := cm.newPlot(PrimarySpec{XLabel: p.ColorbarLabel})
	if err != nil {
		return nil, nil, err
	}
	if cb.X.Label.Text == "" {
		cb.X.Label.Text = label(v)
	}
	cb.Add(&plotter.ColorBar{ColorMap: cmap})
	cb.HideY()
	return pl, cb, nil
}

// label returns the long name and units of v.
func label(v *oceanslice.Variable) string {
	name := v.Name
	if ln, ok := v.Attrs.Get("long_name").(string); ok && ln != "" {
		name = ln
	}
	if u, ok := v.Attrs.Get("units").(string); ok && u != "" {
		return fmt.Sprintf("%s (%s)", name, u)
	}
	return name
}

// line returns the points of a 1-D series, skipping gaps. If the
// coordinate is a time, x values are Unix seconds.
func line(s Series, dim string, valueOnX bool) (plotter.XYs, *oceanslice.Variable, bool, error) {
	v, err := variableOf(s)
	if err != nil {
		return nil, nil, false, err
	}
	if len(v.Dims) != 1 {
		return nil, nil, false, fmt.Errorf("figure: variable %s has dimensions %v; select a 1-D slice", v.Name, v.Dims)
	}
	if dim != "" && v.Dims[0] != dim {
		return nil, nil, false, fmt.Errorf("figure: variable %s varies along %s, not %s", v.Name, v.Dims[0], dim)
	}
	c, err := s.Data.Coordinate(v.Dims[0])
	if err != nil {
		return nil, nil, false, err
	}
	ta, isTime := c.TimeAxis()
	var xys plotter.XYs
	for i, y := range v.Data.Elements {
		if v.Missing(y) || math.IsNaN(c.Values[i]) {
			continue
		}
		x := c.Values[i]
		if isTime {
			x = float64(ta.Time(x).UnixNano()) / 1e9
		}
		if valueOnX {
			x, y = y, x
		}
		xys = append(xys, struct{ X, Y float64 }{X: x, Y: y})
	}
	if len(xys) == 0 {
		return nil, nil, false, fmt.Errorf("figure: series %s: %w: every value of %s is missing",
			s.Label, oceanslice.ErrEmptyPrimaryData, v.Name)
	}
	return xys, v, isTime, nil
}

func (cm *Composer) timeSeriesPlot(p PrimarySpec) (*plot.Plot, error) {
	pl, err := cm.newPlot(p)
	if err != nil {
		return nil, err
	}
	pl.Add(plotter.NewGrid())
	var anyTime bool
	for i, s := range p.Series {
		dim, err := oceanslice.DimOfAxis(s.Data, oceanslice.TAxis)
		if err != nil {
			dim = ""
		}
		xys, v, isTime, err := line(s, dim, false)
		if err != nil {
			return nil, err
		}
		anyTime = anyTime || isTime
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		l.Color = plotutil.Color(i)
		l.Width = vg.Points(1.5)
		pl.Add(l)
		if s.Label != "" {
			pl.Legend.Add(s.Label, l)
		}
		if pl.Y.Label.Text == "" {
			pl.Y.Label.Text = label(v)
		}
	}
	if anyTime {
		pl.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
		if pl.X.Label.Text == "" {
			pl.X.Label.Text = "Time"
		}
	}
	return pl, nil
}

func (cm *Composer) profilePlot(p PrimarySpec) (*plot.Plot, error) {
	pl, err := cm.newPlot(p)
	if err != nil {
		return nil, err
	}
	pl.Add(plotter.NewGrid())
	pl.Legend.Top = true
	pl.Legend.Left = true
	for i, s := range p.Series {
		dim, err := oceanslice.DimOfAxis(s.Data, oceanslice.ZAxis)
		if err != nil {
			dim = ""
		}
		xys, v, _, err := line(s, dim, true)
		if err != nil {
			return nil, err
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		l.Color = plotutil.Color(i)
		l.Width = vg.Points(1.5)
		pl.Add(l)
		if s.Label != "" {
			pl.Legend.Add(s.Label, l)
		}
		if pl.X.Label.Text == "" {
			pl.X.Label.Text = label(v)
		}
	}
	pl.Y.Scale = invertedScale{}
	if pl.Y.Label.Text == "" {
		pl.Y.Label.Text = "Depth (m)"
	}
	return pl, nil
}
