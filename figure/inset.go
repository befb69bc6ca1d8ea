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

package figure

import (
	"image/color"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/carto"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// LocatorExtent returns the area shown by every locator inset: the
// Mediterranean and Black Sea.
func LocatorExtent() Extent { return Extent{-2, 35, 30, 46} }

// insetFraction is the position of the locator inset as fractions of the
// figure width and height: left, bottom, width, height.
var insetFraction = [4]float64{0.73, 0.82, 0.2, 0.15}

// Inset describes where a locator inset is drawn.
type Inset struct {
	Extent Extent
	Rect   vg.Rectangle
}

// newInset returns the inset rectangle for a figure of the given size.
func newInset(w, h vg.Length) vg.Rectangle {
	min := vg.Point{
		X: w * vg.Length(insetFraction[0]),
		Y: h * vg.Length(insetFraction[1]),
	}
	return vg.Rectangle{
		Min: min,
		Max: vg.Point{
			X: min.X + w*vg.Length(insetFraction[2]),
			Y: min.Y + h*vg.Length(insetFraction[3]),
		},
	}
}

// drawInset draws the locator map into rect of c: land, a 10° graticule,
// a frame and a red marker for each point.
func drawInset(c draw.Canvas, rect vg.Rectangle, land []geom.Polygonal, points []geom.Point) error {
	ic := draw.Canvas{Canvas: c.Canvas, Rectangle: rect}
	e := LocatorExtent()
	m := carto.NewCanvas(e[3], e[2], e[1], e[0], ic)

	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	frame := draw.LineStyle{Color: color.Black, Width: vg.Points(0.75)}
	none := draw.LineStyle{Color: color.Transparent}
	if err := m.DrawVector(m.Polygon, white, none, draw.GlyphStyle{}); err != nil {
		return err
	}

	landFill := color.NRGBA{R: 0xd3, G: 0xd3, B: 0xd3, A: 0xff}
	coast := draw.LineStyle{Color: color.Black, Width: vg.Points(0.25)}
	for _, l := range land {
		clipped := l.Intersection(m.Polygon)
		if len(clipped) == 0 {
			continue
		}
		if err := m.DrawVector(clipped, landFill, coast, draw.GlyphStyle{}); err != nil {
			return err
		}
	}

	grid := draw.LineStyle{
		Color:  color.Gray{Y: 0x80},
		Width:  vg.Points(0.25),
		Dashes: []vg.Length{vg.Points(1), vg.Points(1)},
	}
	for _, g := range graticule(e, 10) {
		if err := m.DrawVector(g, color.NRGBA{}, grid, draw.GlyphStyle{}); err != nil {
			return err
		}
	}

	marker := draw.GlyphStyle{
		Color:  color.NRGBA{R: 0xff, A: 0xff},
		Radius: vg.Points(2.5),
		Shape:  draw.CircleGlyph{},
	}
	for _, p := range points {
		if err := m.DrawVector(p, color.NRGBA{}, none, marker); err != nil {
			return err
		}
	}
	return m.DrawVector(m.Polygon, color.NRGBA{}, frame, draw.GlyphStyle{})
}

// graticule returns the meridians and parallels at multiples of step
// degrees that cross e.
func graticule(e Extent, step float64) []geom.LineString {
	var lines []geom.LineString
	for x := step * ceilDiv(e[0], step); x <= e[1]; x += step {
		lines = append(lines, geom.LineString{{X: x, Y: e[2]}, {X: x, Y: e[3]}})
	}
	for y := step * ceilDiv(e[2], step); y <= e[3]; y += step {
		lines = append(lines, geom.LineString{{X: e[0], Y: y}, {X: e[1], Y: y}})
	}
	return lines
}

func ceilDiv(v, step float64) float64 {
	q := float64(int(v / step))
	if q*step < v {
		q++
	}
	return q
}
