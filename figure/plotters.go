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
	"math"

	"github.com/ctessum/geom"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// gridLayer draws a 2-D field as filled cells. Cell edges lie halfway
// between neighboring coordinates. Missing values are left unfilled.
type gridLayer struct {
	x, y    []float64 // cell centers
	xe, ye  []float64 // cell edges
	value   func(i, j int) float64
	missing func(float64) bool
	cmap    palette.ColorMap
}

func newGridLayer(x, y []float64, value func(i, j int) float64, missing func(float64) bool, cm palette.ColorMap) *gridLayer {
	return &gridLayer{
		x: x, y: y,
		xe: cellEdges(x), ye: cellEdges(y),
		value: value, missing: missing, cmap: cm,
	}
}

// cellEdges returns the len(c)+1 boundaries of cells centered on c.
func cellEdges(c []float64) []float64 {
	e := make([]float64, len(c)+1)
	switch len(c) {
	case 0:
		return e[:0]
	case 1:
		e[0], e[1] = c[0]-0.5, c[0]+0.5
		return e
	}
	for i := 1; i < len(c); i++ {
		e[i] = (c[i-1] + c[i]) / 2
	}
	e[0] = c[0] - (e[1] - c[0])
	e[len(c)] = c[len(c)-1] + (c[len(c)-1] - e[len(c)-1])
	return e
}

// Plot implements plot.Plotter.
func (g *gridLayer) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	for j := range g.y {
		for i := range g.x {
			v := g.value(i, j)
			if g.missing(v) {
				continue
			}
			clr, err := colorOf(g.cmap, v)
			if err != nil {
				continue
			}
			pts := []vg.Point{
				{X: trX(g.xe[i]), Y: trY(g.ye[j])},
				{X: trX(g.xe[i+1]), Y: trY(g.ye[j])},
				{X: trX(g.xe[i+1]), Y: trY(g.ye[j+1])},
				{X: trX(g.xe[i]), Y: trY(g.ye[j+1])},
			}
			c.FillPolygon(clr, c.ClipPolygonXY(pts))
		}
	}
}

// DataRange implements plot.DataRanger.
func (g *gridLayer) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax = span(g.xe)
	ymin, ymax = span(g.ye)
	return
}

func span(v []float64) (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, x := range v {
		min = math.Min(min, x)
		max = math.Max(max, x)
	}
	return
}

// landLayer draws land polygons with a fill and an edge.
type landLayer struct {
	polygons []geom.Polygonal
	fill     color.Color
	edge     draw.LineStyle
}

// Plot implements plot.Plotter.
func (l *landLayer) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	for _, pg := range l.polygons {
		for _, poly := range pg.Polygons() {
			for _, ring := range poly {
				pts := make([]vg.Point, len(ring))
				for i, pt := range ring {
					pts[i] = vg.Point{X: trX(pt.X), Y: trY(pt.Y)}
				}
				c.FillPolygon(l.fill, c.ClipPolygonXY(pts))
				c.StrokeLines(l.edge, c.ClipLinesXY(pts)...)
			}
		}
	}
}

// invertedScale normalizes an axis so that values increase downwards,
// as depth does.
type invertedScale struct{}

func (invertedScale) Normalize(min, max, x float64) float64 {
	return (max - x) / (max - min)
}
