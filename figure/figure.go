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
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/geom"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgeps"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"
)

// Figure is a composed figure ready to be drawn.
type Figure struct {
	Kind Kind

	width, height vg.Length
	dpi           int
	suptitle      string
	style         draw.TextStyle

	main, colorbar *plot.Plot

	inset     vg.Rectangle
	insetLand []geom.Polygonal
	points    []geom.Point
}

// Size returns the width and height of the figure.
func (f *Figure) Size() (width, height vg.Length) { return f.width, f.height }

// Inset returns the extent and position of the locator inset.
func (f *Figure) Inset() Inset {
	return Inset{Extent: LocatorExtent(), Rect: f.inset}
}

// Points returns the locations marked on the locator inset.
func (f *Figure) Points() []geom.Point {
	return append([]geom.Point(nil), f.points...)
}

// Draw draws the figure onto c, which should be the size of the figure.
func (f *Figure) Draw(c draw.Canvas) error {
	w, h := f.width, f.height
	region := func(left, bottom, right, top float64) draw.Canvas {
		return draw.Canvas{
			Canvas: c.Canvas,
			Rectangle: vg.Rectangle{
				Min: vg.Point{X: c.Min.X + w*vg.Length(left), Y: c.Min.Y + h*vg.Length(bottom)},
				Max: vg.Point{X: c.Min.X + w*vg.Length(right), Y: c.Min.Y + h*vg.Length(top)},
			},
		}
	}
	c.FillPolygon(color.White, []vg.Point{
		c.Min, {X: c.Max.X, Y: c.Min.Y}, c.Max, {X: c.Min.X, Y: c.Max.Y},
	})

	ts := f.style
	ts.XAlign = 0
	ts.YAlign = -1
	lineHeight := ts.Font.Extents().Height * 1.2
	y := c.Min.Y + h*0.97
	for _, line := range strings.Split(f.suptitle, "\n") {
		if line != "" {
			c.FillText(ts, vg.Point{X: c.Min.X + w*0.03, Y: y}, line)
		}
		y -= lineHeight
	}

	if f.colorbar != nil {
		f.main.Draw(region(0.02, 0.15, 0.98, 0.80))
		f.colorbar.Draw(region(0.2, 0.01, 0.8, 0.12))
	} else {
		f.main.Draw(region(0.02, 0.01, 0.98, 0.80))
	}

	inset := f.inset
	inset.Min.X += c.Min.X
	inset.Max.X += c.Min.X
	inset.Min.Y += c.Min.Y
	inset.Max.Y += c.Min.Y
	return drawInset(c, inset, f.insetLand, f.points)
}

// WriteTo writes the figure to w as a PNG image.
func (f *Figure) WriteTo(w io.Writer) (int64, error) {
	img := vgimg.NewWith(vgimg.UseWH(f.width, f.height), vgimg.UseDPI(f.dpi))
	if err := f.Draw(draw.New(img)); err != nil {
		return 0, err
	}
	return vgimg.PngCanvas{Canvas: img}.WriteTo(w)
}

// Save writes the figure to path in the format given by its extension:
// png, jpg, tif, svg, pdf or eps.
func (f *Figure) Save(path string) (err error) {
	var c vg.CanvasWriterTo
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff":
		img := vgimg.NewWith(vgimg.UseWH(f.width, f.height), vgimg.UseDPI(f.dpi))
		switch ext {
		case ".png":
			c = vgimg.PngCanvas{Canvas: img}
		case ".jpg", ".jpeg":
			c = vgimg.JpegCanvas{Canvas: img}
		default:
			c = vgimg.TiffCanvas{Canvas: img}
		}
	case ".svg":
		c = vgsvg.New(f.width, f.height)
	case ".pdf":
		c = vgpdf.New(f.width, f.height)
	case ".eps":
		c = vgeps.New(f.width, f.height)
	default:
		return fmt.Errorf("figure: unsupported image format %q", ext)
	}
	if err := f.Draw(draw.New(c)); err != nil {
		return fmt.Errorf("figure: drawing %s: %v", path, err)
	}

	w, err := os.Create(os.ExpandEnv(path))
	if err != nil {
		return fmt.Errorf("figure: %v", err)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("figure: %v", cerr)
		}
	}()
	if _, err = c.WriteTo(w); err != nil {
		return fmt.Errorf("figure: writing %s: %v", path, err)
	}
	return nil
}
