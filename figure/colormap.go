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
	"strings"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// viridis anchors, sampled at equal steps.
var viridis = []color.Color{
	color.NRGBA{R: 0x44, G: 0x01, B: 0x54, A: 0xff},
	color.NRGBA{R: 0x3b, G: 0x52, B: 0x8b, A: 0xff},
	color.NRGBA{R: 0x21, G: 0x91, B: 0x8c, A: 0xff},
	color.NRGBA{R: 0x5e, G: 0xc9, B: 0x62, A: 0xff},
	color.NRGBA{R: 0xfd, G: 0xe7, B: 0x25, A: 0xff},
}

// Colormap returns the named colormap scaled to [min, max]. Known names
// are viridis, blackbody, bluered and kindlmann; a "_r" suffix reverses
// the map. An empty name means viridis.
func Colormap(name string, min, max float64) (palette.ColorMap, error) {
	base := strings.TrimSuffix(strings.ToLower(name), "_r")
	var cm palette.ColorMap
	switch base {
	case "", "viridis":
		var err error
		if cm, err = moreland.NewLuminance(viridis); err != nil {
			return nil, fmt.Errorf("figure: building colormap %s: %v", name, err)
		}
	case "blackbody":
		cm = moreland.ExtendedBlackBody()
	case "bluered":
		cm = moreland.SmoothBlueRed()
	case "kindlmann":
		cm = moreland.ExtendedKindlmann()
	default:
		return nil, fmt.Errorf("figure: unknown colormap %q", name)
	}
	if !(min < max) {
		return nil, fmt.Errorf("figure: invalid color range [%g, %g]", min, max)
	}
	cm.SetMax(max)
	cm.SetMin(min)
	if strings.HasSuffix(strings.ToLower(name), "_r") {
		cm = reversed{cm}
	}
	return cm, nil
}

// reversed runs a colormap from max to min.
type reversed struct {
	palette.ColorMap
}

func (r reversed) At(v float64) (color.Color, error) {
	return r.ColorMap.At(r.Max() - (v - r.Min()))
}

func (r reversed) Palette(n int) palette.Palette {
	if n < 2 {
		n = 2
	}
	c := make(colorList, n)
	delta := (r.Max() - r.Min()) / float64(n-1)
	for i := range c {
		v := r.Min() + float64(i)*delta
		if i == n-1 {
			v = r.Max()
		}
		c[i], _ = r.At(v)
	}
	return c
}

type colorList []color.Color

func (c colorList) Colors() []color.Color { return c }

// colorOf returns the color of v, clamped to the range of cm.
func colorOf(cm palette.ColorMap, v float64) (color.Color, error) {
	if v < cm.Min() {
		v = cm.Min()
	}
	if v > cm.Max() {
		v = cm.Max()
	}
	return cm.At(v)
}
