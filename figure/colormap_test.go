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
	"reflect"
	"testing"
)

func TestColormap(t *testing.T) {
	for _, name := range []string{"", "viridis", "blackbody", "bluered", "kindlmann", "Viridis_r"} {
		cm, err := Colormap(name, 10, 20)
		if err != nil {
			t.Errorf("%q: %v", name, err)
			continue
		}
		if cm.Min() != 10 || cm.Max() != 20 {
			t.Errorf("%q: range [%g, %g]", name, cm.Min(), cm.Max())
		}
	}
	if _, err := Colormap("jet", 0, 1); err == nil {
		t.Error("jet should be unknown")
	}
	if _, err := Colormap("viridis", 1, 1); err == nil {
		t.Error("an empty range should fail")
	}
}

func TestColormapReversed(t *testing.T) {
	fwd, err := Colormap("bluered", 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	rev, err := Colormap("bluered_r", 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []float64{0, 2.5, 10} {
		want, err := fwd.At(10 - v)
		if err != nil {
			t.Fatal(err)
		}
		have, err := rev.At(v)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(have, want) {
			t.Errorf("At(%g): have %v, want %v", v, have, want)
		}
	}
	if n := len(rev.Palette(5).Colors()); n != 5 {
		t.Errorf("palette has %d colors, want 5", n)
	}
}

func TestColorOfClamps(t *testing.T) {
	cm, err := Colormap("viridis", 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	low, _ := cm.At(0)
	high, _ := cm.At(1)
	if have, err := colorOf(cm, -5); err != nil || !reflect.DeepEqual(have, low) {
		t.Errorf("below range: have %v, %v; want %v", have, err, low)
	}
	if have, err := colorOf(cm, 5); err != nil || !reflect.DeepEqual(have, high) {
		t.Errorf("above range: have %v, %v; want %v", have, err, high)
	}
}
