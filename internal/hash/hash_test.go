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

package hash

import (
	"math"
	"testing"
)

type request struct {
	Path  string
	Dims  map[string]float64
	Names []string
}

func TestKey(t *testing.T) {
	a := request{Path: "med.nc", Dims: map[string]float64{"time": 61, "depth": math.NaN(), "latitude": 41.9}}
	b := request{Path: "med.nc", Dims: map[string]float64{"latitude": 41.9, "depth": math.NaN(), "time": 61}}
	if Key(a) != Key(b) {
		t.Errorf("map order changed the key: %s != %s", Key(a), Key(b))
	}
	if Key(a) != Key(a) {
		t.Error("key is not stable")
	}
	c := a
	c.Path = "black_sea.nc"
	if Key(a) == Key(c) {
		t.Error("different requests have the same key")
	}
	if Key(a, "map") == Key(a, "profile") {
		t.Error("extra objects are ignored")
	}
	if n := len(Key(a)); n != 16 {
		t.Errorf("key length %d, want 16", n)
	}
}
