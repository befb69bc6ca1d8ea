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

package oceanslice

import (
	"fmt"
	"os"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
)

// Location is a named point, such as a station or the center of a
// selected region.
type Location struct {
	geom.Point
	Name string
}

// WriteLocations writes locs to a point shapefile at path, which should
// end in ".shp".
func WriteLocations(path string, locs []Location) error {
	path = os.ExpandEnv(path)
	if !strings.HasSuffix(path, ".shp") {
		return fmt.Errorf("oceanslice: writing locations: %w: path %s must end in .shp", ErrWriteFailure, path)
	}
	e, err := shp.NewEncoder(path, Location{})
	if err != nil {
		return fmt.Errorf("oceanslice: writing locations: %w: %v", ErrWriteFailure, err)
	}
	defer e.Close()
	for _, l := range locs {
		if err := e.Encode(l); err != nil {
			return fmt.Errorf("oceanslice: writing location %s: %w: %v", l.Name, ErrWriteFailure, err)
		}
	}
	return nil
}

// ReadLocations reads the points of the shapefile at path.
func ReadLocations(path string) ([]Location, error) {
	d, err := shp.NewDecoder(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("oceanslice: reading locations: %w", err)
	}
	defer d.Close()
	var locs []Location
	for {
		var rec struct {
			geom.Geom
			Name string
		}
		if more := d.DecodeRow(&rec); !more {
			break
		}
		p, ok := rec.Geom.(geom.Point)
		if !ok {
			return nil, fmt.Errorf("oceanslice: reading locations: %s holds %T, not points", path, rec.Geom)
		}
		// DBF text fields are padded to a fixed width.
		name := strings.TrimRight(rec.Name, "\x00 ")
		locs = append(locs, Location{Point: p, Name: name})
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("oceanslice: reading locations: %w", err)
	}
	return locs, nil
}
