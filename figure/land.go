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
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/index/rtree"
	"github.com/ctessum/geom/proj"
)

// LandProvider supplies the land polygons drawn on maps and locator
// insets, in longitude/latitude degrees.
type LandProvider interface {
	// Land returns the polygons that overlap extent.
	Land(extent *geom.Bounds) ([]geom.Polygonal, error)
}

// lonLat is the geographic reference system that land polygons are
// returned in.
const lonLat = "+proj=longlat +datum=WGS84 +no_defs"

// ShapefileLand is a LandProvider backed by an ESRI shapefile of land
// polygons, such as the Natural Earth land layer.
type ShapefileLand struct {
	index *rtree.Rtree
	n     int
}

// NewShapefileLand reads the polygons in the shapefile at path. If a .prj
// file accompanies the shapefile the polygons are reprojected to
// longitude/latitude; otherwise they are assumed to already be.
func NewShapefileLand(path string) (*ShapefileLand, error) {
	d, err := shp.NewDecoder(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("figure: opening land shapefile: %v", err)
	}
	defer d.Close()

	var ct proj.Transformer
	if src, err := d.SR(); err == nil {
		dst, err := proj.Parse(lonLat)
		if err != nil {
			return nil, fmt.Errorf("figure: land shapefile projection: %v", err)
		}
		if ct, err = src.NewTransform(dst); err != nil {
			return nil, fmt.Errorf("figure: land shapefile projection: %v", err)
		}
	}

	l := &ShapefileLand{index: rtree.NewTree(25, 50)}
	for {
		var rec struct{ geom.Geom }
		if more := d.DecodeRow(&rec); !more {
			break
		}
		g := rec.Geom
		if ct != nil {
			if g, err = g.Transform(ct); err != nil {
				return nil, fmt.Errorf("figure: reprojecting land polygon: %v", err)
			}
		}
		p, ok := g.(geom.Polygonal)
		if !ok {
			return nil, fmt.Errorf("figure: land shapefile %s holds %T, not polygons", path, g)
		}
		l.index.Insert(p)
		l.n++
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("figure: reading land shapefile: %v", err)
	}
	return l, nil
}

// Len returns the number of land polygons.
func (l *ShapefileLand) Len() int { return l.n }

// Land implements LandProvider.
func (l *ShapefileLand) Land(extent *geom.Bounds) ([]geom.Polygonal, error) {
	var o []geom.Polygonal
	for _, s := range l.index.SearchIntersect(extent) {
		o = append(o, s.(geom.Polygonal))
	}
	return o, nil
}

// GeoJSONLand is a LandProvider backed by the Polygon and MultiPolygon
// geometries of a GeoJSON document.
type GeoJSONLand struct {
	polygons []geom.Polygonal
}

type geoJSONObject struct {
	Type     string            `json:"type"`
	Geometry *geojson.Geometry `json:"geometry"`
	Features []struct {
		Geometry *geojson.Geometry `json:"geometry"`
	} `json:"features"`
	Coordinates interface{} `json:"coordinates"`
}

// NewGeoJSONLand reads a GeoJSON Geometry, Feature or FeatureCollection
// from path. Coordinates must be longitude/latitude.
func NewGeoJSONLand(path string) (*GeoJSONLand, error) {
	b, err := ioutil.ReadFile(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("figure: reading land GeoJSON: %v", err)
	}
	return DecodeGeoJSONLand(b)
}

// DecodeGeoJSONLand decodes land polygons from a GeoJSON document.
func DecodeGeoJSONLand(b []byte) (*GeoJSONLand, error) {
	var obj geoJSONObject
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, fmt.Errorf("figure: decoding land GeoJSON: %v", err)
	}
	var geoms []*geojson.Geometry
	switch obj.Type {
	case "FeatureCollection":
		for _, f := range obj.Features {
			geoms = append(geoms, f.Geometry)
		}
	case "Feature":
		geoms = append(geoms, obj.Geometry)
	default:
		geoms = append(geoms, &geojson.Geometry{Type: obj.Type, Coordinates: obj.Coordinates})
	}
	l := new(GeoJSONLand)
	for _, g := range geoms {
		if g == nil {
			continue
		}
		switch g.Type {
		case "Polygon":
			p, err := polygonFromGeoJSON(g)
			if err != nil {
				return nil, err
			}
			l.polygons = append(l.polygons, p)
		case "MultiPolygon":
			parts, ok := g.Coordinates.([]interface{})
			if !ok {
				return nil, fmt.Errorf("figure: invalid MultiPolygon coordinates")
			}
			var mp geom.MultiPolygon
			for _, part := range parts {
				p, err := polygonFromGeoJSON(&geojson.Geometry{Type: "Polygon", Coordinates: part})
				if err != nil {
					return nil, err
				}
				mp = append(mp, p)
			}
			l.polygons = append(l.polygons, mp)
		default:
			return nil, fmt.Errorf("figure: land GeoJSON holds a %s, not polygons", g.Type)
		}
	}
	return l, nil
}

func polygonFromGeoJSON(g *geojson.Geometry) (geom.Polygon, error) {
	gg, err := geojson.FromGeoJSON(g)
	if err != nil {
		return nil, fmt.Errorf("figure: decoding land polygon: %v", err)
	}
	p, ok := gg.(geom.Polygon)
	if !ok {
		return nil, fmt.Errorf("figure: decoding land polygon: got %T", gg)
	}
	return p, nil
}

// Land implements LandProvider.
func (l *GeoJSONLand) Land(extent *geom.Bounds) ([]geom.Polygonal, error) {
	var o []geom.Polygonal
	for _, p := range l.polygons {
		if p.Bounds().Overlaps(extent) {
			o = append(o, p)
		}
	}
	return o, nil
}
