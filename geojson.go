package geotile

import (
	"os"

	"github.com/golang/geo/s2"
	"github.com/paulmach/go.geojson"
	"github.com/pkg/errors"
)

const (
	PROP_NAME   = "name"
	PROP_REGION = "region"
	PROP_S2CELL = "s2cell"
)

// GeoJSONWriter writes a point collection as an RFC 7946 FeatureCollection.
// Every feature carries the S2 cell token of its point at S2Level.
type GeoJSONWriter struct {
	S2Level int
}

func (g GeoJSONWriter) Collection(c *PointCollection) (*geojson.FeatureCollection, error) {
	if !c.CRS.IsWGS84() {
		return nil, errors.Wrapf(ErrReprojection, "geojson needs EPSG:%d, got EPSG:%d", UNIVERSAL_SRID, c.CRS.EPSG)
	}
	fc := geojson.NewFeatureCollection()
	for _, f := range c.Features {
		feat := geojson.NewPointFeature([]float64{f.X, f.Y})
		feat.SetProperty(PROP_NAME, f.Name)
		feat.SetProperty(PROP_REGION, f.Region.String())
		feat.SetProperty(PROP_S2CELL, S2Token(f.Point, g.S2Level))
		fc.AddFeature(feat)
	}
	return fc, nil
}

func (g GeoJSONWriter) WriteFeatures(path string, c *PointCollection) error {
	fc, err := g.Collection(c)
	if err != nil {
		return err
	}
	raw, err := fc.MarshalJSON()
	if err != nil {
		return errors.Wrapf(ErrWrite, "encode geojson: %v", err)
	}
	if err = os.WriteFile(path, raw, 0o644); err != nil {
		return errors.Wrapf(ErrWrite, "%s: %v", path, err)
	}
	return nil
}

// S2Token returns the token of the level-l S2 cell holding a lon/lat point.
func S2Token(p Point, level int) string {
	id := s2.CellIDFromLatLng(s2.LatLngFromDegrees(p.Y, p.X))
	return id.Parent(level).ToToken()
}
