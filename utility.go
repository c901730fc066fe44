package geotile

import (
	"github.com/paulmach/go.geo"
	"github.com/pkg/errors"
)

// MercatorReprojector converts spherical Web Mercator (EPSG:3857) to WGS84
// without GDAL. Any other source CRS is an error.
type MercatorReprojector struct{}

func (MercatorReprojector) Reproject(from CRS, pts []Point) error {
	if from.IsWGS84() {
		return nil
	}
	if from.EPSG != MERCATOR_SRID {
		return errors.Wrapf(ErrReprojection, "mercator reprojector cannot handle EPSG:%d", from.EPSG)
	}
	for i, p := range pts {
		pts[i].X, pts[i].Y = Convert3857To4326(p.X, p.Y)
	}
	return nil
}

func Convert4326To3857(lon, lat float64) (lonIn3857, latIn3857 float64) {
	p := geo.NewPoint(lon, lat)
	geo.Mercator.Project(p)
	return p.X(), p.Y()
}

func Convert3857To4326(lonIn3857, latIn3857 float64) (lon, lat float64) {
	p := geo.NewPoint(lonIn3857, latIn3857)
	geo.Mercator.Inverse(p)
	return p.Lng(), p.Lat()
}
