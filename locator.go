package geotile

import (
	"github.com/wgdzlh/geotile/log"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Locator turns (tile, region) detections into geographic points.
type Locator struct {
	tiles     TileOpener
	reproj    Reprojector
	strictCRS bool
	logTag    string
}

func NewLocator(tiles TileOpener, reproj Reprojector, strictCRS bool) *Locator {
	return &Locator{
		tiles:     tiles,
		reproj:    reproj,
		strictCRS: strictCRS,
		logTag:    "Locator:",
	}
}

// Locate maps each detection to the center of its region in its tile,
// keeping input order. Detections whose tile cannot be opened are logged and
// skipped. The collection takes the CRS of the last tile opened and is
// reprojected to WGS84 when that CRS is anything else.
func (l *Locator) Locate(dets []Detection) (c *PointCollection, err error) {
	c = NewPointCollection(WGS84)
	var (
		crs     CRS
		opened  bool
		skipped int
	)
	for _, d := range dets {
		tile, e := l.tiles.OpenTile(d.Name)
		if e != nil {
			skipped++
			log.Warn(l.logTag+"skip detection", zap.String("tile", d.Name), zap.Int("line", d.Line), zap.Error(e))
			continue
		}
		if opened && !crs.Same(tile.CRS) {
			if l.strictCRS {
				err = errors.Wrapf(ErrCRSMismatch, "tile %s (line %d)", d.Name, d.Line)
				return
			}
			log.Warn(l.logTag+"tile CRS differs from previous tile", zap.String("tile", d.Name),
				zap.Int("epsg", tile.CRS.EPSG), zap.Int("prevEpsg", crs.EPSG))
		}
		crs, opened = tile.CRS, true
		region, ok := ParseRegion(d.Region)
		if !ok {
			log.Warn(l.logTag+"unknown region, using C", zap.String("tile", d.Name), zap.String("region", d.Region), zap.Int("line", d.Line))
		}
		px, py := PixelCenter(tile.Width, tile.Height, region)
		x, y := tile.Transform.Apply(px, py)
		c.Features = append(c.Features, PointFeature{
			Point:  Point{X: x, Y: y},
			Name:   d.Name,
			Region: region,
		})
	}
	if opened {
		c.CRS = crs
	}
	log.Info(l.logTag+"located detections", zap.Int("points", c.Len()), zap.Int("skipped", skipped), zap.Int("epsg", c.CRS.EPSG))
	if c.CRS.IsWGS84() {
		return
	}
	if l.reproj == nil {
		err = errors.Wrapf(ErrReprojection, "no reprojector for EPSG:%d", c.CRS.EPSG)
		return
	}
	pts := c.Points()
	if e := l.reproj.Reproject(c.CRS, pts); e != nil {
		log.Error(l.logTag+"reproject failed", zap.Int("epsg", c.CRS.EPSG), zap.Error(e))
		if errors.Is(e, ErrReprojection) {
			err = e
		} else {
			err = errors.Wrapf(ErrReprojection, "from EPSG:%d: %v", c.CRS.EPSG, e)
		}
		return
	}
	c.SetPoints(pts)
	c.CRS = WGS84
	return
}
