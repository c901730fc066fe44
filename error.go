package geotile

import "github.com/pkg/errors"

var (
	ErrConfiguration      = errors.New("invalid configuration")
	ErrSourceUnreadable   = errors.New("source raster unreadable")
	ErrWrite              = errors.New("write failed")
	ErrMissingTile        = errors.New("tile not found")
	ErrReprojection       = errors.New("reprojection failed")
	ErrManifestUnreadable = errors.New("manifest unreadable")
	ErrCRSMismatch        = errors.New("tiles do not share one CRS")
	ErrUnsupportedFormat  = errors.New("unsupported output format")
	ErrUnsupportedDtype   = errors.New("unsupported pixel data type")
	ErrDegenerateGeoTrans = errors.New("degenerate geotransform")
)
