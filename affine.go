package geotile

import (
	"github.com/pkg/errors"
)

// GeoTransform is an affine pixel-to-world mapping in GDAL coefficient order:
//
//	x = gt[0] + col*gt[1] + row*gt[2]
//	y = gt[3] + col*gt[4] + row*gt[5]
type GeoTransform [6]float64

func (gt GeoTransform) Apply(col, row float64) (x, y float64) {
	x = gt[0] + col*gt[1] + row*gt[2]
	y = gt[3] + col*gt[4] + row*gt[5]
	return
}

// Translate returns the transform of a window whose top-left pixel is
// (xOff, yOff) in gt's grid. Scale and rotation terms are unchanged.
func (gt GeoTransform) Translate(xOff, yOff int) GeoTransform {
	out := gt
	out[0], out[3] = gt.Apply(float64(xOff), float64(yOff))
	return out
}

func (gt GeoTransform) det() float64 {
	return gt[1]*gt[5] - gt[2]*gt[4]
}

func (gt GeoTransform) Degenerate() bool {
	return gt.det() == 0
}

// Invert returns the world-to-pixel transform.
func (gt GeoTransform) Invert() (inv GeoTransform, err error) {
	d := gt.det()
	if d == 0 {
		err = errors.WithStack(ErrDegenerateGeoTrans)
		return
	}
	inv[1] = gt[5] / d
	inv[2] = -gt[2] / d
	inv[4] = -gt[4] / d
	inv[5] = gt[1] / d
	inv[0] = -(inv[1]*gt[0] + inv[2]*gt[3])
	inv[3] = -(inv[4]*gt[0] + inv[5]*gt[3])
	return
}
