package geotile

import (
	"bufio"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/image/draw"
)

// Normalize maps v linearly from [vmin, vmax] to [0, 255], saturating at both
// ends. NaN maps to 0.
func Normalize(v, vmin, vmax float64) uint8 {
	return uint8(ClampUnit((v-vmin)/(vmax-vmin)) * 255)
}

func ClampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// BuildPreview renders bands 0 and 1 of b as R and G, and their mean as B.
func BuildPreview(b *Block, vmin, vmax float64) (img *image.RGBA, err error) {
	b1, err := b.Band(0)
	if err != nil {
		return
	}
	b2, err := b.Band(1)
	if err != nil {
		return
	}
	img = image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			i := y*b.Width + x
			v1, v2 := float64(b1[i]), float64(b2[i])
			img.SetRGBA(x, y, color.RGBA{
				R: Normalize(v1, vmin, vmax),
				G: Normalize(v2, vmin, vmax),
				B: Normalize(float64(float32(v1+v2)/2), vmin, vmax),
				A: 0xff,
			})
		}
	}
	return
}

// ScaleImage 按宽度等比缩放
func ScaleImage(img image.Image, newWidth int) image.Image {
	bounds := img.Bounds()
	if newWidth <= 0 || newWidth == bounds.Dx() {
		return img
	}
	h := int(math.Round(float64(bounds.Dy()) / float64(bounds.Dx()) * float64(newWidth)))
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, newWidth, h))
	draw.ApproxBiLinear.Scale(dst, dst.Rect, img, bounds, draw.Src, nil)
	return dst
}

type JPEGWriter struct {
	Quality int
	Width   int // 0为原尺寸
}

func (j JPEGWriter) WritePreview(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(ErrWrite, "create preview %s: %v", path, err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
		if err != nil && !errors.Is(err, ErrWrite) {
			err = errors.Wrapf(ErrWrite, "preview %s: %v", path, err)
		}
	}()
	w := bufio.NewWriter(f)
	if err = jpeg.Encode(w, ScaleImage(img, j.Width), &jpeg.Options{Quality: j.Quality}); err != nil {
		return
	}
	err = w.Flush()
	return
}
