package geotile

import (
	"image"
	"os"

	"github.com/pkg/errors"
)

// memSource serves windows of a Float32 raster whose bands are filled by fn.
type memSource struct {
	info   RasterInfo
	fn     func(band, x, y int) float32
	reads  []Window
	closed bool
	err    error
}

func (m *memSource) Info() RasterInfo { return m.info }

func (m *memSource) Read(w Window) (*Block, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.reads = append(m.reads, w)
	b, err := NewBlock("Float32", m.info.Bands, w.Width, w.Height)
	if err != nil {
		return nil, err
	}
	data := b.Data.([]float32)
	for band := 0; band < m.info.Bands; band++ {
		for y := 0; y < w.Height; y++ {
			for x := 0; x < w.Width; x++ {
				data[band*w.Width*w.Height+y*w.Width+x] = m.fn(band, w.XOff+x, w.YOff+y)
			}
		}
	}
	return b, nil
}

func (m *memSource) Close() error {
	m.closed = true
	return nil
}

type memOpener struct {
	src *memSource
	err error
}

func (o *memOpener) Open(path string) (RasterSource, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.src, nil
}

type writtenTile struct {
	path    string
	profile RasterInfo
	block   *Block
}

type memTileWriter struct {
	tiles  []writtenTile
	failAt int // 1-based, 0 = never
}

func (w *memTileWriter) WriteTile(path string, profile RasterInfo, block *Block) error {
	if w.failAt > 0 && len(w.tiles)+1 == w.failAt {
		return errors.New("disk full")
	}
	w.tiles = append(w.tiles, writtenTile{path, profile, block})
	// the locator resolves tiles by file presence
	return os.WriteFile(path, nil, 0o644)
}

type memPreviewWriter struct {
	paths  []string
	images []image.Image
}

func (w *memPreviewWriter) WritePreview(path string, img image.Image) error {
	w.paths = append(w.paths, path)
	w.images = append(w.images, img)
	return nil
}

type memTiles map[string]TileInfo

func (m memTiles) OpenTile(name string) (TileInfo, error) {
	t, ok := m[name]
	if !ok {
		return TileInfo{}, errors.Wrap(ErrMissingTile, name)
	}
	return t, nil
}

type failingReprojector struct{}

func (failingReprojector) Reproject(from CRS, pts []Point) error {
	return errors.New("unsupported source CRS")
}
