package geotile

import (
	"path/filepath"

	"github.com/wgdzlh/geotile/log"
	"github.com/wgdzlh/geotile/utils"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Tiler cuts a source raster into crop-size GeoTIFF tiles plus one JPEG
// preview per tile.
type Tiler struct {
	cfg     TilerConfig
	opener  RasterOpener
	tiles   TileWriter
	preview PreviewWriter
	logTag  string
}

func NewTiler(cfg TilerConfig, opener RasterOpener, tiles TileWriter, preview PreviewWriter) (t *Tiler, err error) {
	if err = cfg.Validate(); err != nil {
		return
	}
	if preview == nil {
		preview = JPEGWriter{Quality: cfg.PreviewQuality, Width: cfg.PreviewWidth}
	}
	t = &Tiler{
		cfg:     cfg,
		opener:  opener,
		tiles:   tiles,
		preview: preview,
		logTag:  "Tiler:",
	}
	return
}

// TileFile tiles the raster at path. Tiles are named after the file stem.
func (t *Tiler) TileFile(path string) (recs []TileRecord, err error) {
	src, err := t.opener.Open(path)
	if err != nil {
		log.Error(t.logTag+"open source failed", zap.String("src", path), zap.Error(err))
		if !errors.Is(err, ErrSourceUnreadable) {
			err = errors.Wrapf(ErrSourceUnreadable, "open %s: %v", path, err)
		}
		return
	}
	defer func() {
		err = multierr.Append(err, src.Close())
	}()
	return t.Tile(src, utils.GetFilenameWithoutExt(path))
}

// Tile writes every grid window of src. The first failure aborts the run;
// tiles already on disk are left as they are.
func (t *Tiler) Tile(src RasterSource, stem string) (recs []TileRecord, err error) {
	info := src.Info()
	if err = checkSource(info); err != nil {
		err = errors.Wrapf(err, "source %s", stem)
		return
	}
	if err = utils.EnsureDir(t.cfg.TileDir); err != nil {
		err = errors.Wrapf(ErrWrite, "tile dir %s: %v", t.cfg.TileDir, err)
		return
	}
	if err = utils.EnsureDir(t.cfg.PreviewDir); err != nil {
		err = errors.Wrapf(ErrWrite, "preview dir %s: %v", t.cfg.PreviewDir, err)
		return
	}
	windows := Grid(info.Width, info.Height, t.cfg.CropSize)
	log.Info(t.logTag+"start tiling", zap.String("stem", stem), zap.Int("width", info.Width), zap.Int("height", info.Height),
		zap.Int("bands", info.Bands), zap.String("dtype", info.DataType), zap.Int("crop", t.cfg.CropSize), zap.Int("tiles", len(windows)))
	recs = make([]TileRecord, 0, len(windows))
	var rec TileRecord
	for _, w := range windows {
		if rec, err = t.tileWindow(src, info, stem, w); err != nil {
			log.Error(t.logTag+"tile failed", zap.String("tile", TileName(stem, w)), zap.Error(err))
			return
		}
		recs = append(recs, rec)
	}
	if t.cfg.IndexPath != "" {
		if err = writeIndex(t.cfg.IndexPath, recs); err != nil {
			return
		}
	}
	log.Info(t.logTag+"end tiling", zap.String("stem", stem), zap.Int("tiles", len(recs)))
	return
}

func (t *Tiler) tileWindow(src RasterSource, info RasterInfo, stem string, w Window) (rec TileRecord, err error) {
	block, err := src.Read(w)
	if err != nil {
		if !errors.Is(err, ErrSourceUnreadable) {
			err = errors.Wrapf(ErrSourceUnreadable, "read window %+v: %v", w, err)
		}
		return
	}
	name := TileName(stem, w)
	rec = TileRecord{
		Name:        name,
		TilePath:    filepath.Join(t.cfg.TileDir, name+utils.FILE_EXT_TIF),
		PreviewPath: filepath.Join(t.cfg.PreviewDir, name+utils.FILE_EXT_JPG),
		Window:      w,
		Transform:   info.Transform.Translate(w.XOff, w.YOff),
	}
	profile := info
	profile.Width, profile.Height = w.Width, w.Height
	profile.Transform = rec.Transform
	if err = t.tiles.WriteTile(rec.TilePath, profile, block); err != nil {
		if !errors.Is(err, ErrWrite) {
			err = errors.Wrapf(ErrWrite, "tile %s: %v", rec.TilePath, err)
		}
		return
	}
	img, err := BuildPreview(block, t.cfg.VisualMin, t.cfg.VisualMax)
	if err != nil {
		return
	}
	if err = t.preview.WritePreview(rec.PreviewPath, img); err != nil {
		if !errors.Is(err, ErrWrite) {
			err = errors.Wrapf(ErrWrite, "preview %s: %v", rec.PreviewPath, err)
		}
		return
	}
	log.Debug(t.logTag+"tile written", zap.String("tile", name), zap.Int("width", w.Width), zap.Int("height", w.Height))
	return
}

func checkSource(info RasterInfo) error {
	switch {
	case info.Width <= 0 || info.Height <= 0:
		return errors.Wrapf(ErrSourceUnreadable, "empty raster %dx%d", info.Width, info.Height)
	case info.Bands < 2:
		return errors.Wrapf(ErrSourceUnreadable, "preview needs 2 bands, raster has %d", info.Bands)
	case info.Transform.Degenerate():
		return errors.Wrapf(ErrSourceUnreadable, "%v %v", ErrDegenerateGeoTrans, info.Transform)
	}
	return nil
}

func writeIndex(path string, recs []TileRecord) error {
	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.Name
	}
	if err := utils.WriteLines(path, names); err != nil {
		return errors.Wrapf(ErrWrite, "index %s: %v", path, err)
	}
	return nil
}
