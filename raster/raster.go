package raster

import (
	"path/filepath"
	"strconv"

	"github.com/wgdzlh/geotile"
	"github.com/wgdzlh/geotile/log"
	"github.com/wgdzlh/geotile/utils"

	gdal "github.com/airbusgeo/godal"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const logTag = "Raster:"

var dataTypes = map[string]gdal.DataType{
	"Byte":    gdal.Byte,
	"UInt16":  gdal.UInt16,
	"Int16":   gdal.Int16,
	"UInt32":  gdal.UInt32,
	"Int32":   gdal.Int32,
	"Float32": gdal.Float32,
	"Float64": gdal.Float64,
}

func init() {
	gdal.RegisterAll()
}

// Opener opens source rasters with GDAL.
type Opener struct{}

func (Opener) Open(path string) (src geotile.RasterSource, err error) {
	ds, err := gdal.Open(path, gdal.RasterOnly())
	if err != nil {
		log.Error(logTag+"open raster failed", zap.String("path", path), zap.Error(err))
		err = errors.Wrapf(geotile.ErrSourceUnreadable, "open %s: %v", path, err)
		return
	}
	info, err := describe(ds)
	if err != nil {
		ds.Close()
		err = errors.Wrapf(err, "raster %s", path)
		return
	}
	log.Info(logTag+"opened raster", zap.String("path", path), zap.Int("width", info.Width), zap.Int("height", info.Height),
		zap.Int("bands", info.Bands), zap.String("dtype", info.DataType), zap.Bool("nodata", info.HasNoData))
	src = &Source{ds: ds, info: info, path: path}
	return
}

func describe(ds *gdal.Dataset) (info geotile.RasterInfo, err error) {
	st := ds.Structure()
	if _, ok := dataTypes[st.DataType.String()]; !ok {
		err = errors.Wrapf(geotile.ErrUnsupportedDtype, "%s", st.DataType)
		return
	}
	gt, err := ds.GeoTransform()
	if err != nil {
		err = errors.Wrapf(geotile.ErrSourceUnreadable, "%v: %v", geotile.ErrDegenerateGeoTrans, err)
		return
	}
	info = geotile.RasterInfo{
		Width:     st.SizeX,
		Height:    st.SizeY,
		Bands:     st.NBands,
		DataType:  st.DataType.String(),
		CRS:       ds.Projection(),
		Transform: geotile.GeoTransform(gt),
	}
	if bands := ds.Bands(); len(bands) > 0 {
		info.NoData, info.HasNoData = bands[0].NoData()
	}
	return
}

// Source is an open GDAL raster.
type Source struct {
	ds   *gdal.Dataset
	info geotile.RasterInfo
	path string
}

func (s *Source) Info() geotile.RasterInfo {
	return s.info
}

// 按窗口读取全部波段（波段顺序存放）
func (s *Source) Read(w geotile.Window) (b *geotile.Block, err error) {
	if b, err = geotile.NewBlock(s.info.DataType, s.info.Bands, w.Width, w.Height); err != nil {
		return
	}
	if err = s.ds.Read(w.XOff, w.YOff, b.Data, w.Width, w.Height, gdal.BandInterleaved()); err != nil {
		log.Error(logTag+"read window failed", zap.String("path", s.path), zap.Any("window", w), zap.Error(err))
		err = errors.Wrapf(geotile.ErrSourceUnreadable, "read %s %+v: %v", s.path, w, err)
		b = nil
	}
	return
}

func (s *Source) Close() error {
	return s.ds.Close()
}

// GTiffWriter writes tiles as GeoTIFF. Options are GDAL creation options
// such as COMPRESS=LZW.
type GTiffWriter struct {
	Options []string
}

func (g GTiffWriter) WriteTile(path string, profile geotile.RasterInfo, block *geotile.Block) (err error) {
	dt, ok := dataTypes[profile.DataType]
	if !ok {
		err = errors.Wrapf(geotile.ErrUnsupportedDtype, "%q", profile.DataType)
		return
	}
	var opts []gdal.DatasetCreateOption
	if len(g.Options) > 0 {
		opts = append(opts, gdal.CreationOption(g.Options...))
	}
	ds, err := gdal.Create(gdal.GTiff, path, profile.Bands, dt, block.Width, block.Height, opts...)
	if err != nil {
		log.Error(logTag+"create tile failed", zap.String("path", path), zap.Error(err))
		err = errors.Wrapf(geotile.ErrWrite, "create %s: %v", path, err)
		return
	}
	defer func() {
		if e := ds.Close(); e != nil {
			err = multierr.Append(err, errors.Wrapf(geotile.ErrWrite, "close %s: %v", path, e))
		}
	}()
	if err = ds.SetGeoTransform(profile.Transform); err != nil {
		err = errors.Wrapf(geotile.ErrWrite, "geotransform %s: %v", path, err)
		return
	}
	if profile.CRS != "" {
		if err = ds.SetProjection(profile.CRS); err != nil {
			err = errors.Wrapf(geotile.ErrWrite, "projection %s: %v", path, err)
			return
		}
	}
	if profile.HasNoData {
		if err = ds.SetNoData(profile.NoData); err != nil {
			err = errors.Wrapf(geotile.ErrWrite, "nodata %s: %v", path, err)
			return
		}
	}
	if err = ds.Write(0, 0, block.Data, block.Width, block.Height, gdal.BandInterleaved()); err != nil {
		err = errors.Wrapf(geotile.ErrWrite, "write %s: %v", path, err)
	}
	return
}

// TileStore resolves tile names to GeoTIFFs under Dir.
type TileStore struct {
	Dir string
	Ext string // 默认.tif
}

func (s TileStore) Path(name string) string {
	ext := s.Ext
	if ext == "" {
		ext = utils.FILE_EXT_TIF
	}
	return filepath.Join(s.Dir, name+ext)
}

func (s TileStore) OpenTile(name string) (tile geotile.TileInfo, err error) {
	path := s.Path(name)
	if !utils.FileExists(path) {
		err = errors.Wrapf(geotile.ErrMissingTile, "%s", path)
		return
	}
	ds, err := gdal.Open(path, gdal.RasterOnly())
	if err != nil {
		err = errors.Wrapf(geotile.ErrMissingTile, "open %s: %v", path, err)
		return
	}
	defer func() {
		err = multierr.Append(err, ds.Close())
	}()
	st := ds.Structure()
	gt, err := ds.GeoTransform()
	if err != nil {
		err = errors.Wrapf(geotile.ErrMissingTile, "%s: %v: %v", path, geotile.ErrDegenerateGeoTrans, err)
		return
	}
	wkt := ds.Projection()
	tile = geotile.TileInfo{
		Name:      name,
		Path:      path,
		Width:     st.SizeX,
		Height:    st.SizeY,
		Transform: geotile.GeoTransform(gt),
		CRS:       geotile.CRS{WKT: wkt, EPSG: IdentifyEPSG(wkt)},
	}
	return
}

// IdentifyEPSG returns the EPSG code of a WKT description, or 0 when GDAL
// cannot find one.
func IdentifyEPSG(wkt string) (srid int) {
	if wkt == "" {
		return
	}
	sr, err := gdal.NewSpatialRefFromWKT(wkt)
	if err != nil {
		log.Warn(logTag+"parse projection failed", zap.Error(err))
		return
	}
	defer sr.Close()
	if sr.AuthorityName("") != "EPSG" {
		// 不规范的WKT可能缺少AUTHORITY节点
		if err = sr.AutoIdentifyEPSG(); err != nil || sr.AuthorityName("") != "EPSG" {
			return
		}
	}
	srid, _ = strconv.Atoi(sr.AuthorityCode(""))
	return
}
