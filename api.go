package geotile

import (
	"image"
)

// 栅格描述，同时作为瓦片写出时的profile
type RasterInfo struct {
	Width     int
	Height    int
	Bands     int
	DataType  string
	CRS       string // WKT
	Transform GeoTransform
	NoData    float64 // 取自第一波段，HasNoData为false时无效
	HasNoData bool
}

// 打开源栅格
type RasterOpener interface {
	Open(path string) (RasterSource, error)
}

type RasterSource interface {
	Info() RasterInfo
	// Read returns all bands of w, band-interleaved.
	Read(w Window) (*Block, error)
	Close() error
}

type TileWriter interface {
	WriteTile(path string, profile RasterInfo, block *Block) error
}

type PreviewWriter interface {
	WritePreview(path string, img image.Image) error
}

// 瓦片产物
type TileRecord struct {
	Name        string
	TilePath    string
	PreviewPath string
	Window      Window
	Transform   GeoTransform
}

// 按瓦片名打开已写出的瓦片，不存在时返回ErrMissingTile
type TileOpener interface {
	OpenTile(name string) (TileInfo, error)
}

type TileInfo struct {
	Name      string
	Path      string
	Width     int
	Height    int
	Transform GeoTransform
	CRS       CRS
}

// 坐标系：WKT为原始描述，EPSG为识别出的代码（未知时为0）
type CRS struct {
	WKT  string
	EPSG int
}

var WGS84 = CRS{EPSG: UNIVERSAL_SRID}

func (c CRS) IsWGS84() bool {
	return c.EPSG == UNIVERSAL_SRID
}

func (c CRS) Same(o CRS) bool {
	if c.EPSG != 0 || o.EPSG != 0 {
		return c.EPSG == o.EPSG
	}
	return c.WKT == o.WKT
}

// 将点坐标原地转换到WGS84
type Reprojector interface {
	Reproject(from CRS, pts []Point) error
}

type FeatureWriter interface {
	WriteFeatures(path string, c *PointCollection) error
}
