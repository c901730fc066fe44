package ogr

import (
	"strconv"
	"strings"
	"sync"

	"github.com/wgdzlh/geotile"
	"github.com/wgdzlh/geotile/log"

	"github.com/lukeroth/gdal"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	SHP_DRIVER_NAME = "ESRI Shapefile"
	ENCODING_OPTION = "ENCODING=UTF-8"

	FIELD_NAME   = geotile.PROP_NAME
	FIELD_REGION = geotile.PROP_REGION
)

var (
	ErrVoidSrid         = errors.New("spatial ref has no srid")
	ErrGdalDriverOpen   = errors.New("gdal driver open failed")
	ErrGdalDriverCreate = errors.New("gdal driver create failed")
)

// 由GDAL库C语言创建的内存对象，需要手动调用Destroy回收
type destroyable interface {
	Destroy()
}

// Toolbox holds the spatial references shared by reprojection and the
// shapefile reader/writer.
type Toolbox struct {
	refMap map[int]gdal.SpatialReference
	rLock  sync.Mutex
	logTag string
}

func NewToolbox() *Toolbox {
	return &Toolbox{
		refMap: map[int]gdal.SpatialReference{},
		logTag: "Ogr:",
	}
}

// 获取srid对应的坐标系（可复用，故无需回收）
func (g *Toolbox) getSridRef(srid int) (ref gdal.SpatialReference, err error) {
	g.rLock.Lock()
	defer g.rLock.Unlock()
	ref, ok := g.refMap[srid]
	if ok {
		return
	}
	ref = gdal.CreateSpatialReference("")
	if err = ref.FromEPSG(srid); err != nil {
		log.Error(g.logTag+"set ref srid failed", zap.Int("srid", srid), zap.Error(err))
		ref.Destroy()
		return
	}
	// 数据轴次序固定为(经度,纬度)（传统GIS坐标序），而不是新标准中与CRS相关的次序
	ref.SetAxisMappingStrategy(gdal.OAMS_TraditionalGisOrder)
	g.refMap[srid] = ref
	return
}

// 按CRS获取坐标系：有EPSG代码的走缓存，否则由WKT新建，owned为true时调用方负责回收
func (g *Toolbox) crsRef(crs geotile.CRS) (ref gdal.SpatialReference, owned bool, err error) {
	if crs.EPSG != 0 {
		ref, err = g.getSridRef(crs.EPSG)
		return
	}
	if crs.WKT == "" {
		err = ErrVoidSrid
		return
	}
	ref = gdal.CreateSpatialReference("")
	if err = ref.FromWKT(crs.WKT); err != nil {
		log.Error(g.logTag+"parse projection wkt failed", zap.Error(err))
		ref.Destroy()
		return
	}
	ref.SetAxisMappingStrategy(gdal.OAMS_TraditionalGisOrder)
	owned = true
	return
}

func (g *Toolbox) getSrid(sp gdal.SpatialReference) (srid int, err error) {
	rawId, ok := sp.AttrValue("AUTHORITY", 1)
	if !ok {
		// 不规范的shp文件
		if e := sp.AutoIdentifyEPSG(); e == nil {
			rawId, ok = sp.AttrValue("AUTHORITY", 1)
		}
	}
	if !ok {
		wkt, _ := sp.ToWKT()
		if strings.Contains(wkt, "CGCS_2000") {
			rawId = "4490"
		} else {
			err = ErrVoidSrid
			return
		}
	}
	srid, err = strconv.Atoi(rawId)
	log.Debug(g.logTag+"got srid from sp", zap.String("id", rawId))
	return
}

// Reproject converts pts from the given CRS to WGS84 in place. Web Mercator
// is converted in pure Go, every other CRS goes through GDAL.
func (g *Toolbox) Reproject(from geotile.CRS, pts []geotile.Point) (err error) {
	if from.IsWGS84() || len(pts) == 0 {
		return
	}
	if from.EPSG == geotile.MERCATOR_SRID {
		return geotile.MercatorReprojector{}.Reproject(from, pts)
	}
	ref, owned, err := g.crsRef(from)
	if err != nil {
		err = errors.Wrapf(geotile.ErrReprojection, "source CRS EPSG:%d: %v", from.EPSG, err)
		return
	}
	if owned {
		defer ref.Destroy()
	}
	tRef, err := g.getSridRef(geotile.UNIVERSAL_SRID)
	if err != nil {
		err = errors.Wrapf(geotile.ErrReprojection, "target CRS: %v", err)
		return
	}
	log.Info(g.logTag+"reproject points", zap.Int("srid", from.EPSG), zap.Int("points", len(pts)))
	for i, p := range pts {
		geo := gdal.Create(gdal.GT_Point)
		geo.SetPoint2D(0, p.X, p.Y)
		geo.SetSpatialReference(ref)
		if err = geo.TransformTo(tRef); err != nil {
			geo.Destroy()
			log.Error(g.logTag+"geo transform failed", zap.Int("idx", i), zap.Error(err))
			err = errors.Wrapf(geotile.ErrReprojection, "point %d (%f, %f): %v", i, p.X, p.Y, err)
			return
		}
		pts[i].X, pts[i].Y = geo.X(0), geo.Y(0)
		geo.Destroy()
	}
	return
}
