package ogr

import (
	"path/filepath"

	"github.com/wgdzlh/geotile"
	"github.com/wgdzlh/geotile/log"
	"github.com/wgdzlh/geotile/utils"

	"github.com/lukeroth/gdal"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ShapefileWriter writes WGS84 point collections as ESRI Shapefiles.
type ShapefileWriter struct {
	Toolbox *Toolbox
}

// WriteFeatures writes c under a temporary name next to shp and renames the
// file set into place once the datasource is flushed.
func (w ShapefileWriter) WriteFeatures(shp string, c *geotile.PointCollection) (err error) {
	if !c.CRS.IsWGS84() {
		err = errors.Wrapf(geotile.ErrReprojection, "shapefile needs EPSG:%d, got EPSG:%d", geotile.UNIVERSAL_SRID, c.CRS.EPSG)
		return
	}
	// shp驱动在目录不存在时仍会返回数据源，需提前检查
	if !utils.DirExists(filepath.Dir(shp)) {
		err = errors.Wrapf(geotile.ErrWrite, "%s: directory does not exist", shp)
		return
	}
	tmp := utils.GetUniqSibling(shp)
	if err = w.Toolbox.writePoints(tmp, c); err != nil {
		utils.RemoveShapefile(tmp)
		err = errors.Wrapf(geotile.ErrWrite, "%s: %v", shp, err)
		return
	}
	utils.RemoveShapefile(shp)
	if err = utils.RenameShapefile(tmp, shp); err != nil {
		utils.RemoveShapefile(tmp)
		err = errors.Wrapf(geotile.ErrWrite, "rename %s: %v", shp, err)
	}
	return
}

func (g *Toolbox) getShpDriver(shp string, srid int) (ds gdal.DataSource, layer gdal.Layer, err error) {
	log.Info(g.logTag+"output shp files", zap.String("shp", shp), zap.Int("srid", srid))
	ref, err := g.getSridRef(srid)
	if err != nil {
		return
	}
	driver := gdal.OGRDriverByName(SHP_DRIVER_NAME)
	ds, ok := driver.Create(shp, nil)
	if !ok {
		err = ErrGdalDriverCreate
		return
	}
	layer = ds.CreateLayer("", ref, gdal.GT_Point, []string{ENCODING_OPTION})
	return
}

func (g *Toolbox) initShpLayer(layer gdal.Layer) (err error) {
	name := gdal.CreateFieldDefinition(FIELD_NAME, gdal.FT_String)
	defer name.Destroy()
	name.SetWidth(254)
	if err = layer.CreateField(name, false); err != nil {
		return
	}
	region := gdal.CreateFieldDefinition(FIELD_REGION, gdal.FT_String)
	defer region.Destroy()
	region.SetWidth(2)
	err = layer.CreateField(region, false)
	return
}

func (g *Toolbox) writePoints(shp string, c *geotile.PointCollection) (err error) {
	ds, layer, err := g.getShpDriver(shp, geotile.UNIVERSAL_SRID)
	if err != nil {
		return
	}
	defer ds.Destroy() // 生成shp文件 + 释放资源
	if err = g.initShpLayer(layer); err != nil {
		return
	}
	var (
		def       = layer.Definition()
		nameIdx   = def.FieldIndex(FIELD_NAME)
		regionIdx = def.FieldIndex(FIELD_REGION)
		feature   gdal.Feature
		geo       gdal.Geometry
	)
	for i, f := range c.Features {
		feature = def.Create()
		feature.SetFieldString(nameIdx, f.Name)
		feature.SetFieldString(regionIdx, f.Region.String())
		geo = gdal.Create(gdal.GT_Point)
		geo.SetPoint2D(0, f.X, f.Y)
		if err = feature.SetGeometryDirectly(geo); err != nil {
			feature.Destroy()
			log.Error(g.logTag+"err in set geom of feature", zap.Int("idx", i), zap.Error(err))
			return
		}
		err = layer.Create(feature)
		feature.Destroy()
		if err != nil {
			log.Error(g.logTag+"err in create feature of layer", zap.Int("idx", i), zap.Error(err))
			return
		}
	}
	log.Info(g.logTag+"output points to shapefile done", zap.String("shp", shp), zap.Int("total", c.Len()))
	return
}

// ReadShapefile reads a point shapefile written by ShapefileWriter.
func (g *Toolbox) ReadShapefile(shp string) (c *geotile.PointCollection, err error) {
	driver := gdal.OGRDriverByName(SHP_DRIVER_NAME)
	ds, ok := driver.Open(shp, 0)
	if !ok {
		err = ErrGdalDriverOpen
		return
	}
	defer ds.Destroy()
	layer := ds.LayerByIndex(0)
	srid, err := g.getSrid(layer.SpatialReference())
	if err != nil {
		return
	}
	var (
		def       = layer.Definition()
		nameIdx   = def.FieldIndex(FIELD_NAME)
		regionIdx = def.FieldIndex(FIELD_REGION)
		feature   *gdal.Feature
		gc        []destroyable
	)
	defer func() {
		for _, v := range gc {
			v.Destroy()
		}
	}()
	c = geotile.NewPointCollection(geotile.CRS{EPSG: srid})
	for {
		if feature = layer.NextFeature(); feature == nil {
			break
		}
		gc = append(gc, *feature)
		geo := feature.Geometry()
		c.Features = append(c.Features, geotile.PointFeature{
			Point:  geotile.Point{X: geo.X(0), Y: geo.Y(0)},
			Name:   feature.FieldAsString(nameIdx),
			Region: geotile.RegionOrCenter(feature.FieldAsString(regionIdx)),
		})
	}
	return
}
