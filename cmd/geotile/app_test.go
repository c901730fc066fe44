package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/wgdzlh/geotile"
	"github.com/wgdzlh/geotile/utils"

	gdal "github.com/airbusgeo/godal"
	"github.com/paulmach/go.geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mercGT = [6]float64{1335833.89, 10, 0, 5621521.49, 0, -10}

func makeScene(t *testing.T, path string) {
	sr, err := gdal.NewSpatialRefFromEPSG(3857)
	require.NoError(t, err)
	defer sr.Close()
	wkt, err := sr.WKT()
	require.NoError(t, err)

	ds, err := gdal.Create(gdal.GTiff, path, 2, gdal.Float32, 256, 256)
	require.NoError(t, err)
	require.NoError(t, ds.SetGeoTransform(mercGT))
	require.NoError(t, ds.SetProjection(wkt))
	buf := make([]float32, 2*256*256)
	for i := range buf {
		buf[i] = 0.5 + float32(i%256)/1024
	}
	require.NoError(t, ds.Write(0, 0, buf, 256, 256, gdal.BandInterleaved()))
	require.NoError(t, ds.Close())
}

func runArgs(args ...string) (code int, stdout, stderr string) {
	var out, errBuf bytes.Buffer
	code = run(args, &out, &errBuf)
	return code, out.String(), errBuf.String()
}

func TestUsage(t *testing.T) {
	code, _, stderr := runArgs()
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "usage: geotile")

	code, stdout, _ := runArgs("help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "locate")

	code, _, _ = runArgs("crop")
	assert.Equal(t, exitUsage, code)
	code, _, _ = runArgs("tile")
	assert.Equal(t, exitUsage, code)
	code, _, _ = runArgs("tile", "-nope", "a.tif")
	assert.Equal(t, exitUsage, code)
	code, _, _ = runArgs("tile", "-h")
	assert.Equal(t, exitOK, code)
	code, _, _ = runArgs("locate", "only-manifest.txt")
	assert.Equal(t, exitUsage, code)
	for _, bbox := range []string{"1,2,3", "1,x,2,3,4", "1,x,2,3", "3,2,1,4"} {
		code, _, _ = runArgs("locate", "-bbox", bbox, "m.txt", "out.shp")
		assert.Equal(t, exitUsage, code, bbox)
	}
}

func TestParseBbox(t *testing.T) {
	span, ok, err := parseBbox("")
	assert.NoError(t, err)
	assert.False(t, ok)

	span, ok, err = parseBbox("-10, 20.5, 30, 40")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, geotile.Span{MinX: -10, MinY: 20.5, MaxX: 30, MaxY: 40}, span)

	_, ok, err = parseBbox("1,x,2,3,4")
	var ue usageError
	assert.ErrorAs(t, err, &ue)
	assert.False(t, ok)
}

func TestTileAndLocate(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "scene.tif")
	makeScene(t, src)
	tiles := filepath.Join(dir, "crops_tif")
	previews := filepath.Join(dir, "crops_jpg")

	code, _, stderr := runArgs("tile", "-crop", "0", "-tiles", tiles, "-previews", previews, src)
	assert.Equal(t, exitUsage, code, stderr)

	code, stdout, stderr := runArgs("tile", "-tiles", tiles, "-previews", previews,
		"-index", filepath.Join(dir, "tiles.txt"), "-co", "COMPRESS=LZW", src)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "4 tiles")
	for _, name := range []string{"scene_crop_0_0", "scene_crop_0_128", "scene_crop_128_0", "scene_crop_128_128"} {
		assert.True(t, utils.FileExists(filepath.Join(tiles, name+".tif")), name)
		assert.True(t, utils.FileExists(filepath.Join(previews, name+".jpg")), name)
	}

	manifest := filepath.Join(dir, "sites.txt")
	require.NoError(t, os.WriteFile(manifest, []byte("scene_crop_0_0.jpg;NW\nno separator\nscene_crop_128_128;SE\nother_crop_0_0;C\n"), 0o644))

	out := filepath.Join(dir, "sites.geojson")
	code, stdout, stderr = runArgs("locate", "-tiles", tiles, manifest, out)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "2 points")

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)

	lon, lat := geotile.Convert3857To4326(mercGT[0]+10*128/6.0, mercGT[3]-10*128/6.0)
	assert.InDelta(t, lon, fc.Features[0].Geometry.Point[0], 1e-9)
	assert.InDelta(t, lat, fc.Features[0].Geometry.Point[1], 1e-9)
	assert.Equal(t, "scene_crop_0_0", fc.Features[0].PropertyMustString(geotile.PROP_NAME))
	lon, lat = geotile.Convert3857To4326(mercGT[0]+10*(128+128*5/6.0), mercGT[3]-10*(128+128*5/6.0))
	assert.InDelta(t, lon, fc.Features[1].Geometry.Point[0], 1e-9)
	assert.InDelta(t, lat, fc.Features[1].Geometry.Point[1], 1e-9)

	shp := filepath.Join(dir, "sites.shp")
	code, _, stderr = runArgs("locate", "-tiles", tiles, "-bbox", "-180,-90,180,90", manifest, shp)
	require.Equal(t, exitOK, code, stderr)
	assert.True(t, utils.FileExists(shp))
	assert.True(t, utils.FileExists(filepath.Join(dir, "sites.dbf")))

	code, _, _ = runArgs("locate", "-tiles", tiles, manifest, filepath.Join(dir, "sites.kml"))
	assert.Equal(t, exitUsage, code)
	code, _, _ = runArgs("locate", "-tiles", tiles, filepath.Join(dir, "none.txt"), out)
	assert.Equal(t, exitError, code)
	code, _, _ = runArgs("tile", "-tiles", tiles, "-previews", previews, filepath.Join(dir, "none.tif"))
	assert.Equal(t, exitError, code)
}
