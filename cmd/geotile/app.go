package main

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/wgdzlh/geotile"
	"github.com/wgdzlh/geotile/log"
	"github.com/wgdzlh/geotile/ogr"
	"github.com/wgdzlh/geotile/raster"
	"github.com/wgdzlh/geotile/utils"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logTag = "Cli:"

	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const usage = `usage: geotile <command> [flags] args...

commands:
  tile    [flags] src.tif...                cut rasters into GeoTIFF tiles and JPEG previews
  locate  [flags] manifest.txt out.shp      map "tile;region" detections to WGS84 points
                                            (out may also be .geojson or .json)

run "geotile <command> -h" for the flags of a command.
`

type usageError struct {
	msg string
}

func (e usageError) Error() string {
	return e.msg
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}
	var err error
	switch args[0] {
	case "tile":
		err = runTile(args[1:], stdout, stderr)
	case "locate":
		err = runLocate(args[1:], stdout, stderr)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return exitOK
	default:
		fmt.Fprintf(stderr, "geotile: unknown command %q\n\n%s", args[0], usage)
		return exitUsage
	}
	return exitCode(err, stderr)
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	fmt.Fprintf(stderr, "geotile: %v\n", err)
	var ue usageError
	if errors.As(err, &ue) || errors.Is(err, geotile.ErrConfiguration) || errors.Is(err, geotile.ErrUnsupportedFormat) {
		return exitUsage
	}
	return exitError
}

// 公共参数：配置文件与日志级别，命令行参数在配置文件和环境变量之后生效
type common struct {
	config   string
	logLevel string
}

func (c *common) bind(fs *flag.FlagSet) {
	fs.StringVar(&c.config, "config", "", "JSON config file")
	fs.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn or error")
}

func (c *common) load(fs *flag.FlagSet, stderr io.Writer) (cfg geotile.Config, runId string, err error) {
	if cfg, err = geotile.LoadConfig(c.config); err != nil {
		return
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	log.SetOutput(zapcore.AddSync(stderr))
	if e := log.SetLevel(cfg.LogLevel); e != nil {
		err = errors.Wrapf(geotile.ErrConfiguration, "log level %q", cfg.LogLevel)
		return
	}
	runId = uuid.NewString()
	log.Info(logTag+"start "+fs.Name(), zap.String("run", runId), zap.String("config", c.config))
	return
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		return usageError{err.Error()}
	}
	return err
}

// 只覆盖命令行上显式给出的参数
func isSet(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	return set
}

func runTile(args []string, stdout, stderr io.Writer) (err error) {
	var (
		c      common
		fs     = newFlagSet("tile", stderr)
		crop   = fs.Int("crop", geotile.DefaultCropSize, "tile size in pixels")
		vmin   = fs.Float64("vmin", geotile.DefaultVisualMin, "value mapped to 0 in previews")
		vmax   = fs.Float64("vmax", geotile.DefaultVisualMax, "value mapped to 255 in previews")
		qual   = fs.Int("quality", geotile.DefaultPreviewQuality, "JPEG quality 1..100")
		width  = fs.Int("preview-width", 0, "preview width in pixels, 0 keeps the tile width")
		tiles  = fs.String("tiles", "", "GeoTIFF tile directory")
		prevs  = fs.String("previews", "", "JPEG preview directory")
		index  = fs.String("index", "", "write tile names to this file")
		gtOpts = fs.String("co", "", "comma separated GTiff creation options, e.g. COMPRESS=LZW")
	)
	c.bind(fs)
	if err = parse(fs, args); err != nil {
		return
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return usageError{"tile: no source raster given"}
	}
	cfg, runId, err := c.load(fs, stderr)
	if err != nil {
		return
	}
	tc := cfg.Tiler
	set := isSet(fs)
	if set["crop"] {
		tc.CropSize = *crop
	}
	if set["vmin"] {
		tc.VisualMin = *vmin
	}
	if set["vmax"] {
		tc.VisualMax = *vmax
	}
	if set["quality"] {
		tc.PreviewQuality = *qual
	}
	if set["preview-width"] {
		tc.PreviewWidth = *width
	}
	if set["tiles"] {
		tc.TileDir = *tiles
	}
	if set["previews"] {
		tc.PreviewDir = *prevs
	}
	if set["index"] {
		tc.IndexPath = *index
	}
	writer := raster.GTiffWriter{}
	if *gtOpts != "" {
		writer.Options = strings.Split(*gtOpts, ",")
	}
	tiler, err := geotile.NewTiler(tc, raster.Opener{}, writer, nil)
	if err != nil {
		return
	}
	for _, src := range fs.Args() {
		var recs []geotile.TileRecord
		if recs, err = tiler.TileFile(src); err != nil {
			log.Error(logTag+"tile failed", zap.String("run", runId), zap.String("src", src), zap.Error(err))
			return
		}
		fmt.Fprintf(stdout, "%s: %d tiles\n", src, len(recs))
	}
	log.Info(logTag+"end tile", zap.String("run", runId))
	return
}

func runLocate(args []string, stdout, stderr io.Writer) (err error) {
	var (
		c       common
		fs      = newFlagSet("locate", stderr)
		tiles   = fs.String("tiles", "", "GeoTIFF tile directory")
		enc     = fs.String("encoding", "", "manifest encoding: UTF-8 (default) or GBK")
		strict  = fs.Bool("strict", false, "fail when tiles do not share one CRS")
		s2Level = fs.Int("s2-level", geotile.DefaultS2Level, "S2 cell level of the GeoJSON s2cell property")
		bbox    = fs.String("bbox", "", "keep points inside minLon,minLat,maxLon,maxLat")
	)
	c.bind(fs)
	if err = parse(fs, args); err != nil {
		return
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return usageError{"locate: want manifest and output path"}
	}
	manifest, out := fs.Arg(0), fs.Arg(1)
	span, hasSpan, err := parseBbox(*bbox)
	if err != nil {
		return
	}
	cfg, runId, err := c.load(fs, stderr)
	if err != nil {
		return
	}
	lc := cfg.Locator
	set := isSet(fs)
	if set["tiles"] {
		lc.TileDir = *tiles
	}
	if set["encoding"] {
		lc.ManifestEncoding = *enc
	}
	if set["strict"] {
		lc.StrictCRS = *strict
	}
	if set["s2-level"] {
		lc.S2Level = *s2Level
	}
	if err = lc.Validate(); err != nil {
		return
	}
	toolbox := ogr.NewToolbox()
	writer, err := featureWriter(out, toolbox, lc.S2Level)
	if err != nil {
		return
	}

	dets, err := geotile.LoadManifest(manifest, lc.ManifestEncoding)
	if err != nil {
		return
	}
	locator := geotile.NewLocator(raster.TileStore{Dir: lc.TileDir}, toolbox, lc.StrictCRS)
	points, err := locator.Locate(dets)
	if err != nil {
		log.Error(logTag+"locate failed", zap.String("run", runId), zap.Error(err))
		return
	}
	if hasSpan {
		n := points.Len()
		points = points.Within(span)
		log.Info(logTag+"bbox filter", zap.String("run", runId), zap.Int("before", n), zap.Int("after", points.Len()))
	}
	if err = writer.WriteFeatures(out, points); err != nil {
		return
	}
	fmt.Fprintf(stdout, "%s: %d points\n", out, points.Len())
	log.Info(logTag+"end locate", zap.String("run", runId), zap.Int("detections", len(dets)), zap.Int("points", points.Len()))
	return
}

// 按输出扩展名选择矢量格式
func featureWriter(out string, toolbox *ogr.Toolbox, s2Level int) (w geotile.FeatureWriter, err error) {
	switch strings.ToLower(filepath.Ext(out)) {
	case utils.FILE_EXT_SHP:
		w = ogr.ShapefileWriter{Toolbox: toolbox}
	case utils.FILE_EXT_GEOJSON, utils.FILE_EXT_JSON:
		w = geotile.GeoJSONWriter{S2Level: s2Level}
	default:
		err = errors.Wrapf(geotile.ErrUnsupportedFormat, "%s", out)
	}
	return
}

func parseBbox(s string) (span geotile.Span, ok bool, err error) {
	if s == "" {
		return
	}
	// StrToFloats会跳过无法解析的部分，需先核对分段数
	parts := strings.Split(s, ",")
	v := utils.StrToFloats(s, ",")
	if len(parts) != 4 || len(v) != 4 || v[0] > v[2] || v[1] > v[3] {
		err = usageError{fmt.Sprintf("bad bbox %q, want minLon,minLat,maxLon,maxLat", s)}
		return
	}
	span = geotile.Span{MinX: v[0], MinY: v[1], MaxX: v[2], MaxY: v[3]}
	ok = true
	return
}
