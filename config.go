package geotile

import (
	"encoding/json"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	UNIVERSAL_SRID = 4326
	MERCATOR_SRID  = 3857

	TILE_NAME_TEMPLATE = "%s_crop_%d_%d"
	MANIFEST_SEP       = ";"

	DefaultCropSize       = 128
	DefaultVisualMin      = 0.5
	DefaultVisualMax      = 0.75
	DefaultPreviewQuality = 90
	DefaultS2Level        = 16

	ENV_PREFIX = "GEOTILE_"
)

type TilerConfig struct {
	CropSize       int     `json:"crop_size"`
	VisualMin      float64 `json:"visual_min"`
	VisualMax      float64 `json:"visual_max"`
	PreviewQuality int     `json:"preview_quality"`
	PreviewWidth   int     `json:"preview_width"` // 0为原尺寸
	TileDir        string  `json:"tile_dir"`
	PreviewDir     string  `json:"preview_dir"`
	IndexPath      string  `json:"index_path"` // 可选，瓦片名清单
}

type LocatorConfig struct {
	TileDir          string `json:"tile_dir"`
	ManifestEncoding string `json:"manifest_encoding"`
	StrictCRS        bool   `json:"strict_crs"`
	S2Level          int    `json:"s2_level"`
}

type Config struct {
	LogLevel string        `json:"log_level"`
	Tiler    TilerConfig   `json:"tiler"`
	Locator  LocatorConfig `json:"locator"`
}

// 与原始脚本一致的默认参数
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Tiler: TilerConfig{
			CropSize:       DefaultCropSize,
			VisualMin:      DefaultVisualMin,
			VisualMax:      DefaultVisualMax,
			PreviewQuality: DefaultPreviewQuality,
			TileDir:        "crops_tif",
			PreviewDir:     "crops_jpg",
		},
		Locator: LocatorConfig{
			TileDir: "crops_tif",
			S2Level: DefaultS2Level,
		},
	}
}

// LoadConfig reads a JSON config on top of DefaultConfig, then applies
// GEOTILE_<SECTION>_<FIELD> environment overrides (e.g. GEOTILE_TILER_CROPSIZE).
// An empty path skips the file.
func LoadConfig(path string) (cfg Config, err error) {
	cfg = DefaultConfig()
	if path != "" {
		var raw []byte
		if raw, err = os.ReadFile(path); err != nil {
			err = errors.Wrapf(ErrConfiguration, "read config %s: %v", path, err)
			return
		}
		if err = json.Unmarshal(raw, &cfg); err != nil {
			err = errors.Wrapf(ErrConfiguration, "parse config %s: %v", path, err)
			return
		}
	}
	err = applyEnv(reflect.ValueOf(&cfg).Elem(), ENV_PREFIX)
	return
}

func applyEnv(v reflect.Value, prefix string) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		name := prefix + strings.ToUpper(t.Field(i).Name)
		if field.Kind() == reflect.Struct {
			if err := applyEnv(field, name+"_"); err != nil {
				return err
			}
			continue
		}
		val, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		var err error
		switch field.Kind() {
		case reflect.String:
			field.SetString(val)
		case reflect.Int:
			var n int
			if n, err = strconv.Atoi(val); err == nil {
				field.SetInt(int64(n))
			}
		case reflect.Float64:
			var f float64
			if f, err = strconv.ParseFloat(val, 64); err == nil {
				field.SetFloat(f)
			}
		case reflect.Bool:
			var b bool
			if b, err = strconv.ParseBool(val); err == nil {
				field.SetBool(b)
			}
		}
		if err != nil {
			return errors.Wrapf(ErrConfiguration, "env %s=%q: %v", name, val, err)
		}
	}
	return nil
}

// Validate 在任何写入前检查切片参数
func (c TilerConfig) Validate() error {
	if c.CropSize <= 0 {
		return errors.Wrapf(ErrConfiguration, "crop size must be positive, got %d", c.CropSize)
	}
	if !(c.VisualMax > c.VisualMin) {
		return errors.Wrapf(ErrConfiguration, "visual range [%g, %g] is empty", c.VisualMin, c.VisualMax)
	}
	if c.PreviewQuality < 1 || c.PreviewQuality > 100 {
		return errors.Wrapf(ErrConfiguration, "preview quality %d outside 1..100", c.PreviewQuality)
	}
	if c.PreviewWidth < 0 {
		return errors.Wrapf(ErrConfiguration, "preview width %d is negative", c.PreviewWidth)
	}
	if c.TileDir == "" || c.PreviewDir == "" {
		return errors.Wrap(ErrConfiguration, "tile and preview dirs are required")
	}
	return nil
}

func (c LocatorConfig) Validate() error {
	if c.TileDir == "" {
		return errors.Wrap(ErrConfiguration, "tile dir is required")
	}
	if c.S2Level < 0 || c.S2Level > 30 {
		return errors.Wrapf(ErrConfiguration, "s2 level %d outside 0..30", c.S2Level)
	}
	return nil
}
