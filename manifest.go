package geotile

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/wgdzlh/geotile/utils"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// 检测记录：瓦片名（无扩展名）+ 区域码
type Detection struct {
	Name   string
	Region string
	Line   int
}

// ParseManifest reads "name;region" lines. Lines without ';' or with an
// empty name are skipped. The name is reduced to its base name without
// extension.
func ParseManifest(r io.Reader) (dets []Detection, err error) {
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		name, region, ok := strings.Cut(line, MANIFEST_SEP)
		if !ok {
			continue
		}
		name = utils.GetFilenameWithoutExt(strings.TrimSpace(name))
		if name == "" || name == "." {
			continue
		}
		dets = append(dets, Detection{
			Name:   name,
			Region: strings.TrimSpace(region),
			Line:   n,
		})
	}
	err = sc.Err()
	return
}

// LoadManifest opens and parses a manifest file in the given encoding
// ("" or UTF-8 with optional BOM, or GBK).
func LoadManifest(path, encoding string) (dets []Detection, err error) {
	f, err := os.Open(path)
	if err != nil {
		err = errors.Wrapf(ErrManifestUnreadable, "%s: %v", path, err)
		return
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	r, err := utils.DecodeReader(f, encoding)
	if err != nil {
		err = errors.Wrapf(ErrConfiguration, "manifest encoding %q: %v", encoding, err)
		return
	}
	if dets, err = ParseManifest(r); err != nil {
		err = errors.Wrapf(ErrManifestUnreadable, "%s: %v", path, err)
	}
	return
}
