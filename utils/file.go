package utils

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	FILE_EXT_SHP     = ".shp"
	FILE_EXT_GEOJSON = ".geojson"
	FILE_EXT_JSON    = ".json"
	FILE_EXT_TIF     = ".tif"
	FILE_EXT_JPG     = ".jpg"
)

// shp伴随文件
var ShpSidecars = []string{FILE_EXT_SHP, ".shx", ".dbf", ".prj", ".cpg"}

func GetFilenameWithoutExt(path string) (name string) {
	name = filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return
}

func EnsureDir(path string) (err error) {
	err = os.MkdirAll(path, os.ModePerm)
	return
}

func FileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

func DirExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}

// 同目录下的唯一临时路径，保留扩展名
func GetUniqSibling(path string) string {
	dir, ext := filepath.Dir(path), filepath.Ext(path)
	return filepath.Join(dir, "."+uuid.NewString()+ext)
}

// 去掉扩展名（不区分大小写），得到shp文件组的公共前缀
func ShpPrefix(shp string) string {
	return strings.TrimSuffix(shp, filepath.Ext(shp))
}

// 列出shp文件组中实际存在的文件，伴随文件扩展名大小写与驱动写出的一致
func ShpFiles(shp string) (files []string) {
	prefix := filepath.Base(ShpPrefix(shp))
	dir := filepath.Dir(shp)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		ext := name[len(prefix):]
		for _, side := range ShpSidecars {
			if strings.EqualFold(ext, side) {
				files = append(files, filepath.Join(dir, name))
				break
			}
		}
	}
	return
}

// 将所有shp伴随文件从tmp前缀重命名到目标前缀，保留各自的扩展名
func RenameShapefile(tmp, dst string) (err error) {
	files := ShpFiles(tmp)
	if len(files) == 0 {
		return os.ErrNotExist
	}
	tmpBase, dstPrefix := filepath.Base(ShpPrefix(tmp)), ShpPrefix(dst)
	for _, f := range files {
		if err = os.Rename(f, dstPrefix+filepath.Base(f)[len(tmpBase):]); err != nil {
			return
		}
	}
	return
}

func RemoveShapefile(shp string) {
	for _, f := range ShpFiles(shp) {
		os.Remove(f)
	}
}

// 逐行写入文本文件
func WriteLines(path string, lines []string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return
	}
	w := bufio.NewWriter(f)
	for _, l := range lines {
		w.WriteString(l)
		w.WriteByte('\n')
	}
	if err = w.Flush(); err != nil {
		f.Close()
		return
	}
	err = f.Close()
	return
}
