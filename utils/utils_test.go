package utils

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFilenameWithoutExt(t *testing.T) {
	assert.Equal(t, "evi_crop_0_128", GetFilenameWithoutExt("evi_crop_0_128.jpg"))
	assert.Equal(t, "evi_crop_0_128", GetFilenameWithoutExt("some/dir/evi_crop_0_128.tif"))
	assert.Equal(t, "tileA", GetFilenameWithoutExt("tileA"))
}

func TestDecodeReader(t *testing.T) {
	r, err := DecodeReader(strings.NewReader("\ufefftileA;C\n"), "")
	require.NoError(t, err)
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "tileA;C\n", string(b))

	gbk, err := Utf8StrToGbk("图斑;NE")
	require.NoError(t, err)
	r, err = DecodeReader(strings.NewReader(gbk), "gbk")
	require.NoError(t, err)
	b, err = io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "图斑;NE", string(b))

	_, err = DecodeReader(strings.NewReader(""), "latin9000")
	assert.ErrorIs(t, err, ErrUnknownEncoding)
}

func TestStrToFloats(t *testing.T) {
	assert.Equal(t, []float64{1, -2.5, 3}, StrToFloats("1, -2.5,x,3", ","))
}

func TestWriteLinesAndRenameShapefile(t *testing.T) {
	dir := t.TempDir()
	tmp := filepath.Join(dir, ".tmp.shp")
	for _, ext := range []string{".shp", ".shx", ".dbf"} {
		require.NoError(t, WriteLines(strings.TrimSuffix(tmp, ".shp")+ext, []string{"x"}))
	}
	dst := filepath.Join(dir, "out.shp")
	require.NoError(t, RenameShapefile(tmp, dst))
	for _, ext := range []string{".shp", ".shx", ".dbf"} {
		assert.True(t, FileExists(filepath.Join(dir, "out"+ext)))
		assert.False(t, FileExists(filepath.Join(dir, ".tmp"+ext)))
	}
	b, err := os.ReadFile(filepath.Join(dir, "out.dbf"))
	require.NoError(t, err)
	assert.Equal(t, "x\n", string(b))

	RemoveShapefile(dst)
	assert.False(t, FileExists(dst))
}

// 大写扩展名：伴随文件保留驱动写出时的大小写
func TestRenameShapefileUpperExt(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.SHP")
	tmp := GetUniqSibling(dst)
	prefix := ShpPrefix(tmp)
	for _, ext := range []string{".SHP", ".SHX", ".DBF", ".prj", ".cpg"} {
		require.NoError(t, WriteLines(prefix+ext, []string{ext}))
	}
	require.NoError(t, WriteLines(filepath.Join(dir, "keep.txt"), nil))
	assert.Len(t, ShpFiles(tmp), 5)

	require.NoError(t, RenameShapefile(tmp, dst))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"out.SHP", "out.SHX", "out.DBF", "out.prj", "out.cpg", "keep.txt"}, names)
	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, ".SHP\n", string(b))

	RemoveShapefile(dst)
	assert.Empty(t, ShpFiles(dst))
	assert.True(t, FileExists(filepath.Join(dir, "keep.txt")))

	assert.Error(t, RenameShapefile(tmp, dst))
}

func TestGetUniqSibling(t *testing.T) {
	a := GetUniqSibling("/data/out.shp")
	b := GetUniqSibling("/data/out.shp")
	assert.NotEqual(t, a, b)
	assert.Equal(t, "/data", filepath.Dir(a))
	assert.Equal(t, ".shp", filepath.Ext(a))
}
