package utils

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	UTF8  = "UTF8"
	UTF_8 = "UTF-8"
	GBK   = "GBK"
)

func StrToFloats(s, sep string) []float64 {
	var (
		parts = strings.Split(s, sep)
		rets  = make([]float64, 0, len(parts))
	)
	for _, p := range parts {
		f, e := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if e == nil {
			rets = append(rets, f)
		}
	}
	return rets
}

func IsUtf8(enc string) bool {
	enc = strings.ToUpper(enc)
	return enc == "" || enc == UTF8 || enc == UTF_8
}

// 按编码名解码文本流；UTF-8时去掉BOM
func DecodeReader(r io.Reader, enc string) (io.Reader, error) {
	var decoder *encoding.Decoder
	switch {
	case IsUtf8(enc):
		decoder = unicode.UTF8BOM.NewDecoder()
	case strings.ToUpper(enc) == GBK:
		decoder = simplifiedchinese.GBK.NewDecoder()
	default:
		return nil, ErrUnknownEncoding
	}
	return transform.NewReader(r, decoder), nil
}

// UTF-8 string 转 GBK
func Utf8StrToGbk(s string) (d string, e error) {
	t, e := io.ReadAll(transform.NewReader(strings.NewReader(s), simplifiedchinese.GBK.NewEncoder()))
	if e != nil {
		return
	}
	d = string(t)
	return
}
