package geotile

import (
	"github.com/pkg/errors"
)

// Block holds the pixels of one window. Data is a typed slice laid out band
// after band (band-interleaved), len = Bands*Width*Height. Element types
// follow GDAL: Byte, UInt16, Int16, UInt32, Int32, Float32, Float64.
type Block struct {
	Width  int
	Height int
	Bands  int
	Data   any
}

// 按数据类型名分配缓冲区，类型名与GDAL一致
func NewBlock(dataType string, bands, width, height int) (b *Block, err error) {
	n := bands * width * height
	var data any
	switch dataType {
	case "Byte":
		data = make([]uint8, n)
	case "UInt16":
		data = make([]uint16, n)
	case "Int16":
		data = make([]int16, n)
	case "UInt32":
		data = make([]uint32, n)
	case "Int32":
		data = make([]int32, n)
	case "Float32":
		data = make([]float32, n)
	case "Float64":
		data = make([]float64, n)
	default:
		err = errors.Wrapf(ErrUnsupportedDtype, "%q", dataType)
		return
	}
	b = &Block{Width: width, Height: height, Bands: bands, Data: data}
	return
}

func (b *Block) Len() int {
	switch d := b.Data.(type) {
	case []uint8:
		return len(d)
	case []uint16:
		return len(d)
	case []int16:
		return len(d)
	case []uint32:
		return len(d)
	case []int32:
		return len(d)
	case []float32:
		return len(d)
	case []float64:
		return len(d)
	}
	return 0
}

// Band returns band i (0-based) as float32 samples.
func (b *Block) Band(i int) (ret []float32, err error) {
	if i < 0 || i >= b.Bands {
		err = errors.Errorf("band %d out of range [0,%d)", i, b.Bands)
		return
	}
	n := b.Width * b.Height
	if b.Len() < b.Bands*n {
		err = errors.Errorf("block holds %d samples, want %d", b.Len(), b.Bands*n)
		return
	}
	lo, hi := i*n, (i+1)*n
	ret = make([]float32, n)
	switch d := b.Data.(type) {
	case []uint8:
		convert(ret, d[lo:hi])
	case []uint16:
		convert(ret, d[lo:hi])
	case []int16:
		convert(ret, d[lo:hi])
	case []uint32:
		convert(ret, d[lo:hi])
	case []int32:
		convert(ret, d[lo:hi])
	case []float32:
		copy(ret, d[lo:hi])
	case []float64:
		convert(ret, d[lo:hi])
	default:
		err = errors.Wrapf(ErrUnsupportedDtype, "%T", b.Data)
	}
	return
}

type number interface {
	~uint8 | ~uint16 | ~int16 | ~uint32 | ~int32 | ~float32 | ~float64
}

func convert[T number](dst []float32, src []T) {
	for i, v := range src {
		dst[i] = float32(v)
	}
}
