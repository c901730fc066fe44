package geotile

import "strings"

// Region is a cell of the 3x3 partition of a tile.
type Region uint8

const (
	RegionNW Region = iota
	RegionN
	RegionNE
	RegionW
	RegionC
	RegionE
	RegionSW
	RegionS
	RegionSE
)

var regionTable = [...]struct {
	code     string
	col, row int
}{
	RegionNW: {"NW", 0, 0},
	RegionN:  {"N", 1, 0},
	RegionNE: {"NE", 2, 0},
	RegionW:  {"W", 0, 1},
	RegionC:  {"C", 1, 1},
	RegionE:  {"E", 2, 1},
	RegionSW: {"SW", 0, 2},
	RegionS:  {"S", 1, 2},
	RegionSE: {"SE", 2, 2},
}

// ParseRegion looks up a region code. Codes are case-sensitive, surrounding
// blanks are ignored.
func ParseRegion(code string) (Region, bool) {
	code = strings.TrimSpace(code)
	for r, e := range regionTable {
		if e.code == code {
			return Region(r), true
		}
	}
	return RegionC, false
}

// RegionOrCenter is ParseRegion with unknown codes mapped to C.
func RegionOrCenter(code string) Region {
	r, _ := ParseRegion(code)
	return r
}

func (r Region) Valid() bool {
	return int(r) < len(regionTable)
}

func (r Region) String() string {
	if !r.Valid() {
		return "?"
	}
	return regionTable[r].code
}

// 非法区域按中心格处理
func (r Region) Cell() (col, row int) {
	if !r.Valid() {
		r = RegionC
	}
	e := regionTable[r]
	return e.col, e.row
}

// PixelCenter returns the pixel coordinates of the center of region r in a
// width x height tile. Cells are width/3 by height/3, not truncated.
func PixelCenter(width, height int, r Region) (px, py float64) {
	col, row := r.Cell()
	cellW, cellH := float64(width)/3, float64(height)/3
	px = (float64(col) + 0.5) * cellW
	py = (float64(row) + 0.5) * cellH
	return
}
