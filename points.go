package geotile

import (
	"sort"

	"github.com/dhconnelly/rtreego"
)

type Point struct {
	X float64
	Y float64
}

type PointFeature struct {
	Point
	Name   string
	Region Region
}

// 点集合，所有点共用一个坐标系
type PointCollection struct {
	CRS      CRS
	Features []PointFeature
}

func NewPointCollection(crs CRS) *PointCollection {
	return &PointCollection{CRS: crs, Features: []PointFeature{}}
}

func (c *PointCollection) Len() int {
	return len(c.Features)
}

func (c *PointCollection) Points() []Point {
	pts := make([]Point, len(c.Features))
	for i, f := range c.Features {
		pts[i] = f.Point
	}
	return pts
}

func (c *PointCollection) SetPoints(pts []Point) {
	for i := range c.Features {
		c.Features[i].Point = pts[i]
	}
}

// Span is an axis-aligned bounding box.
type Span struct {
	MinX, MinY, MaxX, MaxY float64
}

func (s Span) Contains(p Point) bool {
	return p.X >= s.MinX && p.X <= s.MaxX && p.Y >= s.MinY && p.Y <= s.MaxY
}

// point rects need a non-zero extent in the R-tree
const pointEpsilon = 1e-9

type indexedPoint struct {
	idx int
	pt  Point
}

func (p *indexedPoint) Bounds() rtreego.Rect {
	rect, _ := rtreego.NewRect(rtreego.Point{p.pt.X, p.pt.Y}, []float64{pointEpsilon, pointEpsilon})
	return rect
}

// Within returns a collection holding the features inside s, in their
// original order.
func (c *PointCollection) Within(s Span) *PointCollection {
	out := NewPointCollection(c.CRS)
	if len(c.Features) == 0 {
		return out
	}
	tree := rtreego.NewTree(2, 25, 50)
	for i, f := range c.Features {
		tree.Insert(&indexedPoint{idx: i, pt: f.Point})
	}
	lx, ly := s.MaxX-s.MinX, s.MaxY-s.MinY
	if lx < pointEpsilon {
		lx = pointEpsilon
	}
	if ly < pointEpsilon {
		ly = pointEpsilon
	}
	query, err := rtreego.NewRect(rtreego.Point{s.MinX, s.MinY}, []float64{lx, ly})
	if err != nil {
		return out
	}
	hits := tree.SearchIntersect(query)
	idx := make([]int, 0, len(hits))
	for _, h := range hits {
		ip := h.(*indexedPoint)
		if s.Contains(ip.pt) {
			idx = append(idx, ip.idx)
		}
	}
	sort.Ints(idx)
	for _, i := range idx {
		out.Features = append(out.Features, c.Features[i])
	}
	return out
}
