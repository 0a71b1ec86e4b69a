package parser

import (
	"math"

	"github.com/dgallion1/pdfinsight/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

const (
	ruleThickness = 2.0  // max thickness of a ruling line
	minRuleLength = 10.0 // shorter rules are decoration
	touchSlack    = 2.0  // rules closer than this belong to one grid
	maxRects      = 4000 // pages with more rectangles are not scanned
)

type rectKind int

const (
	kindOther rectKind = iota
	kindHRule
	kindVRule
	kindCell
)

type rect struct {
	x0, y0, x1, y1 float64
	kind           rectKind
}

// detectTables finds ruled grids among the page's rectangles and returns
// their bounding boxes in top-origin coordinates. A cluster of touching
// rectangles is a table when it has at least two horizontal and two
// vertical rules, or at least four cell rectangles.
func detectTables(rects []pdflib.Rect, pageWidth, pageHeight float64) []doctree.Box {
	if len(rects) == 0 || len(rects) > maxRects {
		return nil
	}

	rs := make([]rect, 0, len(rects))
	for _, r := range rects {
		x0, x1 := math.Min(r.Min.X, r.Max.X), math.Max(r.Min.X, r.Max.X)
		y0, y1 := math.Min(r.Min.Y, r.Max.Y), math.Max(r.Min.Y, r.Max.Y)
		w, h := x1-x0, y1-y0
		var k rectKind
		switch {
		case w >= pageWidth*0.95 && h >= pageHeight*0.95:
			continue // page background
		case h <= ruleThickness && w >= minRuleLength:
			k = kindHRule
		case w <= ruleThickness && h >= minRuleLength:
			k = kindVRule
		case w > ruleThickness && h > ruleThickness:
			k = kindCell
		default:
			continue
		}
		rs = append(rs, rect{x0, y0, x1, y1, k})
	}

	parent := make([]int, len(rs))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	for i := range rs {
		for j := i + 1; j < len(rs); j++ {
			if touches(rs[i], rs[j]) {
				parent[find(i)] = find(j)
			}
		}
	}

	type cluster struct {
		box         rect
		h, v, cells int
	}
	clusters := map[int]*cluster{}
	var order []int
	for i, r := range rs {
		root := find(i)
		c, ok := clusters[root]
		if !ok {
			c = &cluster{box: r}
			clusters[root] = c
			order = append(order, root)
		}
		c.box.x0 = math.Min(c.box.x0, r.x0)
		c.box.y0 = math.Min(c.box.y0, r.y0)
		c.box.x1 = math.Max(c.box.x1, r.x1)
		c.box.y1 = math.Max(c.box.y1, r.y1)
		switch r.kind {
		case kindHRule:
			c.h++
		case kindVRule:
			c.v++
		case kindCell:
			c.cells++
		}
	}

	var boxes []doctree.Box
	for _, root := range order {
		c := clusters[root]
		if (c.h >= 2 && c.v >= 2) || c.cells >= 4 {
			boxes = append(boxes, doctree.Box{
				X0:     c.box.x0,
				Top:    pageHeight - c.box.y1,
				X1:     c.box.x1,
				Bottom: pageHeight - c.box.y0,
			})
		}
	}
	return boxes
}

func touches(a, b rect) bool {
	return a.x0 <= b.x1+touchSlack && b.x0 <= a.x1+touchSlack &&
		a.y0 <= b.y1+touchSlack && b.y0 <= a.y1+touchSlack
}
