// Package style maps a worksite's active work type onto a marker template:
// a shape, fill and stroke colours, and an optional multi-type badge.
// Templates stay structured until a renderer serializes them with svgo.
package style

import (
	"bytes"
	"fmt"
	"strings"

	svg "github.com/ajstarks/svgo"
)

// Size is the pixel edge of a marker texture. Shapes are drawn centered on
// the origin so a scale transform keeps the marker anchored on its position.
const Size = 32

// Shape names a marker outline.
type Shape string

const (
	ShapeCircle   Shape = "circle"
	ShapeSquare   Shape = "square"
	ShapeTriangle Shape = "triangle"
	ShapeDiamond  Shape = "diamond"
	ShapeHexagon  Shape = "hexagon"
	ShapeHouse    Shape = "house"
	ShapeUnknown  Shape = "unknown"
)

// Colors is the fill/stroke pair for a style key.
type Colors struct {
	Fill   string `json:"fill_color"`
	Stroke string `json:"stroke_color"`
}

// Template is a marker texture description.
type Template struct {
	Shape          Shape  `json:"shape"`
	FillColor      string `json:"fill_color"`
	StrokeColor    string `json:"stroke_color"`
	MultiTypeBadge bool   `json:"multi_type_badge"`
}

// Key identifies the template; equal templates share a key and a texture.
func (t Template) Key() string {
	key := fmt.Sprintf("%s-%s-%s",
		t.Shape,
		strings.TrimPrefix(t.FillColor, "#"),
		strings.TrimPrefix(t.StrokeColor, "#"),
	)
	if t.MultiTypeBadge {
		key += "-multi"
	}
	return key
}

// Draw writes the marker shapes onto canvas, centered on the origin.
func (t Template) Draw(canvas *svg.SVG) {
	paint := []string{
		fmt.Sprintf(`fill="%s"`, t.FillColor),
		fmt.Sprintf(`stroke="%s"`, t.StrokeColor),
		`stroke-width="2"`,
	}

	switch t.Shape {
	case ShapeSquare:
		canvas.Rect(-11, -11, 22, 22, paint...)
	case ShapeTriangle:
		canvas.Polygon([]int{0, 13, -13}, []int{-13, 11, 11}, paint...)
	case ShapeDiamond:
		canvas.Polygon([]int{0, 13, 0, -13}, []int{-13, 0, 13, 0}, paint...)
	case ShapeHexagon:
		canvas.Polygon([]int{-6, 6, 12, 6, -6, -12}, []int{-11, -11, 0, 11, 11, 0}, paint...)
	case ShapeHouse:
		canvas.Polygon([]int{0, 12, 12, -12, -12}, []int{-13, -2, 12, 12, -2}, paint...)
	case ShapeUnknown:
		canvas.Circle(0, 0, 12, paint...)
		canvas.Text(0, 5, "?", `text-anchor="middle"`, `font-size="14"`, `font-weight="bold"`, `fill="#ffffff"`)
	default:
		canvas.Circle(0, 0, 12, paint...)
	}

	if t.MultiTypeBadge {
		canvas.Circle(10, -10, 6, `fill="#ffffff"`, fmt.Sprintf(`stroke="%s"`, t.StrokeColor), `stroke-width="1"`)
		plus := []string{fmt.Sprintf(`stroke="%s"`, t.StrokeColor), `stroke-width="2"`}
		canvas.Line(7, -10, 13, -10, plus...)
		canvas.Line(10, -13, 10, -7, plus...)
	}
}

// SVG serializes the template as a standalone SVG document.
func (t Template) SVG() string {
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Startview(Size, Size, -Size/2, -Size/2, Size, Size)
	t.Draw(canvas)
	canvas.End()
	return buf.String()
}
