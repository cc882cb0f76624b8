package windowserver

import "image"

// Point is a 2D integer position. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Point struct {
	X, Y int
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns p translated by -q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Size is a width/height pair used for layout hints.
type Size struct {
	Width, Height int
}

// Rect is an axis-aligned rectangle. The left and top edges are inclusive,
// the right and bottom edges exclusive. A rectangle with zero area denotes
// "no region".
type Rect struct {
	X, Y, Width, Height int
}

// Pos returns the top-left corner.
func (r Rect) Pos() Point {
	return Point{r.X, r.Y}
}

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size {
	return Size{r.Width, r.Height}
}

// Right returns the exclusive right edge.
func (r Rect) Right() int {
	return r.X + r.Width
}

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.Height
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether p lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() &&
		p.Y >= r.Y && p.Y < r.Bottom()
}

// Translate returns r moved by p.
func (r Rect) Translate(p Point) Rect {
	r.X += p.X
	r.Y += p.Y
	return r
}

// Intersect returns the largest rectangle contained by both r and o. If they
// do not overlap the zero Rect is returned.
func (r Rect) Intersect(o Rect) Rect {
	left := max(r.X, o.X)
	top := max(r.Y, o.Y)
	right := min(r.Right(), o.Right())
	bottom := min(r.Bottom(), o.Bottom())
	if right <= left || bottom <= top {
		return Rect{}
	}
	return Rect{left, top, right - left, bottom - top}
}

// Intersects reports whether r and o share at least one pixel.
func (r Rect) Intersects(o Rect) bool {
	return !r.Intersect(o).Empty()
}

// Union returns the smallest rectangle containing both r and o. Empty
// rectangles are ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	left := min(r.X, o.X)
	top := min(r.Y, o.Y)
	right := max(r.Right(), o.Right())
	bottom := max(r.Bottom(), o.Bottom())
	return Rect{left, top, right - left, bottom - top}
}

// Image converts r to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.Right(), r.Bottom())
}

// RectFromImage converts an image.Rectangle to a Rect.
func RectFromImage(r image.Rectangle) Rect {
	r = r.Canon()
	return Rect{r.Min.X, r.Min.Y, r.Dx(), r.Dy()}
}
