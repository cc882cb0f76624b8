package windowserver

// LayoutManager positions the children of the node it is bound to. It reads
// the owner's bounds and the children's preferred sizes and writes child
// bounds with SetBounds, which raises further requirements as needed.
type LayoutManager interface {
	Layout(owner *Node)
}

// GridLayout lays children out left to right in cells of
// ownerWidth/Columns, wrapping to a new row when the next cell would exceed
// the owner's width. Rows > 0 fixes every cell's height to
// ownerHeight/Rows; otherwise a cell is as tall as its child's preferred
// height and a row is as tall as its tallest cell. Columns == 0 gives each
// child the full owner width.
type GridLayout struct {
	Columns int
	Rows    int
}

// NewGridLayout returns a grid with the given dimensions. Negative values
// are treated as 0.
func NewGridLayout(columns, rows int) *GridLayout {
	return &GridLayout{Columns: max(columns, 0), Rows: max(rows, 0)}
}

// Layout implements LayoutManager.
func (g *GridLayout) Layout(owner *Node) {
	if owner == nil {
		return
	}
	parent := owner.Bounds()

	cellWidth := parent.Width
	if g.Columns > 0 {
		cellWidth = parent.Width / g.Columns
	}

	x, y, lineHeight := 0, 0, 0
	for _, c := range owner.Children() {
		cellHeight := c.PreferredSize.Height
		if g.Rows > 0 {
			cellHeight = parent.Height / g.Rows
		}

		if x > 0 && x+cellWidth > parent.Width {
			x = 0
			y += lineHeight
			lineHeight = 0
		}

		c.SetBounds(Rect{x, y, cellWidth, cellHeight})
		x += cellWidth
		lineHeight = max(lineHeight, cellHeight)
	}
}
