package windowserver

import (
	"image"

	"golang.org/x/image/draw"
)

// Blit composites the subtree rooted at n into out, depth first and back to
// front. offset is n's origin in out's coordinates and clip the region that
// may be written. Each node draws its surface into the intersection of its
// own area and the inherited clip, and its children inherit that
// intersection, so nothing ever lands outside an ancestor's area. Invisible
// nodes and their subtrees are skipped.
func (n *Node) Blit(out *image.RGBA, clip Rect, offset Point) {
	if !n.visible {
		return
	}
	area := Rect{offset.X, offset.Y, n.bounds.Width, n.bounds.Height}.Intersect(clip)
	if area.Empty() {
		return
	}
	if n.surface != nil {
		src := area.Pos().Sub(offset)
		draw.Draw(out, area.Image(), n.surface, image.Pt(src.X, src.Y), draw.Over)
	}
	for _, c := range n.children {
		c.Blit(out, area, offset.Add(c.bounds.Pos()))
	}
}

// clearRect fills r in out with opaque black.
func clearRect(out *image.RGBA, r Rect) {
	draw.Draw(out, r.Image(), image.Black, image.Point{}, draw.Src)
}
