package windowserver

import (
	"image"
	"image/color"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const fontSize = 13

var (
	fontOnce sync.Once
	fontFace font.Face
)

// face returns the shared UI font face. The font is parsed once.
func face() font.Face {
	fontOnce.Do(func() {
		f, err := truetype.Parse(goregular.TTF)
		if err != nil {
			panic("windowserver: parse builtin font: " + err.Error())
		}
		fontFace = truetype.NewFace(f, &truetype.Options{
			Size:    fontSize,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	})
	return fontFace
}

// measureText returns the pixel size of s in the UI font.
func measureText(s string) (w, h int) {
	f := face()
	adv := font.MeasureString(f, s)
	m := f.Metrics()
	return adv.Ceil(), (m.Ascent + m.Descent).Ceil()
}

// Palette
var (
	colorTransparent   = color.RGBA{}
	colorWindow        = color.RGBA{0xf4, 0xf4, 0xf6, 0xff}
	colorWindowBorder  = color.RGBA{0x70, 0x70, 0x80, 0xff}
	colorTitleBar      = color.RGBA{0xd8, 0xd8, 0xe0, 0xff}
	colorTitleBarFocus = color.RGBA{0x46, 0x82, 0xd2, 0xff}
	colorText          = color.RGBA{0x20, 0x20, 0x28, 0xff}
	colorTextInverse   = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorButton        = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorButtonHover   = color.RGBA{0xf5, 0xf5, 0xff, 0xff}
	colorButtonPressed = color.RGBA{0xf0, 0xf0, 0xf0, 0xff}
	colorButtonBorder  = color.RGBA{0xa0, 0xa0, 0xaa, 0xff}
	colorButtonActive  = color.RGBA{0x8c, 0x8c, 0x96, 0xff}
	colorCheckMark     = color.RGBA{0x46, 0xb4, 0xff, 0xff}
	colorDesktopTop    = color.RGBA{0x69, 0x54, 0xa1, 0xff}
	colorDesktopBottom = color.RGBA{0x16, 0x32, 0x64, 0xff}
	colorSelection     = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

// paintType draws n's own visuals into its surface.
func paintType(n *Node) {
	dc := gg.NewContextForRGBA(n.surface)
	dc.SetColor(colorTransparent)
	dc.Clear()
	dc.SetFontFace(face())

	w, h := float64(n.bounds.Width), float64(n.bounds.Height)
	switch n.Type {
	case TypeBackground:
		paintBackground(dc, n, w, h)
	case TypeWindow:
		paintWindow(dc, n, w, h)
	case TypeLabel:
		dc.SetColor(colorText)
		dc.DrawStringAnchored(n.title.text, textPadding, h/2, 0, 0.35)
	case TypeButton:
		paintButton(dc, n, w, h)
	case TypeTextField:
		paintTextField(dc, n, w, h)
	case TypeCheckbox:
		paintCheckbox(dc, n)
	}
}

func paintBackground(dc *gg.Context, n *Node, w, h float64) {
	grad := gg.NewLinearGradient(w*0.4, 0, w*0.8, h)
	grad.AddColorStop(0, colorDesktopTop)
	grad.AddColorStop(1, colorDesktopBottom)
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	if img := n.desktop.image; img != nil {
		b := img.Bounds()
		dc.DrawImage(img, (int(w)-b.Dx())/2, (int(h)-b.Dy())/2)
	}

	if sel := n.desktop.selection; !sel.Empty() {
		dc.SetColor(colorSelection)
		dc.SetLineWidth(1)
		dc.SetDash(2)
		dc.DrawRectangle(float64(sel.X)+0.5, float64(sel.Y)+0.5, float64(sel.Width), float64(sel.Height))
		dc.Stroke()
		dc.SetDash()
	}
}

func paintWindow(dc *gg.Context, n *Node, w, h float64) {
	dc.SetColor(colorWindow)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	bar, text := colorTitleBar, colorText
	if n.focus.focused {
		bar, text = colorTitleBarFocus, colorTextInverse
	}
	dc.SetColor(bar)
	dc.DrawRectangle(0, 0, w, titleBarHeight)
	dc.Fill()
	dc.SetColor(text)
	dc.DrawStringAnchored(n.title.text, 8, titleBarHeight/2, 0, 0.35)

	dc.SetColor(colorWindowBorder)
	dc.SetLineWidth(1)
	dc.DrawRectangle(0.5, 0.5, w-1, h-1)
	dc.Stroke()
}

func paintButton(dc *gg.Context, n *Node, w, h float64) {
	fill, border := colorButton, colorButtonBorder
	switch {
	case n.press.pressed:
		fill, border = colorButtonPressed, colorButtonActive
	case n.press.hovered:
		fill, border = colorButtonHover, colorButtonActive
	}
	dc.SetColor(fill)
	dc.DrawRoundedRectangle(0.5, 0.5, w-1, h-1, 3)
	dc.FillPreserve()
	dc.SetColor(border)
	dc.SetLineWidth(1)
	dc.Stroke()

	dc.SetColor(colorText)
	dc.DrawStringAnchored(n.title.text, w/2, h/2, 0.5, 0.35)
}

func paintTextField(dc *gg.Context, n *Node, w, h float64) {
	dc.SetColor(colorButton)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	border := colorButtonBorder
	if n.focus.focused {
		border = colorTitleBarFocus
	}
	dc.SetColor(border)
	dc.SetLineWidth(1)
	dc.DrawRectangle(0.5, 0.5, w-1, h-1)
	dc.Stroke()

	dc.SetColor(colorText)
	dc.DrawStringAnchored(n.title.text, textPadding, h/2, 0, 0.35)
	if n.focus.focused {
		tw, _ := measureText(n.title.text)
		x := float64(textPadding+tw) + 1.5
		dc.DrawLine(x, 4, x, h-4)
		dc.Stroke()
	}
}

func paintCheckbox(dc *gg.Context, n *Node) {
	box := float64(checkboxBoxSize)
	fill, border := colorButton, colorButtonBorder
	switch {
	case n.press.pressed:
		fill, border = colorButtonPressed, colorButtonActive
	case n.press.hovered:
		fill, border = colorButtonHover, colorButtonActive
	}
	dc.SetColor(fill)
	dc.DrawRectangle(0, 0, box, box)
	dc.Fill()
	dc.SetColor(border)
	dc.SetLineWidth(1)
	dc.DrawRectangle(0.5, 0.5, box-1, box-1)
	dc.Stroke()

	if n.check.checked {
		dc.SetColor(colorCheckMark)
		dc.DrawRectangle(4, 4, box-8, box-8)
		dc.Fill()
	}
}

// cursorImage is the software cursor sprite.
var cursorImage = sync.OnceValue(func() *image.RGBA {
	const w, h = 12, 18
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	dc := gg.NewContextForRGBA(img)
	dc.MoveTo(0.5, 0.5)
	dc.LineTo(0.5, 15)
	dc.LineTo(4, 11.5)
	dc.LineTo(7, 17)
	dc.LineTo(9, 16)
	dc.LineTo(6.5, 10.5)
	dc.LineTo(11, 10.5)
	dc.ClosePath()
	dc.SetColor(color.White)
	dc.FillPreserve()
	dc.SetColor(color.Black)
	dc.SetLineWidth(1)
	dc.Stroke()
	return img
})

// cursorArea returns the screen area covered by the cursor sprite at p.
func cursorArea(p Point) Rect {
	b := cursorImage().Bounds()
	return Rect{p.X, p.Y, b.Dx(), b.Dy()}
}
