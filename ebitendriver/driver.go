// Package ebitendriver puts a windowserver on a real display. It samples
// mouse and keyboard through Ebitengine, ticks the server once per game
// update and shows the composited framebuffer.
package ebitendriver

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/image/draw"

	ws "github.com/phanxgames/windowserver"
)

// RunConfig configures the host window.
type RunConfig struct {
	Title string
	// Scale multiplies the window size; the framebuffer keeps its
	// resolution. Zero means 1.
	Scale int
	// ScreenshotKey, when non-zero, queues a screenshot labeled "manual".
	ScreenshotKey ebiten.Key
	// ShowFPS overlays the actual frame and tick rates.
	ShowFPS bool
}

// Driver is both the server's FrameSink and the ebiten.Game that hosts it.
// Create it before the server and pass it to NewServer, then call Run.
type Driver struct {
	server *ws.Server
	cfg    RunConfig

	pixels  *image.RGBA
	image   *ebiten.Image
	changed bool

	lastPos     ws.Point
	lastButtons ws.MouseButton
	sampled     bool

	keyBuf  []ebiten.Key
	charBuf []rune

	ctx context.Context
}

// New creates a driver for a width x height framebuffer.
func New(width, height int) *Driver {
	return &Driver{pixels: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Present copies the changed region of frame. It runs inside Update.
func (d *Driver) Present(frame *image.RGBA, region image.Rectangle) {
	region = region.Intersect(d.pixels.Rect)
	if region.Empty() {
		return
	}
	draw.Draw(d.pixels, region, frame, region.Min, draw.Src)
	d.changed = true
}

// Run opens the window and blocks until it is closed or ctx is done.
func (d *Driver) Run(ctx context.Context, server *ws.Server, cfg RunConfig) error {
	d.server = server
	d.cfg = cfg
	d.ctx = ctx
	if d.cfg.Scale <= 0 {
		d.cfg.Scale = 1
	}
	b := d.pixels.Rect
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(b.Dx()*d.cfg.Scale, b.Dy()*d.cfg.Scale)
	if server.Config().Cursor {
		ebiten.SetCursorMode(ebiten.CursorModeHidden)
	}
	err := ebiten.RunGame(d)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Update samples input, forwards it and ticks the server.
func (d *Driver) Update() error {
	if d.ctx != nil && d.ctx.Err() != nil {
		return ebiten.Termination
	}
	d.samplePointer()
	d.sampleKeys()
	if d.cfg.ScreenshotKey != 0 && inpututil.IsKeyJustPressed(d.cfg.ScreenshotKey) {
		d.server.Screenshot("manual")
	}
	d.server.Tick()
	return nil
}

func (d *Driver) samplePointer() {
	x, y := ebiten.CursorPosition()
	p := ws.Point{X: x, Y: y}
	buttons := readButtons()
	if d.sampled && p == d.lastPos && buttons == d.lastButtons {
		return
	}
	d.sampled = true
	d.lastPos, d.lastButtons = p, buttons
	d.server.PushPointer(ws.PointerSample{Position: p, Buttons: buttons})
}

func (d *Driver) sampleKeys() {
	mods := readModifiers()

	d.keyBuf = inpututil.AppendJustPressedKeys(d.keyBuf[:0])
	for _, k := range d.keyBuf {
		if key, ok := mapKey(k); ok {
			d.server.PushKey(ws.KeyEvent{Key: key, Down: true, Modifiers: mods})
		}
	}
	d.keyBuf = inpututil.AppendJustReleasedKeys(d.keyBuf[:0])
	for _, k := range d.keyBuf {
		if key, ok := mapKey(k); ok {
			d.server.PushKey(ws.KeyEvent{Key: key, Modifiers: mods})
		}
	}

	d.charBuf = ebiten.AppendInputChars(d.charBuf[:0])
	for _, r := range d.charBuf {
		d.server.PushKey(ws.KeyEvent{Rune: r, Down: true, Modifiers: mods})
	}
}

// Draw uploads the framebuffer when it changed and draws it.
func (d *Driver) Draw(screen *ebiten.Image) {
	if d.image == nil {
		b := d.pixels.Rect
		d.image = ebiten.NewImage(b.Dx(), b.Dy())
		d.changed = true
	}
	if d.changed {
		d.image.WritePixels(d.pixels.Pix)
		d.changed = false
	}
	screen.DrawImage(d.image, nil)
	if d.cfg.ShowFPS {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()), 4, 4)
	}
}

// Layout keeps the logical screen at framebuffer resolution.
func (d *Driver) Layout(_, _ int) (int, int) {
	b := d.pixels.Rect
	return b.Dx(), b.Dy()
}
