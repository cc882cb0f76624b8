package ebitendriver

import (
	"github.com/hajimehoshi/ebiten/v2"

	ws "github.com/phanxgames/windowserver"
)

// keyMap translates the non-printable ebiten keys the server understands.
// Printable input arrives through ebiten.AppendInputChars instead.
var keyMap = map[ebiten.Key]ws.Key{
	ebiten.KeyBackspace:   ws.KeyBackspace,
	ebiten.KeyDelete:      ws.KeyDelete,
	ebiten.KeyEnter:       ws.KeyEnter,
	ebiten.KeyNumpadEnter: ws.KeyEnter,
	ebiten.KeyTab:         ws.KeyTab,
	ebiten.KeyEscape:      ws.KeyEscape,
	ebiten.KeyArrowLeft:   ws.KeyLeft,
	ebiten.KeyArrowRight:  ws.KeyRight,
	ebiten.KeyArrowUp:     ws.KeyUp,
	ebiten.KeyArrowDown:   ws.KeyDown,
	ebiten.KeyHome:        ws.KeyHome,
	ebiten.KeyEnd:         ws.KeyEnd,
}

// mapKey returns the server key for k, or false if k is not forwarded.
func mapKey(k ebiten.Key) (ws.Key, bool) {
	key, ok := keyMap[k]
	return key, ok
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() ws.KeyModifiers {
	var mods ws.KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ws.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ws.ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ws.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ws.ModMeta
	}
	return mods
}

// readButtons reads the held mouse buttons as a server bitmask.
func readButtons() ws.MouseButton {
	var b ws.MouseButton
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		b |= ws.MouseButtonLeft
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		b |= ws.MouseButtonRight
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle) {
		b |= ws.MouseButtonMiddle
	}
	return b
}
