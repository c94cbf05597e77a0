//go:build !tinygo && cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// hostKeyboard drives the simulated PIR line from the window:
// space held means motion, M toggles a latched motion state.
type hostKeyboard struct {
	pin   *virtualPin
	latch bool
}

func newHostKeyboard(pin *virtualPin) *hostKeyboard {
	return &hostKeyboard{pin: pin}
}

func (k *hostKeyboard) poll() {
	if k == nil || k.pin == nil {
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		k.latch = !k.latch
	}
	k.pin.drive(k.latch || ebiten.IsKeyPressed(ebiten.KeySpace))
}
