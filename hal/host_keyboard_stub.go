//go:build !tinygo && !cgo

package hal

type hostKeyboard struct {
	pin *virtualPin
}

func newHostKeyboard(pin *virtualPin) *hostKeyboard {
	return &hostKeyboard{pin: pin}
}

func (k *hostKeyboard) poll() {
	// No keyboard support without the window backend.
}
