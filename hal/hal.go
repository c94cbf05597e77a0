package hal

import (
	"errors"

	"tinygo.org/x/drivers"
)

// Logger writes newline-delimited log lines.
//
// On hardware this is the serial diagnostic stream.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// LED is a minimal output pin abstraction.
type LED interface {
	High()
	Low()
}

var ErrNotImplemented = errors.New("not implemented")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
//
// Width and Height are logical: they follow the current rotation. All
// methods are safe for concurrent use; the pixels themselves are only
// reachable through WithBuffer.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	// WithBuffer calls fn holding the framebuffer lock. The slice and the
	// size are only valid inside fn, and fn must not call back into the
	// framebuffer.
	WithBuffer(fn func(buf []byte, width, height, stride int))
	ClearRGB(r, g, b uint8)
	Present() error
	Rotation() drivers.Rotation
	SetRotation(r drivers.Rotation) error
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Pin names every backend exposes.
const (
	PinPIR = "PIR"
	PinLED = "LED"
)

// HAL provides the only contact point between the firmware and the outside world.
type HAL interface {
	Logger() Logger
	LED() LED
	GPIO() GPIO
	Display() Display
}
