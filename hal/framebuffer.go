package hal

import (
	"fmt"
	"sync"

	"tinygo.org/x/drivers"
)

// memFramebuffer is an RGB565 little-endian pixel buffer. The panel size is
// fixed at construction; rotation only swaps the logical axes.
type memFramebuffer struct {
	mu       sync.Mutex
	panelW   int
	panelH   int
	width    int
	height   int
	rotation drivers.Rotation
	buf      []byte
}

// NewFramebuffer returns an in-memory framebuffer for a panel of w×h pixels
// in its native (Rotation0) orientation. Present is a no-op.
func NewFramebuffer(w, h int) Framebuffer {
	return newMemFramebuffer(w, h)
}

func newMemFramebuffer(w, h int) *memFramebuffer {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &memFramebuffer{
		panelW:   w,
		panelH:   h,
		width:    w,
		height:   h,
		rotation: drivers.Rotation0,
		buf:      make([]byte, w*h*2),
	}
}

func (f *memFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *memFramebuffer) Present() error      { return nil }

func (f *memFramebuffer) Width() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.width
}

func (f *memFramebuffer) Height() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.height
}

func (f *memFramebuffer) StrideBytes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.width * 2
}

func (f *memFramebuffer) Rotation() drivers.Rotation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rotation
}

func (f *memFramebuffer) WithBuffer(fn func(buf []byte, width, height, stride int)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f.buf, f.width, f.height, f.width*2)
}

func (f *memFramebuffer) SetRotation(r drivers.Rotation) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r {
	case drivers.Rotation0, drivers.Rotation180:
		f.width, f.height = f.panelW, f.panelH
	case drivers.Rotation90, drivers.Rotation270:
		f.width, f.height = f.panelH, f.panelW
	default:
		return fmt.Errorf("framebuffer: invalid rotation %d", r)
	}
	f.rotation = r
	return nil
}

func (f *memFramebuffer) ClearRGB(r, g, b uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pixel := rgb565(r, g, b)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for i := 0; i+1 < len(f.buf); i += 2 {
		f.buf[i] = lo
		f.buf[i+1] = hi
	}
}

// snapshotRGB565 copies the buffer and returns the logical size it was
// captured at.
func (f *memFramebuffer) snapshotRGB565(dst []byte) (w, h int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(dst, f.buf)
	return f.width, f.height
}
