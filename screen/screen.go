// Package screen is a small text-and-fill drawing surface over a
// hal.Framebuffer, modelled on the cursor/println API of common TFT libraries.
package screen

import (
	"errors"
	"image/color"

	"pirdisplay/hal"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// Named colours.
var (
	Black = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}
	White = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	Red   = color.RGBA{R: 0xff, G: 0x00, B: 0x00, A: 0xff}
)

var defaultFont tinyfont.Fonter = &proggy.TinySZ8pt7b

// Screen draws into a framebuffer. It implements drivers.Displayer.
//
// A Screen is not safe for concurrent use, but the framebuffer it draws
// into may be read concurrently: every fill and text line is drawn under
// the framebuffer lock.
type Screen struct {
	fb   hal.Framebuffer
	font tinyfont.Fonter

	cursorX, cursorY int16
	fg, bg           color.RGBA
	size             int16

	ascent int16
}

// New returns a Screen drawing into fb with white-on-black size 1 text.
func New(fb hal.Framebuffer) *Screen {
	return &Screen{
		fb:     fb,
		font:   defaultFont,
		fg:     White,
		bg:     Black,
		size:   1,
		ascent: fontAscent(defaultFont),
	}
}

// Size returns the logical size of the surface.
func (s *Screen) Size() (x, y int16) {
	if s.fb == nil {
		return 0, 0
	}
	return int16(s.fb.Width()), int16(s.fb.Height())
}

func (s *Screen) SetPixel(x, y int16, c color.RGBA) {
	if !s.drawable() {
		return
	}
	s.fb.WithBuffer(func(buf []byte, w, h, stride int) {
		canvas{buf: buf, w: w, h: h, stride: stride}.setPixel(int(x), int(y), c)
	})
}

// Display presents the framebuffer. Backends without a panel report
// hal.ErrNotImplemented, which is not an error here.
func (s *Screen) Display() error {
	if s.fb == nil {
		return nil
	}
	if err := s.fb.Present(); err != nil && !errors.Is(err, hal.ErrNotImplemented) {
		return err
	}
	return nil
}

// SetRotation changes the orientation. The logical size follows.
func (s *Screen) SetRotation(rotation drivers.Rotation) error {
	if s.fb == nil {
		return nil
	}
	return s.fb.SetRotation(rotation)
}

// FillScreen paints every pixel with c.
func (s *Screen) FillScreen(c color.RGBA) {
	if !s.drawable() {
		return
	}
	s.fb.ClearRGB(c.R, c.G, c.B)
}

func (s *Screen) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	if !s.drawable() {
		return nil
	}
	s.fb.WithBuffer(func(buf []byte, w, h, stride int) {
		canvas{buf: buf, w: w, h: h, stride: stride}.fill(int(x), int(y), int(width), int(height), c)
	})
	return nil
}

// SetCursor moves the top-left corner of the next text line.
func (s *Screen) SetCursor(x, y int16) {
	s.cursorX, s.cursorY = x, y
}

// Cursor reports the current cursor position.
func (s *Screen) Cursor() (x, y int16) {
	return s.cursorX, s.cursorY
}

// SetTextColor sets the glyph colour and the colour painted behind glyphs.
func (s *Screen) SetTextColor(fg, bg color.RGBA) {
	s.fg, s.bg = fg, bg
}

// SetTextSize sets the integer glyph scale. Zero is treated as 1.
func (s *Screen) SetTextSize(n uint8) {
	if n == 0 {
		n = 1
	}
	s.size = int16(n)
}

// LineHeight is the vertical advance of one text line at the current size.
func (s *Screen) LineHeight() int16 {
	if s.font == nil {
		return 0
	}
	return int16(s.font.GetYAdvance()) * s.size
}

// TextWidth is the width of str at the current size.
func (s *Screen) TextWidth(str string) int16 {
	if s.font == nil {
		return 0
	}
	_, outbox := tinyfont.LineWidth(s.font, str)
	return int16(outbox) * s.size
}

// Print draws str at the cursor on a background box and advances the
// cursor horizontally.
func (s *Screen) Print(str string) {
	if s.font == nil || !s.drawable() {
		return
	}
	w := s.TextWidth(str)
	lh := s.LineHeight()
	s.fb.WithBuffer(func(buf []byte, fw, fh, stride int) {
		c := canvas{buf: buf, w: fw, h: fh, stride: stride}
		c.fill(int(s.cursorX), int(s.cursorY), int(w), int(lh), s.bg)
		d := &scaled{dst: c, ox: s.cursorX, oy: s.cursorY, n: s.size}
		tinyfont.WriteLine(d, s.font, 0, s.ascent, str, s.fg)
	})
	s.cursorX += w
}

// Println is Print followed by a move to the start of the next line.
func (s *Screen) Println(str string) {
	s.Print(str)
	s.cursorX = 0
	s.cursorY += s.LineHeight()
}

func (s *Screen) drawable() bool {
	return s.fb != nil && s.fb.Format() == hal.PixelFormatRGB565
}

// canvas is a locked view of the framebuffer pixels.
type canvas struct {
	buf    []byte
	w, h   int
	stride int
}

func (c canvas) setPixel(x, y int, col color.RGBA) {
	if x < 0 || x >= c.w || y < 0 || y >= c.h {
		return
	}
	off := y*c.stride + x*2
	if off+1 >= len(c.buf) {
		return
	}
	pixel := rgb565From888(col.R, col.G, col.B)
	c.buf[off] = byte(pixel)
	c.buf[off+1] = byte(pixel >> 8)
}

func (c canvas) fill(x, y, width, height int, col color.RGBA) {
	x0 := clampInt(x, 0, c.w)
	y0 := clampInt(y, 0, c.h)
	x1 := clampInt(x+width, 0, c.w)
	y1 := clampInt(y+height, 0, c.h)
	if x0 >= x1 || y0 >= y1 {
		return
	}

	pixel := rgb565From888(col.R, col.G, col.B)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for py := y0; py < y1; py++ {
		row := py * c.stride
		for px := x0; px < x1; px++ {
			off := row + px*2
			if off+1 >= len(c.buf) {
				break
			}
			c.buf[off] = lo
			c.buf[off+1] = hi
		}
	}
}

// scaled maps glyph pixels drawn around the origin onto n×n blocks at
// (ox, oy) on dst.
type scaled struct {
	dst    canvas
	ox, oy int16
	n      int16
}

func (d *scaled) Size() (x, y int16) {
	return int16(d.dst.w) / d.n, int16(d.dst.h) / d.n
}

func (d *scaled) SetPixel(x, y int16, c color.RGBA) {
	n := int(d.n)
	px, py := int(d.ox)+int(x)*n, int(d.oy)+int(y)*n
	if n == 1 {
		d.dst.setPixel(px, py, c)
		return
	}
	d.dst.fill(px, py, n, n, c)
}

func (d *scaled) Display() error { return nil }

// fontAscent is the distance from the top of a line to the baseline.
func fontAscent(font tinyfont.Fonter) int16 {
	if font == nil {
		return 0
	}
	var top int16
	for _, r := range "MAgjl" {
		info := font.GetGlyph(r).Info()
		if off := -int16(info.YOffset); off > top {
			top = off
		}
	}
	if top == 0 {
		top = int16(font.GetYAdvance())
	}
	return top
}

func rgb565From888(r, g, b uint8) uint16 {
	return uint16((uint16(r>>3)&0x1F)<<11 | (uint16(g>>2)&0x3F)<<5 | (uint16(b>>3) & 0x1F))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
