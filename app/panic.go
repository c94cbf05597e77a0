package app

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"pirdisplay/hal"
	"pirdisplay/screen"
)

// PanicInfo contains details about a recovered panic.
type PanicInfo struct {
	Value any
	Stack []byte
}

// showPanic writes the panic to the diagnostic stream and paints it on a
// white screen, wrapped to the display width.
func showPanic(h hal.HAL, info PanicInfo) {
	if h == nil {
		return
	}
	lines := panicLines(info)

	if l := h.Logger(); l != nil {
		for _, line := range lines {
			l.WriteLineString(line)
		}
	}

	disp := h.Display()
	if disp == nil {
		return
	}
	fb := disp.Framebuffer()
	if fb == nil {
		return
	}

	s := screen.New(fb)
	s.FillScreen(screen.White)
	s.SetTextColor(screen.Black, screen.White)
	s.SetTextSize(1)
	s.SetCursor(0, 0)

	w, maxH := s.Size()
	lineH := s.LineHeight()
	charW := s.TextWidth("0")
	if charW <= 0 || lineH <= 0 {
		_ = s.Display()
		return
	}
	cols := w / charW
	if cols <= 0 {
		cols = 1
	}

	for _, line := range lines {
		for len(line) > 0 {
			if _, y := s.Cursor(); y+lineH > maxH {
				_ = s.Display()
				return
			}
			chunk, rest := takeRunes(line, cols)
			s.Println(chunk)
			line = strings.TrimLeft(rest, " ")
		}
	}
	_ = s.Display()
}

func panicLines(info PanicInfo) []string {
	lines := []string{
		"Panic:",
		fmt.Sprintf("panic: %v", info.Value),
	}
	if len(info.Stack) == 0 {
		return append(lines, "stack: unavailable")
	}
	lines = append(lines, "stack:")
	for _, line := range strings.Split(string(info.Stack), "\n") {
		if line == "" {
			continue
		}
		lines = append(lines, strings.TrimSpace(line))
	}
	return lines
}

func takeRunes(s string, n int16) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if int64(len(s)) <= int64(n) {
		return s, ""
	}
	var i int
	var count int16
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		if size <= 0 {
			break
		}
		i += size
		count++
	}
	if i >= len(s) {
		return s, ""
	}
	return s[:i], s[i:]
}
