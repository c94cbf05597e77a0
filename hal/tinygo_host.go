//go:build tinygo && !baremetal

package hal

import "time"

type tinyGoHostHAL struct {
	logger *tinyGoHostLogger
	led    *tinyGoHostLED
	gpio   GPIO
	fb     *memFramebuffer
}

// New returns a TinyGo-on-host HAL implementation.
//
// This is used by `tinygo run` targets like linux/wasm where there is no MCU
// pin mapping. The PIR line is a simulated sensor with someone walking past
// every few seconds; the indicator is reached through LED().
func New() HAL {
	l := &tinyGoHostLogger{}
	led := &tinyGoHostLED{}
	return &tinyGoHostHAL{
		logger: l,
		led:    led,
		gpio: newVirtualGPIO([]GPIOPin{
			newPIRPin(PinPIR, DefaultPIRTiming(), time.Now),
		}),
		fb: newMemFramebuffer(135, 240),
	}
}

func (h *tinyGoHostHAL) Logger() Logger   { return h.logger }
func (h *tinyGoHostHAL) LED() LED         { return h.led }
func (h *tinyGoHostHAL) GPIO() GPIO       { return h.gpio }
func (h *tinyGoHostHAL) Display() Display { return tinyGoHostDisplay{fb: h.fb} }

type tinyGoHostDisplay struct {
	fb Framebuffer
}

func (d tinyGoHostDisplay) Framebuffer() Framebuffer { return d.fb }

type tinyGoHostLogger struct{}

func (l *tinyGoHostLogger) WriteLineString(s string) {
	println(s)
}

func (l *tinyGoHostLogger) WriteLineBytes(b []byte) {
	println(string(b))
}

// tinyGoHostLED only tracks state; the diagnostic stream is reserved for
// firmware output.
type tinyGoHostLED struct {
	on bool
}

func (l *tinyGoHostLED) High() { l.on = true }
func (l *tinyGoHostLED) Low()  { l.on = false }
