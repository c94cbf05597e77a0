//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Native size of the simulated panel (portrait, like the 1.14" ST7789 modules).
const (
	hostPanelWidth  = 135
	hostPanelHeight = 240
)

// SensorMode selects how the host simulates the PIR input.
type SensorMode string

const (
	// SensorKey follows the keyboard in window mode: space held or M latched.
	SensorKey SensorMode = "key"
	// SensorWalk is a simulated HC-SR501 with someone walking past on a
	// schedule (HostConfig.PIR).
	SensorWalk SensorMode = "walk"
	SensorHigh SensorMode = "high"
	SensorLow  SensorMode = "low"
)

// ParseSensorMode maps a flag value to a SensorMode.
func ParseSensorMode(s string) (SensorMode, error) {
	switch m := SensorMode(s); m {
	case SensorKey, SensorWalk, SensorHigh, SensorLow:
		return m, nil
	}
	return "", fmt.Errorf("unknown pir mode %q (want key, walk, high or low)", s)
}

// HostConfig controls the desktop HAL.
type HostConfig struct {
	Sensor SensorMode
	// PIR is the walk schedule for SensorWalk. Zero fields take
	// DefaultPIRTiming values, except Warmup and Offset.
	PIR PIRTiming

	// Out receives diagnostic lines. Defaults to stdout.
	Out io.Writer
	// Log receives operational logs (LED transitions, backend selection).
	Log zerolog.Logger
}

func (c *HostConfig) setDefaults() {
	if c.Sensor == "" {
		c.Sensor = SensorWalk
	}
	d := DefaultPIRTiming()
	if c.PIR.Period <= 0 {
		c.PIR.Period = d.Period
	}
	if c.PIR.Walk <= 0 {
		c.PIR.Walk = d.Walk
	}
	if c.PIR.Hold <= 0 {
		c.PIR.Hold = d.Hold
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
}

type hostHAL struct {
	logger *hostLogger
	led    *hostLED
	gpio   GPIO
	fb     *memFramebuffer
	kbd    *hostKeyboard
}

// New returns a host HAL with default configuration.
func New() HAL {
	return NewHost(HostConfig{Log: zerolog.Nop()})
}

// NewHost returns a host HAL implementation.
func NewHost(cfg HostConfig) HAL {
	return newHostHAL(cfg)
}

func newHostHAL(cfg HostConfig) *hostHAL {
	cfg.setDefaults()

	logger := &hostLogger{w: cfg.Out}
	led := &hostLED{log: cfg.Log}
	pins := newHostPins(cfg, led)

	return &hostHAL{
		logger: logger,
		led:    led,
		gpio:   newVirtualGPIO([]GPIOPin{pins.pir, pins.led}),
		fb:     newMemFramebuffer(hostPanelWidth, hostPanelHeight),
		kbd:    newHostKeyboard(pins.key),
	}
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) LED() LED         { return h.led }
func (h *hostHAL) GPIO() GPIO       { return h.gpio }
func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }

type hostDisplay struct {
	fb *memFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

type hostLED struct {
	mu  sync.Mutex
	on  bool
	log zerolog.Logger
}

func (l *hostLED) High() { l.set(true) }
func (l *hostLED) Low()  { l.set(false) }

func (l *hostLED) set(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.on != on {
		l.log.Debug().Bool("on", on).Msg("led")
	}
	l.on = on
}

func (l *hostLED) isOn() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}

// hostPins are the lines the monitor uses. led is nil when the indicator
// is only reachable through HAL.LED. key is non-nil when the keyboard drives
// the PIR line.
type hostPins struct {
	pir GPIOPin
	led GPIOPin
	key *virtualPin
}

// simulatedPins builds the PIR line without any real hardware.
func simulatedPins(cfg HostConfig) hostPins {
	var out hostPins
	switch cfg.Sensor {
	case SensorKey:
		p := newVirtualPin(PinPIR, GPIOCapInput)
		out.pir, out.key = p, p
	case SensorHigh, SensorLow:
		p := newVirtualPin(PinPIR, GPIOCapInput)
		p.drive(cfg.Sensor == SensorHigh)
		out.pir = p
	default:
		out.pir = newPIRPin(PinPIR, cfg.PIR, time.Now)
	}
	return out
}
