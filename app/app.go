package app

import (
	"context"
	"fmt"

	"pirdisplay/hal"
	"pirdisplay/monitor"
	"pirdisplay/screen"
)

// Config selects the monitor configuration. The zero value uses
// monitor.DefaultConfig.
type Config struct {
	Monitor *monitor.Config
	// Clock overrides the wall clock (tests, simulations).
	Clock monitor.Clock
}

func (c Config) monitorConfig() monitor.Config {
	if c.Monitor != nil {
		return *c.Monitor
	}
	return monitor.DefaultConfig()
}

// NewMonitor wires the HAL's pins, display and logger into a Monitor.
func NewMonitor(h hal.HAL, cfg Config) (*monitor.Monitor, error) {
	if h == nil {
		return nil, fmt.Errorf("app: nil HAL")
	}
	mcfg := cfg.monitorConfig()

	gpio := h.GPIO()
	sensor := hal.PinByName(gpio, mcfg.SensorPin)
	if sensor == nil {
		return nil, fmt.Errorf("app: sensor pin %q not found", mcfg.SensorPin)
	}
	// Boards whose indicator is the on-board LED don't list it as a pin.
	indicator := hal.PinByName(gpio, mcfg.IndicatorPin)
	if indicator == nil && mcfg.IndicatorPin == hal.PinLED {
		indicator = hal.LEDPin(hal.PinLED, h.LED())
	}
	if indicator == nil {
		return nil, fmt.Errorf("app: indicator pin %q not found", mcfg.IndicatorPin)
	}

	var fb hal.Framebuffer
	if disp := h.Display(); disp != nil {
		fb = disp.Framebuffer()
	}

	return monitor.New(monitor.Devices{
		Sensor:    sensor,
		Indicator: indicator,
		Surface:   screen.New(fb),
		Log:       h.Logger(),
		Clock:     cfg.Clock,
	}, mcfg)
}

// Run builds the monitor and runs it until ctx is done. A panic in the loop
// is reported on the diagnostic stream and the screen, and returned as an
// error.
func Run(ctx context.Context, h hal.HAL, cfg Config) (err error) {
	defer func() {
		if r := recover(); r != nil {
			info := PanicInfo{Value: r, Stack: captureStack()}
			showPanic(h, info)
			err = fmt.Errorf("app: panic: %v", r)
		}
	}()

	m, err := NewMonitor(h, cfg)
	if err != nil {
		return err
	}
	return m.Run(ctx)
}

// RunForever is the firmware entrypoint. It never returns: after a failure
// the error stays on the screen until power is cycled.
func RunForever(h hal.HAL) {
	if err := Run(context.Background(), h, Config{}); err != nil {
		if l := h.Logger(); l != nil {
			l.WriteLineString("fatal: " + err.Error())
		}
	}
	select {}
}
