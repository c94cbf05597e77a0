//go:build !tinygo && linux && rpi

package hal

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// BCM line numbers used on the Raspberry Pi header.
const (
	rpiPIRLine = 17
	rpiLEDLine = 27
)

// newHostPins opens the PIR and LED lines through periph. If the host
// cannot be initialised (not a Pi, no /dev/gpiomem) the simulated pins are
// used instead so the binary still runs.
func newHostPins(cfg HostConfig, led LED) hostPins {
	return periphPins(cfg, led, func() error {
		_, err := host.Init()
		return err
	}, gpioreg.ByName)
}

func periphPins(cfg HostConfig, led LED, initHost func() error, byName func(string) gpio.PinIO) hostPins {
	if err := initHost(); err != nil {
		cfg.Log.Warn().Err(err).Msg("periph init failed, using simulated pins")
		return simulatedPins(cfg)
	}
	pir := byName(fmt.Sprintf("GPIO%d", rpiPIRLine))
	out := byName(fmt.Sprintf("GPIO%d", rpiLEDLine))
	if pir == nil || out == nil {
		cfg.Log.Warn().Int("pir", rpiPIRLine).Int("led", rpiLEDLine).Msg("gpio lines not found, using simulated pins")
		return simulatedPins(cfg)
	}
	cfg.Log.Info().Str("pir", pir.Name()).Str("led", out.Name()).Msg("using periph gpio")
	return hostPins{
		pir: &periphPin{name: PinPIR, p: pir, caps: GPIOCapInput | GPIOCapPullUp | GPIOCapPullDown},
		led: &periphPin{name: PinLED, p: out, caps: GPIOCapOutput, mirror: led},
	}
}

// periphPin adapts a periph GPIO line to GPIOPin.
type periphPin struct {
	name string
	p    gpio.PinIO
	caps GPIOCaps

	// mirror tracks output writes so the host LED state stays observable.
	mirror LED
}

func (p *periphPin) Name() string   { return p.name }
func (p *periphPin) Caps() GPIOCaps { return p.caps }

func (p *periphPin) Configure(mode GPIOMode, pull GPIOPull) error {
	switch mode {
	case GPIOModeInput:
		if p.caps&GPIOCapInput == 0 {
			return fmt.Errorf("gpio: pin %s: input unsupported", p.name)
		}
		var pp gpio.Pull
		switch pull {
		case GPIOPullNone:
			pp = gpio.Float
		case GPIOPullUp:
			pp = gpio.PullUp
		case GPIOPullDown:
			pp = gpio.PullDown
		default:
			return fmt.Errorf("gpio: pin %s: invalid pull", p.name)
		}
		if err := p.p.In(pp, gpio.NoEdge); err != nil {
			return fmt.Errorf("gpio: pin %s: %w", p.name, err)
		}
	case GPIOModeOutput:
		if p.caps&GPIOCapOutput == 0 {
			return fmt.Errorf("gpio: pin %s: output unsupported", p.name)
		}
		if pull != GPIOPullNone {
			return fmt.Errorf("gpio: pin %s: pull unsupported", p.name)
		}
		if err := p.p.Out(gpio.Low); err != nil {
			return fmt.Errorf("gpio: pin %s: %w", p.name, err)
		}
	default:
		return fmt.Errorf("gpio: pin %s: invalid mode", p.name)
	}
	return nil
}

func (p *periphPin) Read() (bool, error) {
	return p.p.Read() == gpio.High, nil
}

func (p *periphPin) Write(level bool) error {
	if err := p.p.Out(gpio.Level(level)); err != nil {
		return fmt.Errorf("gpio: pin %s: %w", p.name, err)
	}
	if p.mirror != nil {
		if level {
			p.mirror.High()
		} else {
			p.mirror.Low()
		}
	}
	return nil
}
