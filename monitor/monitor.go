// Package monitor runs the PIR polling loop: read the sensor, mirror it on
// the indicator and the screen, log motion, sleep, repeat.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"image/color"

	"pirdisplay/hal"

	"tinygo.org/x/drivers"
)

// MotionState is one sensor reading.
type MotionState uint8

const (
	NoMotion MotionState = iota
	Motion
)

func (s MotionState) String() string {
	if s == Motion {
		return "motion"
	}
	return "no motion"
}

// Surface is the display the monitor draws on.
type Surface interface {
	SetRotation(rotation drivers.Rotation) error
	FillScreen(c color.RGBA)
	SetCursor(x, y int16)
	SetTextColor(fg, bg color.RGBA)
	SetTextSize(n uint8)
	Println(s string)
	Display() error
}

// Devices are the collaborators of a Monitor. Clock may be nil.
type Devices struct {
	Sensor    hal.GPIOPin
	Indicator hal.GPIOPin
	Surface   Surface
	Log       hal.Logger
	Clock     Clock
}

// Monitor owns the sensor, indicator and display for the lifetime of the
// loop. It is not safe for concurrent use.
type Monitor struct {
	cfg       Config
	sensor    hal.GPIOPin
	indicator hal.GPIOPin
	surface   Surface
	log       hal.Logger
	clock     Clock
}

// New validates cfg and returns a Monitor. It does not touch the hardware.
func New(d Devices, cfg Config) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if d.Sensor == nil {
		return nil, errors.New("monitor: no sensor pin")
	}
	if d.Indicator == nil {
		return nil, errors.New("monitor: no indicator pin")
	}
	if d.Surface == nil {
		return nil, errors.New("monitor: no display surface")
	}
	if d.Clock == nil {
		d.Clock = wallClock{}
	}
	return &Monitor{
		cfg:       cfg,
		sensor:    d.Sensor,
		indicator: d.Indicator,
		surface:   d.Surface,
		log:       d.Log,
		clock:     d.Clock,
	}, nil
}

// Init configures the pins and the display, then shows the banner for
// BannerDwell and clears the screen.
func (m *Monitor) Init(ctx context.Context) error {
	if err := m.sensor.Configure(hal.GPIOModeInput, hal.GPIOPullNone); err != nil {
		return fmt.Errorf("monitor: configure sensor: %w", err)
	}
	if err := m.indicator.Configure(hal.GPIOModeOutput, hal.GPIOPullNone); err != nil {
		return fmt.Errorf("monitor: configure indicator: %w", err)
	}

	s := m.surface
	if err := s.SetRotation(m.cfg.Rotation); err != nil {
		return fmt.Errorf("monitor: rotate display: %w", err)
	}
	s.FillScreen(m.cfg.Background)
	s.SetTextColor(m.cfg.Foreground, m.cfg.Background)
	s.SetTextSize(m.cfg.TextSize)
	s.SetCursor(0, 0)
	s.Println(BannerText)
	if err := s.Display(); err != nil {
		return fmt.Errorf("monitor: present: %w", err)
	}

	if err := m.clock.Sleep(ctx, m.cfg.BannerDwell); err != nil {
		return err
	}

	s.FillScreen(m.cfg.Background)
	if err := s.Display(); err != nil {
		return fmt.Errorf("monitor: present: %w", err)
	}
	return nil
}

// Read samples the sensor once.
func (m *Monitor) Read() (MotionState, error) {
	level, err := m.sensor.Read()
	if err != nil {
		return NoMotion, fmt.Errorf("monitor: read sensor: %w", err)
	}
	if level {
		return Motion, nil
	}
	return NoMotion, nil
}

// Step runs one polling cycle, including its delays, and returns the
// reading it acted on. Every cycle redraws, even when the reading has not
// changed.
func (m *Monitor) Step(ctx context.Context) (MotionState, error) {
	state, err := m.Read()
	if err != nil {
		return state, err
	}

	if err := m.show(state); err != nil {
		return state, err
	}

	if state == Motion {
		if m.log != nil {
			m.log.WriteLineString(MotionText)
		}
		if err := m.clock.Sleep(ctx, m.cfg.MotionDwell); err != nil {
			return state, err
		}
	}

	return state, m.clock.Sleep(ctx, m.cfg.PollInterval)
}

// Run initialises the device and polls until ctx is done or a pin fails.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.Init(ctx); err != nil {
		return err
	}
	for {
		if _, err := m.Step(ctx); err != nil {
			return err
		}
	}
}

func (m *Monitor) show(state MotionState) error {
	on := state == Motion
	if err := m.indicator.Write(on); err != nil {
		return fmt.Errorf("monitor: write indicator: %w", err)
	}

	bg, text := m.cfg.Background, NoMotionText
	if on {
		bg, text = m.cfg.Alert, MotionText
	}

	s := m.surface
	s.FillScreen(bg)
	s.SetCursor(0, m.cfg.MessageY)
	s.Println(text)
	if err := s.Display(); err != nil {
		return fmt.Errorf("monitor: present: %w", err)
	}
	return nil
}
