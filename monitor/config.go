package monitor

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"pirdisplay/hal"

	"tinygo.org/x/drivers"
)

var ErrInvalidConfig = errors.New("monitor: invalid config")

// Messages shown on the screen. MotionText is also the diagnostic line.
const (
	BannerText   = "Motion Detector"
	MotionText   = "Motion detected!"
	NoMotionText = "No motion detected."
)

// Config holds the pin names, timings and look of the monitor.
type Config struct {
	SensorPin    string
	IndicatorPin string

	Rotation drivers.Rotation
	TextSize uint8
	// MessageY is the row the status line is drawn at.
	MessageY int16

	Background color.RGBA
	Alert      color.RGBA
	Foreground color.RGBA

	BannerDwell  time.Duration
	MotionDwell  time.Duration
	PollInterval time.Duration
}

// DefaultConfig returns the stock configuration: landscape, size 2 text,
// white on black, red alert, 2 s banner, 500 ms motion hold, 100 ms poll.
func DefaultConfig() Config {
	return Config{
		SensorPin:    hal.PinPIR,
		IndicatorPin: hal.PinLED,
		Rotation:     drivers.Rotation270,
		TextSize:     2,
		MessageY:     50,
		Background:   color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff},
		Alert:        color.RGBA{R: 0xff, G: 0x00, B: 0x00, A: 0xff},
		Foreground:   color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		BannerDwell:  2000 * time.Millisecond,
		MotionDwell:  500 * time.Millisecond,
		PollInterval: 100 * time.Millisecond,
	}
}

// Validate reports configuration errors wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.SensorPin == "":
		return fmt.Errorf("%w: empty sensor pin", ErrInvalidConfig)
	case c.IndicatorPin == "":
		return fmt.Errorf("%w: empty indicator pin", ErrInvalidConfig)
	case c.SensorPin == c.IndicatorPin:
		return fmt.Errorf("%w: sensor and indicator share pin %s", ErrInvalidConfig, c.SensorPin)
	case c.TextSize == 0:
		return fmt.Errorf("%w: text size 0", ErrInvalidConfig)
	case c.Rotation > drivers.Rotation270:
		return fmt.Errorf("%w: rotation %d", ErrInvalidConfig, c.Rotation)
	case c.BannerDwell < 0, c.MotionDwell < 0, c.PollInterval < 0:
		return fmt.Errorf("%w: negative duration", ErrInvalidConfig)
	}
	return nil
}
