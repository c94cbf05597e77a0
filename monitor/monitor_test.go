package monitor

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"reflect"
	"testing"
	"time"

	"pirdisplay/hal"

	"tinygo.org/x/drivers"
)

type fakePin struct {
	name    string
	mode    hal.GPIOMode
	level   bool
	writes  []bool
	readErr error
	cfgErr  error
}

func (p *fakePin) Name() string       { return p.name }
func (p *fakePin) Caps() hal.GPIOCaps { return hal.GPIOCapInput | hal.GPIOCapOutput }

func (p *fakePin) Configure(mode hal.GPIOMode, pull hal.GPIOPull) error {
	if p.cfgErr != nil {
		return p.cfgErr
	}
	p.mode = mode
	return nil
}

func (p *fakePin) Read() (bool, error) { return p.level, p.readErr }

func (p *fakePin) Write(level bool) error {
	p.level = level
	p.writes = append(p.writes, level)
	return nil
}

// fakeSurface records every call as a string.
type fakeSurface struct {
	ops []string
}

func (s *fakeSurface) SetRotation(r drivers.Rotation) error {
	s.ops = append(s.ops, fmt.Sprintf("rotate %d", r))
	return nil
}
func (s *fakeSurface) FillScreen(c color.RGBA) { s.ops = append(s.ops, "fill "+colorName(c)) }
func (s *fakeSurface) SetCursor(x, y int16)    { s.ops = append(s.ops, fmt.Sprintf("cursor %d,%d", x, y)) }
func (s *fakeSurface) SetTextColor(fg, bg color.RGBA) {
	s.ops = append(s.ops, "color "+colorName(fg)+"/"+colorName(bg))
}
func (s *fakeSurface) SetTextSize(n uint8) { s.ops = append(s.ops, fmt.Sprintf("size %d", n)) }
func (s *fakeSurface) Println(text string) { s.ops = append(s.ops, "text "+text) }
func (s *fakeSurface) Display() error      { s.ops = append(s.ops, "display"); return nil }

func (s *fakeSurface) reset() { s.ops = nil }

func colorName(c color.RGBA) string {
	switch c {
	case DefaultConfig().Background:
		return "black"
	case DefaultConfig().Alert:
		return "red"
	case DefaultConfig().Foreground:
		return "white"
	}
	return fmt.Sprintf("%v", c)
}

type fakeLogger struct {
	lines []string
}

func (l *fakeLogger) WriteLineString(s string) { l.lines = append(l.lines, s) }
func (l *fakeLogger) WriteLineBytes(b []byte)  { l.lines = append(l.lines, string(b)) }

// fakeClock records requested delays without sleeping. After cancelAfter
// sleeps (if > 0) it cancels the run.
type fakeClock struct {
	sleeps      []time.Duration
	cancelAfter int
	cancel      context.CancelFunc
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	if c.cancelAfter > 0 && len(c.sleeps) >= c.cancelAfter && c.cancel != nil {
		c.cancel()
	}
	return ctx.Err()
}

type rig struct {
	sensor    *fakePin
	indicator *fakePin
	surface   *fakeSurface
	log       *fakeLogger
	clock     *fakeClock
	m         *Monitor
}

func newRig(t *testing.T) *rig {
	t.Helper()
	r := &rig{
		sensor:    &fakePin{name: hal.PinPIR},
		indicator: &fakePin{name: hal.PinLED},
		surface:   &fakeSurface{},
		log:       &fakeLogger{},
		clock:     &fakeClock{},
	}
	m, err := New(Devices{
		Sensor:    r.sensor,
		Indicator: r.indicator,
		Surface:   r.surface,
		Log:       r.log,
		Clock:     r.clock,
	}, DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.m = m
	return r
}

func TestInitShowsBannerThenClears(t *testing.T) {
	r := newRig(t)
	if err := r.m.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if r.sensor.mode != hal.GPIOModeInput {
		t.Fatal("sensor not configured as input")
	}
	if r.indicator.mode != hal.GPIOModeOutput {
		t.Fatal("indicator not configured as output")
	}

	want := []string{
		fmt.Sprintf("rotate %d", drivers.Rotation270),
		"fill black",
		"color white/black",
		"size 2",
		"cursor 0,0",
		"text Motion Detector",
		"display",
		"fill black",
		"display",
	}
	if !reflect.DeepEqual(r.surface.ops, want) {
		t.Fatalf("surface ops =\n%q\nwant\n%q", r.surface.ops, want)
	}
	if !reflect.DeepEqual(r.clock.sleeps, []time.Duration{2000 * time.Millisecond}) {
		t.Fatalf("sleeps = %v, want [2s]", r.clock.sleeps)
	}
	if len(r.log.lines) != 0 {
		t.Fatalf("unexpected log lines %q", r.log.lines)
	}
}

func TestStep(t *testing.T) {
	tests := []struct {
		name      string
		level     bool
		wantState MotionState
		wantOps   []string
		wantLog   []string
		wantSleep []time.Duration
	}{
		{
			name:      "motion",
			level:     true,
			wantState: Motion,
			wantOps:   []string{"fill red", "cursor 0,50", "text Motion detected!", "display"},
			wantLog:   []string{"Motion detected!"},
			wantSleep: []time.Duration{500 * time.Millisecond, 100 * time.Millisecond},
		},
		{
			name:      "no motion",
			level:     false,
			wantState: NoMotion,
			wantOps:   []string{"fill black", "cursor 0,50", "text No motion detected.", "display"},
			wantSleep: []time.Duration{100 * time.Millisecond},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t)
			r.sensor.level = tt.level

			state, err := r.m.Step(context.Background())
			if err != nil {
				t.Fatalf("Step: %v", err)
			}
			if state != tt.wantState {
				t.Fatalf("state = %v, want %v", state, tt.wantState)
			}
			if !reflect.DeepEqual(r.indicator.writes, []bool{tt.level}) {
				t.Fatalf("indicator writes = %v, want [%v]", r.indicator.writes, tt.level)
			}
			if !reflect.DeepEqual(r.surface.ops, tt.wantOps) {
				t.Fatalf("surface ops = %q, want %q", r.surface.ops, tt.wantOps)
			}
			if !reflect.DeepEqual(r.log.lines, tt.wantLog) {
				t.Fatalf("log = %q, want %q", r.log.lines, tt.wantLog)
			}
			if !reflect.DeepEqual(r.clock.sleeps, tt.wantSleep) {
				t.Fatalf("sleeps = %v, want %v", r.clock.sleeps, tt.wantSleep)
			}
		})
	}
}

func TestStepRepeatsIdenticalWrites(t *testing.T) {
	r := newRig(t)
	r.sensor.level = true

	if _, err := r.m.Step(context.Background()); err != nil {
		t.Fatalf("Step: %v", err)
	}
	first := append([]string(nil), r.surface.ops...)
	r.surface.reset()

	if _, err := r.m.Step(context.Background()); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !reflect.DeepEqual(r.surface.ops, first) {
		t.Fatalf("second cycle ops = %q, want %q", r.surface.ops, first)
	}
	if !reflect.DeepEqual(r.indicator.writes, []bool{true, true}) {
		t.Fatalf("indicator writes = %v", r.indicator.writes)
	}
	if len(r.log.lines) != 2 {
		t.Fatalf("log lines = %q, want one per motion cycle", r.log.lines)
	}
}

func TestIndicatorFollowsEveryReading(t *testing.T) {
	r := newRig(t)
	readings := []bool{false, true, true, false, true, false, false}
	motion := 0
	for _, level := range readings {
		r.sensor.level = level
		if level {
			motion++
		}
		if _, err := r.m.Step(context.Background()); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if !reflect.DeepEqual(r.indicator.writes, readings) {
		t.Fatalf("indicator writes = %v, want %v", r.indicator.writes, readings)
	}
	if len(r.log.lines) != motion {
		t.Fatalf("log lines = %d, want %d", len(r.log.lines), motion)
	}
	for _, d := range r.clock.sleeps {
		if d < 100*time.Millisecond {
			t.Fatalf("sleep %v shorter than poll interval", d)
		}
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	r := newRig(t)
	r.sensor.level = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// banner + 2 motion cycles (dwell, poll) + dwell of the third.
	r.clock.cancel = cancel
	r.clock.cancelAfter = 6

	err := r.m.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run err = %v, want context.Canceled", err)
	}
	if len(r.log.lines) != 3 {
		t.Fatalf("log lines = %d, want 3", len(r.log.lines))
	}
	if len(r.indicator.writes) != 3 {
		t.Fatalf("indicator writes = %d, want 3", len(r.indicator.writes))
	}
}

func TestStepReadError(t *testing.T) {
	r := newRig(t)
	boom := errors.New("bus fault")
	r.sensor.readErr = boom

	_, err := r.m.Step(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Step err = %v, want %v", err, boom)
	}
	if len(r.indicator.writes) != 0 || len(r.surface.ops) != 0 || len(r.clock.sleeps) != 0 {
		t.Fatal("no side effects expected after a failed read")
	}
}

func TestInitConfigureError(t *testing.T) {
	r := newRig(t)
	boom := errors.New("no such line")
	r.indicator.cfgErr = boom
	if err := r.m.Init(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Init err = %v, want %v", err, boom)
	}
}

func TestNewRejectsMissingDevices(t *testing.T) {
	pin := &fakePin{}
	surface := &fakeSurface{}
	tests := []struct {
		name string
		d    Devices
	}{
		{"no sensor", Devices{Indicator: pin, Surface: surface}},
		{"no indicator", Devices{Sensor: pin, Surface: surface}},
		{"no surface", Devices{Sensor: pin, Indicator: pin}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.d, DefaultConfig()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "default", mutate: func(*Config) {}},
		{name: "empty sensor", mutate: func(c *Config) { c.SensorPin = "" }, wantErr: true},
		{name: "empty indicator", mutate: func(c *Config) { c.IndicatorPin = "" }, wantErr: true},
		{name: "shared pin", mutate: func(c *Config) { c.IndicatorPin = c.SensorPin }, wantErr: true},
		{name: "zero text size", mutate: func(c *Config) { c.TextSize = 0 }, wantErr: true},
		{name: "bad rotation", mutate: func(c *Config) { c.Rotation = drivers.Rotation(7) }, wantErr: true},
		{name: "negative poll", mutate: func(c *Config) { c.PollInterval = -time.Millisecond }, wantErr: true},
		{name: "zero dwell", mutate: func(c *Config) { c.MotionDwell = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("Validate() = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() = %v", err)
			}
		})
	}
}

func TestWallClockSleep(t *testing.T) {
	var c wallClock
	start := time.Now()
	if err := c.Sleep(context.Background(), 10*time.Millisecond); err != nil {
		t.Fatalf("Sleep: %v", err)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Fatal("Sleep returned early")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("Sleep on cancelled ctx = %v", err)
	}
}
