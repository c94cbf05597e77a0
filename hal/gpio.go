package hal

import (
	"fmt"
	"sync"
	"time"
)

// GPIOMode selects whether a pin is an input or output.
type GPIOMode uint8

const (
	GPIOModeInput GPIOMode = iota
	GPIOModeOutput
)

// GPIOPull selects the pull resistor configuration.
type GPIOPull uint8

const (
	GPIOPullNone GPIOPull = iota
	GPIOPullUp
	GPIOPullDown
)

// GPIOCaps declares what operations a pin supports.
type GPIOCaps uint8

const (
	GPIOCapInput GPIOCaps = 1 << iota
	GPIOCapOutput
	GPIOCapPullUp
	GPIOCapPullDown
)

// GPIO provides access to general-purpose IO pins.
//
// Implementations may return nil if GPIO is unsupported.
type GPIO interface {
	PinCount() int
	Pin(id int) GPIOPin
}

// GPIOPin is a single digital IO pin.
type GPIOPin interface {
	Name() string
	Caps() GPIOCaps
	Configure(mode GPIOMode, pull GPIOPull) error
	Read() (level bool, err error)
	Write(level bool) error
}

// PinByName returns the first pin whose name matches, or nil.
func PinByName(g GPIO, name string) GPIOPin {
	if g == nil {
		return nil
	}
	for i := 0; i < g.PinCount(); i++ {
		p := g.Pin(i)
		if p != nil && p.Name() == name {
			return p
		}
	}
	return nil
}

type nullGPIO struct{}

func (nullGPIO) PinCount() int      { return 0 }
func (nullGPIO) Pin(id int) GPIOPin { return nil }

type virtualGPIO struct {
	pins []GPIOPin
}

func newVirtualGPIO(pins []GPIOPin) GPIO {
	var out []GPIOPin
	for _, p := range pins {
		if p != nil {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nullGPIO{}
	}
	return &virtualGPIO{pins: out}
}

func (g *virtualGPIO) PinCount() int {
	if g == nil {
		return 0
	}
	return len(g.pins)
}

func (g *virtualGPIO) Pin(id int) GPIOPin {
	if g == nil || id < 0 || id >= len(g.pins) {
		return nil
	}
	return g.pins[id]
}

// virtualPin is an in-memory line. Output writes are read back; inputs
// follow drive.
type virtualPin struct {
	mu     sync.Mutex
	name   string
	caps   GPIOCaps
	output bool
	level  bool
}

func newVirtualPin(name string, caps GPIOCaps) *virtualPin {
	return &virtualPin{name: name, caps: caps}
}

func (p *virtualPin) Name() string   { return p.name }
func (p *virtualPin) Caps() GPIOCaps { return p.caps }

func (p *virtualPin) Configure(mode GPIOMode, pull GPIOPull) error {
	if err := checkMode(p.name, p.caps, mode); err != nil {
		return err
	}
	if pull != GPIOPullNone {
		return fmt.Errorf("gpio: pin %s: pull unsupported", p.name)
	}
	p.mu.Lock()
	p.output = mode == GPIOModeOutput
	p.mu.Unlock()
	return nil
}

func (p *virtualPin) Read() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level, nil
}

// drive sets the level seen by Read regardless of mode. It stands in for
// the outside world pulling an input line.
func (p *virtualPin) drive(level bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
}

func (p *virtualPin) Write(level bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.output {
		return fmt.Errorf("gpio: pin %s: not in output mode", p.name)
	}
	p.level = level
	return nil
}

func checkMode(name string, caps GPIOCaps, mode GPIOMode) error {
	switch mode {
	case GPIOModeInput:
		if caps&GPIOCapInput == 0 {
			return fmt.Errorf("gpio: pin %s: input unsupported", name)
		}
	case GPIOModeOutput:
		if caps&GPIOCapOutput == 0 {
			return fmt.Errorf("gpio: pin %s: output unsupported", name)
		}
	default:
		return fmt.Errorf("gpio: pin %s: invalid mode", name)
	}
	return nil
}

// PIRTiming describes a simulated HC-SR501 in repeat-trigger mode watching
// someone who walks through its field every Period.
//
// The sensor output stays low for Warmup after power-up. The first walk
// starts at Offset; each walk lasts Walk, and the output stays high for the
// whole walk plus Hold after the last movement it saw.
type PIRTiming struct {
	Warmup time.Duration
	Offset time.Duration
	Period time.Duration
	Walk   time.Duration
	Hold   time.Duration
}

// DefaultPIRTiming is a passer-by every 5s, in view for 1s, with the
// module's time-delay pot turned fully down.
func DefaultPIRTiming() PIRTiming {
	return PIRTiming{
		Period: 5 * time.Second,
		Walk:   time.Second,
		Hold:   500 * time.Millisecond,
	}
}

func (t PIRTiming) normalized() PIRTiming {
	if t.Period <= 0 {
		t.Period = time.Second
	}
	if t.Walk < 0 {
		t.Walk = 0
	}
	if t.Walk > t.Period {
		t.Walk = t.Period
	}
	if t.Hold < 0 {
		t.Hold = 0
	}
	if t.Warmup < 0 {
		t.Warmup = 0
	}
	if t.Offset < 0 {
		t.Offset = 0
	}
	return t
}

// level reports the sensor output elapsed after power-up.
func (t PIRTiming) level(elapsed time.Duration) bool {
	if elapsed < t.Warmup || elapsed < t.Offset {
		return false
	}
	phase := (elapsed - t.Offset) % t.Period
	if phase < t.Walk {
		return true
	}
	// Movement inside the hold retriggers it, so the hold runs from the
	// end of the walk.
	return t.Walk > 0 && phase-t.Walk < t.Hold
}

// pirPin is the input side of a simulated PIR module.
type pirPin struct {
	name   string
	timing PIRTiming
	t0     time.Time
	now    func() time.Time
}

func newPIRPin(name string, timing PIRTiming, now func() time.Time) *pirPin {
	if now == nil {
		now = time.Now
	}
	return &pirPin{name: name, timing: timing.normalized(), t0: now(), now: now}
}

func (p *pirPin) Name() string   { return p.name }
func (p *pirPin) Caps() GPIOCaps { return GPIOCapInput }

// Configure accepts input with no pull or pull-down. The HC-SR501 drives its
// output push-pull, so a pull-down is harmless and a pull-up is a wiring
// mistake.
func (p *pirPin) Configure(mode GPIOMode, pull GPIOPull) error {
	if err := checkMode(p.name, GPIOCapInput, mode); err != nil {
		return err
	}
	if pull == GPIOPullUp {
		return fmt.Errorf("gpio: pin %s: pull-up on a push-pull sensor output", p.name)
	}
	return nil
}

func (p *pirPin) Read() (bool, error) {
	return p.timing.level(p.now().Sub(p.t0)), nil
}

func (p *pirPin) Write(bool) error {
	return fmt.Errorf("gpio: pin %s: output unsupported", p.name)
}

// LEDPin exposes led as an output-only pin called name.
func LEDPin(name string, led LED) GPIOPin {
	if led == nil {
		return nil
	}
	return &ledPin{led: led, name: name}
}

type ledPin struct {
	mu    sync.Mutex
	led   LED
	name  string
	level bool
}

func (p *ledPin) Name() string   { return p.name }
func (p *ledPin) Caps() GPIOCaps { return GPIOCapOutput }

func (p *ledPin) Configure(mode GPIOMode, pull GPIOPull) error {
	if err := checkMode(p.name, GPIOCapOutput, mode); err != nil {
		return err
	}
	if pull != GPIOPullNone {
		return fmt.Errorf("gpio: pin %s: pull unsupported", p.name)
	}
	return nil
}

func (p *ledPin) Read() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level, nil
}

func (p *ledPin) Write(level bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
	if level {
		p.led.High()
	} else {
		p.led.Low()
	}
	return nil
}
