package hal

import (
	"testing"
	"time"
)

func TestPIRTimingLevel(t *testing.T) {
	const s = time.Second
	tests := []struct {
		name   string
		timing PIRTiming
		at     []time.Duration
		want   []bool
	}{
		{
			name:   "walk then hold then quiet",
			timing: PIRTiming{Period: 10 * s, Walk: 2 * s, Hold: 1 * s},
			at:     []time.Duration{0, 1900 * time.Millisecond, 2500 * time.Millisecond, 3 * s, 9 * s, 10 * s},
			want:   []bool{true, true, true, false, false, true},
		},
		{
			name:   "low during warm-up",
			timing: PIRTiming{Warmup: 30 * s, Period: 10 * s, Walk: 2 * s, Hold: 1 * s},
			at:     []time.Duration{0, 21 * s, 29 * s, 30 * s, 31 * s, 33 * s},
			want:   []bool{false, false, false, true, true, false},
		},
		{
			name:   "first walk after offset",
			timing: PIRTiming{Offset: 4 * s, Period: 10 * s, Walk: 1 * s},
			at:     []time.Duration{0, 3900 * time.Millisecond, 4 * s, 5 * s, 14500 * time.Millisecond},
			want:   []bool{false, false, true, false, true},
		},
		{
			name:   "hold longer than the gap retriggers",
			timing: PIRTiming{Period: 3 * s, Walk: 1 * s, Hold: 5 * s},
			at:     []time.Duration{0, 2 * s, 2900 * time.Millisecond, 3 * s, 5500 * time.Millisecond, 60 * s},
			want:   []bool{true, true, true, true, true, true},
		},
		{
			name:   "no walk never triggers",
			timing: PIRTiming{Period: 1 * s, Hold: 5 * s},
			at:     []time.Duration{0, 500 * time.Millisecond, 7 * s},
			want:   []bool{false, false, false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timing := tt.timing.normalized()
			for i, at := range tt.at {
				if got := timing.level(at); got != tt.want[i] {
					t.Fatalf("level(%v) = %v, want %v", at, got, tt.want[i])
				}
			}
		})
	}
}

func TestPIRPinFollowsClock(t *testing.T) {
	now := time.Unix(1000, 0)
	pin := newPIRPin(PinPIR, PIRTiming{Period: 5 * time.Second, Walk: time.Second, Hold: 500 * time.Millisecond},
		func() time.Time { return now })
	if err := pin.Configure(GPIOModeInput, GPIOPullNone); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	steps := []struct {
		advance time.Duration
		want    bool
	}{
		{0, true},
		{1200 * time.Millisecond, true},
		{400 * time.Millisecond, false},
		{3400 * time.Millisecond, true},
	}
	for _, st := range steps {
		now = now.Add(st.advance)
		level, err := pin.Read()
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if level != st.want {
			t.Fatalf("at +%v: Read() = %v, want %v", now.Sub(time.Unix(1000, 0)), level, st.want)
		}
	}
}

func TestPIRPinConfigure(t *testing.T) {
	pin := newPIRPin(PinPIR, DefaultPIRTiming(), nil)
	tests := []struct {
		name    string
		mode    GPIOMode
		pull    GPIOPull
		wantErr bool
	}{
		{name: "input", mode: GPIOModeInput, pull: GPIOPullNone},
		{name: "pull-down", mode: GPIOModeInput, pull: GPIOPullDown},
		{name: "pull-up fights the sensor", mode: GPIOModeInput, pull: GPIOPullUp, wantErr: true},
		{name: "output", mode: GPIOModeOutput, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pin.Configure(tt.mode, tt.pull)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Configure() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
	if err := pin.Write(true); err == nil {
		t.Fatal("expected Write to fail on a sensor output")
	}
}

func TestPIRTimingNormalized(t *testing.T) {
	got := PIRTiming{Period: -1, Walk: 3 * time.Second, Hold: -1, Warmup: -1, Offset: -1}.normalized()
	want := PIRTiming{Period: time.Second, Walk: time.Second}
	if got != want {
		t.Fatalf("normalized() = %+v, want %+v", got, want)
	}
}
