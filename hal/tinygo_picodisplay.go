//go:build tinygo && baremetal

package hal

import (
	"errors"
	"machine"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/st7789"
)

// Pico Display Pack wiring (240x135 ST7789 on SPI0).
//
// The same 1.14" glass ships on the TTGO T-Display (ESP32), wired as
// MOSI 19, SCLK 18, CS 5, DC 16, RST 23, BL 4, with the PIR on GPIO13 and
// the indicator LED on GPIO2. Only the RP2040 pin map is built here.
const (
	lcdSCK = machine.GP18
	lcdSDO = machine.GP19
	lcdCS  = machine.GP17
	lcdDC  = machine.GP16
	lcdBL  = machine.GP20

	pirPin = machine.GP22
)

// Native panel size and the controller RAM offsets for this glass.
const (
	lcdWidth        = 135
	lcdHeight       = 240
	lcdColumnOffset = 52
	lcdRowOffset    = 40
)

type picoHAL struct {
	logger *uartLogger
	led    *pinLED
	gpio   GPIO
	fb     Framebuffer
}

// New returns a Raspberry Pi Pico HAL with a Pico Display Pack attached.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
// PIR: GP22 (active high). Indicator: on-board LED.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	machine.LED.Configure(machine.PinConfig{Mode: machine.PinOutput})

	var fb Framebuffer
	if disp, err := newPicoDisplay(); err == nil {
		fb = disp
	} else {
		(&uartLogger{uart: uart}).WriteLineString("display: " + err.Error())
		fb = noPanel{newMemFramebuffer(lcdWidth, lcdHeight)}
	}

	// The indicator is the on-board LED, reached through LED().
	return &picoHAL{
		logger: &uartLogger{uart: uart},
		led:    &pinLED{pin: machine.LED},
		gpio: newVirtualGPIO([]GPIOPin{
			newMachinePin(PinPIR, pirPin, GPIOCapInput|GPIOCapPullUp|GPIOCapPullDown),
		}),
		fb: fb,
	}
}

func (h *picoHAL) Logger() Logger   { return h.logger }
func (h *picoHAL) LED() LED         { return h.led }
func (h *picoHAL) GPIO() GPIO       { return h.gpio }
func (h *picoHAL) Display() Display { return tinyGoDisplay{fb: h.fb} }

// picoFramebuffer keeps the pixels in RAM and pushes them to the panel on
// Present, a band of rows at a time.
type picoFramebuffer struct {
	*memFramebuffer

	lcd   *st7789.Device
	txBuf []byte
}

const presentBandRows = 8

func newPicoDisplay() (*picoFramebuffer, error) {
	if err := machine.SPI0.Configure(machine.SPIConfig{
		SCK:       lcdSCK,
		SDO:       lcdSDO,
		Frequency: 62_500_000,
		Mode:      0,
	}); err != nil {
		return nil, err
	}

	lcd := st7789.New(machine.SPI0, machine.NoPin, lcdDC, lcdCS, lcdBL)
	lcd.Configure(st7789.Config{
		Width:        lcdWidth,
		Height:       lcdHeight,
		Rotation:     drivers.Rotation0,
		ColumnOffset: lcdColumnOffset,
		RowOffset:    lcdRowOffset,
	})
	lcd.EnableBacklight(true)

	return &picoFramebuffer{
		memFramebuffer: newMemFramebuffer(lcdWidth, lcdHeight),
		lcd:            &lcd,
		txBuf:          make([]byte, lcdHeight*2*presentBandRows),
	}, nil
}

func (f *picoFramebuffer) SetRotation(r drivers.Rotation) error {
	if err := f.memFramebuffer.SetRotation(r); err != nil {
		return err
	}
	return f.lcd.SetRotation(r)
}

func (f *picoFramebuffer) Present() (err error) {
	f.WithBuffer(func(buf []byte, w, h, stride int) {
		if w <= 0 || h <= 0 || len(buf) < stride*h {
			err = errors.New("invalid framebuffer")
			return
		}
		for y := 0; y < h; y += presentBandRows {
			rows := presentBandRows
			if y+rows > h {
				rows = h - y
			}
			n := rows * stride
			src := buf[y*stride : y*stride+n]
			chunk := f.txBuf[:n]
			for i := 0; i < n; i += 2 {
				// The framebuffer stores RGB565 little-endian. The panel expects big-endian.
				chunk[i] = src[i+1]
				chunk[i+1] = src[i]
			}
			if err = f.lcd.DrawRGBBitmap8(0, int16(y), chunk, int16(w), int16(rows)); err != nil {
				return
			}
		}
	})
	return err
}

// noPanel keeps drawing in RAM when the display failed to come up.
type noPanel struct {
	*memFramebuffer
}

func (noPanel) Present() error { return ErrNotImplemented }
