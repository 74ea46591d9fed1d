//go:build linux

package hardware

import (
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// MAX31855 reads the thermocouple amplifier over bit-banged SPI. The chip
// only ever talks: pull chip-select low, clock 32 bits out, release.
type MAX31855 struct {
	mu   sync.Mutex
	chip *gpiocdev.Chip
	cs   *gpiocdev.Line
	sck  *gpiocdev.Line
	so   *gpiocdev.Line
}

// clockSettle is the pause between clock edges. The cdev ioctl round-trip
// already keeps the clock well below the chip's 5 MHz limit; the pause only
// guards against unusually fast paths.
const clockSettle = time.Microsecond

// NewMAX31855 opens the named GPIO chip and claims the chip-select, clock
// and data lines.
func NewMAX31855(chipName string, csPin, sckPin, soPin int) (*MAX31855, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	cs, err := chip.RequestLine(csPin, gpiocdev.AsOutput(1))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request CS pin %d: %w", csPin, err)
	}
	sck, err := chip.RequestLine(sckPin, gpiocdev.AsOutput(0))
	if err != nil {
		cs.Close()
		chip.Close()
		return nil, fmt.Errorf("request SCK pin %d: %w", sckPin, err)
	}
	so, err := chip.RequestLine(soPin, gpiocdev.AsInput)
	if err != nil {
		sck.Close()
		cs.Close()
		chip.Close()
		return nil, fmt.Errorf("request SO pin %d: %w", soPin, err)
	}
	return &MAX31855{chip: chip, cs: cs, sck: sck, so: so}, nil
}

// ReadTemperature clocks one frame out of the chip and decodes it.
func (m *MAX31855) ReadTemperature() (float64, error) {
	frame, err := m.readFrame()
	if err != nil {
		return 0, err
	}
	r, err := DecodeFrame(frame)
	if err != nil {
		return 0, err
	}
	return r.ThermocoupleC, nil
}

func (m *MAX31855) readFrame() (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.cs.SetValue(0); err != nil {
		return 0, fmt.Errorf("assert CS: %w", err)
	}
	defer m.cs.SetValue(1)
	time.Sleep(clockSettle)

	var frame uint32
	for i := 0; i < 32; i++ {
		if err := m.sck.SetValue(1); err != nil {
			return 0, fmt.Errorf("clock high: %w", err)
		}
		time.Sleep(clockSettle)
		v, err := m.so.Value()
		if err != nil {
			return 0, fmt.Errorf("read SO: %w", err)
		}
		frame = frame<<1 | uint32(v&1)
		if err := m.sck.SetValue(0); err != nil {
			return 0, fmt.Errorf("clock low: %w", err)
		}
		time.Sleep(clockSettle)
	}
	return frame, nil
}

// Close releases the GPIO lines.
func (m *MAX31855) Close() error {
	var errs []error
	for _, line := range []*gpiocdev.Line{m.cs, m.sck, m.so} {
		if line == nil {
			continue
		}
		if err := line.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if m.chip != nil {
		if err := m.chip.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
