//go:build linux

package hardware

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// GPIOBuzzer pulses the alarm buzzer line for a fixed beep duration.
type GPIOBuzzer struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
	beep time.Duration
}

// NewGPIOBuzzer claims the buzzer output line on the named GPIO chip.
func NewGPIOBuzzer(chipName string, pin int, beep time.Duration) (*GPIOBuzzer, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request buzzer pin %d: %w", pin, err)
	}
	return &GPIOBuzzer{chip: chip, line: line, beep: beep}, nil
}

// Arm starts a beep that ends on its own after the configured duration.
func (b *GPIOBuzzer) Arm() {
	if err := b.line.SetValue(1); err != nil {
		return
	}
	time.AfterFunc(b.beep, func() {
		_ = b.line.SetValue(0)
	})
}

// Close silences the buzzer and releases the GPIO line.
func (b *GPIOBuzzer) Close() error {
	var errs []error
	if b.line != nil {
		if err := b.line.SetValue(0); err != nil {
			errs = append(errs, err)
		}
		if err := b.line.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
