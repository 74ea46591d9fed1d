//go:build linux

package hardware

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/glockwork/ControLeo2/internal/reflow"
)

// RelayBank drives the heater solid-state relays through GPIO outputs.
// Relays are active-high.
type RelayBank struct {
	chip  *gpiocdev.Chip
	lines [reflow.HeaterCount]*gpiocdev.Line
}

// NewRelayBank opens the named GPIO chip and claims one output line per
// heater, all initially off.
func NewRelayBank(chipName string, pins [reflow.HeaterCount]int) (*RelayBank, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	b := &RelayBank{chip: chip}
	for i, pin := range pins {
		line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
		if err != nil {
			b.closeLines()
			chip.Close()
			return nil, fmt.Errorf("request heater pin %d: %w", pin, err)
		}
		b.lines[i] = line
	}
	return b, nil
}

// Set drives every relay to the given state.
func (b *RelayBank) Set(on [reflow.HeaterCount]bool) error {
	for i, line := range b.lines {
		v := 0
		if on[i] {
			v = 1
		}
		if err := line.SetValue(v); err != nil {
			return fmt.Errorf("set heater %d: %w", i, err)
		}
	}
	return nil
}

// AllOff forces every relay off.
func (b *RelayBank) AllOff() error {
	return b.Set([reflow.HeaterCount]bool{})
}

// Close forces the relays off and releases the GPIO lines.
func (b *RelayBank) Close() error {
	var errs []error
	if err := b.AllOff(); err != nil {
		errs = append(errs, err)
	}
	b.closeLines()
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

func (b *RelayBank) closeLines() {
	for i, line := range b.lines {
		if line != nil {
			_ = line.Close()
			b.lines[i] = nil
		}
	}
}
