package hardware

import (
	"errors"

	"github.com/glockwork/ControLeo2/internal/reflow"
)

// FakeSensor is a test double that returns scripted temperatures.
type FakeSensor struct {
	// Samples contains scripted temperatures to return. Each read consumes
	// the next sample; once exhausted the last sample repeats.
	Samples []float64

	// ReadError, if set, is returned by every read instead of a sample.
	ReadError error

	// Reads counts calls to ReadTemperature.
	Reads int

	index int
}

// NewFakeSensor creates a FakeSensor with the given samples.
func NewFakeSensor(samples ...float64) *FakeSensor {
	return &FakeSensor{Samples: samples}
}

// ReadTemperature returns the next scripted sample.
func (f *FakeSensor) ReadTemperature() (float64, error) {
	f.Reads++
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if len(f.Samples) == 0 {
		return 0, errors.New("no samples configured")
	}
	s := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return s, nil
}

// Close is a no-op.
func (f *FakeSensor) Close() error { return nil }

// FakeHeaterBank records every drive it receives.
type FakeHeaterBank struct {
	// History holds every Set in order, AllOff included.
	History [][reflow.HeaterCount]bool

	// Last is the most recent drive.
	Last [reflow.HeaterCount]bool

	// SetError, if set, is returned by Set and AllOff.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// Set records the drive.
func (f *FakeHeaterBank) Set(on [reflow.HeaterCount]bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.History = append(f.History, on)
	f.Last = on
	return nil
}

// AllOff records an all-off drive.
func (f *FakeHeaterBank) AllOff() error {
	return f.Set([reflow.HeaterCount]bool{})
}

// Close marks the bank as closed.
func (f *FakeHeaterBank) Close() error {
	f.Closed = true
	return nil
}

// FakeBuzzer counts alarm arms.
type FakeBuzzer struct {
	Armed int
}

// Arm counts the call.
func (f *FakeBuzzer) Arm() { f.Armed++ }
