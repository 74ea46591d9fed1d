package hardware

import (
	"testing"
	"time"

	"github.com/glockwork/ControLeo2/internal/logger"
	"github.com/glockwork/ControLeo2/internal/reflow"
)

// simClock steps a SimulatedOven through fake time.
type simClock struct {
	now time.Time
}

func newSimRig() (*SimulatedOven, *simClock) {
	clk := &simClock{now: time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)}
	s := NewSimulatedOven(logger.Get("error"))
	s.now = func() time.Time { return clk.now }
	return s, clk
}

func (c *simClock) step(d time.Duration) { c.now = c.now.Add(d) }

func TestSimulatedOvenStartsAtAmbient(t *testing.T) {
	s, _ := newSimRig()
	got, err := s.ReadTemperature()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != SimAmbientC {
		t.Fatalf("initial temperature = %.2f, want ambient %.2f", got, SimAmbientC)
	}
}

func TestSimulatedOvenHeatsUnderDrive(t *testing.T) {
	s, clk := newSimRig()
	if _, err := s.ReadTemperature(); err != nil {
		t.Fatalf("prime read: %v", err)
	}
	if err := s.Set([reflow.HeaterCount]bool{true, true, true}); err != nil {
		t.Fatalf("set heaters: %v", err)
	}

	clk.step(30 * time.Second)
	got, _ := s.ReadTemperature()
	if got <= SimAmbientC+60 {
		t.Fatalf("after 30s full drive temperature = %.1f, want well above ambient", got)
	}
	if got > SimAmbientC+4.3*30 {
		t.Fatalf("temperature %.1f exceeds the lossless bound", got)
	}
}

func TestSimulatedOvenCoolsTowardAmbientAndClamps(t *testing.T) {
	s, clk := newSimRig()
	_, _ = s.ReadTemperature()
	_ = s.Set([reflow.HeaterCount]bool{true, true, true})
	clk.step(60 * time.Second)
	hot, _ := s.ReadTemperature()

	_ = s.AllOff()
	clk.step(2 * time.Minute)
	cooler, _ := s.ReadTemperature()
	if cooler >= hot {
		t.Fatalf("no cooling: %.1f -> %.1f", hot, cooler)
	}

	clk.step(24 * time.Hour)
	settled, _ := s.ReadTemperature()
	if settled != SimAmbientC {
		t.Fatalf("settled temperature = %.2f, want clamped to ambient", settled)
	}
}

func TestSimulatedOvenPartialDriveHeatsSlower(t *testing.T) {
	full, fullClk := newSimRig()
	_, _ = full.ReadTemperature()
	_ = full.Set([reflow.HeaterCount]bool{true, true, true})
	fullClk.step(30 * time.Second)
	fullTemp, _ := full.ReadTemperature()

	partial, partClk := newSimRig()
	_, _ = partial.ReadTemperature()
	_ = partial.Set([reflow.HeaterCount]bool{true, false, false})
	partClk.step(30 * time.Second)
	partTemp, _ := partial.ReadTemperature()

	if partTemp >= fullTemp {
		t.Fatalf("bottom-only drive reached %.1f, full drive %.1f", partTemp, fullTemp)
	}
}

func TestSimulatedOvenArmCounts(t *testing.T) {
	s, _ := newSimRig()
	s.Arm()
	s.Arm()
	if s.ArmedCount != 2 {
		t.Fatalf("armed count = %d, want 2", s.ArmedCount)
	}
}
