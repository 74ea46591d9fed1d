package hardware

import (
	"sync"
	"time"

	"github.com/glockwork/ControLeo2/internal/logger"
	"github.com/glockwork/ControLeo2/internal/reflow"
)

// ----------- Simulation constants -----------
const (
	// SimAmbientC is the resting temperature of the simulated oven.
	SimAmbientC = 22.0

	// simLossPerDegree scales the passive heat loss: loss per second is
	// simLossPerDegree times the excess over ambient.
	simLossPerDegree = 0.005
)

// simHeatPerSec is the heating contribution of each element at full drive,
// in °C per second. The bottom element carries most of the thermal mass.
var simHeatPerSec = [reflow.HeaterCount]float64{1.8, 1.4, 1.1}

// SimulatedOven is a thermal model of the toaster oven for development and
// tests without hardware. It stands in for the thermocouple, the heater
// relays and the buzzer at once. Time advances with the wall clock (or an
// injected clock in tests); temperature integrates heater drive between
// observations.
type SimulatedOven struct {
	mu      sync.Mutex
	tempC   float64
	heaters [reflow.HeaterCount]bool
	last    time.Time

	// ArmedCount counts alarm beeps for inspection.
	ArmedCount int

	now func() time.Time
	log *logger.Logger
}

// NewSimulatedOven returns a simulator resting at ambient temperature.
func NewSimulatedOven(log *logger.Logger) *SimulatedOven {
	return &SimulatedOven{
		tempC: SimAmbientC,
		now:   time.Now,
		log:   log,
	}
}

// ReadTemperature returns the modelled oven temperature.
func (s *SimulatedOven) ReadTemperature() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advance()
	return s.tempC, nil
}

// Set drives the modelled heater elements.
func (s *SimulatedOven) Set(on [reflow.HeaterCount]bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advance()
	s.heaters = on
	return nil
}

// AllOff switches every modelled element off.
func (s *SimulatedOven) AllOff() error {
	return s.Set([reflow.HeaterCount]bool{})
}

// Arm logs the alarm instead of beeping.
func (s *SimulatedOven) Arm() {
	s.mu.Lock()
	s.ArmedCount++
	n := s.ArmedCount
	s.mu.Unlock()
	if s.log != nil {
		s.log.Infow("simulated alarm", "count", n)
	}
}

// Close switches the modelled elements off.
func (s *SimulatedOven) Close() error {
	return s.AllOff()
}

// advance folds the time since the last observation into the temperature.
// Callers hold s.mu.
func (s *SimulatedOven) advance() {
	now := s.now()
	if s.last.IsZero() {
		s.last = now
		return
	}
	elapsed := now.Sub(s.last).Seconds()
	s.last = now
	if elapsed <= 0 {
		return
	}

	heat := 0.0
	for i, on := range s.heaters {
		if on {
			heat += simHeatPerSec[i]
		}
	}
	loss := simLossPerDegree * (s.tempC - SimAmbientC)
	s.tempC += (heat - loss) * elapsed
	if s.tempC < SimAmbientC {
		s.tempC = SimAmbientC
	}
}

var (
	_ HeaterBank = (*SimulatedOven)(nil)
	_ Buzzer     = (*SimulatedOven)(nil)
)
