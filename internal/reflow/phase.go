// Package reflow contains the reflow process core: profiles, the runtime
// phase schedule, the heater duty-cycle driver and the phase transition
// engine. The package performs no hardware I/O of its own; collaborators
// (thermocouple, heater bank, alarm, settings store, event log) are injected
// as interfaces and the run state is mutated only by the control loop that
// owns the engine.
package reflow

import "time"

// HeaterCount is the number of independently driven heating elements in the
// oven: bottom, top and boost.
const HeaterCount = 3

// Heater indices into Phase.HeaterPattern and heater output banks.
const (
	HeaterBottom = 0
	HeaterTop    = 1
	HeaterBoost  = 2
)

// DutySteps is the number of sub-intervals in one heater cycle period. Each
// heater carries an 8-bit duty mask per phase; bit 7 gates the first step of
// the cycle and bit 0 the last.
const DutySteps = 8

// Direction tells on which side of the exit temperature a phase is complete.
type Direction int

const (
	// Rising phases exit once the temperature reaches the threshold from below.
	Rising Direction = iota
	// Falling phases exit once the temperature drops to the threshold.
	Falling
)

func (d Direction) String() string {
	if d == Falling {
		return "falling"
	}
	return "rising"
}

// Phase is one segment of a reflow profile together with its exit rules.
// Phases are immutable once built; the engine only ever reads them.
type Phase struct {
	// Name is a label for diagnostics and display only.
	Name string

	// ExitTempC is the temperature threshold that completes the phase.
	ExitTempC float64

	// Direction selects which crossing of ExitTempC counts as complete.
	Direction Direction

	// MinDuration is the shortest time the process must stay in the phase
	// before a threshold crossing may complete it. Zero means no minimum,
	// in which case a crossing completes the phase on the same evaluation.
	MinDuration time.Duration

	// MaxDuration force-completes the phase once elapsed time reaches it,
	// whether or not the threshold was ever crossed. Zero means no maximum.
	MaxDuration time.Duration

	// TargetDuration is the ideal dwell time for display; it is not enforced.
	TargetDuration time.Duration

	// HeaterPattern holds one 8-bit duty mask per heater. Bit (7-k) of a
	// mask turns the heater on during duty step k.
	HeaterPattern [HeaterCount]uint8

	// AlarmOnExit arms the audible alarm when the process leaves this phase.
	AlarmOnExit bool
}

// Crossed reports whether tempC has crossed the phase exit threshold in the
// phase's configured direction. Reaching the threshold exactly counts as
// crossed in either direction.
func (p Phase) Crossed(tempC float64) bool {
	if p.Direction == Falling {
		return tempC <= p.ExitTempC
	}
	return tempC >= p.ExitTempC
}

// HeaterOn reports whether heater h is gated on during the given duty step.
func (p Phase) HeaterOn(h int, step uint8) bool {
	return p.HeaterPattern[h]&(1<<(7-step%DutySteps)) != 0
}
