package reflow

import "time"

// RunState is the mutable state of the reflow process. It belongs to the
// control loop goroutine; everything else observes it through Status
// snapshots published by the engine.
type RunState struct {
	// SelectedProfile is the catalog index of the active profile.
	SelectedProfile int

	// Active is true from start (or a forced cool-down) until the run ends.
	Active bool

	// Faulted is true while the thermocouple reports a wiring fault. It
	// clears as soon as a later read succeeds.
	Faulted bool

	// CurrentTempC is the most recently sampled oven temperature.
	CurrentTempC float64

	// PeakTempC is the highest temperature sampled during the current run.
	PeakTempC float64

	// PhaseIndex is the position in the schedule, 0 = Idle.
	PhaseIndex int

	// PhaseEnteredAt is when the current phase was entered.
	PhaseEnteredAt time.Time

	// StartedAt is when the current run began.
	StartedAt time.Time

	// DutyStep is the position in the 8-step heater cycle. It freezes while
	// inactive and carries over into the next run.
	DutyStep uint8
}

// Status is an immutable snapshot of the process for transport to API
// clients, websocket subscribers and the MQTT publisher.
type Status struct {
	ProfileIndex  int               `json:"profile_index"`
	ProfileName   string            `json:"profile"`
	Active        bool              `json:"active"`
	Faulted       bool              `json:"faulted"`
	CurrentTempC  float64           `json:"current_temp_c"`
	PeakTempC     float64           `json:"peak_temp_c"`
	PhaseIndex    int               `json:"phase_index"`
	PhaseName     string            `json:"phase"`
	ExitTempC     float64           `json:"exit_temp_c"`
	PhaseElapsedS int               `json:"phase_elapsed_s"`
	TotalElapsedS int               `json:"total_elapsed_s"`
	DutyStep      uint8             `json:"duty_step"`
	Heaters       [HeaterCount]bool `json:"heaters"`

	UpdatedAt time.Time `json:"updated_at"`
}
