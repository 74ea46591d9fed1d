package reflow

import (
	"context"
	"time"

	"github.com/glockwork/ControLeo2/internal/logger"
	"github.com/glockwork/ControLeo2/internal/models"
)

// TemperatureSource reads the current oven temperature.
type TemperatureSource interface {
	// ReadTemperature returns the temperature in °C or a hardware.FaultError
	// when the thermocouple wiring is faulty.
	ReadTemperature() (float64, error)
}

// Alarm arms the audible alarm. Switching it off again is the device's own
// concern, so a single edge-triggered call suffices.
type Alarm interface {
	Arm()
}

// ByteStore persists single-byte settings across restarts. Keys that were
// never written read back as 0xFF, the erased value.
type ByteStore interface {
	ReadByte(ctx context.Context, key string) (uint8, error)
	WriteByte(ctx context.Context, key string, value uint8) error
}

// EventSink receives process events for the append-only log.
type EventSink interface {
	Append(ctx context.Context, e models.OvenEvent) error
}

// ProfileIndexKey is the settings key the selected profile index is stored
// under. The stored value 0xFF (the erased-store sentinel) means "never
// saved" and selects the default profile.
const ProfileIndexKey = "profile_index"

// ProfileUnset is the stored byte meaning no profile index was ever saved.
const ProfileUnset uint8 = 0xFF

// Transition reasons reported when the process leaves a phase.
const (
	ReasonTemperature  = "exit temperature reached"
	ReasonDurationTemp = "duration/temperature reached"
	ReasonMaxDuration  = "max duration exceeded"
	ReasonRunStarted   = "run started"
)

// Config carries the engine tunables.
type Config struct {
	// SafeTempC is the temperature below which the oven is safe: the Cooling
	// exit threshold and the over-temperature guard applied on every reset.
	SafeTempC float64

	// DefaultProfile is the catalog index used when no index was persisted.
	DefaultProfile int
}

// Engine owns the reflow run state and implements the phase state machine.
// None of its methods are safe for concurrent use; the control loop is the
// sole caller and publishes Status snapshots for everyone else.
type Engine struct {
	cfg      Config
	catalog  *Catalog
	schedule Schedule
	state    RunState

	lastOutputs [HeaterCount]bool

	temps  TemperatureSource
	alarm  Alarm
	store  ByteStore
	events EventSink
	log    *logger.Logger
}

// NewEngine wires an engine to its collaborators and restores the persisted
// profile selection. The caller must Reset the engine once before driving it.
func NewEngine(cfg Config, catalog *Catalog, temps TemperatureSource, alarm Alarm, store ByteStore, events EventSink, log *logger.Logger) *Engine {
	e := &Engine{
		cfg:     cfg,
		catalog: catalog,
		temps:   temps,
		alarm:   alarm,
		store:   store,
		events:  events,
		log:     log,
	}
	e.state.SelectedProfile = e.restoreProfileIndex()
	e.schedule = BuildSchedule(catalog.Profile(e.state.SelectedProfile), cfg.SafeTempC)
	return e
}

func (e *Engine) restoreProfileIndex() int {
	idx := e.catalog.Clamp(e.cfg.DefaultProfile)
	if e.store == nil {
		return idx
	}
	v, err := e.store.ReadByte(context.Background(), ProfileIndexKey)
	if err != nil {
		e.log.Errorw("read stored profile index", "err", err)
		return idx
	}
	if v == ProfileUnset || int(v) >= e.catalog.Len() {
		return idx
	}
	return int(v)
}

// State returns a copy of the raw run state.
func (e *Engine) State() RunState { return e.state }

// Schedule returns the phase schedule built for the selected profile.
func (e *Engine) Schedule() Schedule { return e.schedule }

// SelectedProfile returns the catalog entry the schedule was built from.
func (e *Engine) SelectedProfile() Profile {
	return e.catalog.Profile(e.state.SelectedProfile)
}

// Sample reads the thermocouple and folds the result into the run state.
// A read error marks the state faulted, records the fault once and force-ends
// any active run. A later successful read clears the fault.
func (e *Engine) Sample(ctx context.Context, now time.Time) {
	tempC, err := e.temps.ReadTemperature()
	if err != nil {
		if !e.state.Faulted {
			e.state.Faulted = true
			e.log.Errorw("thermocouple fault", "err", err)
			e.append(ctx, now, models.EventSensorFault, "thermocouple fault: "+err.Error(), nil)
		}
		if e.state.Active {
			e.End(ctx, now, false)
		}
		return
	}
	e.state.Faulted = false
	e.state.CurrentTempC = tempC
	if e.state.Active && tempC > e.state.PeakTempC {
		e.state.PeakTempC = tempC
	}
}

// CheckTransition applies the phase-advance rules to the current phase using
// the latest sampled temperature. At most one advance happens per call: the
// exit-threshold rule is evaluated first and the max-duration backstop second.
func (e *Engine) CheckTransition(ctx context.Context, now time.Time) {
	if !e.state.Active || e.state.PhaseIndex == IdleIndex {
		return
	}
	phase := e.schedule[e.state.PhaseIndex]
	elapsed := now.Sub(e.state.PhaseEnteredAt)

	if phase.Crossed(e.state.CurrentTempC) {
		if phase.MinDuration == 0 {
			e.transitionTo(ctx, now, e.state.PhaseIndex+1, ReasonTemperature)
			return
		}
		if elapsed > phase.MinDuration {
			e.transitionTo(ctx, now, e.state.PhaseIndex+1, ReasonDurationTemp)
			return
		}
	}
	if phase.MaxDuration > 0 && elapsed >= phase.MaxDuration {
		e.transitionTo(ctx, now, e.state.PhaseIndex+1, ReasonMaxDuration)
	}
}

// transitionTo moves the run to the given schedule index. Moving past Cooling
// ends the run instead. Leaving a phase flagged AlarmOnExit arms the alarm.
func (e *Engine) transitionTo(ctx context.Context, now time.Time, newIndex int, reason string) {
	if newIndex == e.state.PhaseIndex {
		return
	}
	if newIndex < 0 || newIndex >= ScheduleLen {
		e.End(ctx, now, false)
		return
	}

	old := e.schedule[e.state.PhaseIndex]
	elapsed := now.Sub(e.state.PhaseEnteredAt)
	e.log.Infow("leaving phase",
		"phase", old.Name,
		"index", e.state.PhaseIndex,
		"elapsed_s", int(elapsed.Seconds()),
		"temp_c", e.state.CurrentTempC,
		"reason", reason,
	)
	e.append(ctx, now, models.EventPhaseLeft, "left phase "+old.Name, map[string]any{
		"phase":     old.Name,
		"index":     e.state.PhaseIndex,
		"elapsed_s": int(elapsed.Seconds()),
		"temp_c":    e.state.CurrentTempC,
		"reason":    reason,
	})

	e.state.PhaseIndex = newIndex
	e.state.PhaseEnteredAt = now

	next := e.schedule[newIndex]
	e.log.Infow("entering phase",
		"phase", next.Name,
		"index", newIndex,
		"exit_temp_c", next.ExitTempC,
		"direction", next.Direction.String(),
		"min_s", int(next.MinDuration.Seconds()),
		"max_s", int(next.MaxDuration.Seconds()),
		"target_s", int(next.TargetDuration.Seconds()),
		"alarm_on_exit", next.AlarmOnExit,
	)
	e.append(ctx, now, models.EventPhaseEntered, "entered phase "+next.Name, map[string]any{
		"phase":       next.Name,
		"index":       newIndex,
		"exit_temp_c": next.ExitTempC,
		"direction":   next.Direction.String(),
	})

	if old.AlarmOnExit && e.alarm != nil {
		e.alarm.Arm()
	}
}

// Start begins a run from Idle. Callers must not start an already active run.
func (e *Engine) Start(ctx context.Context, now time.Time) {
	e.state.PeakTempC = 0
	e.state.StartedAt = now
	e.state.Active = true
	p := e.SelectedProfile()
	e.log.Infow("run started", "profile", p.Name, "temp_c", e.state.CurrentTempC)
	e.append(ctx, now, models.EventRunStarted, "reflow run started: "+p.Name, map[string]any{
		"profile": p.Name,
		"temp_c":  e.state.CurrentTempC,
	})
	e.transitionTo(ctx, now, IdleIndex+1, ReasonRunStarted)
}

// End finishes the current run, records its outcome and resets the state
// machine. userInitiated distinguishes an operator abort from a natural or
// fault-forced end.
func (e *Engine) End(ctx context.Context, now time.Time, userInitiated bool) {
	var totalS int
	if !e.state.StartedAt.IsZero() {
		totalS = int(now.Sub(e.state.StartedAt).Seconds())
	}
	e.log.Infow("run ended",
		"user_initiated", userInitiated,
		"total_s", totalS,
		"peak_temp_c", e.state.PeakTempC,
	)
	e.append(ctx, now, models.EventRunEnded, "reflow run ended", map[string]any{
		"user_initiated": userInitiated,
		"total_s":        totalS,
		"peak_temp_c":    e.state.PeakTempC,
	})
	e.state.PeakTempC = 0
	e.state.StartedAt = time.Time{}
	e.Reset(ctx, now)
}

// Reset samples the oven once and puts the state machine into its resting
// position: Idle when the oven is safe, otherwise an active forced cool-down
// so the heaters stay off and the fan logic keeps running until safe.
func (e *Engine) Reset(ctx context.Context, now time.Time) {
	tempC, err := e.temps.ReadTemperature()
	if err != nil {
		e.state.Faulted = true
		e.log.Errorw("thermocouple fault during reset", "err", err)
		e.state.Active = false
		e.state.PhaseIndex = IdleIndex
		e.state.PhaseEnteredAt = now
		return
	}
	e.state.Faulted = false
	e.state.CurrentTempC = tempC

	if tempC > e.cfg.SafeTempC {
		e.state.Active = true
		e.state.StartedAt = now
		e.state.PhaseIndex = CoolingIndex
		e.state.PhaseEnteredAt = now
		e.log.Warnw("oven above safe temperature, forcing cool-down",
			"temp_c", tempC, "safe_temp_c", e.cfg.SafeTempC)
		e.append(ctx, now, models.EventPhaseEntered, "entered phase cooling", map[string]any{
			"phase":  "cooling",
			"index":  CoolingIndex,
			"temp_c": tempC,
			"reason": "over-temperature at reset",
		})
		return
	}
	e.state.Active = false
	e.state.PhaseIndex = IdleIndex
	e.state.PhaseEnteredAt = now
}

// AdvanceProfile rotates the selection to the next catalog profile and
// rebuilds the schedule. Unless silently is set the new index is persisted
// and recorded in the event log. Callers must not rotate during an active
// run; the schedule underneath the run would change.
func (e *Engine) AdvanceProfile(ctx context.Context, silently bool) int {
	next := e.catalog.SelectNext(e.state.SelectedProfile)
	e.state.SelectedProfile = next
	e.schedule = BuildSchedule(e.catalog.Profile(next), e.cfg.SafeTempC)

	p := e.catalog.Profile(next)
	e.log.Infow("profile selected", "profile", p.Name, "index", next, "silent", silently)
	if silently {
		return next
	}
	if e.store != nil {
		if err := e.store.WriteByte(ctx, ProfileIndexKey, uint8(next)); err != nil {
			e.log.Errorw("persist profile index", "err", err)
		}
	}
	e.append(ctx, time.Now(), models.EventProfileSelected, "profile selected: "+p.Name, map[string]any{
		"profile": p.Name,
		"index":   next,
	})
	return next
}

// CycleOutputs advances the duty cycle one step and returns the heater drive
// for it. While inactive all heaters are off and the step counter is frozen.
func (e *Engine) CycleOutputs() [HeaterCount]bool {
	step, on := AdvanceCycle(e.schedule, e.state.PhaseIndex, e.state.Active, e.state.DutyStep)
	e.state.DutyStep = step
	e.lastOutputs = on
	return on
}

// Snapshot renders the current state as a transport-friendly Status.
func (e *Engine) Snapshot(now time.Time) Status {
	p := e.SelectedProfile()
	phase := e.schedule[e.state.PhaseIndex]
	st := Status{
		ProfileIndex: e.state.SelectedProfile,
		ProfileName:  p.Name,
		Active:       e.state.Active,
		Faulted:      e.state.Faulted,
		CurrentTempC: e.state.CurrentTempC,
		PeakTempC:    e.state.PeakTempC,
		PhaseIndex:   e.state.PhaseIndex,
		PhaseName:    phase.Name,
		ExitTempC:    phase.ExitTempC,
		DutyStep:     e.state.DutyStep,
		Heaters:      e.lastOutputs,
		UpdatedAt:    now,
	}
	if e.state.Active {
		st.PhaseElapsedS = int(now.Sub(e.state.PhaseEnteredAt).Seconds())
		st.TotalElapsedS = int(now.Sub(e.state.StartedAt).Seconds())
	}
	return st
}

func (e *Engine) append(ctx context.Context, now time.Time, typ, desc string, meta map[string]any) {
	if e.events == nil {
		return
	}
	ev := models.OvenEvent{
		OccurredAt:  now,
		Type:        typ,
		Description: desc,
	}
	if meta != nil {
		ev.Metadata = meta
	}
	if err := e.events.Append(ctx, ev); err != nil {
		e.log.Errorw("append event", "type", typ, "err", err)
	}
}
