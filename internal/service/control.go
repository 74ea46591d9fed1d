package service

import (
	"context"
	"errors"
	"time"

	"github.com/glockwork/ControLeo2/internal/hardware"
	"github.com/glockwork/ControLeo2/internal/logger"
	"github.com/glockwork/ControLeo2/internal/metrics"
	"github.com/glockwork/ControLeo2/internal/mqtt"
	"github.com/glockwork/ControLeo2/internal/reflow"
	"github.com/glockwork/ControLeo2/internal/status"
)

// Command rejections surfaced to API clients.
var (
	ErrRunActive   = errors.New("a run is active")
	ErrNoActiveRun = errors.New("no run is active")
	ErrSensorFault = errors.New("thermocouple is faulted")
)

// ErrLoopStopped is returned when a command waits too long for the control
// loop, which happens during startup and shutdown.
var ErrLoopStopped = errors.New("control loop is not running")

const commandTimeout = 5 * time.Second

// Intervals sets the control loop cadences. The loop polls at Poll
// resolution and services each periodic task when its next-due time passes.
type Intervals struct {
	Poll   time.Duration // scheduler resolution
	Sample time.Duration // thermocouple reads
	Check  time.Duration // phase-transition evaluation
	Cycle  time.Duration // duty-cycle advance
	Status time.Duration // status heartbeat to tracker subscribers and MQTT
}

// DefaultIntervals returns the production cadences. A Cycle of one second
// makes the full 8-step duty window eight seconds long.
func DefaultIntervals() Intervals {
	return Intervals{
		Poll:   25 * time.Millisecond,
		Sample: 100 * time.Millisecond,
		Check:  time.Second,
		Cycle:  time.Second,
		Status: time.Second,
	}
}

// normalize fills unset cadences from the defaults.
func (iv Intervals) normalize() Intervals {
	def := DefaultIntervals()
	if iv.Poll <= 0 {
		iv.Poll = def.Poll
	}
	if iv.Sample <= 0 {
		iv.Sample = def.Sample
	}
	if iv.Check <= 0 {
		iv.Check = def.Check
	}
	if iv.Cycle <= 0 {
		iv.Cycle = def.Cycle
	}
	if iv.Status <= 0 {
		iv.Status = def.Status
	}
	return iv
}

type commandKind int

const (
	cmdStart commandKind = iota
	cmdAbort
	cmdNextProfile
)

type cmdResult struct {
	index int
	err   error
}

type command struct {
	kind commandKind
	resp chan cmdResult
}

// ControlService owns the engine. All engine access happens on the Run
// goroutine; Start/Abort/NextProfile enqueue commands that the loop applies
// between its periodic tasks.
type ControlService struct {
	engine  *reflow.Engine
	heaters hardware.HeaterBank
	tracker *status.Tracker
	pub     mqtt.Publisher
	conn    mqtt.ConnectionStatus
	log     *logger.Logger
	iv      Intervals

	commands chan command
	now      func() time.Time
}

func NewControlService(engine *reflow.Engine, heaters hardware.HeaterBank, tracker *status.Tracker, pub mqtt.Publisher, conn mqtt.ConnectionStatus, iv Intervals, log *logger.Logger) *ControlService {
	return &ControlService{
		engine:   engine,
		heaters:  heaters,
		tracker:  tracker,
		pub:      pub,
		conn:     conn,
		log:      log,
		iv:       iv.normalize(),
		commands: make(chan command, 8),
		now:      time.Now,
	}
}

// Start begins a reflow run with the selected profile.
func (s *ControlService) Start(ctx context.Context) error {
	_, err := s.submit(ctx, cmdStart)
	return err
}

// Abort ends the active run. A hot oven drops into a forced cool-down
// instead of going idle, so the run stays visible until safe.
func (s *ControlService) Abort(ctx context.Context) error {
	_, err := s.submit(ctx, cmdAbort)
	return err
}

// NextProfile rotates the profile selection and returns the new index.
// Rejected while a run is active: rebuilding the schedule would pull the
// phases out from under it.
func (s *ControlService) NextProfile(ctx context.Context) (int, error) {
	return s.submit(ctx, cmdNextProfile)
}

func (s *ControlService) submit(ctx context.Context, kind commandKind) (int, error) {
	cmd := command{kind: kind, resp: make(chan cmdResult, 1)}

	timeout := time.NewTimer(commandTimeout)
	defer timeout.Stop()

	select {
	case s.commands <- cmd:
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-timeout.C:
		return 0, ErrLoopStopped
	}

	select {
	case res := <-cmd.resp:
		return res.index, res.err
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-timeout.C:
		return 0, ErrLoopStopped
	}
}

// Run drives the process until ctx is canceled. One iteration services, in
// order, the temperature sampling, transition checking and duty-cycle tasks
// when due, then always drains pending commands, so operator input is never
// delayed behind a periodic task.
func (s *ControlService) Run(ctx context.Context) {
	now := s.now()
	s.engine.Reset(ctx, now)
	s.publishState(now)

	nextSample := now
	nextCheck := now
	nextCycle := now
	nextStatus := now
	wasActive := s.engine.State().Active

	ticker := time.NewTicker(s.iv.Poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return
		case <-ticker.C:
		}
		now = s.now()

		if !now.Before(nextSample) {
			s.engine.Sample(ctx, now)
			nextSample = now.Add(s.iv.Sample)
		}
		if !now.Before(nextCheck) {
			s.engine.CheckTransition(ctx, now)
			nextCheck = now.Add(s.iv.Check)
		}
		if !now.Before(nextCycle) {
			if err := s.heaters.Set(s.engine.CycleOutputs()); err != nil {
				s.log.Errorw("drive heaters", "err", err)
			}
			nextCycle = now.Add(s.iv.Cycle)
		}

		s.drainCommands(ctx, now)

		// A run that just ended must not leave the last duty pattern
		// burning until the next cycle tick.
		active := s.engine.State().Active
		if wasActive && !active {
			if err := s.heaters.AllOff(); err != nil {
				s.log.Errorw("heaters off", "err", err)
			}
		}
		wasActive = active

		st := s.publishState(now)

		if !now.Before(nextStatus) {
			if err := s.pub.PublishStatus(st); err != nil {
				s.log.Warnw("publish status", "err", err)
			}
			nextStatus = now.Add(s.iv.Status)
		}
	}
}

// publishState refreshes the tracker and metrics from the engine.
func (s *ControlService) publishState(now time.Time) reflow.Status {
	st := s.engine.Snapshot(now)
	s.tracker.Update(st)
	if s.conn != nil {
		s.tracker.SetMQTTConnected(s.conn.IsConnected())
	}
	metrics.ObserveStatus(st)
	return st
}

func (s *ControlService) drainCommands(ctx context.Context, now time.Time) {
	for {
		select {
		case cmd := <-s.commands:
			cmd.resp <- s.execute(ctx, cmd.kind, now)
		default:
			return
		}
	}
}

func (s *ControlService) execute(ctx context.Context, kind commandKind, now time.Time) cmdResult {
	st := s.engine.State()
	switch kind {
	case cmdStart:
		if st.Active {
			return cmdResult{err: ErrRunActive}
		}
		if st.Faulted {
			return cmdResult{err: ErrSensorFault}
		}
		s.engine.Start(ctx, now)
		return cmdResult{}
	case cmdAbort:
		if !st.Active {
			return cmdResult{err: ErrNoActiveRun}
		}
		s.engine.End(ctx, now, true)
		return cmdResult{}
	case cmdNextProfile:
		if st.Active {
			return cmdResult{err: ErrRunActive}
		}
		return cmdResult{index: s.engine.AdvanceProfile(ctx, false)}
	}
	return cmdResult{err: errors.New("unknown command")}
}

func (s *ControlService) shutdown() {
	if err := s.heaters.AllOff(); err != nil {
		s.log.Errorw("heaters off on shutdown", "err", err)
	}
	s.log.Infow("control loop stopped")
}

var _ Control = (*ControlService)(nil)
