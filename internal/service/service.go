package service

import (
	"context"
	"time"

	"github.com/glockwork/ControLeo2/internal/hardware"
	"github.com/glockwork/ControLeo2/internal/logger"
	"github.com/glockwork/ControLeo2/internal/models"
	"github.com/glockwork/ControLeo2/internal/mqtt"
	"github.com/glockwork/ControLeo2/internal/reflow"
	"github.com/glockwork/ControLeo2/internal/repository"
	"github.com/glockwork/ControLeo2/internal/status"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Control accepts run commands and owns the loop that applies them. Commands
// queue onto the loop and take effect on its next iteration; Run must be
// started (usually in its own goroutine) before commands can complete.
type Control interface {
	Run(ctx context.Context)
	Start(ctx context.Context) error
	Abort(ctx context.Context) error
	NextProfile(ctx context.Context) (int, error)
}

// Monitoring exposes read-only process state.
type Monitoring interface {
	Status() status.Snapshot
	Profiles() []ProfileSummary
}

// EventLog exposes the append-only process log with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.OvenEvent, error)
}

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "" or an event type, e.g. "RUN_STARTED"
}

// ProfileSummary describes one selectable profile for API responses.
type ProfileSummary struct {
	Index  int            `json:"index"`
	Name   string         `json:"name"`
	Phases []PhaseSummary `json:"phases"`
}

// PhaseSummary describes one phase of a profile.
type PhaseSummary struct {
	Name        string  `json:"name"`
	ExitTempC   float64 `json:"exit_temp_c"`
	Direction   string  `json:"direction"`
	MinS        int     `json:"min_s"`
	MaxS        int     `json:"max_s"`
	TargetS     int     `json:"target_s"`
	AlarmOnExit bool    `json:"alarm_on_exit"`
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Control
	Monitoring
	EventLog
	Authorization
}

// Deps carries everything the services are wired from. The engine and its
// collaborators are constructed in main; the services only drive them.
type Deps struct {
	Repos      *repository.Repository
	Engine     *reflow.Engine
	Catalog    *reflow.Catalog
	Heaters    hardware.HeaterBank
	Tracker    *status.Tracker
	Publisher  mqtt.Publisher
	Conn       mqtt.ConnectionStatus
	Intervals  Intervals
	SigningKey string
	Log        *logger.Logger
}

// NewService wires the repository and hardware layers into concrete services.
func NewService(d Deps) *Service {
	return &Service{
		Control:       NewControlService(d.Engine, d.Heaters, d.Tracker, d.Publisher, d.Conn, d.Intervals, d.Log),
		Monitoring:    NewMonitoringService(d.Tracker, d.Catalog),
		EventLog:      NewEventLogService(d.Repos.Events),
		Authorization: NewAuthService(d.Repos.Auth, d.SigningKey),
	}
}
