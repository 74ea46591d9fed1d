package service

import (
	"github.com/glockwork/ControLeo2/internal/reflow"
	"github.com/glockwork/ControLeo2/internal/status"
)

// MonitoringService reads loop-owned state through the tracker. It never
// touches the engine, so it is safe from any goroutine.
type MonitoringService struct {
	tracker *status.Tracker
	catalog *reflow.Catalog
}

func NewMonitoringService(tracker *status.Tracker, catalog *reflow.Catalog) *MonitoringService {
	return &MonitoringService{tracker: tracker, catalog: catalog}
}

// Status returns the latest process snapshot.
func (s *MonitoringService) Status() status.Snapshot {
	return s.tracker.Snapshot()
}

// Profiles lists the selectable profiles with their phase parameters.
func (s *MonitoringService) Profiles() []ProfileSummary {
	out := make([]ProfileSummary, 0, s.catalog.Len())
	for i := 0; i < s.catalog.Len(); i++ {
		p := s.catalog.Profile(i)
		summary := ProfileSummary{
			Index:  i,
			Name:   p.Name,
			Phases: make([]PhaseSummary, 0, len(p.Phases)),
		}
		for _, ph := range p.Phases {
			summary.Phases = append(summary.Phases, PhaseSummary{
				Name:        ph.Name,
				ExitTempC:   ph.ExitTempC,
				Direction:   ph.Direction.String(),
				MinS:        int(ph.MinDuration.Seconds()),
				MaxS:        int(ph.MaxDuration.Seconds()),
				TargetS:     int(ph.TargetDuration.Seconds()),
				AlarmOnExit: ph.AlarmOnExit,
			})
		}
		out = append(out, summary)
	}
	return out
}

var _ Monitoring = (*MonitoringService)(nil)
