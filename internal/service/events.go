package service

import (
	"context"

	"github.com/glockwork/ControLeo2/internal/logger"
	"github.com/glockwork/ControLeo2/internal/metrics"
	"github.com/glockwork/ControLeo2/internal/models"
	"github.com/glockwork/ControLeo2/internal/mqtt"
	"github.com/glockwork/ControLeo2/internal/reflow"
	"github.com/glockwork/ControLeo2/internal/repository"
)

// EventFanout delivers each process event to the database log, the MQTT
// event topic and the metrics counters. Only persistence failures are
// returned; a broker hiccup must not look like a process error.
type EventFanout struct {
	repo repository.EventRepo
	pub  mqtt.Publisher
	log  *logger.Logger
}

func NewEventFanout(repo repository.EventRepo, pub mqtt.Publisher, log *logger.Logger) *EventFanout {
	return &EventFanout{repo: repo, pub: pub, log: log}
}

// Append fans the event out to all sinks.
func (f *EventFanout) Append(ctx context.Context, e models.OvenEvent) error {
	metrics.Event(e.Type)

	if f.pub != nil {
		if err := f.pub.PublishEvent(e); err != nil {
			f.log.Warnw("publish event", "type", e.Type, "err", err)
		}
	}

	if f.repo == nil {
		return nil
	}
	return f.repo.Append(ctx, e)
}

var _ reflow.EventSink = (*EventFanout)(nil)
