// Package mqtt publishes oven status snapshots and process events to an
// MQTT broker so dashboards and recorders can follow a reflow run without
// polling the HTTP API. Messages produced while the broker is unreachable
// are buffered in memory and replayed on reconnect.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/glockwork/ControLeo2/internal/models"
	"github.com/glockwork/ControLeo2/internal/reflow"
)

// TopicStatus carries periodic status snapshots. Published retained so a
// late subscriber immediately sees the current state.
const TopicStatus = "reflow/oven/status"

// TopicEvents carries process events (run started, phase changes, faults).
const TopicEvents = "reflow/oven/events"

// Publisher publishes controller messages to MQTT.
type Publisher interface {
	// PublishStatus sends a status snapshot to the broker.
	PublishStatus(st reflow.Status) error

	// PublishEvent sends a process event to the broker.
	PublishEvent(e models.OvenEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the broker connection is up.
type ConnectionStatus interface {
	IsConnected() bool
}

// StatusPayload is the JSON structure published on TopicStatus.
type StatusPayload struct {
	Oven OvenStatus `json:"oven"`
}

// OvenStatus is the snapshot body inside a StatusPayload.
type OvenStatus struct {
	Timestamp     string  `json:"timestamp"`
	Profile       string  `json:"profile"`
	Phase         string  `json:"phase"`
	PhaseIndex    int     `json:"phase_index"`
	Active        bool    `json:"active"`
	Faulted       bool    `json:"faulted"`
	TempC         float64 `json:"temp_c"`
	PeakTempC     float64 `json:"peak_temp_c"`
	ExitTempC     float64 `json:"exit_temp_c"`
	PhaseElapsedS int     `json:"phase_elapsed_s"`
	TotalElapsedS int     `json:"total_elapsed_s"`
	Heaters       [3]bool `json:"heaters"`
}

// FormatStatusPayload renders a status snapshot as the wire payload.
func FormatStatusPayload(st reflow.Status) ([]byte, error) {
	payload := StatusPayload{
		Oven: OvenStatus{
			Timestamp:     st.UpdatedAt.UTC().Format(time.RFC3339),
			Profile:       st.ProfileName,
			Phase:         st.PhaseName,
			PhaseIndex:    st.PhaseIndex,
			Active:        st.Active,
			Faulted:       st.Faulted,
			TempC:         st.CurrentTempC,
			PeakTempC:     st.PeakTempC,
			ExitTempC:     st.ExitTempC,
			PhaseElapsedS: st.PhaseElapsedS,
			TotalElapsedS: st.TotalElapsedS,
			Heaters:       st.Heaters,
		},
	}
	return json.Marshal(payload)
}

// EventPayload is the JSON structure published on TopicEvents.
type EventPayload struct {
	Event EventBody `json:"event"`
}

// EventBody is the event body inside an EventPayload.
type EventBody struct {
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Metadata  any    `json:"metadata,omitempty"`
}

// FormatEventPayload renders a process event as the wire payload.
func FormatEventPayload(e models.OvenEvent) ([]byte, error) {
	payload := EventPayload{
		Event: EventBody{
			Timestamp: e.OccurredAt.UTC().Format(time.RFC3339),
			Type:      e.Type,
			Message:   e.Description,
			Metadata:  e.Metadata,
		},
	}
	return json.Marshal(payload)
}

// NoopPublisher discards everything. Used when MQTT is not configured.
type NoopPublisher struct{}

// PublishStatus discards the snapshot.
func (NoopPublisher) PublishStatus(reflow.Status) error { return nil }

// PublishEvent discards the event.
func (NoopPublisher) PublishEvent(models.OvenEvent) error { return nil }

// Close does nothing.
func (NoopPublisher) Close() error { return nil }

// IsConnected always reports false.
func (NoopPublisher) IsConnected() bool { return false }

var _ Publisher = NoopPublisher{}
var _ ConnectionStatus = NoopPublisher{}
