package models

import "time"

// Event types recorded in the process log.
const (
	EventRunStarted      = "RUN_STARTED"
	EventRunEnded        = "RUN_ENDED"
	EventPhaseEntered    = "PHASE_ENTERED"
	EventPhaseLeft       = "PHASE_LEFT"
	EventSensorFault     = "SENSOR_FAULT"
	EventProfileSelected = "PROFILE_SELECTED"
)

// OvenEvent is a single entry in the append-only process log.
type OvenEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
