// Package status provides a thread-safe view of the reflow process for
// readers outside the control loop: HTTP handlers, websocket pushers and the
// MQTT publisher. The control loop is the only writer.
package status

import (
	"sync"
	"time"

	"github.com/glockwork/ControLeo2/internal/reflow"
)

// Snapshot is a point-in-time view of the controller.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Process       reflow.Status `json:"process"`
	StartTime     time.Time     `json:"start_time"`
	Now           time.Time     `json:"now"`
	MQTTConnected bool          `json:"mqtt_connected"`
}

// Uptime returns the duration since the controller started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable controller state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time.
func NewTracker(startTime time.Time) *Tracker {
	return &Tracker{
		snap: Snapshot{StartTime: startTime},
	}
}

// Update sets the process status. Called from the control loop on every pass.
func (t *Tracker) Update(st reflow.Status) {
	t.mu.Lock()
	t.snap.Process = st
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the controller state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
