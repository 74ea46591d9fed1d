package mqtt

import (
	"github.com/glockwork/ControLeo2/internal/models"
	"github.com/glockwork/ControLeo2/internal/reflow"
)

// FakePublisher records published messages for test assertions.
type FakePublisher struct {
	// Statuses contains all status snapshots that were published.
	Statuses []reflow.Status

	// StatusPayloads contains the JSON payloads for status snapshots.
	StatusPayloads [][]byte

	// Events contains all process events that were published.
	Events []models.OvenEvent

	// EventPayloads contains the JSON payloads for process events.
	EventPayloads [][]byte

	// StatusError, if set, is returned by PublishStatus.
	StatusError error

	// EventError, if set, is returned by PublishEvent.
	EventError error

	// Closed tracks whether Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishStatus records the snapshot.
func (f *FakePublisher) PublishStatus(st reflow.Status) error {
	if f.StatusError != nil {
		return f.StatusError
	}

	f.Statuses = append(f.Statuses, st)

	payload, err := FormatStatusPayload(st)
	if err != nil {
		return err
	}
	f.StatusPayloads = append(f.StatusPayloads, payload)

	return nil
}

// PublishEvent records the event.
func (f *FakePublisher) PublishEvent(e models.OvenEvent) error {
	if f.EventError != nil {
		return f.EventError
	}

	f.Events = append(f.Events, e)

	payload, err := FormatEventPayload(e)
	if err != nil {
		return err
	}
	f.EventPayloads = append(f.EventPayloads, payload)

	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Reset clears recorded messages.
func (f *FakePublisher) Reset() {
	f.Statuses = nil
	f.StatusPayloads = nil
	f.Events = nil
	f.EventPayloads = nil
	f.Closed = false
	f.StatusError = nil
	f.EventError = nil
	f.Connected = false
}

var _ Publisher = (*FakePublisher)(nil)
var _ ConnectionStatus = (*FakePublisher)(nil)
