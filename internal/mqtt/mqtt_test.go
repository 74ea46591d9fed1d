package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/glockwork/ControLeo2/internal/models"
	"github.com/glockwork/ControLeo2/internal/reflow"
)

func sampleStatus() reflow.Status {
	return reflow.Status{
		ProfileIndex:  0,
		ProfileName:   "lead-free",
		Active:        true,
		CurrentTempC:  187.25,
		PeakTempC:     187.25,
		PhaseIndex:    2,
		PhaseName:     "soak",
		ExitTempC:     205,
		PhaseElapsedS: 42,
		TotalElapsedS: 130,
		DutyStep:      3,
		Heaters:       [3]bool{true, false, false},
		UpdatedAt:     time.Date(2026, 3, 10, 9, 2, 10, 0, time.UTC),
	}
}

func TestFormatStatusPayload(t *testing.T) {
	payload, err := FormatStatusPayload(sampleStatus())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed StatusPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Oven.Timestamp != "2026-03-10T09:02:10Z" {
		t.Errorf("unexpected timestamp: %s", parsed.Oven.Timestamp)
	}
	if parsed.Oven.Profile != "lead-free" {
		t.Errorf("unexpected profile: %s", parsed.Oven.Profile)
	}
	if parsed.Oven.Phase != "soak" {
		t.Errorf("unexpected phase: %s", parsed.Oven.Phase)
	}
	if !parsed.Oven.Active {
		t.Error("expected active")
	}
	if parsed.Oven.TempC != 187.25 {
		t.Errorf("unexpected temp: %v", parsed.Oven.TempC)
	}
	if parsed.Oven.ExitTempC != 205 {
		t.Errorf("unexpected exit temp: %v", parsed.Oven.ExitTempC)
	}
	if parsed.Oven.Heaters != [3]bool{true, false, false} {
		t.Errorf("unexpected heaters: %v", parsed.Oven.Heaters)
	}
}

func TestFormatEventPayload(t *testing.T) {
	event := models.OvenEvent{
		OccurredAt:  time.Date(2026, 3, 10, 9, 3, 0, 0, time.UTC),
		Type:        models.EventPhaseEntered,
		Description: "entered phase liquidus",
		Metadata:    map[string]any{"index": 3},
	}

	payload, err := FormatEventPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed EventPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Event.Timestamp != "2026-03-10T09:03:00Z" {
		t.Errorf("unexpected timestamp: %s", parsed.Event.Timestamp)
	}
	if parsed.Event.Type != "PHASE_ENTERED" {
		t.Errorf("unexpected type: %s", parsed.Event.Type)
	}
	if parsed.Event.Message != "entered phase liquidus" {
		t.Errorf("unexpected message: %s", parsed.Event.Message)
	}
	meta, ok := parsed.Event.Metadata.(map[string]any)
	if !ok {
		t.Fatalf("metadata did not round-trip: %#v", parsed.Event.Metadata)
	}
	if meta["index"] != float64(3) {
		t.Errorf("unexpected metadata index: %v", meta["index"])
	}
}

func TestFormatEventPayloadOmitsNilMetadata(t *testing.T) {
	event := models.OvenEvent{
		OccurredAt:  time.Date(2026, 3, 10, 9, 3, 0, 0, time.UTC),
		Type:        models.EventSensorFault,
		Description: "thermocouple open circuit",
	}

	payload, err := FormatEventPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var raw map[string]map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, present := raw["event"]["metadata"]; present {
		t.Error("nil metadata should be omitted from the payload")
	}
}

func TestFakePublisherRecords(t *testing.T) {
	fake := NewFakePublisher()

	if err := fake.PublishStatus(sampleStatus()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := fake.PublishEvent(models.OvenEvent{Type: models.EventRunStarted}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fake.Statuses) != 1 || len(fake.StatusPayloads) != 1 {
		t.Errorf("expected 1 recorded status, got %d/%d", len(fake.Statuses), len(fake.StatusPayloads))
	}
	if len(fake.Events) != 1 || len(fake.EventPayloads) != 1 {
		t.Errorf("expected 1 recorded event, got %d/%d", len(fake.Events), len(fake.EventPayloads))
	}
	if fake.Statuses[0].PhaseName != "soak" {
		t.Errorf("unexpected recorded phase: %s", fake.Statuses[0].PhaseName)
	}

	if err := fake.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fake.Closed {
		t.Error("expected Closed to be set")
	}

	fake.Reset()
	if len(fake.Statuses) != 0 || len(fake.Events) != 0 || fake.Closed {
		t.Error("Reset did not clear recorded state")
	}
}

func TestFakePublisherErrors(t *testing.T) {
	fake := NewFakePublisher()
	wantErr := errors.New("broker gone")
	fake.StatusError = wantErr
	fake.EventError = wantErr

	if err := fake.PublishStatus(sampleStatus()); !errors.Is(err, wantErr) {
		t.Errorf("expected injected status error, got %v", err)
	}
	if err := fake.PublishEvent(models.OvenEvent{}); !errors.Is(err, wantErr) {
		t.Errorf("expected injected event error, got %v", err)
	}
	if len(fake.Statuses) != 0 || len(fake.Events) != 0 {
		t.Error("failed publishes must not be recorded")
	}
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}

	if err := p.PublishStatus(sampleStatus()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := p.PublishEvent(models.OvenEvent{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if (NoopPublisher{}).IsConnected() {
		t.Error("noop publisher must report disconnected")
	}
}
