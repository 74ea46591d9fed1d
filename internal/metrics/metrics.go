// Package metrics exposes the controller's Prometheus instrumentation.
// The control loop feeds the gauges from status snapshots; process events
// increment a counter by type.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/glockwork/ControLeo2/internal/reflow"
)

// heaterNames maps heater indexes to label values.
var heaterNames = [reflow.HeaterCount]string{"bottom", "top", "boost"}

var (
	temperatureC = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reflow_oven_temperature_celsius",
		Help: "Most recently sampled oven temperature.",
	})
	peakTemperatureC = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reflow_oven_peak_temperature_celsius",
		Help: "Highest temperature sampled during the current run.",
	})
	phaseIndex = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reflow_phase_index",
		Help: "Position in the schedule, 0 = idle, last = cooling.",
	})
	runActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reflow_run_active",
		Help: "1 while a run (or a forced cool-down) is in progress.",
	})
	sensorFaulted = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reflow_sensor_faulted",
		Help: "1 while the thermocouple reports a wiring fault.",
	})
	heaterOn = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "reflow_heater_on",
		Help: "1 while the heater relay is driven.",
	}, []string{"heater"})

	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reflow_events_total",
		Help: "Process events recorded since the controller booted, by type.",
	}, []string{"type"})
)

// ObserveStatus updates the gauges from a status snapshot.
func ObserveStatus(st reflow.Status) {
	temperatureC.Set(st.CurrentTempC)
	peakTemperatureC.Set(st.PeakTempC)
	phaseIndex.Set(float64(st.PhaseIndex))
	runActive.Set(boolToFloat(st.Active))
	sensorFaulted.Set(boolToFloat(st.Faulted))
	for i, name := range heaterNames {
		heaterOn.WithLabelValues(name).Set(boolToFloat(st.Heaters[i]))
	}
}

// Event counts a process event by its type, e.g. "RUN_STARTED".
func Event(eventType string) {
	eventsTotal.WithLabelValues(eventType).Inc()
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
