package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ledTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portled",
		Subsystem: "led",
		Name:      "state_transitions_total",
		Help:      "LED state changes applied to hardware",
	}, []string{"led_id", "color", "blink"})

	ledWriteErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portled",
		Subsystem: "led",
		Name:      "write_errors_total",
		Help:      "Failed sysfs attribute writes",
	}, []string{"led_id", "file"})

	ledBlinkFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portled",
		Subsystem: "led",
		Name:      "blink_fallbacks_total",
		Help:      "Blink patterns that could not be applied and fell back to solid",
	}, []string{"led_id"})

	ledColor = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "portled",
		Subsystem: "led",
		Name:      "color",
		Help:      "Current LED color (0 off, 1 blue, 2 yellow)",
	}, []string{"led_id"})
)

// RecordTransition counts a state applied to an LED.
func RecordTransition(ledID, color, blink string) {
	ledTransitions.WithLabelValues(ledID, color, blink).Inc()
}

// RecordWriteError counts a failed write to an LED attribute file.
func RecordWriteError(ledID, file string) {
	ledWriteErrors.WithLabelValues(ledID, file).Inc()
}

// RecordBlinkFallback counts a blink pattern that fell back to solid.
func RecordBlinkFallback(ledID string) {
	ledBlinkFallbacks.WithLabelValues(ledID).Inc()
}

// SetColor sets the current color gauge for an LED.
func SetColor(ledID string, color int) {
	ledColor.WithLabelValues(ledID).Set(float64(color))
}

// DeleteLEDMetrics removes the per-LED series of an LED that is no longer managed.
func DeleteLEDMetrics(ledID string) {
	ledColor.DeleteLabelValues(ledID)
	ledBlinkFallbacks.DeleteLabelValues(ledID)
	ledTransitions.DeletePartialMatch(prometheus.Labels{"led_id": ledID})
	ledWriteErrors.DeletePartialMatch(prometheus.Labels{"led_id": ledID})
}

// Handler serves every promauto-registered metric in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
