package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// NotificationMetrics records delivery outcomes for customer emails.
type NotificationMetrics struct {
	duration *prometheus.HistogramVec
	sent     *prometheus.CounterVec
	failed   *prometheus.CounterVec
}

// NewNotificationMetrics registers the notification metrics on the provided registerer.
func NewNotificationMetrics(reg prometheus.Registerer) *NotificationMetrics {
	if reg == nil {
		return &NotificationMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notification_send_duration_seconds",
		Help:    "Duration of notification deliveries in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_sent_total",
		Help: "Notifications delivered to the mailer.",
	}, []string{"kind"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_failed_total",
		Help: "Notifications that failed to render or send.",
	}, []string{"kind"})
	reg.MustRegister(duration, sent, failed)
	return &NotificationMetrics{
		duration: duration,
		sent:     sent,
		failed:   failed,
	}
}

func (n *NotificationMetrics) ObserveDuration(kind string, duration time.Duration) {
	if n == nil || n.duration == nil {
		return
	}
	n.duration.WithLabelValues(normalizeLabel(kind)).Observe(duration.Seconds())
}

func (n *NotificationMetrics) IncSent(kind string) {
	if n == nil || n.sent == nil {
		return
	}
	n.sent.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (n *NotificationMetrics) IncFailed(kind string) {
	if n == nil || n.failed == nil {
		return
	}
	n.failed.WithLabelValues(normalizeLabel(kind)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
