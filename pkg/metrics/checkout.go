package metrics

import "github.com/prometheus/client_golang/prometheus"

// Checkout outcomes.
const (
	OutcomePlaced            = "placed"
	OutcomeEmptyCart         = "empty_cart"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomePersistenceError  = "persistence_error"
)

// CheckoutMetrics counts order placement attempts by outcome.
type CheckoutMetrics struct {
	attempts *prometheus.CounterVec
}

func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Order placement attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(attempts)
	return &CheckoutMetrics{attempts: attempts}
}

// IncOutcome increments the attempt counter for the given outcome.
func (c *CheckoutMetrics) IncOutcome(outcome string) {
	if c == nil || c.attempts == nil {
		return
	}
	c.attempts.WithLabelValues(normalizeLabel(outcome)).Inc()
}
