package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/phoneshop-backend/pkg/db/models"
	"github.com/angelmondragon/phoneshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/phoneshop-backend/pkg/errors"
	"github.com/angelmondragon/phoneshop-backend/pkg/logger"
	"github.com/angelmondragon/phoneshop-backend/pkg/metrics"
)

const defaultSendTimeout = 10 * time.Second

// Dispatcher delivers notifications on a best-effort basis: failures are
// logged and counted but never returned to the caller.
type Dispatcher struct {
	notifier Notifier
	metrics  *metrics.NotificationMetrics
	logg     *logger.Logger
	timeout  time.Duration
}

// NewDispatcher wires the notifier with its metrics and logger. A
// non-positive timeout falls back to ten seconds.
func NewDispatcher(notifier Notifier, m *metrics.NotificationMetrics, logg *logger.Logger, timeout time.Duration) (*Dispatcher, error) {
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Dispatcher{notifier: notifier, metrics: m, logg: logg, timeout: timeout}, nil
}

// NotificationError marks a failed delivery. It is logged, never surfaced.
func NotificationError(kind enums.NotificationKind, order *models.Order, err error) *pkgerrors.Error {
	details := map[string]any{"kind": kind.String()}
	if order != nil {
		details["order_id"] = order.ID.String()
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "notification delivery failed").WithDetails(details)
}

// Dispatch sends the notification within the configured timeout.
func (d *Dispatcher) Dispatch(ctx context.Context, kind enums.NotificationKind, order *models.Order) {
	if order != nil {
		ctx = d.logg.WithOrderID(ctx, order.ID.String())
	}
	ctx = d.logg.WithField(ctx, "notification_kind", kind.String())

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	err := d.notify(sendCtx, kind, order)
	d.metrics.ObserveDuration(kind.String(), time.Since(start))
	if err != nil {
		d.metrics.IncFailed(kind.String())
		d.logg.Error(ctx, "notification failed", NotificationError(kind, order, err))
		return
	}
	d.metrics.IncSent(kind.String())
	d.logg.Info(ctx, "notification sent")
}

func (d *Dispatcher) notify(ctx context.Context, kind enums.NotificationKind, order *models.Order) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panic: %v", r)
		}
	}()
	return d.notifier.Notify(ctx, kind, order)
}
