package notifications

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/phoneshop-backend/pkg/db/models"
	"github.com/angelmondragon/phoneshop-backend/pkg/enums"
	"github.com/angelmondragon/phoneshop-backend/pkg/logger"
	"github.com/angelmondragon/phoneshop-backend/pkg/metrics"
)

type stubNotifier struct {
	err      error
	panics   bool
	deadline bool
	calls    int
}

func (s *stubNotifier) Notify(ctx context.Context, _ enums.NotificationKind, _ *models.Order) error {
	s.calls++
	_, s.deadline = ctx.Deadline()
	if s.panics {
		panic("boom")
	}
	return s.err
}

type recordingMailer struct {
	messages []*Message
}

func (m *recordingMailer) Send(_ context.Context, msg *Message) error {
	m.messages = append(m.messages, msg)
	return nil
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, kind string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "kind" && label.GetValue() == kind {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func newTestDispatcher(t *testing.T, notifier Notifier) (*Dispatcher, *prometheus.Registry, *bytes.Buffer) {
	t.Helper()
	reg := prometheus.NewRegistry()
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	d, err := NewDispatcher(notifier, metrics.NewNotificationMetrics(reg), logg, time.Second)
	require.NoError(t, err)
	return d, reg, buf
}

func TestDispatchCountsSuccess(t *testing.T) {
	notifier := &stubNotifier{}
	d, reg, _ := newTestDispatcher(t, notifier)

	d.Dispatch(context.Background(), enums.NotificationKindOrderPlaced, sampleOrder())

	assert.Equal(t, 1, notifier.calls)
	assert.True(t, notifier.deadline)
	assert.Equal(t, float64(1), counterValue(t, reg, "notification_sent_total", "order_placed"))
	assert.Equal(t, float64(0), counterValue(t, reg, "notification_failed_total", "order_placed"))
}

func TestDispatchSwallowsFailures(t *testing.T) {
	notifier := &stubNotifier{err: errors.New("smtp down")}
	d, reg, buf := newTestDispatcher(t, notifier)

	d.Dispatch(context.Background(), enums.NotificationKindOrderShipped, sampleOrder())

	assert.Equal(t, float64(1), counterValue(t, reg, "notification_failed_total", "order_shipped"))
	assert.True(t, strings.Contains(buf.String(), "notification failed"))
	assert.True(t, strings.Contains(buf.String(), "DEPENDENCY_ERROR"))
}

func TestDispatchRecoversFromPanics(t *testing.T) {
	d, reg, _ := newTestDispatcher(t, &stubNotifier{panics: true})

	require.NotPanics(t, func() {
		d.Dispatch(context.Background(), enums.NotificationKindOrderPlaced, sampleOrder())
	})
	assert.Equal(t, float64(1), counterValue(t, reg, "notification_failed_total", "order_placed"))
}

func TestEmailNotifierRendersAndSends(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)
	mailer := &recordingMailer{}
	notifier, err := NewEmailNotifier(renderer, mailer)
	require.NoError(t, err)

	require.NoError(t, notifier.Notify(context.Background(), enums.NotificationKindOrderPlaced, sampleOrder()))
	require.Len(t, mailer.messages, 1)
	assert.Contains(t, mailer.messages[0].Text, "Total: $250.00")

	order := sampleOrder()
	order.Email = ""
	require.Error(t, notifier.Notify(context.Background(), enums.NotificationKindOrderPlaced, order))
}

func TestNewDispatcherValidation(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
	_, err := NewDispatcher(nil, nil, logg, 0)
	require.Error(t, err)
	_, err = NewDispatcher(&stubNotifier{}, nil, nil, 0)
	require.Error(t, err)

	d, err := NewDispatcher(&stubNotifier{}, nil, logg, 0)
	require.NoError(t, err)
	assert.Equal(t, defaultSendTimeout, d.timeout)
}
