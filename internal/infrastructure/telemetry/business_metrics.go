package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/exportdesk/backend/internal/domain/commerce"
)

// ErrMeterNil is returned when metrics are built without a meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// BusinessMetrics records store sync, payment and email activity.
// A nil *BusinessMetrics records nothing, so callers need no guards.
type BusinessMetrics struct {
	syncRuns     *Counter
	syncRows     *Counter
	syncDuration *Histogram
	payments     *Counter
	emails       *Counter
}

// NewBusinessMetrics registers the instruments on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	bm := &BusinessMetrics{}
	var err error
	if bm.syncRuns, err = NewCounter(meter, "exportdesk_sync_runs_total", "Store sync runs by outcome", "{runs}"); err != nil {
		return nil, err
	}
	if bm.syncRows, err = NewCounter(meter, "exportdesk_sync_rows_total", "Rows processed by store sync", "{rows}"); err != nil {
		return nil, err
	}
	if bm.syncDuration, err = NewHistogram(meter, "exportdesk_sync_duration_seconds", "Store sync run duration", "s", SyncDurationBuckets...); err != nil {
		return nil, err
	}
	if bm.payments, err = NewCounter(meter, "exportdesk_payments_recorded_total", "Installments recorded", "{payments}"); err != nil {
		return nil, err
	}
	if bm.emails, err = NewCounter(meter, "exportdesk_emails_total", "Order emails by delivery status", "{emails}"); err != nil {
		return nil, err
	}
	return bm, nil
}

// RecordSync records a finished sync summary
func (bm *BusinessMetrics) RecordSync(ctx context.Context, trigger commerce.Trigger, s *commerce.SyncSummary) {
	if bm == nil || s == nil {
		return
	}
	resource := AttrResource.String(string(s.Resource))
	bm.syncRuns.Inc(ctx, resource, AttrTrigger.String(string(trigger)), AttrStatus.String(string(s.Status)))
	bm.syncRows.Add(ctx, int64(s.Created), resource, AttrOutcome.String("created"))
	bm.syncRows.Add(ctx, int64(s.Updated), resource, AttrOutcome.String("updated"))
	bm.syncRows.Add(ctx, int64(s.Skipped), resource, AttrOutcome.String("skipped"))
	bm.syncRows.Add(ctx, int64(s.Errors), resource, AttrOutcome.String("error"))
	bm.syncDuration.RecordDuration(ctx, time.Duration(s.DurationMs)*time.Millisecond, resource)
}

// RecordPayment counts one installment, labelled with the resulting payment status
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, status string) {
	if bm == nil {
		return
	}
	bm.payments.Inc(ctx, attribute.String("payment_status", status))
}

// RecordEmail counts one send attempt
func (bm *BusinessMetrics) RecordEmail(ctx context.Context, template, status string) {
	if bm == nil {
		return
	}
	bm.emails.Inc(ctx, AttrTemplate.String(template), AttrDelivery.String(status))
}
