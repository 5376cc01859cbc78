package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/LeDucTai-11/MyStore-BE/internal/orders"
	pkgerrors "github.com/LeDucTai-11/MyStore-BE/pkg/errors"
	"github.com/LeDucTai-11/MyStore-BE/pkg/logger"
	"github.com/LeDucTai-11/MyStore-BE/pkg/metrics"
)

const defaultExpiryBatchSize = 100

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type expiredPaymentReader interface {
	FindExpiredPayments(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error)
}

type orderCanceler interface {
	Cancel(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, reason string) error
}

// OrderExpiryJobParams configure the unpaid banking order sweep.
type OrderExpiryJobParams struct {
	Logger    *logger.Logger
	DB        txRunner
	Reader    expiredPaymentReader
	Canceler  orderCanceler
	Deadline  time.Duration
	BatchSize int
	Metrics   *metrics.OrderMetrics
}

// NewOrderExpiryJob builds the job that cancels banking orders whose payment
// confirmation deadline has passed.
func NewOrderExpiryJob(params OrderExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Reader == nil {
		return nil, fmt.Errorf("expired payment reader required")
	}
	if params.Canceler == nil {
		return nil, fmt.Errorf("order canceler required")
	}
	if params.Deadline <= 0 {
		return nil, fmt.Errorf("payment confirmation deadline must be positive")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultExpiryBatchSize
	}
	return &orderExpiryJob{
		logg:     params.Logger,
		db:       params.DB,
		reader:   params.Reader,
		canceler: params.Canceler,
		deadline: params.Deadline,
		batch:    batch,
		metrics:  params.Metrics,
		now:      time.Now,
	}, nil
}

type orderExpiryJob struct {
	logg     *logger.Logger
	db       txRunner
	reader   expiredPaymentReader
	canceler orderCanceler
	deadline time.Duration
	batch    int
	metrics  *metrics.OrderMetrics
	now      func() time.Time
}

func (j *orderExpiryJob) Name() string { return "order-expiry" }

// Run cancels each expired order in its own transaction so one failure does
// not hold back the rest of the batch.
func (j *orderExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.deadline)
	ids, err := j.reader.FindExpiredPayments(ctx, cutoff, j.batch)
	if err != nil {
		j.metrics.IncSweepError()
		return fmt.Errorf("query expired payments: %w", err)
	}

	var (
		errs    error
		expired int
		skipped int
	)
	for _, id := range ids {
		err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
			return j.canceler.Cancel(ctx, tx, id, orders.ReasonPaymentExpired)
		})
		switch {
		case err == nil:
			expired++
			j.metrics.IncExpired()
		case pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), pkgerrors.IsCode(err, pkgerrors.CodeConflict):
			// paid or canceled between the scan and the lock
			skipped++
			j.logg.Warn(j.logg.WithOrderID(ctx, id.String()), "expired order changed before cancel, skipping")
		default:
			j.metrics.IncSweepError()
			errs = multierr.Append(errs, fmt.Errorf("expire order %s: %w", id, err))
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":  cutoff,
		"found":   len(ids),
		"expired": expired,
		"skipped": skipped,
	})
	j.logg.Info(logCtx, "order expiry sweep complete")
	return errs
}
