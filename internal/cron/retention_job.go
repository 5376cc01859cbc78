package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/LeDucTai-11/MyStore-BE/pkg/logger"
)

const (
	outboxRetentionDays       = 30
	outboxMinAttempts         = 5
	notificationRetentionDays = 30
	retentionEvery            = 24 * time.Hour
)

type outboxRetentionRepo interface {
	DeletePublishedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time, minAttemptCount int) (int64, error)
}

type notificationsCleanupRepo interface {
	DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type OutboxRetentionJobParams struct {
	Logger      *logger.Logger
	DB          txRunner
	Repository  outboxRetentionRepo
	Retention   int
	MinAttempts int
}

// NewOutboxRetentionJob prunes outbox rows that were published long ago.
func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	minAttempts := params.MinAttempts
	if minAttempts <= 0 {
		minAttempts = outboxMinAttempts
	}
	repo := params.Repository
	job, err := newRetentionJob("outbox-retention", params.Logger, params.DB, params.Retention, outboxRetentionDays,
		func(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
			return repo.DeletePublishedBefore(ctx, tx, cutoff, minAttempts)
		})
	if err != nil {
		return nil, err
	}
	return job, nil
}

type NotificationCleanupJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository notificationsCleanupRepo
	Retention  int
}

// NewNotificationCleanupJob deletes read notifications past retention.
func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	job, err := newRetentionJob("notification-cleanup", params.Logger, params.DB, params.Retention, notificationRetentionDays,
		params.Repository.DeleteOlderThan)
	if err != nil {
		return nil, err
	}
	return job, nil
}

type retentionDeleter func(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)

type retentionJob struct {
	name      string
	logg      *logger.Logger
	db        txRunner
	deleteFn  retentionDeleter
	retention int
	now       func() time.Time
}

func newRetentionJob(name string, logg *logger.Logger, db txRunner, retention, fallback int, deleteFn retentionDeleter) (*retentionJob, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if db == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if retention <= 0 {
		retention = fallback
	}
	return &retentionJob{
		name:      name,
		logg:      logg,
		db:        db,
		deleteFn:  deleteFn,
		retention: retention,
		now:       time.Now,
	}, nil
}

func (j *retentionJob) Name() string { return j.name }

func (j *retentionJob) Every() time.Duration { return retentionEvery }

func (j *retentionJob) cutoff() time.Time {
	return j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
}

func (j *retentionJob) Run(ctx context.Context) error {
	cutoff := j.cutoff()
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.deleteFn(ctx, tx, cutoff)
		if err != nil {
			return err
		}
		deleted = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", j.name, err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "retention cleanup complete")
	return nil
}
