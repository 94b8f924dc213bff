package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/angelmondragon/marketplace-backend/pkg/outbox"
)

const (
	discountExpiryBatch = 100
	// discountExpiryMaxBatches bounds one run; the rest waits for the next cycle.
	discountExpiryMaxBatches = 50
)

// DiscountExpiryJobParams configure the expired discount notifier.
type DiscountExpiryJobParams struct {
	Logger    *logger.Logger
	DB        txRunner
	Discounts expiredDiscountReader
	Outbox    outboxEmitter
	Notifier  notifier
	BatchSize int
}

type expiredDiscountReader interface {
	ExpiredBefore(ctx context.Context, tx *gorm.DB, now time.Time, limit int) ([]models.Discount, error)
}

// NewDiscountExpiryJob tells vendors once about each discount that has lapsed.
// The discount_expired outbox row is the dedupe marker.
func NewDiscountExpiryJob(params DiscountExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Discounts == nil {
		return nil, fmt.Errorf("discount repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = discountExpiryBatch
	}
	return &discountExpiryJob{
		logg:      params.Logger,
		db:        params.DB,
		discounts: params.Discounts,
		outbox:    params.Outbox,
		notifier:  params.Notifier,
		batch:     batch,
		now:       time.Now,
	}, nil
}

type discountExpiryJob struct {
	logg      *logger.Logger
	db        txRunner
	discounts expiredDiscountReader
	outbox    outboxEmitter
	notifier  notifier
	batch     int
	now       func() time.Time
}

func (j *discountExpiryJob) Name() string { return "discount-expiry" }

func (j *discountExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	var errs error
	notified, skipped := 0, 0
	for i := 0; i < discountExpiryMaxBatches; i++ {
		rows, err := j.discounts.ExpiredBefore(ctx, nil, now, j.batch)
		if err != nil {
			return multierr.Append(errs, fmt.Errorf("query expired discounts: %w", err))
		}
		failed := 0
		for _, d := range rows {
			sent, err := j.announce(ctx, d, now)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("discount %s: %w", d.ID, err))
				failed++
				continue
			}
			if sent {
				notified++
			} else {
				skipped++
			}
		}
		// Failed rows come back on the next query, so stop instead of spinning on them.
		if len(rows) < j.batch || failed > 0 {
			break
		}
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"notified": notified,
		"skipped":  skipped,
		"failures": len(multierr.Errors(errs)),
	})
	j.logg.Info(logCtx, "discount expiry loop complete")
	return errs
}

func (j *discountExpiryJob) announce(ctx context.Context, d models.Discount, now time.Time) (bool, error) {
	var sent bool
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		emitted, err := j.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDiscountExpired,
			AggregateType: enums.AggregateDiscount,
			AggregateID:   d.ID,
			OccurredAt:    now,
			Data: outbox.DiscountExpiredEvent{
				DiscountID: d.ID,
				VendorID:   d.VendorID,
				Code:       d.Code,
				ExpiresAt:  d.ExpiresAt,
			},
		})
		if err != nil || !emitted {
			return err
		}
		sent = true
		text := fmt.Sprintf("Discount %s expired on %s", d.Code, d.ExpiresAt.UTC().Format("2006-01-02"))
		return j.notifier.Notify(ctx, tx, d.VendorID, enums.NotificationTypeSystem, text)
	})
	if err != nil {
		return false, err
	}
	return sent, nil
}
