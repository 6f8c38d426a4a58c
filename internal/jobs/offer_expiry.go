// Package jobs runs scheduled background tasks: currently the offer expiry
// sweep that deactivates coupons past their expiry date.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/shubhanshu-a32/katelog/internal/domain/offer"
)

// OfferExpiryJob periodically deactivates offers whose expiry date has
// passed. Orders already referencing an expired code are untouched; the sweep
// only closes the door on new redemptions.
type OfferExpiryJob struct {
	offers offer.Repository
	cron   *cron.Cron
	lg     *zap.Logger
}

// NewOfferExpiryJob creates the expiry sweeper.
func NewOfferExpiryJob(offers offer.Repository, lg *zap.Logger) *OfferExpiryJob {
	return &OfferExpiryJob{
		offers: offers,
		cron:   cron.New(),
		lg:     lg.Named("offer_expiry_job"),
	}
}

// Start schedules the sweep with the given cron expression (standard 5-field
// syntax, e.g. "*/10 * * * *").
func (j *OfferExpiryJob) Start(schedule string) error {
	_, err := j.cron.AddFunc(schedule, func() {
		ctx := context.Background()
		n, err := j.offers.DeactivateExpired(ctx, time.Now())
		if err != nil {
			j.lg.Error("offer expiry sweep failed", zap.Error(err))
			return
		}
		if n > 0 {
			j.lg.Info("deactivated expired offers", zap.Int64("count", n))
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.lg.Info("offer expiry job started", zap.String("schedule", schedule))
	return nil
}

// Stop stops the scheduler without waiting for a running sweep.
func (j *OfferExpiryJob) Stop() {
	j.cron.Stop()
	j.lg.Info("offer expiry job stopped")
}
