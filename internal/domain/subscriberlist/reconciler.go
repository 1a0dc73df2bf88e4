package subscriberlist

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/creatorhub/creatorhub-api/internal/pkg/metrics"
)

// DefaultReconcileTimeout bounds one reconcile pass
const DefaultReconcileTimeout = 10 * time.Minute

// Reconciler recomputes cached member counts for every list.
// Custom lists are recounted from their rows; active smart lists are re-resolved.
type Reconciler struct {
	lists   *Service
	timeout time.Duration
}

// NewReconciler creates reconciler
func NewReconciler(lists *Service) *Reconciler {
	return &Reconciler{lists: lists, timeout: DefaultReconcileTimeout}
}

// Schedule registers the reconcile job on c with a cron schedule expression
func (r *Reconciler) Schedule(c *cron.Cron, schedule string) (cron.EntryID, error) {
	return c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if _, err := r.Run(ctx); err != nil {
			log.Error().Err(err).Msg("Member count reconcile failed")
		}
	})
}

// Run performs one pass and returns how many lists were updated.
// A failure on one list is logged and skipped.
func (r *Reconciler) Run(ctx context.Context) (int, error) {
	start := time.Now()

	custom, err := r.lists.repo.ListByType(ctx, ListTypeCustom)
	if err != nil {
		return 0, err
	}
	customDone := 0
	for _, list := range custom {
		if _, err := r.lists.repo.RecountMembers(ctx, list.ID); err != nil {
			log.Warn().Err(err).Int64("list_id", list.ID).Msg("Failed to recount custom list")
			continue
		}
		customDone++
	}
	metrics.RecordReconciled(string(ListTypeCustom), customDone)

	smart, err := r.lists.repo.ListByType(ctx, ListTypeSmart)
	if err != nil {
		return customDone, err
	}
	smartDone := 0
	for _, list := range smart {
		if !list.IsActive {
			continue
		}
		ids, err := r.lists.ResolveMembers(ctx, list)
		if err != nil {
			log.Warn().Err(err).Int64("list_id", list.ID).Msg("Failed to resolve smart list")
			continue
		}
		if err := r.lists.repo.SetMemberCount(ctx, list.ID, len(ids)); err != nil {
			log.Warn().Err(err).Int64("list_id", list.ID).Msg("Failed to store smart list count")
			continue
		}
		smartDone++
	}
	metrics.RecordReconciled(string(ListTypeSmart), smartDone)

	log.Info().
		Int("custom", customDone).
		Int("smart", smartDone).
		Dur("took", time.Since(start)).
		Msg("Member count reconcile finished")

	return customDone + smartDone, nil
}
