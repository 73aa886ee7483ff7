// Package scheduler implements the Ticker (C5) on top of
// github.com/robfig/cron/v3, the same retry/schedule library other repos in
// the corpus reach for in place of a hand-rolled time.Ticker loop (one
// other_examples manifest even comments "in production, use robfig/cron").
// cron serializes a single entry's invocations, but the spec's "drop
// overlapping starts" plus shutdown-grace-deadline semantics still need an
// explicit atomic guard layered on top.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"reminder-engine/internal/domain/entities"
	"reminder-engine/internal/domain/interfaces"
	"reminder-engine/internal/engine"
)

// Notifier is the narrow slice of NotifierPort the ticker dispatches
// through; it fires delivery as a detached goroutine per due reminder so a
// slow adapter never stalls the scan.
type Notifier interface {
	Deliver(ctx context.Context, user *entities.User, reminder *entities.Reminder, tracking *entities.Tracking) error
}

// Ticker runs scan_upcoming_due on a fixed interval and re-chains every
// tracking it touches afterward.
type Ticker struct {
	store    interfaces.Store
	engine   *engine.ReminderEngine
	notifier Notifier
	publish  interfaces.EventPublisher
	logger   zerolog.Logger

	tickInterval  time.Duration
	gracePeriod   time.Duration
	cron          *cron.Cron
	inFlight      atomic.Bool
	lastRun       atomic.Value // time.Time
	dispatchSlots chan struct{}
	dispatchWG    sync.WaitGroup
}

func NewTicker(store interfaces.Store, reminderEngine *engine.ReminderEngine, notifier Notifier, publish interfaces.EventPublisher, tickIntervalSeconds, gracePeriodSeconds int, logger zerolog.Logger) *Ticker {
	return &Ticker{
		store:        store,
		engine:       reminderEngine,
		notifier:     notifier,
		publish:      publish,
		logger:       logger.With().Str("component", "ticker").Logger(),
		tickInterval: time.Duration(tickIntervalSeconds) * time.Second,
		gracePeriod:  time.Duration(gracePeriodSeconds) * time.Second,
		cron:         cron.New(),
	}
}

// WithMaxConcurrency bounds the number of in-flight NotifierPort dispatch
// goroutines (default 16 per §5's "one in-flight pool of Notifier dispatch
// jobs, bounded"). Must be called before Start.
func (t *Ticker) WithMaxConcurrency(n int) *Ticker {
	if n > 0 {
		t.dispatchSlots = make(chan struct{}, n)
	}
	return t
}

// Start registers the periodic entry and begins ticking.
func (t *Ticker) Start() error {
	spec := fmt.Sprintf("@every %ds", int(t.tickInterval.Seconds()))
	if _, err := t.cron.AddFunc(spec, t.runTick); err != nil {
		return fmt.Errorf("scheduler: register cron entry: %w", err)
	}
	t.cron.Start()
	return nil
}

// Stop drains within the shutdown grace period then aborts the cron
// scheduler; the in-flight tick, if any, is not forcibly interrupted but
// Stop does not block past the grace deadline. It then waits, within the
// same deadline, for any in-flight notifier dispatch goroutines spawned by
// promote() to finish, per §5's "wait up to the grace period for in-flight
// notifier jobs to finish".
func (t *Ticker) Stop(ctx context.Context) {
	stopCtx := t.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(t.gracePeriod):
		t.logger.Warn().Msg("shutdown grace period elapsed before ticker drained")
	case <-ctx.Done():
	}

	drained := make(chan struct{})
	go func() {
		t.dispatchWG.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(t.gracePeriod):
		t.logger.Warn().Msg("shutdown grace period elapsed before notifier dispatch jobs drained")
	case <-ctx.Done():
	}
}

// LastRun reports when the most recent tick began, for the /health
// supplement.
func (t *Ticker) LastRun() (time.Time, bool) {
	v := t.lastRun.Load()
	if v == nil {
		return time.Time{}, false
	}
	return v.(time.Time), true
}

func (t *Ticker) runTick() {
	if !t.inFlight.CompareAndSwap(false, true) {
		t.logger.Debug().Msg("tick dropped: previous tick still in flight")
		return
	}
	defer t.inFlight.Store(false)

	asOf := time.Now()
	t.lastRun.Store(asOf)

	ctx, cancel := context.WithTimeout(context.Background(), t.tickInterval-5*time.Second)
	defer cancel()

	due, err := t.store.Reminders().DueUpcoming(ctx, asOf)
	if err != nil {
		t.logger.Error().Err(err).Msg("scan_upcoming_due failed")
		return
	}

	touchedTrackings := make(map[uint64]time.Time)
	for _, rem := range due {
		if err := t.promote(ctx, rem); err != nil {
			t.logger.Error().Err(err).Uint64("reminder_id", rem.ID).Msg("failed to promote reminder to pending")
			continue
		}
		touchedTrackings[rem.TrackingID] = rem.ScheduledTime
	}

	for trackingID, excluded := range touchedTrackings {
		excluded := excluded
		if _, err := t.engine.ChainNext(ctx, trackingID, &excluded); err != nil {
			t.logger.Error().Err(err).Uint64("tracking_id", trackingID).Msg("chain_next after promotion failed")
		}
	}
}

func (t *Ticker) promote(ctx context.Context, rem *entities.Reminder) error {
	tracking, err := t.store.Trackings().GetByID(ctx, rem.TrackingID)
	if err != nil {
		return fmt.Errorf("load tracking: %w", err)
	}
	user, err := t.store.Users().GetByID(ctx, rem.UserID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	rem.Status = entities.ReminderPending
	if err := t.store.Reminders().Update(ctx, rem); err != nil {
		return fmt.Errorf("update reminder to pending: %w", err)
	}
	if t.publish != nil {
		t.publish.Publish(ctx, interfaces.Event{
			Kind:       interfaces.EventReminderDuePending,
			UserID:     rem.UserID,
			TrackingID: rem.TrackingID,
			ReminderID: rem.ID,
			Payload:    rem,
		})
	}

	if t.notifier != nil {
		t.dispatchWG.Add(1)
		go func() {
			defer t.dispatchWG.Done()
			if t.dispatchSlots != nil {
				t.dispatchSlots <- struct{}{}
				defer func() { <-t.dispatchSlots }()
			}
			deliverCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := t.notifier.Deliver(deliverCtx, user, rem, tracking); err != nil {
				t.logger.Warn().Err(err).Uint64("reminder_id", rem.ID).Msg("notifier delivery failed")
			}
		}()
	}
	return nil
}
