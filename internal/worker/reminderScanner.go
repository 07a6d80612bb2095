package worker

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	repository "github.com/eventmind/eventmind/internal/database/postgres"
	"github.com/eventmind/eventmind/internal/database/redis"
	"github.com/eventmind/eventmind/internal/entity"
	"github.com/eventmind/eventmind/internal/push"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ReminderScanner is the periodic job behind event reminders. Each
// run transitions expired events to COMPLETED, finds events whose
// reminder window has been reached, fans delivery out across every
// subscription the owner registered, prunes endpoints the push
// service reported gone, and commits notification_sent so the event
// never produces a second reminder in the same epoch.
type ReminderScanner struct {
	events     repository.EventRepository
	users      repository.UserRepository
	subs       repository.SubscriptionRepository
	dispatcher push.Dispatcher
	cache      *redis.EventListCache
	now        func() time.Time
}

func NewReminderScanner(
	events repository.EventRepository,
	users repository.UserRepository,
	subs repository.SubscriptionRepository,
	dispatcher push.Dispatcher,
	cache *redis.EventListCache,
) *ReminderScanner {
	return &ReminderScanner{
		events:     events,
		users:      users,
		subs:       subs,
		dispatcher: dispatcher,
		cache:      cache,
		now:        time.Now,
	}
}

func (s *ReminderScanner) Name() string {
	return "reminder_scan"
}

// Run performs one scan tick. Failures are logged and contained:
// nothing propagates to the scheduler and partial progress is kept.
func (s *ReminderScanner) Run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("Reminder scan panicked: %v", r)
		}
	}()

	now := s.now()
	s.completeExpired(ctx, now)
	s.processCandidates(ctx, now)
}

// completeExpired is the unconditional bulk status transition: any
// non-terminal event whose time has passed becomes COMPLETED, whether
// or not the owner ever looks at it again.
func (s *ReminderScanner) completeExpired(ctx context.Context, now time.Time) {
	count, owners, err := s.events.BulkCompleteExpired(ctx, now)
	if err != nil {
		logrus.Errorf("Failed to complete expired events: %v", err)
		return
	}

	if count > 0 {
		logrus.Infof("Auto-completed %d past events", count)
		for _, userID := range owners {
			s.invalidateCache(ctx, userID)
		}
	}
}

func (s *ReminderScanner) processCandidates(ctx context.Context, now time.Time) {
	candidates, err := s.events.FindReminderCandidates(ctx, now)
	if err != nil {
		logrus.Errorf("Failed to find reminder candidates: %v", err)
		return
	}

	if len(candidates) == 0 {
		return
	}
	logrus.Debugf("Found %d candidate events for reminders", len(candidates))

	for _, event := range candidates {
		select {
		case <-ctx.Done():
			logrus.Info("Reminder scan interrupted by context cancellation")
			return
		default:
		}

		if !event.ReminderDue(now) {
			continue
		}

		s.remind(ctx, event, now)
	}
}

// remind runs one event's dispatch cycle. The event is only marked
// sent after dispatch attempts were issued; if the owner cannot be
// resolved the event stays a candidate for the next tick.
func (s *ReminderScanner) remind(ctx context.Context, event *entity.Event, now time.Time) {
	user, err := s.users.GetByID(ctx, event.UserID)
	if err != nil {
		logrus.Errorf("Failed to resolve owner %s for event %s: %v", event.UserID, event.ID, err)
		return
	}

	subs, err := s.subs.GetByUserID(ctx, user.ID)
	if err != nil {
		logrus.Errorf("Failed to load subscriptions for user %s: %v", user.ID, err)
		return
	}

	if len(subs) > 0 {
		minutes := int(math.Round(event.MinutesUntilStart(now)))
		payload := &push.Payload{
			Title: "Reminder: " + event.Title,
			Body:  fmt.Sprintf("Your event starts in %d minutes.", minutes),
			URL:   "/events/" + event.ID.String(),
		}

		logrus.WithFields(logrus.Fields{
			"event_id":      event.ID,
			"user_name":     user.UserName,
			"subscriptions": len(subs),
		}).Info("Sending event reminder")

		invalid := s.fanOut(ctx, subs, payload)

		if len(invalid) > 0 {
			if err := s.subs.DeleteByEndpoints(ctx, user.ID, invalid); err != nil {
				logrus.Errorf("Failed to prune %d invalid subscriptions for user %s: %v",
					len(invalid), user.ID, err)
			} else {
				logrus.Infof("Pruned %d expired subscriptions for user %s", len(invalid), user.UserName)
			}
		}
	}

	// Delivery is best effort; the sent flag is committed regardless
	// so the event gets at most one dispatch cycle per epoch.
	if err := s.events.MarkReminderSent(ctx, event.ID, s.now()); err != nil {
		logrus.Errorf("Failed to mark reminder sent for event %s: %v", event.ID, err)
		return
	}

	s.invalidateCache(ctx, event.UserID)
}

// fanOut delivers the payload to every subscription concurrently and
// returns the endpoints classified permanently invalid. Outcomes are
// independent: one failing endpoint never aborts the others.
func (s *ReminderScanner) fanOut(ctx context.Context, subs []*entity.PushSubscription, payload *push.Payload) []string {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		invalid []string
	)

	for _, sub := range subs {
		wg.Add(1)
		go func(sub *entity.PushSubscription) {
			defer wg.Done()

			result, err := s.dispatcher.Send(ctx, sub, payload)
			switch result {
			case push.ResultPermanentlyInvalid:
				logrus.Warnf("Subscription expired/invalid for user %s: %v", sub.UserID, err)
				mu.Lock()
				invalid = append(invalid, sub.Endpoint)
				mu.Unlock()
			case push.ResultTransient:
				logrus.Warnf("Transient push failure for user %s: %v", sub.UserID, err)
			default:
				logrus.Debugf("Push delivered to user %s", sub.UserID)
			}
		}(sub)
	}

	wg.Wait()
	return invalid
}

func (s *ReminderScanner) invalidateCache(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		logrus.Warnf("Failed to invalidate event cache for user %s: %v", userID, err)
	}
}
