package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	repository "github.com/eventmind/eventmind/internal/database/postgres"
	"github.com/eventmind/eventmind/internal/database/redis"
	"github.com/eventmind/eventmind/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultRemindBeforeMinutes = 30
	defaultLocation            = "TBD"
)

type CreateEventRequest struct {
	Title               string              `json:"title" binding:"required,min=3,max=120"`
	Description         string              `json:"description" binding:"max=1000"`
	Location            string              `json:"location" binding:"max=255"`
	StartTime           time.Time           `json:"start_time" binding:"required"`
	EndTime             *time.Time          `json:"end_time"`
	Status              entity.EventStatus  `json:"status"`
	RemindBeforeMinutes *int                `json:"remind_before_minutes" binding:"omitempty,min=0,max=10080"`
	ReminderEnabled     *bool               `json:"reminder_enabled"`
}

// UpdateEventRequest is a partial update; nil fields are untouched.
type UpdateEventRequest struct {
	Title               *string             `json:"title,omitempty" binding:"omitempty,min=3,max=120"`
	Description         *string             `json:"description,omitempty" binding:"omitempty,max=1000"`
	Location            *string             `json:"location,omitempty" binding:"omitempty,max=255"`
	StartTime           *time.Time          `json:"start_time,omitempty"`
	EndTime             *time.Time          `json:"end_time,omitempty"`
	Status              *entity.EventStatus `json:"status,omitempty"`
	RemindBeforeMinutes *int                `json:"remind_before_minutes,omitempty" binding:"omitempty,min=0,max=10080"`
	ReminderEnabled     *bool               `json:"reminder_enabled,omitempty"`
}

type eventService struct {
	eventRepo repository.EventRepository
	cache     *redis.EventListCache
}

// NewEventService creates a new instance of EventService. The cache
// may be nil when redis is disabled.
func NewEventService(eventRepo repository.EventRepository, cache *redis.EventListCache) EventService {
	return &eventService{
		eventRepo: eventRepo,
		cache:     cache,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, userID uuid.UUID, req *CreateEventRequest) (*entity.Event, error) {
	if req.EndTime != nil && !req.EndTime.After(req.StartTime) {
		return nil, entity.ErrInvalidTimeSpan
	}

	status := req.Status
	if status == "" {
		status = entity.EventStatusUpcoming
	}
	if !status.Valid() {
		return nil, entity.ErrInvalidStatus
	}

	location := req.Location
	if location == "" {
		location = defaultLocation
	}

	remindBefore := defaultRemindBeforeMinutes
	if req.RemindBeforeMinutes != nil {
		remindBefore = *req.RemindBeforeMinutes
	}
	enabled := true
	if req.ReminderEnabled != nil {
		enabled = *req.ReminderEnabled
	}

	now := time.Now()
	event := &entity.Event{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Location:    location,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      status,
		Reminder: entity.Reminder{
			RemindBeforeMinutes: remindBefore,
			Enabled:             enabled,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.invalidateCache(ctx, userID)
	return event, nil
}

func (s *eventService) GetUserEvents(ctx context.Context, userID uuid.UUID, status entity.EventStatus) ([]*entity.Event, error) {
	if status != "" && !status.Valid() {
		return nil, entity.ErrInvalidStatus
	}

	if s.cache != nil {
		if events, err := s.cache.Get(ctx, userID, status); err == nil {
			return events, nil
		}
	}

	events, err := s.eventRepo.GetByOwner(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, status, events); err != nil {
			logrus.Warnf("Failed to cache events for user %s: %v", userID, err)
		}
	}

	return events, nil
}

// updateRetries bounds the read-modify-write loop when the scanner
// changes the row between the read and the conditional write.
const updateRetries = 3

func (s *eventService) UpdateEvent(ctx context.Context, userID, eventID uuid.UUID, req *UpdateEventRequest) (*entity.Event, error) {
	for attempt := 0; attempt < updateRetries; attempt++ {
		event, err := s.eventRepo.GetByOwnerAndID(ctx, userID, eventID)
		if err != nil {
			return nil, err
		}

		prevStatus := event.Status
		prevSent := event.Reminder.NotificationSent

		if err := applyUpdate(event, req); err != nil {
			return nil, err
		}

		err = s.eventRepo.Update(ctx, event, prevStatus, prevSent)
		if errors.Is(err, entity.ErrEventConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.invalidateCache(ctx, userID)
		return event, nil
	}

	return nil, entity.ErrEventConflict
}

// applyUpdate folds the partial update into the freshly read event.
func applyUpdate(event *entity.Event, req *UpdateEventRequest) error {
	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.EndTime != nil {
		event.EndTime = req.EndTime
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return entity.ErrInvalidStatus
		}
		event.Status = *req.Status
	}
	if req.ReminderEnabled != nil {
		event.Reminder.Enabled = *req.ReminderEnabled
	}

	// Edits to the scheduling fields open a new reminder epoch: the
	// sent flag is reset so the reminder fires again for the new time.
	rearm := false
	if req.StartTime != nil && !req.StartTime.Equal(event.StartTime) {
		event.StartTime = *req.StartTime
		rearm = true
	}
	if req.RemindBeforeMinutes != nil && *req.RemindBeforeMinutes != event.Reminder.RemindBeforeMinutes {
		event.Reminder.RemindBeforeMinutes = *req.RemindBeforeMinutes
		rearm = true
	}
	if rearm && !event.Status.IsTerminal() {
		event.Reminder.NotificationSent = false
	}

	if event.EndTime != nil && !event.EndTime.After(event.StartTime) {
		return entity.ErrInvalidTimeSpan
	}

	return nil
}

func (s *eventService) DeleteEvent(ctx context.Context, userID, eventID uuid.UUID) error {
	if err := s.eventRepo.Delete(ctx, userID, eventID); err != nil {
		return err
	}

	s.invalidateCache(ctx, userID)
	return nil
}

func (s *eventService) invalidateCache(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		logrus.Warnf("Failed to invalidate event cache for user %s: %v", userID, err)
	}
}
