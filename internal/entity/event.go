package entity

import (
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventStatusUpcoming   EventStatus = "UPCOMING"
	EventStatusInProgress EventStatus = "IN_PROGRESS"
	EventStatusCompleted  EventStatus = "COMPLETED"
	EventStatusCancelled  EventStatus = "CANCELLED"
)

// IsTerminal reports whether the status can never change again
// without an explicit owner edit.
func (s EventStatus) IsTerminal() bool {
	return s == EventStatusCompleted || s == EventStatusCancelled
}

func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusUpcoming, EventStatusInProgress, EventStatusCompleted, EventStatusCancelled:
		return true
	}
	return false
}

// Reminder holds the per-event reminder configuration and its
// delivery state. NotificationSent is monotonic within one reminder
// epoch: it only goes back to false when the owner edits start_time
// or remind_before_minutes.
type Reminder struct {
	RemindBeforeMinutes int        `json:"remind_before_minutes" db:"remind_before_minutes"`
	Enabled             bool       `json:"enabled" db:"reminder_enabled"`
	NotificationSent    bool       `json:"notification_sent" db:"notification_sent"`
	SentAt              *time.Time `json:"sent_at,omitempty" db:"sent_at"`
}

type Event struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	UserID      uuid.UUID   `json:"user_id" db:"user_id"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	Location    string      `json:"location" db:"location"`
	StartTime   time.Time   `json:"start_time" db:"start_time"`
	EndTime     *time.Time  `json:"end_time,omitempty" db:"end_time"`
	Status      EventStatus `json:"status" db:"status"`
	Reminder    Reminder    `json:"reminder"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// MinutesUntilStart returns the fractional number of minutes between
// now and the event start. Negative once the start has passed.
func (e *Event) MinutesUntilStart(now time.Time) float64 {
	return e.StartTime.Sub(now).Minutes()
}

// ReminderDue reports whether the reminder threshold has been
// crossed. Callers are expected to have already filtered on status,
// notification_sent and start_time > now.
func (e *Event) ReminderDue(now time.Time) bool {
	return e.MinutesUntilStart(now) <= float64(e.Reminder.RemindBeforeMinutes)
}
