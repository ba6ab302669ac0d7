package entity

import (
	"time"
)

// Event statuses. New events start as active; owners may flip the status
// through the update endpoint.
const (
	EventStatusActive    = "active"
	EventStatusCancelled = "cancelled"
	EventStatusCompleted = "completed"
)

// Attendee is one row of an event's embedded attendee list.
type Attendee struct {
	UserID       string    `json:"userId"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Event is the aggregate root for the event domain.
// Deadline is the registration cutoff and must precede StartDate,
// which in turn must precede EndDate.
type Event struct {
	ID          int64
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Deadline    time.Time
	Location    string
	Capacity    int
	Image       string
	Status      string
	OwnerID     string
	OwnerName   string
	OwnerEmail  string
	Attendees   []Attendee
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasAttendee reports whether userID appears in the embedded attendee list.
func (e *Event) HasAttendee(userID string) bool {
	for _, a := range e.Attendees {
		if a.UserID == userID {
			return true
		}
	}
	return false
}

// EventPatch is an explicit partial update: a nil field means "leave
// unchanged", a non-nil field overwrites. This keeps absence and explicit
// values unambiguous for multipart form submissions.
type EventPatch struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	Deadline    *time.Time
	Location    *string
	Capacity    *int
	Status      *string
	Image       *string
}

// Empty reports whether the patch carries no changes at all.
func (p *EventPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.StartDate == nil &&
		p.EndDate == nil && p.Deadline == nil && p.Location == nil &&
		p.Capacity == nil && p.Status == nil && p.Image == nil
}
