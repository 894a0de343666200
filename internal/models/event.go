package models

import "time"

type EventStatus string

const (
	EventStatusBacklog  EventStatus = "backlog"
	EventStatusProposed EventStatus = "proposed"
	EventStatusRelease  EventStatus = "release"
	EventStatusUpcoming EventStatus = "upcoming"
	EventStatusArchived EventStatus = "archived"
)

// Valid reports whether s is one of the five known status buckets.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusBacklog, EventStatusProposed, EventStatusRelease,
		EventStatusUpcoming, EventStatusArchived:
		return true
	}
	return false
}

// Tag is a rendering label attached to an event. Order is display order.
type Tag struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Event is a single changelog/roadmap item. The admin backend owns every
// field; this service holds a read-mostly copy and never computes Votes
// locally.
type Event struct {
	ID          int         `json:"id"`
	Slug        string      `json:"slug"`
	Title       string      `json:"title"`
	Content     string      `json:"content"`     // Markdown source
	ContentHTML string      `json:"contentHtml"` // Rendered server-side
	Date        *time.Time  `json:"date,omitempty"`
	Status      EventStatus `json:"status"`
	Tags        []Tag       `json:"tags"`
	Media       []string    `json:"media"`
	Votes       int         `json:"votes"`
}
