package api

import (
	"time"

	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/models"
)

// convertEventRecord maps a raw wire record into the Event shape,
// normalizing optional fields. Unknown or empty statuses land in the
// backlog bucket rather than dropping the event.
func convertEventRecord(r eventRecord) models.Event {
	ev := models.Event{
		ID:      r.ID,
		Slug:    r.Slug,
		Title:   r.Title,
		Content: r.Content,
		Status:  models.EventStatus(r.Status),
		Tags:    r.Tags,
		Media:   r.Media,
		Votes:   r.Votes,
	}
	if !ev.Status.Valid() {
		ev.Status = models.EventStatusBacklog
	}
	if ev.Tags == nil {
		ev.Tags = []models.Tag{}
	}
	if ev.Media == nil {
		ev.Media = []string{}
	}
	if r.Date != "" {
		if t, err := time.Parse("2006-01-02", r.Date); err == nil {
			ev.Date = &t
		} else if t, err := time.Parse(time.RFC3339, r.Date); err == nil {
			ev.Date = &t
		}
	}
	return ev
}
