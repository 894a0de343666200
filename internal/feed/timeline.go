package feed

import (
	"sort"

	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/models"
)

// Timeline is the derived release view: the upcoming bucket followed by
// the release bucket, each sorted by date descending. An absent date is
// older than any present date; two absent dates compare equal and keep
// their original order, so the sort must be stable.
func (l *Loader) Timeline() []models.Event {
	l.mu.RLock()
	groups := l.groups
	l.mu.RUnlock()

	timeline := make([]models.Event, 0, len(groups.Upcoming)+len(groups.Release))
	timeline = append(timeline, sortedByDateDesc(groups.Upcoming)...)
	timeline = append(timeline, sortedByDateDesc(groups.Release)...)
	return timeline
}

func sortedByDateDesc(events []models.Event) []models.Event {
	out := append([]models.Event(nil), events...)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].Date, out[j].Date
		switch {
		case di == nil && dj == nil:
			return false
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.After(*dj)
		}
	})
	return out
}
