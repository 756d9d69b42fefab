package events

import (
	"strings"
	"time"
)

// Date buckets for the structured date filter.
const (
	BucketToday    = "today"
	BucketUpcoming = "upcoming"
	BucketPast     = "past"
)

// Filters are the structured criteria ANDed with the free-text search.
// Empty fields match everything.
type Filters struct {
	Status     string
	DateBucket string
}

// Matches reports whether the view passes the search text and filters. The
// text matches iff it is a case-insensitive substring of the name, display
// date, or status. Filtering is pure; it never touches the store.
func Matches(v View, search string, f Filters, now time.Time) bool {
	if search != "" {
		needle := strings.ToLower(search)
		if !strings.Contains(strings.ToLower(v.Name), needle) &&
			!strings.Contains(strings.ToLower(v.DisplayDate), needle) &&
			!strings.Contains(strings.ToLower(v.Status), needle) {
			return false
		}
	}

	if f.Status != "" && !strings.EqualFold(v.Status, f.Status) {
		return false
	}

	if f.DateBucket != "" && bucketOf(v, now) != f.DateBucket {
		return false
	}

	return true
}

// Apply re-derives the filtered subset from the last fetched collection.
func Apply(views []View, search string, f Filters, now time.Time) []View {
	out := make([]View, 0, len(views))
	for _, v := range views {
		if Matches(v, search, f, now) {
			out = append(out, v)
		}
	}
	return out
}

// bucketOf classifies an event date relative to now. Events without a
// parseable date fall into no bucket and only show when the date filter is
// off.
func bucketOf(v View, now time.Time) string {
	if !v.WhenValid {
		return ""
	}
	today := now.Truncate(24 * time.Hour)
	day := v.When.Truncate(24 * time.Hour)
	switch {
	case day.Equal(today):
		return BucketToday
	case day.After(today):
		return BucketUpcoming
	default:
		return BucketPast
	}
}
