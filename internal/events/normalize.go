package events

import (
	"time"

	"ventar/internal/models"
)

// DefaultCapacity substitutes for rows written before the capacity column
// was required.
const DefaultCapacity = 100

// InvalidDateMarker is what the dashboard shows for an unparseable date.
// A bad row degrades to this marker; it never fails the fetch.
const InvalidDateMarker = "Invalid Date"

const displayDateFormat = "Jan 2, 2006"

// dateFormats are the shapes the date column has held across schema
// revisions: the raw date-input string and full timestamps.
var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// View is the display-ready event shape. Everything derived is computed here
// once, at the fetch boundary; no optional field leaks past it.
type View struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	DisplayDate   string    `json:"date"`
	Status        string    `json:"status"`
	Capacity      int       `json:"capacity"`
	Registrations int       `json:"registrations"`
	FillPercent   float64   `json:"fill_percent"`
	CreatedAt     time.Time `json:"created_at"`

	// When is the parsed event date; WhenValid is false for rows carrying
	// the InvalidDateMarker.
	When      time.Time `json:"-"`
	WhenValid bool      `json:"-"`
}

// Normalize converts a raw row into its display shape. It is total: any row
// the store hands back produces a usable View.
func Normalize(e models.Event) View {
	v := View{
		ID:            e.ID,
		Name:          e.Name,
		Status:        e.Status,
		Capacity:      e.Capacity,
		Registrations: e.Registrations,
		CreatedAt:     e.CreatedAt,
	}

	if v.Capacity <= 0 {
		v.Capacity = DefaultCapacity
	}
	if v.Status == "" {
		v.Status = models.StatusDraft
	}

	v.DisplayDate = InvalidDateMarker
	for _, layout := range dateFormats {
		if parsed, err := time.Parse(layout, e.Date); err == nil {
			v.When = parsed
			v.WhenValid = true
			v.DisplayDate = parsed.Format(displayDateFormat)
			break
		}
	}

	v.FillPercent = FillPercent(e.Registrations, e.Capacity)
	return v
}

// FillPercent is registrations over capacity as a percentage clamped to
// [0,100]. Registrations above capacity are a display-only anomaly, not an
// error, so the clamp absorbs them.
func FillPercent(registrations, capacity int) float64 {
	if capacity < 1 {
		capacity = 1
	}
	pct := float64(registrations) / float64(capacity) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
