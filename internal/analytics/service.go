package analytics

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"ventar/internal/models"
)

// Service aggregates registration data for the host dashboard.
type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// DashboardStats is the headline row on the host dashboard.
type DashboardStats struct {
	TotalEvents        int `json:"total_events"`
	TotalRegistrations int `json:"total_registrations"`
	ActiveEvents       int `json:"active_events"`
}

// EventAnalytics is the per-event drill-down.
type EventAnalytics struct {
	EventID            string             `json:"event_id"`
	TotalRegistrations int                `json:"total_registrations"`
	CheckedIn          int                `json:"checked_in"`
	Capacity           int                `json:"capacity"`
	FillPercent        int                `json:"fill_percent"`
	DailySignups       []DailySignupCount `json:"daily_signups"`
}

// DailySignupCount counts registrations created on one day.
type DailySignupCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// GetDashboardStats aggregates across all of one host's events.
func (s *Service) GetDashboardStats(ctx context.Context, hostID string) (*DashboardStats, error) {
	totalEvents, err := s.db.NewSelect().
		Model((*models.Event)(nil)).
		Where("host_id = ?", hostID).
		Count(ctx)
	if err != nil {
		return nil, err
	}

	activeEvents, err := s.db.NewSelect().
		Model((*models.Event)(nil)).
		Where("host_id = ?", hostID).
		Where("status IN (?)", bun.In([]string{models.StatusUpcoming, models.StatusActive})).
		Count(ctx)
	if err != nil {
		return nil, err
	}

	var totalRegistrations int
	err = s.db.NewRaw(`
		SELECT COUNT(*)
		FROM registrations r
		JOIN events e ON r.event_id = e.id
		WHERE e.host_id = ?
	`, hostID).Scan(ctx, &totalRegistrations)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalEvents:        totalEvents,
		TotalRegistrations: totalRegistrations,
		ActiveEvents:       activeEvents,
	}, nil
}

// GetEventAnalytics returns registration metrics for a single event.
func (s *Service) GetEventAnalytics(ctx context.Context, event *models.Event) (*EventAnalytics, error) {
	total, err := s.db.NewSelect().
		Model((*models.Registration)(nil)).
		Where("event_id = ?", event.ID).
		Count(ctx)
	if err != nil {
		return nil, err
	}

	checkedIn, err := s.db.NewSelect().
		Model((*models.Registration)(nil)).
		Where("event_id = ?", event.ID).
		Where("checked_in = ?", true).
		Count(ctx)
	if err != nil {
		return nil, err
	}

	type dailyRaw struct {
		SignupDate time.Time `bun:"signup_date"`
		Count      int       `bun:"signup_count"`
	}
	var daily []dailyRaw
	err = s.db.NewRaw(`
		SELECT
			DATE(created_at) AS signup_date,
			COUNT(*) AS signup_count
		FROM registrations
		WHERE event_id = ?
		GROUP BY DATE(created_at)
		ORDER BY signup_date
	`, event.ID).Scan(ctx, &daily)
	if err != nil {
		return nil, err
	}

	signups := make([]DailySignupCount, 0, len(daily))
	for _, d := range daily {
		signups = append(signups, DailySignupCount{
			Date:  d.SignupDate.Format("2006-01-02"),
			Count: d.Count,
		})
	}

	capacity := event.Capacity
	if capacity < 1 {
		capacity = 1
	}
	fill := total * 100 / capacity
	if fill > 100 {
		fill = 100
	}

	return &EventAnalytics{
		EventID:            event.ID,
		TotalRegistrations: total,
		CheckedIn:          checkedIn,
		Capacity:           event.Capacity,
		FillPercent:        fill,
		DailySignups:       signups,
	}, nil
}
