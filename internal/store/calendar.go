package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/staff-portal/internal/models"
)

// EventInput carries the editable fields of a calendar entry.
type EventInput struct {
	Date     string // YYYY-MM-DD
	Time     string
	Timezone string
	Location string
	Mission  string
}

// UpsertCalendarEvent writes the single event row for a date, overwriting
// any prior values. Insert-or-replace is one ON CONFLICT statement so two
// simultaneous saves for the same date can never leave two rows.
func (s *Store) UpsertCalendarEvent(ctx context.Context, in EventInput) (*models.CalendarEvent, error) {
	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return nil, invalid("date must be YYYY-MM-DD")
	}

	ev := models.CalendarEvent{
		Date:     in.Date,
		Time:     in.Time,
		Timezone: in.Timezone,
		Location: in.Location,
		Mission:  sanitize(in.Mission),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"time", "timezone", "location", "mission", "updated_at"}),
	}).Create(&ev).Error
	if err != nil {
		return nil, persistence("upsert event", err)
	}
	// Re-read: on the conflict path the returned struct keeps the insert
	// candidate's zero ID.
	var saved models.CalendarEvent
	if err := s.db.WithContext(ctx).Where("date = ?", in.Date).First(&saved).Error; err != nil {
		return nil, persistence("reload event", err)
	}
	return &saved, nil
}

// DeleteCalendarEvent removes the event for a date. Absence is a no-op, not
// an error.
func (s *Store) DeleteCalendarEvent(ctx context.Context, date string) error {
	if err := s.db.WithContext(ctx).Where("date = ?", date).
		Delete(&models.CalendarEvent{}).Error; err != nil {
		return persistence("delete event", err)
	}
	return nil
}

// GetCalendarEvent fetches the event for one date.
func (s *Store) GetCalendarEvent(ctx context.Context, date string) (*models.CalendarEvent, error) {
	var ev models.CalendarEvent
	if err := s.db.WithContext(ctx).Where("date = ?", date).First(&ev).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, persistence("find event", err)
	}
	return &ev, nil
}

// ListCalendarEvents returns all events in date order.
func (s *Store) ListCalendarEvents(ctx context.Context) ([]models.CalendarEvent, error) {
	var evs []models.CalendarEvent
	if err := s.db.WithContext(ctx).Order("date ASC").Find(&evs).Error; err != nil {
		return nil, persistence("list events", err)
	}
	return evs, nil
}
