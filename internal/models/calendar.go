package models

import "time"

// CalendarEvent is a training-calendar entry keyed by date. At most one
// event exists per date; saving over an existing date overwrites it.
type CalendarEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      string    `gorm:"uniqueIndex;size:10;not null" json:"date"` // YYYY-MM-DD
	Time      string    `gorm:"size:20" json:"time"`
	Timezone  string    `gorm:"size:50" json:"timezone"`
	Location  string    `gorm:"size:255" json:"location"`
	Mission   string    `json:"mission"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
