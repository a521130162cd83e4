package models

import "time"

// Importance is the closed priority scale for tasks.
type Importance string

const (
	ImportanceLow      Importance = "low"
	ImportanceMedium   Importance = "medium"
	ImportanceHigh     Importance = "high"
	ImportanceCritical Importance = "critical"
)

func (i Importance) Valid() bool {
	switch i {
	case ImportanceLow, ImportanceMedium, ImportanceHigh, ImportanceCritical:
		return true
	}
	return false
}

// Category groups tasks. A non-empty RequiredRole restricts visibility of
// the category (and its tasks) to that role, plus superadmins.
type Category struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	RequiredRole *Role     `gorm:"size:50" json:"required_role,omitempty"`
	SortOrder    int       `gorm:"default:0" json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Task is a single work item ("mod"/"project" in portal terms).
// CategoryName must reference a live Category; the store rejects creation
// otherwise.
type Task struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	CategoryName   string     `gorm:"size:100;not null;index" json:"category"`
	Title          string     `gorm:"size:255;not null" json:"title"`
	Details        string     `json:"details"` // rich text, escaped at the store boundary
	AssignedUserID *uint      `gorm:"index" json:"assigned_user_id,omitempty"`
	Importance     Importance `gorm:"size:20;not null" json:"importance"`
	IsDone         bool       `gorm:"default:false" json:"is_done"`
	CreatedBy      string     `gorm:"size:255" json:"created_by"`
	ImageRef       string     `gorm:"size:500" json:"image_ref,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Comment is an append-only discussion entry under a task. Comments are
// never edited or deleted individually; deleting the task cascades them.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskID    uint      `gorm:"not null;index" json:"task_id"`
	Author    string    `gorm:"size:255;not null" json:"author"`
	Message   string    `gorm:"not null" json:"message"`
	ImageRef  string    `gorm:"size:500" json:"image_ref,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
