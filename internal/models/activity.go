package models

import "time"

// Activity is an append-only log entry describing one mutation of a task.
// Rows are never updated or deleted independently of their task.
type Activity struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	TaskID      uint64    `gorm:"not null;index" json:"task_id"`
	Description string    `gorm:"type:text;not null" json:"description"`
	CreatedBy   uint64    `gorm:"not null" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`

	// Relations
	Task   Task `gorm:"foreignKey:TaskID" json:"-"`
	Author User `gorm:"foreignKey:CreatedBy" json:"author,omitempty"`
}
