package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

type Task struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	IsAssigned  bool           `gorm:"not null;default:false" json:"is_assigned"`
	Progress    int            `gorm:"not null;default:0" json:"progress"`
	Status      TaskStatus     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedBy   uint64         `gorm:"not null;index" json:"created_by"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Creator    User       `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Assignees  []User     `gorm:"many2many:task_user" json:"assignees,omitempty"`
	Activities []Activity `gorm:"foreignKey:TaskID" json:"activities,omitempty"`
}
