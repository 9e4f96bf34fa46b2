package models

import "time"

const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusArchived   = "archived"
)

func IsValidStatus(status string) bool {
	return status == StatusInProgress ||
		status == StatusCompleted ||
		status == StatusArchived
}

// Todo is stored in the "todos" table.
type Todo struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	Title       string    `gorm:"size:255;not null"`
	Description string    `gorm:"type:text;not null"`
	Status      string    `gorm:"size:32;not null;default:in_progress"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (Todo) TableName() string {
	return "todos"
}
