package domain

import "time"

// Todo is a single task owned by exactly one user. Date only carries a
// calendar day; the time of day is always midnight UTC.
type Todo struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	Date      time.Time `gorm:"type:date;not null"`
	IsChecked bool      `gorm:"not null"`
	Review    string    `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
