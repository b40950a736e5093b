package domain

import "time"

type User struct {
	ID        uint   `gorm:"primaryKey"`
	Username  string `gorm:"size:150;not null;uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Todos     []Todo `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
