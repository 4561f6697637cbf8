package models

import (
	"time"
)

// Question is one entry in the shared question bank. Questions are created
// by admins and treated as immutable once participants have been assigned
// them.
type Question struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	Question      string  `json:"question" gorm:"type:text;not null"`
	Points        int     `json:"points" gorm:"not null"`
	RequiresImage bool    `json:"requires_image" gorm:"default:false"`
	ImageURL      *string `json:"image_url" gorm:"size:255"`

	CreatedBy uint      `json:"created_by" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Creator *User `json:"-" gorm:"foreignKey:CreatedBy"`
}

func (Question) TableName() string {
	return "question_bank"
}
