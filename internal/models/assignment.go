package models

import (
	"time"
)

// QuestionAssignment links a participant to one of their assigned questions.
// The unique index backs the assign-once invariant: a participant can never
// hold the same question twice, no matter how many concurrent registration
// or login requests race on the batch insert.
type QuestionAssignment struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	UserID     uint `json:"user_id" gorm:"not null;uniqueIndex:idx_user_question;index"`
	QuestionID uint `json:"question_id" gorm:"not null;uniqueIndex:idx_user_question"`

	AssignedAt time.Time `json:"assigned_at" gorm:"autoCreateTime"`

	// Relations
	User     User     `json:"-" gorm:"foreignKey:UserID"`
	Question Question `json:"question" gorm:"foreignKey:QuestionID"`
}

func (QuestionAssignment) TableName() string {
	return "question_assignments"
}
