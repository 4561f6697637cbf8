package models

import (
	"time"

	"gorm.io/datatypes"
)

// AnswerPartition is the logical per-participant answer store. One row is
// provisioned per participant at registration time; every answer row hangs
// off a partition rather than a free-form table name, so usernames never
// reach SQL as structural identifiers.
type AnswerPartition struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	UserID   uint   `json:"user_id" gorm:"uniqueIndex;not null"`
	Username string `json:"username" gorm:"uniqueIndex;not null;size:32"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

func (AnswerPartition) TableName() string {
	return "answer_partitions"
}

// Answer is a participant's submission for one assigned question. At most
// one answer exists per (partition, question); the unique index enforces it
// at the storage layer so a concurrent double submit cannot slip past the
// application check.
type Answer struct {
	ID          uint `json:"id" gorm:"primaryKey"`
	PartitionID uint `json:"-" gorm:"not null;uniqueIndex:idx_partition_question;index"`
	QuestionID  uint `json:"question_id" gorm:"not null;uniqueIndex:idx_partition_question"`

	TextAnswer     *string `json:"text_answer" gorm:"type:text"`
	ImageAnswerURL *string `json:"image_answer_url" gorm:"size:255"`

	SubmittedAt time.Time `json:"submitted_at" gorm:"autoCreateTime"`

	// Review verdict. Re-review overwrites; no history is kept.
	IsReviewed    bool       `json:"is_reviewed" gorm:"default:false;index"`
	IsAccepted    bool       `json:"is_accepted" gorm:"default:false"`
	ReviewedAt    *time.Time `json:"reviewed_at"`
	ReviewedBy    *uint      `json:"reviewed_by"`
	AdminFeedback *string    `json:"admin_feedback" gorm:"type:text"`

	// Client info captured at submission (IP, user agent).
	SubmissionMeta datatypes.JSON `json:"submission_meta,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// Relations
	Partition AnswerPartition `json:"-" gorm:"foreignKey:PartitionID"`
	Question  Question        `json:"question" gorm:"foreignKey:QuestionID"`
	Reviewer  *User           `json:"reviewer,omitempty" gorm:"foreignKey:ReviewedBy"`
}

func (Answer) TableName() string {
	return "user_answers"
}
