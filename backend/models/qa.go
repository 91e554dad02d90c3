package models

import (
	"errors"

	"gorm.io/gorm"
)

type QuestionStatus string

const (
	QuestionOpen     QuestionStatus = "OPEN"
	QuestionResolved QuestionStatus = "RESOLVED"
)

var ErrInvalidQuestionStatus = errors.New("invalid question status")

// Accept returns the status a question moves to when one of its answers is
// accepted. Acceptance is the only transition; a resolved question stays
// resolved when a different answer is accepted.
func (s QuestionStatus) Accept() (QuestionStatus, error) {
	switch s {
	case QuestionOpen, QuestionResolved:
		return QuestionResolved, nil
	}
	return s, ErrInvalidQuestionStatus
}

type LessonQuestion struct {
	gorm.Model
	LessonID     uint           `gorm:"index;not null" json:"lesson_id"`
	UserID       uint           `gorm:"index;not null" json:"user_id"`
	Title        string         `gorm:"size:200;not null" json:"title"`
	Body         string         `gorm:"type:text" json:"body"`
	Status       QuestionStatus `gorm:"size:16;default:OPEN;not null" json:"status"`
	LikesCount   int            `gorm:"default:0;not null" json:"likes_count"`
	AnswersCount int            `gorm:"default:0;not null" json:"answers_count"`
	User         User           `json:"-"`
}

type LessonAnswer struct {
	gorm.Model
	QuestionID uint   `gorm:"index;not null" json:"question_id"`
	UserID     uint   `gorm:"index;not null" json:"user_id"`
	Body       string `gorm:"type:text;not null" json:"body"`
	IsAccepted bool   `gorm:"default:false;index" json:"is_accepted"`
	LikesCount int    `gorm:"default:0;not null" json:"likes_count"`
	User       User   `json:"-"`
}

// QuestionLike and AnswerLike rows are the source of truth for the
// denormalized likes_count columns.
type QuestionLike struct {
	ID         uint `gorm:"primarykey"`
	UserID     uint `gorm:"uniqueIndex:idx_question_like_user_target;not null"`
	QuestionID uint `gorm:"uniqueIndex:idx_question_like_user_target;not null"`
}

type AnswerLike struct {
	ID       uint `gorm:"primarykey"`
	UserID   uint `gorm:"uniqueIndex:idx_answer_like_user_target;not null"`
	AnswerID uint `gorm:"uniqueIndex:idx_answer_like_user_target;not null"`
}

// HelpfulUser is one row of the most helpful leaderboard.
type HelpfulUser struct {
	ID            uint   `json:"id"`
	Username      string `json:"username"`
	FullName      string `json:"full_name"`
	AvatarURL     string `json:"avatar_url"`
	Contributions int64  `json:"contributions"`
}
