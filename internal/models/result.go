package models

import (
	"time"

	"gorm.io/datatypes"
)

type ResultStatus string

const (
	ResultInProgress ResultStatus = "in-progress"
	ResultCompleted  ResultStatus = "completed"
)

// AnswerRecord is one graded answer. QuestionIndex correlates the answer
// with the quiz's embedded question list.
type AnswerRecord struct {
	QuestionIndex  int  `json:"question_index"`
	SelectedAnswer int  `json:"selected_answer"`
	IsCorrect      bool `json:"is_correct"`
	TimeSpent      int  `json:"time_spent"` // seconds
}

// Result is an immutable record of one quiz submission. At most one result
// exists per (user, quiz).
type Result struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"user_id" gorm:"not null;index:idx_user_quiz"`
	QuizID uint `json:"quiz_id" gorm:"not null;index:idx_user_quiz"`

	// Scoring
	Score          int          `json:"score"`
	TotalQuestions int          `json:"total_questions"`
	Status         ResultStatus `json:"status" gorm:"default:completed;index;size:20"`
	Passed         bool         `json:"passed"`

	Answers datatypes.JSONSlice[AnswerRecord] `json:"answers" gorm:"type:jsonb"`

	// Timing
	TimeTaken   int        `json:"time_taken"` // seconds
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User User `json:"user" gorm:"foreignKey:UserID"`
	Quiz Quiz `json:"quiz" gorm:"foreignKey:QuizID"`
}

func (Result) TableName() string {
	return "results"
}

// Percentage returns the score as a percentage of total questions.
// A zero-question quiz scores zero rather than dividing by zero.
func (r *Result) Percentage() float64 {
	if r.TotalQuestions == 0 {
		return 0
	}
	return float64(r.Score) / float64(r.TotalQuestions) * 100
}
