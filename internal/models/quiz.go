package models

import (
	"time"

	"gorm.io/datatypes"
)

type QuizType string

const (
	QuizRegular  QuizType = "regular"
	QuizLive     QuizType = "live"
	QuizUpcoming QuizType = "upcoming"
	QuizPaid     QuizType = "paid"
)

type QuizStatus string

const (
	QuizStatusDraft     QuizStatus = "draft"
	QuizStatusUpcoming  QuizStatus = "upcoming"
	QuizStatusActive    QuizStatus = "active"
	QuizStatusCompleted QuizStatus = "completed"
)

type QuestionType string

const (
	QuestionMCQ     QuestionType = "mcq"
	QuestionWritten QuestionType = "written"
)

const DefaultPassingScore = 50

// QuestionOption is a single answer choice for an mcq question.
type QuestionOption struct {
	Text string `json:"text"`
}

// Question is an embedded quiz question. CorrectAnswer is the index into
// Options for mcq questions; it is nilled out before serving quizzes to
// regular users.
type Question struct {
	QuestionText  string           `json:"question_text"`
	QuestionType  QuestionType     `json:"question_type"`
	Options       []QuestionOption `json:"options,omitempty"`
	CorrectAnswer *int             `json:"correct_answer,omitempty"`
}

// Participant is one enrollment entry on a quiz.
type Participant struct {
	UserID      uint       `json:"user_id"`
	JoinedAt    time.Time  `json:"joined_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Score       *int       `json:"score,omitempty"`
}

type Quiz struct {
	ID       uint     `json:"id" gorm:"primaryKey"`
	Title    string   `json:"title" gorm:"not null;size:255"`
	Category string   `json:"category" gorm:"not null;index;size:100"`
	QuizType QuizType `json:"quiz_type" gorm:"not null;index;size:20"`

	// Scheduling and pricing
	Duration          int        `json:"duration" gorm:"not null"` // minutes
	Price             float64    `json:"price"`
	RegistrationLimit int        `json:"registration_limit"`
	ScheduleTime      *time.Time `json:"schedule_time"`
	CoverImage        string     `json:"cover_image" gorm:"size:500"`
	PassingScore      int        `json:"passing_score" gorm:"default:50"`

	Status          QuizStatus `json:"status" gorm:"default:draft;index;size:20"`
	CreatedBy       uint       `json:"created_by" gorm:"not null;index"`
	RegisteredUsers int        `json:"registered_users"`

	// Embedded documents
	Questions    datatypes.JSONSlice[Question]    `json:"questions" gorm:"type:jsonb"`
	Participants datatypes.JSONSlice[Participant] `json:"participants" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Creator User `json:"-" gorm:"foreignKey:CreatedBy"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// HasParticipant reports whether the user is enrolled on this quiz.
func (q *Quiz) HasParticipant(userID uint) bool {
	for _, p := range q.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// EffectivePassingScore returns PassingScore with the legacy default applied.
func (q *Quiz) EffectivePassingScore() int {
	if q.PassingScore <= 0 {
		return DefaultPassingScore
	}
	return q.PassingScore
}

// DeriveStatus returns the publish status implied by the schedule time:
// upcoming while the schedule time is in the future, active otherwise.
func DeriveStatus(scheduleTime *time.Time, now time.Time) QuizStatus {
	if scheduleTime != nil && scheduleTime.After(now) {
		return QuizStatusUpcoming
	}
	return QuizStatusActive
}
