package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type UserRole string

const (
	RoleUser       UserRole = "user"
	RoleAdmin      UserRole = "admin"
	RoleSuperAdmin UserRole = "superadmin"
)

// ParseRole normalizes a role string to its canonical lower-case form.
// Older records carried mixed casing ("Admin", "SUPERADMIN"), so parsing
// is case-insensitive.
func ParseRole(s string) (UserRole, bool) {
	switch UserRole(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	case RoleSuperAdmin:
		return RoleSuperAdmin, true
	}
	return "", false
}

// IsStaff reports whether the role grants admin-level access.
func (r UserRole) IsStaff() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Profile holds the optional user profile sub-document.
type Profile struct {
	Avatar         string `json:"avatar,omitempty"`
	Age            int    `json:"age,omitempty"`
	College        string `json:"college,omitempty"`
	Course         string `json:"course,omitempty"`
	Year           string `json:"year,omitempty"`
	State          string `json:"state,omitempty"`
	City           string `json:"city,omitempty"`
	Phone          string `json:"phone,omitempty"`
	CurrentAddress string `json:"current_address,omitempty"`
}

// QuizTaken is one entry of a user's quiz history.
type QuizTaken struct {
	QuizID      uint      `json:"quiz_id"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completed_at"`
}

type User struct {
	ID       uint     `json:"id" gorm:"primaryKey"`
	Name     string   `json:"name" gorm:"not null;size:255"`
	Email    string   `json:"email" gorm:"not null;uniqueIndex;size:255"`
	Password string   `json:"-" gorm:"not null;size:255"` // bcrypt hash, never serialized
	Role     UserRole `json:"role" gorm:"default:user;index;size:20"`

	// Account state
	IsVerified bool `json:"is_verified"`
	IsActive   bool `json:"is_active" gorm:"default:true"`

	// Email verification
	OTP        *string    `json:"-" gorm:"size:10"`
	OTPExpires *time.Time `json:"-"`

	// Embedded documents
	Profile      datatypes.JSONType[Profile]    `json:"profile" gorm:"type:jsonb"`
	QuizzesTaken datatypes.JSONSlice[QuizTaken] `json:"quizzes_taken" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
