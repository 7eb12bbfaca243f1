package models

import "time"

// MentorshipVideo is a publicly listed mentorship recording.
type MentorshipVideo struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Title       string `json:"title" gorm:"not null;size:255"`
	Description string `json:"description" gorm:"type:text"`
	URL         string `json:"url" gorm:"not null;size:500"`
	Thumbnail   string `json:"thumbnail" gorm:"size:500"`
	Duration    string `json:"duration" gorm:"size:20"` // display form, e.g. "12:30"
	Views       int64  `json:"views"`
	CreatedBy   uint   `json:"created_by" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MentorshipVideo) TableName() string {
	return "mentorship_videos"
}
