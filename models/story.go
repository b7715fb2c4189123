package models

import "time"

// Story is an ephemeral photo entry. IsSaved lives on the story row itself,
// so "saved" is scoped to the story's owner rather than to the viewer; the
// save/unsave operations enforce ownership accordingly.
type Story struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	File      string    `gorm:"size:512;not null" json:"file"`
	LikeCount int       `gorm:"default:0" json:"like_count"`
	IsSaved   bool      `gorm:"default:false" json:"is_saved"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
}
