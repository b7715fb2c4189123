package models

import "time"

// Post is a photo post. LikeCount and CommentsCount are denormalized counters
// kept in sync with the post_likes and post_replies tables.
type Post struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"index;not null" json:"user_id"`
	File          string    `gorm:"size:512;not null" json:"file"`
	Content       string    `gorm:"type:text" json:"content"`
	LikeCount     int       `gorm:"default:0" json:"like_count"`
	CommentsCount int       `gorm:"default:0" json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	User User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
}
