package models

import "time"

// PostSave marks that a user bookmarked a post. No counter is maintained for
// saves.
type PostSave struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_save_pair" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_save_pair" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
}

// TableName keeps the historical table name.
func (PostSave) TableName() string { return "post_saved" }
