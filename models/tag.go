package models

import "time"

// PostTag marks that a user was tagged in a post, at most once per pair.
type PostTag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_tag_pair" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_tag_pair" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
}

// TableName keeps the historical table name.
func (PostTag) TableName() string { return "post_tagged" }
