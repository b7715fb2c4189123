package models

import "time"

// Reply is a comment on a post. OriginalReplyID is nil for a top-level
// comment and points at the parent comment for a nested reply; a reply's
// PostID always equals its parent's PostID. CommentsCount counts direct
// replies only, the tree never goes deeper than comment -> reply.
type Reply struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PostID          uint      `gorm:"index;not null" json:"post_id"`
	UserID          uint      `gorm:"index;not null" json:"user_id"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	OriginalReplyID *uint     `gorm:"index" json:"original_reply_id"`
	LikeCount       int       `gorm:"default:0" json:"like_count"`
	CommentsCount   int       `gorm:"default:0" json:"comments_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	User User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
}

// TableName keeps the historical table name.
func (Reply) TableName() string { return "post_replies" }

// IsTopLevel reports whether the reply is attached directly to the post.
func (r Reply) IsTopLevel() bool { return r.OriginalReplyID == nil }
