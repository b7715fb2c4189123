package models

import "time"

// Follow is a directed edge: FollowerID follows FollowingID. Self-edges are
// rejected in the services layer; the unique index rejects duplicate edges.
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_follow_pair;index" json:"follower_id"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_follow_pair;index" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName keeps the historical table name.
func (Follow) TableName() string { return "follows" }
