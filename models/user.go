package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account. Passwords are stored as bcrypt hashes only.
// The follower/following/post counters are denormalized and maintained by the
// services layer alongside the rows they summarize.
type User struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:64;not null" json:"name"`
	Username        string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email           string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash    string    `gorm:"size:255" json:"-"`
	Description     string    `gorm:"size:512" json:"description"`
	ProfilePhoto    string    `gorm:"size:512" json:"profile_photo"`
	PostCount       int       `gorm:"default:0" json:"post_count"`
	FollowersCount  int       `gorm:"default:0" json:"followers_count"`
	FollowingsCount int       `gorm:"default:0" json:"followings_count"`
	ResetToken      string    `gorm:"size:64;index" json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Posts   []Post  `json:"-"`
	Stories []Story `json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// PublicUser is the embeddable identity slice exposed on nested relations.
type PublicUser struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Username     string `json:"username"`
	ProfilePhoto string `json:"profile_photo"`
}

// Public strips everything but the identity fields.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Username: u.Username, ProfilePhoto: u.ProfilePhoto}
}
