package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/berkai/picshare/models"
	"github.com/berkai/picshare/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// a single connection keeps every session on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Reply{},
		&models.PostLike{},
		&models.ReplyLike{},
		&models.PostSave{},
		&models.PostTag{},
		&models.Follow{},
		&models.Story{},
		&models.StoryLike{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := models.User{
		Name:     "Test " + username,
		Username: username,
		Email:    username + "@example.com",
	}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

func seedPost(t *testing.T, db *gorm.DB, userID uint, createdAt time.Time) *models.Post {
	t.Helper()
	p := models.Post{
		UserID:    userID,
		File:      fmt.Sprintf("https://cdn.example.com/%d.jpg", userID),
		Content:   "content",
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func seedStory(t *testing.T, db *gorm.DB, userID uint, createdAt time.Time) *models.Story {
	t.Helper()
	s := models.Story{
		UserID:    userID,
		File:      fmt.Sprintf("https://cdn.example.com/story-%d.jpg", userID),
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, db.Create(&s).Error)
	return &s
}

func follow(t *testing.T, db *gorm.DB, followerID, followingID uint) {
	t.Helper()
	_, err := NewSocialService(db).Follow(context.Background(), followerID, followingID)
	require.NoError(t, err)
}

// fakeUploader records the last upload and returns a deterministic URL.
type fakeUploader struct {
	lastImage string
	lastOpts  utils.UploadOptions
	calls     int
	fail      bool
}

func (f *fakeUploader) Upload(_ context.Context, image string, opts utils.UploadOptions) (string, error) {
	f.calls++
	f.lastImage = image
	f.lastOpts = opts
	if f.fail {
		return "", fmt.Errorf("upload rejected")
	}
	return "https://cdn.example.com/hosted/" + image, nil
}

// fakeMailer captures outgoing mail.
type fakeMailer struct {
	to      string
	subject string
	body    string
	fail    bool
}

func (f *fakeMailer) Send(to, subject, htmlBody string) error {
	if f.fail {
		return fmt.Errorf("smtp unreachable")
	}
	f.to = to
	f.subject = subject
	f.body = htmlBody
	return nil
}
