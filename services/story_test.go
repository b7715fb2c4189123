package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berkai/picshare/models"
	"github.com/berkai/picshare/utils"
)

func TestStoryCreate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	up := &fakeUploader{}
	svc := NewStoryService(db, up)

	author := seedUser(t, db, "author")
	story, err := svc.Create(ctx, author.ID, "clip.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/hosted/clip.jpg", story.File)
	assert.Equal(t, author.ID, story.UserID)
	assert.Equal(t, "author", story.User.Username)
	assert.Equal(t, utils.PostTransform, up.lastOpts)
	assert.False(t, story.IsSaved)
}

func TestStoryCreateUploadFailure(t *testing.T) {
	db := newTestDB(t)
	svc := NewStoryService(db, &fakeUploader{fail: true})

	author := seedUser(t, db, "author")
	_, err := svc.Create(context.Background(), author.ID, "clip.jpg")
	require.Error(t, err)
	assert.Equal(t, KindUpstream, KindOf(err))

	var n int64
	require.NoError(t, db.Model(&models.Story{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestStoryFeedGroupsByAuthorInFirstOccurrenceOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewStoryService(db, &fakeUploader{})

	viewer := seedUser(t, db, "viewer")
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bobby")
	stranger := seedUser(t, db, "stranger")
	follow(t, db, viewer.ID, alice.ID)
	follow(t, db, viewer.ID, bob.ID)

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	// interleaved: alice, bob, alice again (most recent)
	aliceOld := seedStory(t, db, alice.ID, base)
	bobMid := seedStory(t, db, bob.ID, base.Add(10*time.Minute))
	aliceNew := seedStory(t, db, alice.ID, base.Add(20*time.Minute))
	seedStory(t, db, stranger.ID, base.Add(30*time.Minute))

	feed, err := svc.StoryFeed(ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, feed, 2)

	// alice posted most recently, so her group comes first with both stories
	// keeping the global newest-first order
	assert.Equal(t, "alice", feed[0].User.Username)
	require.Len(t, feed[0].Stories, 2)
	assert.Equal(t, aliceNew.ID, feed[0].Stories[0].ID)
	assert.Equal(t, aliceOld.ID, feed[0].Stories[1].ID)

	assert.Equal(t, "bobby", feed[1].User.Username)
	require.Len(t, feed[1].Stories, 1)
	assert.Equal(t, bobMid.ID, feed[1].Stories[0].ID)
}

func TestStoryFeedIncludesViewerOwnStories(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewStoryService(db, &fakeUploader{})

	viewer := seedUser(t, db, "viewer")
	seedStory(t, db, viewer.ID, time.Now())

	feed, err := svc.StoryFeed(ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "viewer", feed[0].User.Username)

	_, err = svc.StoryFeed(ctx, 9999)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestStoryLikeUnlike(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewStoryService(db, &fakeUploader{})

	author := seedUser(t, db, "author")
	fan := seedUser(t, db, "fanuser")
	story := seedStory(t, db, author.ID, time.Now())

	like, err := svc.Like(ctx, fan.ID, story.ID)
	require.NoError(t, err)
	assert.Equal(t, story.ID, like.StoryID)
	assert.Equal(t, "fanuser", like.User.Username)

	var st models.Story
	require.NoError(t, db.First(&st, story.ID).Error)
	assert.Equal(t, 1, st.LikeCount)

	_, err = svc.Like(ctx, fan.ID, story.ID)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))

	_, err = svc.Unlike(ctx, fan.ID, story.ID)
	require.NoError(t, err)
	require.NoError(t, db.First(&st, story.ID).Error)
	assert.Zero(t, st.LikeCount)

	_, err = svc.Unlike(ctx, fan.ID, story.ID)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = svc.Like(ctx, fan.ID, 9999)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestStorySaveUnsaveOwnerOnly(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewStoryService(db, &fakeUploader{})

	author := seedUser(t, db, "author")
	other := seedUser(t, db, "someone")
	story := seedStory(t, db, author.ID, time.Now())

	_, err := svc.Save(ctx, other.ID, story.ID)
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))

	saved, err := svc.Save(ctx, author.ID, story.ID)
	require.NoError(t, err)
	assert.True(t, saved.IsSaved)

	_, err = svc.Save(ctx, author.ID, story.ID)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))

	unsaved, err := svc.Unsave(ctx, author.ID, story.ID)
	require.NoError(t, err)
	assert.False(t, unsaved.IsSaved)

	_, err = svc.Unsave(ctx, author.ID, story.ID)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestStoryDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewStoryService(db, &fakeUploader{})

	author := seedUser(t, db, "author")
	fan := seedUser(t, db, "fanuser")
	story := seedStory(t, db, author.ID, time.Now())
	_, err := svc.Like(ctx, fan.ID, story.ID)
	require.NoError(t, err)

	_, err = svc.Delete(ctx, fan.ID, story.ID)
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))

	deleted, err := svc.Delete(ctx, author.ID, story.ID)
	require.NoError(t, err)
	assert.Equal(t, story.ID, deleted.ID)

	var n int64
	require.NoError(t, db.Model(&models.Story{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&models.StoryLike{}).Where("story_id = ?", story.ID).Count(&n).Error)
	assert.Zero(t, n)

	_, err = svc.Delete(ctx, author.ID, story.ID)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestStoriesByAuthorAndFollowings(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewStoryService(db, &fakeUploader{})

	viewer := seedUser(t, db, "viewer")
	alice := seedUser(t, db, "alice")
	follow(t, db, viewer.ID, alice.ID)

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	old := seedStory(t, db, alice.ID, base)
	recent := seedStory(t, db, alice.ID, base.Add(time.Minute))
	seedStory(t, db, viewer.ID, base.Add(2*time.Minute))

	own, err := svc.ByAuthor(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, recent.ID, own[0].ID)
	assert.Equal(t, old.ID, own[1].ID)
	assert.Equal(t, "alice", own[0].Username)

	followed, err := svc.ByFollowings(ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, followed, 2)
	assert.Equal(t, recent.ID, followed[0].ID)

	// a user with no followees gets an empty, non-nil list
	none, err := svc.ByFollowings(ctx, alice.ID)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
