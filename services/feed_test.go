package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berkai/picshare/models"
)

func TestFeedUnionAndOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	viewer := seedUser(t, db, "viewer")
	followed := seedUser(t, db, "followed")
	stranger := seedUser(t, db, "stranger")
	follow(t, db, viewer.ID, followed.ID)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	older := seedPost(t, db, viewer.ID, base)
	newer := seedPost(t, db, followed.ID, base.Add(time.Hour))
	seedPost(t, db, stranger.ID, base.Add(2*time.Hour))

	feed, err := NewFeedService(db).Feed(ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, feed, 2)

	// newest first, strangers excluded
	assert.Equal(t, newer.ID, feed[0].ID)
	assert.Equal(t, older.ID, feed[1].ID)

	// author attribution follows the post, not the viewer
	assert.Equal(t, "followed", feed[0].Username)
	assert.Equal(t, followed.ID, feed[0].User.ID)
	assert.Equal(t, "viewer", feed[1].Username)
}

func TestFeedTiebreakOnEqualTimestamps(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	viewer := seedUser(t, db, "viewer")
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	first := seedPost(t, db, viewer.ID, at)
	second := seedPost(t, db, viewer.ID, at)

	feed, err := NewFeedService(db).Feed(ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, second.ID, feed[0].ID)
	assert.Equal(t, first.ID, feed[1].ID)
}

func TestFeedEnrichment(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	friend := seedUser(t, db, "friend")
	follow(t, db, author.ID, friend.ID)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	post := seedPost(t, db, author.ID, base)

	posts := NewPostService(db, &fakeUploader{}, nil)
	replies := NewReplyService(db, nil)

	_, err := posts.Like(ctx, friend.ID, post.ID)
	require.NoError(t, err)
	_, err = posts.Save(ctx, friend.ID, post.ID)
	require.NoError(t, err)
	_, err = posts.Tag(ctx, friend.ID, post.ID)
	require.NoError(t, err)

	comment, err := replies.CreateComment(ctx, friend.ID, post.ID, "nice shot")
	require.NoError(t, err)
	nested, err := replies.CreateReply(ctx, author.ID, comment.ID, "thanks")
	require.NoError(t, err)
	_, err = replies.Like(ctx, author.ID, comment.ID)
	require.NoError(t, err)

	feed, err := NewFeedService(db).Feed(ctx, author.ID)
	require.NoError(t, err)
	require.Len(t, feed, 1)

	entry := feed[0]
	require.Len(t, entry.Likes, 1)
	assert.Equal(t, friend.ID, entry.Likes[0].UserID)
	assert.Equal(t, "friend", entry.Likes[0].User.Username)

	require.Len(t, entry.Saves, 1)
	assert.Equal(t, "friend", entry.Saves[0].User.Username)

	require.Len(t, entry.Tagged, 1)
	assert.Equal(t, friend.ID, entry.Tagged[0].UserID)

	require.Len(t, entry.Comments, 1)
	got := entry.Comments[0]
	assert.Equal(t, comment.ID, got.ID)
	assert.Nil(t, got.OriginalReplyID)
	require.Len(t, got.Replies, 1)
	assert.Equal(t, nested.ID, got.Replies[0].ID)
	require.NotNil(t, got.Replies[0].OriginalReplyID)
	assert.Equal(t, comment.ID, *got.Replies[0].OriginalReplyID)
	require.Len(t, got.ReplyLikes, 1)
	assert.Equal(t, author.ID, got.ReplyLikes[0].UserID)

	assert.Equal(t, 1, entry.LikeCount)
	assert.Equal(t, 1, entry.CommentsCount)
}

func TestFeedCommentsOldestFirstWithinPost(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	post := seedPost(t, db, author.ID, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	replies := NewReplyService(db, nil)
	first, err := replies.CreateComment(ctx, author.ID, post.ID, "first")
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Reply{}).Where("id = ?", first.ID).
		UpdateColumn("created_at", time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)).Error)
	second, err := replies.CreateComment(ctx, author.ID, post.ID, "second")
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Reply{}).Where("id = ?", second.ID).
		UpdateColumn("created_at", time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)).Error)

	feed, err := NewFeedService(db).Feed(ctx, author.ID)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	require.Len(t, feed[0].Comments, 2)
	assert.Equal(t, "first", feed[0].Comments[0].Content)
	assert.Equal(t, "second", feed[0].Comments[1].Content)
}

func TestFeedEmptyForNewUser(t *testing.T) {
	db := newTestDB(t)
	viewer := seedUser(t, db, "loner")

	feed, err := NewFeedService(db).Feed(context.Background(), viewer.ID)
	require.NoError(t, err)
	assert.NotNil(t, feed)
	assert.Empty(t, feed)
}

func TestFeedUnknownViewer(t *testing.T) {
	db := newTestDB(t)

	_, err := NewFeedService(db).Feed(context.Background(), 9999)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}
