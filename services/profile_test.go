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

func TestProfileByUsername(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewProfileService(db, &fakeUploader{})

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bobby")
	follow(t, db, bob.ID, alice.ID)
	follow(t, db, alice.ID, bob.ID)

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	seedPost(t, db, alice.ID, base)
	recent := seedPost(t, db, alice.ID, base.Add(time.Minute))

	profile, err := svc.ByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, profile.ID)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, 1, profile.FollowersCount)
	assert.Equal(t, 1, profile.FollowingsCount)
	require.Len(t, profile.Posts, 2)
	assert.Equal(t, recent.ID, profile.Posts[0].ID)
	require.Len(t, profile.Followers, 1)
	assert.Equal(t, "bobby", profile.Followers[0].Username)
	require.Len(t, profile.Followings, 1)
	assert.Equal(t, "bobby", profile.Followings[0].Username)

	_, err = svc.ByUsername(ctx, "ghost")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestProfileJoinedPostsFollowJoinRecency(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewProfileService(db, &fakeUploader{})
	posts := NewPostService(db, &fakeUploader{}, nil)

	author := seedUser(t, db, "author")
	fan := seedUser(t, db, "fanuser")

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	first := seedPost(t, db, author.ID, base)
	second := seedPost(t, db, author.ID, base.Add(time.Minute))

	// like the older post after the newer one, so join recency disagrees
	// with post recency
	_, err := posts.Like(ctx, fan.ID, second.ID)
	require.NoError(t, err)
	_, err = posts.Like(ctx, fan.ID, first.ID)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.PostLike{}).Where("post_id = ?", second.ID).
		UpdateColumn("created_at", base).Error)
	require.NoError(t, db.Model(&models.PostLike{}).Where("post_id = ?", first.ID).
		UpdateColumn("created_at", base.Add(time.Minute)).Error)

	liked, err := svc.Liked(ctx, fan.ID)
	require.NoError(t, err)
	require.Len(t, liked, 2)
	assert.Equal(t, first.ID, liked[0].ID)
	assert.Equal(t, second.ID, liked[1].ID)

	_, err = posts.Save(ctx, fan.ID, first.ID)
	require.NoError(t, err)
	saved, err := svc.Saved(ctx, fan.ID)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, first.ID, saved[0].ID)

	_, err = posts.Tag(ctx, fan.ID, second.ID)
	require.NoError(t, err)
	tagged, err := svc.Tagged(ctx, fan.ID)
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, second.ID, tagged[0].ID)

	// empty, not nil, when nothing was joined
	none, err := svc.Saved(ctx, author.ID)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func strPtr(s string) *string { return &s }

func TestProfileEdit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	up := &fakeUploader{}
	svc := NewProfileService(db, up)

	alice := seedUser(t, db, "alice")
	other := seedUser(t, db, "someone")

	_, err := svc.Edit(ctx, other.ID, alice.ID, strPtr("Hijack"), nil, "")
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))

	updated, err := svc.Edit(ctx, alice.ID, alice.ID, strPtr("Alice L."), strPtr("hi there"), "")
	require.NoError(t, err)
	assert.Equal(t, "Alice L.", updated.Name)
	assert.Equal(t, "hi there", updated.Description)
	assert.Zero(t, up.calls)

	updated, err = svc.Edit(ctx, alice.ID, alice.ID, strPtr("Alice L."), strPtr("hi there"), "face.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/hosted/face.jpg", updated.ProfilePhoto)
	assert.Equal(t, utils.ProfileTransform, up.lastOpts)
}

func TestProfileEditOmittedFieldsAreKept(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewProfileService(db, &fakeUploader{})

	alice := seedUser(t, db, "alice")
	_, err := svc.Edit(ctx, alice.ID, alice.ID, strPtr("Alice L."), strPtr("my bio"), "face.jpg")
	require.NoError(t, err)

	// renaming only must not clear the description or the photo
	updated, err := svc.Edit(ctx, alice.ID, alice.ID, strPtr("Renamed"), nil, "")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "my bio", updated.Description)
	assert.Equal(t, "https://cdn.example.com/hosted/face.jpg", updated.ProfilePhoto)

	// and a description-only edit keeps the name
	updated, err = svc.Edit(ctx, alice.ID, alice.ID, nil, strPtr("new bio"), "")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "new bio", updated.Description)

	// clearing is still possible by sending an explicit empty string
	updated, err = svc.Edit(ctx, alice.ID, alice.ID, nil, strPtr(""), "")
	require.NoError(t, err)
	assert.Equal(t, "", updated.Description)

	// an edit with nothing supplied is a no-op
	updated, err = svc.Edit(ctx, alice.ID, alice.ID, nil, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
}

func TestProfileEditUploadFailure(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewProfileService(db, &fakeUploader{fail: true})

	alice := seedUser(t, db, "alice")
	_, err := svc.Edit(ctx, alice.ID, alice.ID, strPtr("Alice"), strPtr("bio"), "face.jpg")
	require.Error(t, err)
	assert.Equal(t, KindUpstream, KindOf(err))

	var u models.User
	require.NoError(t, db.First(&u, alice.ID).Error)
	assert.Equal(t, "Test alice", u.Name)
}
