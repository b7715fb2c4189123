package services

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"github.com/berkai/picshare/models"
)

// FeedService assembles the home feed: the viewer's own posts merged with
// their followees' posts, each enriched with likes, saves and the two-level
// comment tree.
type FeedService struct {
	db *gorm.DB
}

// NewFeedService creates a FeedService.
func NewFeedService(db *gorm.DB) *FeedService {
	return &FeedService{db: db}
}

// LikeInfo is a like row with the liker's identity attached.
type LikeInfo struct {
	ID     uint              `json:"id"`
	UserID uint              `json:"user_id"`
	User   models.PublicUser `json:"user"`
}

// SaveInfo is a save row with the saver's identity attached.
type SaveInfo struct {
	ID     uint              `json:"id"`
	PostID uint              `json:"post_id"`
	User   models.PublicUser `json:"user"`
}

// TagInfo is a tag row with the tagged user's identity attached.
type TagInfo struct {
	ID     uint              `json:"id"`
	PostID uint              `json:"post_id"`
	UserID uint              `json:"user_id"`
	User   models.PublicUser `json:"user"`
}

// FeedReply is a nested reply under a top-level comment.
type FeedReply struct {
	ID              uint              `json:"id"`
	UserID          uint              `json:"user_id"`
	PostID          uint              `json:"post_id"`
	Content         string            `json:"content"`
	LikeCount       int               `json:"like_count"`
	CommentsCount   int               `json:"comments_count"`
	OriginalReplyID *uint             `json:"original_reply_id"`
	CreatedAt       string            `json:"created_at"`
	UpdatedAt       string            `json:"updated_at"`
	User            models.PublicUser `json:"user"`
}

// FeedComment is a top-level comment with its direct replies and reply-likes.
type FeedComment struct {
	ID              uint              `json:"id"`
	UserID          uint              `json:"user_id"`
	PostID          uint              `json:"post_id"`
	Content         string            `json:"content"`
	LikeCount       int               `json:"like_count"`
	CommentsCount   int               `json:"comments_count"`
	OriginalReplyID *uint             `json:"original_reply_id"`
	CreatedAt       string            `json:"created_at"`
	UpdatedAt       string            `json:"updated_at"`
	User            models.PublicUser `json:"user"`
	Replies         []FeedReply       `json:"replies"`
	ReplyLikes      []LikeInfo        `json:"replies_likes"`
}

// FeedPost is one enriched feed entry. User, UserID and Username always refer
// to the post's actual author, never the viewer.
type FeedPost struct {
	ID            uint              `json:"id"`
	UserID        uint              `json:"user_id"`
	Username      string            `json:"username"`
	Name          string            `json:"name"`
	File          string            `json:"file"`
	Content       string            `json:"content"`
	LikeCount     int               `json:"like_count"`
	CommentsCount int               `json:"comments_count"`
	CreatedAt     string            `json:"created_at"`
	UpdatedAt     string            `json:"updated_at"`
	User          models.PublicUser `json:"user"`
	Likes         []LikeInfo        `json:"likes"`
	Saves         []SaveInfo        `json:"saves"`
	Tagged        []TagInfo         `json:"post_tagged"`
	Comments      []FeedComment     `json:"post_replies"`

	createdAt int64
}

// Feed returns the viewer's merged feed sorted newest first. Any enrichment
// failure aborts the whole assembly; there is no partial feed.
func (f *FeedService) Feed(ctx context.Context, viewerID uint) ([]FeedPost, error) {
	var viewer models.User
	if err := f.db.WithContext(ctx).First(&viewer, viewerID).Error; err != nil {
		return nil, orNotFound(err, "user not found")
	}

	followingIDs, err := followingIDs(ctx, f.db, viewerID)
	if err != nil {
		return nil, err
	}
	authorIDs := append([]uint{viewerID}, followingIDs...)

	var posts []models.Post
	if err := f.db.WithContext(ctx).
		Preload("User").
		Where("user_id IN ?", uniqueUint(authorIDs)).
		Order("created_at DESC").
		Find(&posts).Error; err != nil {
		return nil, err
	}

	// Union semantics: a self-follow edge would surface the viewer's posts
	// twice without dedup by post id.
	seen := make(map[uint]bool, len(posts))
	deduped := posts[:0]
	for _, p := range posts {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		deduped = append(deduped, p)
	}

	feed, err := EnrichPosts(ctx, f.db, deduped)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(feed, func(i, j int) bool {
		if feed[i].createdAt != feed[j].createdAt {
			return feed[i].createdAt > feed[j].createdAt
		}
		return feed[i].ID > feed[j].ID
	})
	return feed, nil
}

// EnrichPosts attaches likes, saves, tags and the top-level comment tree to
// each post. The per-relation fetches are batched over the candidate id set
// and grouped back per post, so enrichment for one post never depends on
// another.
func EnrichPosts(ctx context.Context, db *gorm.DB, posts []models.Post) ([]FeedPost, error) {
	if len(posts) == 0 {
		return []FeedPost{}, nil
	}

	postIDs := make([]uint, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
	}

	var likeRows []models.PostLike
	if err := db.WithContext(ctx).Preload("User").Where("post_id IN ?", postIDs).Find(&likeRows).Error; err != nil {
		return nil, err
	}
	likesByPost := make(map[uint][]LikeInfo)
	for _, l := range likeRows {
		likesByPost[l.PostID] = append(likesByPost[l.PostID], LikeInfo{ID: l.ID, UserID: l.UserID, User: l.User.Public()})
	}

	var saveRows []models.PostSave
	if err := db.WithContext(ctx).Preload("User").Where("post_id IN ?", postIDs).Find(&saveRows).Error; err != nil {
		return nil, err
	}
	savesByPost := make(map[uint][]SaveInfo)
	for _, s := range saveRows {
		savesByPost[s.PostID] = append(savesByPost[s.PostID], SaveInfo{ID: s.ID, PostID: s.PostID, User: s.User.Public()})
	}

	var tagRows []models.PostTag
	if err := db.WithContext(ctx).Preload("User").Where("post_id IN ?", postIDs).Find(&tagRows).Error; err != nil {
		return nil, err
	}
	tagsByPost := make(map[uint][]TagInfo)
	for _, t := range tagRows {
		tagsByPost[t.PostID] = append(tagsByPost[t.PostID], TagInfo{ID: t.ID, PostID: t.PostID, UserID: t.UserID, User: t.User.Public()})
	}

	commentsByPost, err := commentTrees(ctx, db, postIDs)
	if err != nil {
		return nil, err
	}

	feed := make([]FeedPost, 0, len(posts))
	for _, p := range posts {
		fp := FeedPost{
			ID:            p.ID,
			UserID:        p.UserID,
			Username:      p.User.Username,
			Name:          p.User.Name,
			File:          p.File,
			Content:       p.Content,
			LikeCount:     p.LikeCount,
			CommentsCount: p.CommentsCount,
			CreatedAt:     p.CreatedAt.Format(timeLayout),
			UpdatedAt:     p.UpdatedAt.Format(timeLayout),
			User:          p.User.Public(),
			Likes:         emptyLikes(likesByPost[p.ID]),
			Saves:         emptySaves(savesByPost[p.ID]),
			Tagged:        emptyTags(tagsByPost[p.ID]),
			Comments:      emptyComments(commentsByPost[p.ID]),
			createdAt:     p.CreatedAt.UnixNano(),
		}
		feed = append(feed, fp)
	}
	return feed, nil
}

// commentTrees loads the two-level comment tree for every post id: top-level
// comments, each with its direct replies and its reply-likes. Deeper nesting
// is not supported.
func commentTrees(ctx context.Context, db *gorm.DB, postIDs []uint) (map[uint][]FeedComment, error) {
	var comments []models.Reply
	if err := db.WithContext(ctx).
		Preload("User").
		Where("post_id IN ? AND original_reply_id IS NULL", postIDs).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}

	commentIDs := make([]uint, 0, len(comments))
	for _, c := range comments {
		commentIDs = append(commentIDs, c.ID)
	}

	repliesByComment := make(map[uint][]FeedReply)
	likesByComment := make(map[uint][]LikeInfo)
	if len(commentIDs) > 0 {
		var nested []models.Reply
		if err := db.WithContext(ctx).
			Preload("User").
			Where("original_reply_id IN ?", commentIDs).
			Order("created_at ASC").
			Find(&nested).Error; err != nil {
			return nil, err
		}
		for _, r := range nested {
			repliesByComment[*r.OriginalReplyID] = append(repliesByComment[*r.OriginalReplyID], toFeedReply(r))
		}

		var replyLikes []models.ReplyLike
		if err := db.WithContext(ctx).
			Preload("User").
			Where("reply_id IN ?", commentIDs).
			Find(&replyLikes).Error; err != nil {
			return nil, err
		}
		for _, l := range replyLikes {
			likesByComment[l.ReplyID] = append(likesByComment[l.ReplyID], LikeInfo{ID: l.ID, UserID: l.UserID, User: l.User.Public()})
		}
	}

	out := make(map[uint][]FeedComment)
	for _, c := range comments {
		fr := toFeedReply(c)
		out[c.PostID] = append(out[c.PostID], FeedComment{
			ID:              fr.ID,
			UserID:          fr.UserID,
			PostID:          fr.PostID,
			Content:         fr.Content,
			LikeCount:       fr.LikeCount,
			CommentsCount:   fr.CommentsCount,
			OriginalReplyID: fr.OriginalReplyID,
			CreatedAt:       fr.CreatedAt,
			UpdatedAt:       fr.UpdatedAt,
			User:            fr.User,
			Replies:         emptyReplies(repliesByComment[c.ID]),
			ReplyLikes:      emptyLikes(likesByComment[c.ID]),
		})
	}
	return out, nil
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func toFeedReply(r models.Reply) FeedReply {
	return FeedReply{
		ID:              r.ID,
		UserID:          r.UserID,
		PostID:          r.PostID,
		Content:         r.Content,
		LikeCount:       r.LikeCount,
		CommentsCount:   r.CommentsCount,
		OriginalReplyID: r.OriginalReplyID,
		CreatedAt:       r.CreatedAt.Format(timeLayout),
		UpdatedAt:       r.UpdatedAt.Format(timeLayout),
		User:            r.User.Public(),
	}
}

// followingIDs returns the ids of every user the given user follows.
func followingIDs(ctx context.Context, db *gorm.DB, userID uint) ([]uint, error) {
	var ids []uint
	if err := db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// followerIDs returns the ids of every user following the given user.
func followerIDs(ctx context.Context, db *gorm.DB, userID uint) ([]uint, error) {
	var ids []uint
	if err := db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Pluck("follower_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func uniqueUint(in []uint) []uint {
	seen := make(map[uint]bool, len(in))
	out := make([]uint, 0, len(in))
	for _, v := range in {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func emptyLikes(in []LikeInfo) []LikeInfo {
	if in == nil {
		return []LikeInfo{}
	}
	return in
}

func emptySaves(in []SaveInfo) []SaveInfo {
	if in == nil {
		return []SaveInfo{}
	}
	return in
}

func emptyTags(in []TagInfo) []TagInfo {
	if in == nil {
		return []TagInfo{}
	}
	return in
}

func emptyReplies(in []FeedReply) []FeedReply {
	if in == nil {
		return []FeedReply{}
	}
	return in
}

func emptyComments(in []FeedComment) []FeedComment {
	if in == nil {
		return []FeedComment{}
	}
	return in
}
