package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/berkai/picshare/models"
	"github.com/berkai/picshare/utils"
)

// ProfileService serves the profile page: a user's own posts plus the posts
// they liked, saved or were tagged in, and profile edits.
type ProfileService struct {
	db       *gorm.DB
	uploader utils.Uploader
}

// NewProfileService creates a ProfileService.
func NewProfileService(db *gorm.DB, uploader utils.Uploader) *ProfileService {
	return &ProfileService{db: db, uploader: uploader}
}

// Profile is the full profile view for one user.
type Profile struct {
	ID              uint                `json:"id"`
	Name            string              `json:"name"`
	Username        string              `json:"username"`
	Email           string              `json:"email"`
	Description     string              `json:"description"`
	ProfilePhoto    string              `json:"profile_photo"`
	PostCount       int                 `json:"post_count"`
	FollowersCount  int                 `json:"followers_count"`
	FollowingsCount int                 `json:"followings_count"`
	CreatedAt       string              `json:"created_at"`
	UpdatedAt       string              `json:"updated_at"`
	Posts           []FeedPost          `json:"posts"`
	Followers       []models.PublicUser `json:"followers"`
	Followings      []models.PublicUser `json:"followings"`
}

// ByUsername resolves the profile view for a username. A missing user yields
// a typed not-found error rather than an empty profile.
func (p *ProfileService) ByUsername(ctx context.Context, username string) (*Profile, error) {
	var user models.User
	if err := p.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, orNotFound(err, "user not found")
	}

	posts, err := p.Posts(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	followerUsers, err := p.usersByIDs(ctx, func() ([]uint, error) { return followerIDs(ctx, p.db, user.ID) })
	if err != nil {
		return nil, err
	}
	followingUsers, err := p.usersByIDs(ctx, func() ([]uint, error) { return followingIDs(ctx, p.db, user.ID) })
	if err != nil {
		return nil, err
	}

	return &Profile{
		ID:              user.ID,
		Name:            user.Name,
		Username:        user.Username,
		Email:           user.Email,
		Description:     user.Description,
		ProfilePhoto:    user.ProfilePhoto,
		PostCount:       user.PostCount,
		FollowersCount:  user.FollowersCount,
		FollowingsCount: user.FollowingsCount,
		CreatedAt:       user.CreatedAt.Format(timeLayout),
		UpdatedAt:       user.UpdatedAt.Format(timeLayout),
		Posts:           posts,
		Followers:       followerUsers,
		Followings:      followingUsers,
	}, nil
}

// Posts lists one user's posts, enriched and newest first.
func (p *ProfileService) Posts(ctx context.Context, userID uint) ([]FeedPost, error) {
	var posts []models.Post
	if err := p.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return EnrichPosts(ctx, p.db, posts)
}

// Saved lists the posts a user bookmarked, newest bookmark first.
func (p *ProfileService) Saved(ctx context.Context, userID uint) ([]FeedPost, error) {
	return p.joinedPosts(ctx, &models.PostSave{}, userID)
}

// Tagged lists the posts a user was tagged in.
func (p *ProfileService) Tagged(ctx context.Context, userID uint) ([]FeedPost, error) {
	return p.joinedPosts(ctx, &models.PostTag{}, userID)
}

// Liked lists the posts a user liked.
func (p *ProfileService) Liked(ctx context.Context, userID uint) ([]FeedPost, error) {
	return p.joinedPosts(ctx, &models.PostLike{}, userID)
}

// joinedPosts resolves a join table (save/tag/like) into enriched posts,
// ordered by join recency.
func (p *ProfileService) joinedPosts(ctx context.Context, joinModel interface{}, userID uint) ([]FeedPost, error) {
	var postIDs []uint
	if err := p.db.WithContext(ctx).
		Model(joinModel).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("post_id", &postIDs).Error; err != nil {
		return nil, err
	}
	if len(postIDs) == 0 {
		return []FeedPost{}, nil
	}

	var posts []models.Post
	if err := p.db.WithContext(ctx).Preload("User").Where("id IN ?", postIDs).Find(&posts).Error; err != nil {
		return nil, err
	}
	// Restore join order, which the IN query does not preserve.
	byID := make(map[uint]models.Post, len(posts))
	for _, post := range posts {
		byID[post.ID] = post
	}
	ordered := make([]models.Post, 0, len(posts))
	for _, id := range postIDs {
		if post, ok := byID[id]; ok {
			ordered = append(ordered, post)
		}
	}
	return EnrichPosts(ctx, p.db, ordered)
}

// Edit updates the viewer's display name, description and, when a new image
// is supplied, the profile photo via the image host. Nil name/description mean
// "not supplied"; an omitted field is left untouched, never cleared.
func (p *ProfileService) Edit(ctx context.Context, viewerID, userID uint, name, description *string, profilePhoto string) (*models.User, error) {
	if viewerID != userID {
		return nil, Forbidden("you can only edit your own profile")
	}

	updates := map[string]interface{}{}
	if name != nil {
		updates["name"] = *name
	}
	if description != nil {
		updates["description"] = *description
	}
	if profilePhoto != "" {
		url, err := p.uploader.Upload(ctx, profilePhoto, utils.ProfileTransform)
		if err != nil {
			return nil, Upstream("profile photo upload failed", err)
		}
		updates["profile_photo"] = url
	}

	if len(updates) > 0 {
		if err := p.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", viewerID).
			UpdateColumns(updates).Error; err != nil {
			return nil, err
		}
	}
	var user models.User
	if err := p.db.WithContext(ctx).First(&user, viewerID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (p *ProfileService) usersByIDs(ctx context.Context, fetch func() ([]uint, error)) ([]models.PublicUser, error) {
	ids, err := fetch()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.PublicUser{}, nil
	}
	var users []models.User
	if err := p.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	out := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}
