package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/berkai/picshare/models"
)

// SocialService maintains the follow graph and derives suggestion and
// mutual-connection views from it.
type SocialService struct {
	db *gorm.DB
}

// NewSocialService creates a SocialService.
func NewSocialService(db *gorm.DB) *SocialService {
	return &SocialService{db: db}
}

// Follow creates the viewer -> target edge and bumps both denormalized
// follow counters in the same transaction.
func (s *SocialService) Follow(ctx context.Context, viewerID, targetID uint) (*models.Follow, error) {
	if targetID == viewerID {
		return nil, Invalid("you can't follow yourself")
	}
	var target models.User
	if err := s.db.WithContext(ctx).First(&target, targetID).Error; err != nil {
		return nil, orNotFound(err, "user not found")
	}

	var edge models.Follow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Follow
		err := tx.Where("follower_id = ? AND following_id = ?", viewerID, targetID).First(&existing).Error
		if err == nil {
			return Conflict("already following this user")
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		edge = models.Follow{FollowerID: viewerID, FollowingID: targetID}
		if err := tx.Create(&edge).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", viewerID).
			UpdateColumn("followings_count", gorm.Expr("followings_count + ?", 1)).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", targetID).
			UpdateColumn("followers_count", gorm.Expr("followers_count + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}
	return &edge, nil
}

// Unfollow removes the viewer -> target edge and lowers both counters.
func (s *SocialService) Unfollow(ctx context.Context, viewerID, targetID uint) (*models.Follow, error) {
	if targetID == viewerID {
		return nil, Invalid("you can't unfollow yourself")
	}
	var target models.User
	if err := s.db.WithContext(ctx).First(&target, targetID).Error; err != nil {
		return nil, orNotFound(err, "user not found")
	}

	var edge models.Follow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("follower_id = ? AND following_id = ?", viewerID, targetID).First(&edge).Error; err != nil {
			return orNotFound(err, "not following this user")
		}
		if err := tx.Delete(&models.Follow{}, edge.ID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", viewerID).
			UpdateColumn("followings_count", gorm.Expr("followings_count - ?", 1)).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", targetID).
			UpdateColumn("followers_count", gorm.Expr("followers_count - ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}
	return &edge, nil
}

// Followers lists the users following userID.
func (s *SocialService) Followers(ctx context.Context, userID uint) ([]models.PublicUser, error) {
	ids, err := followerIDs(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	return s.publicUsers(ctx, ids)
}

// Followings lists the users userID follows.
func (s *SocialService) Followings(ctx context.Context, userID uint) ([]models.PublicUser, error) {
	ids, err := followingIDs(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	return s.publicUsers(ctx, ids)
}

// Suggestions returns every user who is neither a follower nor a followee of
// userID, excluding userID itself.
func (s *SocialService) Suggestions(ctx context.Context, userID uint) ([]models.PublicUser, error) {
	following, err := followingIDs(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	followers, err := followerIDs(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	excluded := append(append(following, followers...), userID)
	var users []models.User
	if err := s.db.WithContext(ctx).
		Where("id NOT IN ?", uniqueUint(excluded)).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	out := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

// MutualNote intersects profileID's followers with viewerID's followees and
// renders the "X is following" / "X, Y are following" sentence. It returns an
// empty string when the sets are disjoint.
func (s *SocialService) MutualNote(ctx context.Context, profileID, viewerID uint) (string, error) {
	profileFollowers, err := followerIDs(ctx, s.db, profileID)
	if err != nil {
		return "", err
	}
	viewerFollowings, err := followingIDs(ctx, s.db, viewerID)
	if err != nil {
		return "", err
	}

	followerSet := make(map[uint]bool, len(profileFollowers))
	for _, id := range profileFollowers {
		followerSet[id] = true
	}
	var common []uint
	for _, id := range viewerFollowings {
		if followerSet[id] {
			common = append(common, id)
		}
	}
	if len(common) == 0 {
		return "", nil
	}

	var names []string
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id IN ?", common).
		Pluck("name", &names).Error; err != nil {
		return "", err
	}

	verb := "is"
	if len(names) > 1 {
		verb = "are"
	}
	return strings.Join(names, ", ") + " " + verb + " following", nil
}

func (s *SocialService) publicUsers(ctx context.Context, ids []uint) ([]models.PublicUser, error) {
	if len(ids) == 0 {
		return []models.PublicUser{}, nil
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	out := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}
