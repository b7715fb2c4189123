package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/berkai/picshare/models"
	"github.com/berkai/picshare/utils"
)

// PostService handles the post lifecycle and the post-scoped join entities
// (likes, saves, tags), keeping the denormalized counters in step with every
// row mutation.
type PostService struct {
	db       *gorm.DB
	uploader utils.Uploader
	sanitize func(string) string
}

// NewPostService creates a PostService. sanitize is applied to user-supplied
// content before it is stored.
func NewPostService(db *gorm.DB, uploader utils.Uploader, sanitize func(string) string) *PostService {
	if sanitize == nil {
		sanitize = func(s string) string { return s }
	}
	return &PostService{db: db, uploader: uploader, sanitize: sanitize}
}

// Single returns one post enriched like a feed entry.
func (p *PostService) Single(ctx context.Context, postID uint) (*FeedPost, error) {
	var post models.Post
	if err := p.db.WithContext(ctx).Preload("User").First(&post, postID).Error; err != nil {
		return nil, orNotFound(err, "post not found")
	}
	enriched, err := EnrichPosts(ctx, p.db, []models.Post{post})
	if err != nil {
		return nil, err
	}
	return &enriched[0], nil
}

// Create uploads the image, stores the post and bumps the author's post
// counter in one transaction.
func (p *PostService) Create(ctx context.Context, viewerID uint, file, content string) (*models.Post, error) {
	url, err := p.uploader.Upload(ctx, file, utils.PostTransform)
	if err != nil {
		return nil, Upstream("image upload failed", err)
	}

	post := models.Post{UserID: viewerID, File: url, Content: p.sanitize(content)}
	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", viewerID).
			UpdateColumn("post_count", gorm.Expr("post_count + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}

	var created models.Post
	if err := p.db.WithContext(ctx).Preload("User").First(&created, post.ID).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

// Update changes the post content; only the author may update.
func (p *PostService) Update(ctx context.Context, viewerID, postID uint, content string) (*models.Post, error) {
	var post models.Post
	if err := p.db.WithContext(ctx).Preload("User").First(&post, postID).Error; err != nil {
		return nil, orNotFound(err, "post not found")
	}
	if post.UserID != viewerID {
		return nil, Forbidden("you can only update your own posts")
	}

	post.Content = p.sanitize(content)
	if err := p.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumn("content", post.Content).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Delete removes the post with its likes and saves and lowers the author's
// post counter. Replies are intentionally left behind, matching the
// historical cascade shape.
func (p *PostService) Delete(ctx context.Context, viewerID, postID uint) (*models.Post, error) {
	var post models.Post
	if err := p.db.WithContext(ctx).Preload("User").First(&post, postID).Error; err != nil {
		return nil, orNotFound(err, "post not found")
	}
	if post.UserID != viewerID {
		return nil, Forbidden("you can only delete your own posts")
	}

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostSave{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Post{}, postID).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", post.UserID).
			UpdateColumn("post_count", gorm.Expr("post_count - ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Like records a post like and bumps the post's counter atomically.
func (p *PostService) Like(ctx context.Context, viewerID, postID uint) (*FeedPost, error) {
	if err := p.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.PostLike
		err := tx.Where("post_id = ? AND user_id = ?", postID, viewerID).First(&existing).Error
		if err == nil {
			return Conflict("post already liked")
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := tx.Create(&models.PostLike{PostID: postID, UserID: viewerID}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("like_count", gorm.Expr("like_count + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}
	return p.Single(ctx, postID)
}

// Unlike removes a post like and lowers the counter atomically.
func (p *PostService) Unlike(ctx context.Context, viewerID, postID uint) (*FeedPost, error) {
	if err := p.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var like models.PostLike
		if err := tx.Where("post_id = ? AND user_id = ?", postID, viewerID).First(&like).Error; err != nil {
			return orNotFound(err, "post not liked")
		}
		if err := tx.Delete(&models.PostLike{}, like.ID).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("like_count", gorm.Expr("like_count - ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}
	return p.Single(ctx, postID)
}

// Save bookmarks the post for the viewer. No counter is maintained for saves.
func (p *PostService) Save(ctx context.Context, viewerID, postID uint) (*FeedPost, error) {
	if err := p.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	var existing models.PostSave
	err := p.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, viewerID).First(&existing).Error
	if err == nil {
		return nil, Conflict("post already saved")
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	if err := p.db.WithContext(ctx).Create(&models.PostSave{PostID: postID, UserID: viewerID}).Error; err != nil {
		return nil, err
	}
	return p.Single(ctx, postID)
}

// Unsave drops the viewer's bookmark.
func (p *PostService) Unsave(ctx context.Context, viewerID, postID uint) (*FeedPost, error) {
	var save models.PostSave
	if err := p.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, viewerID).First(&save).Error; err != nil {
		return nil, orNotFound(err, "post hasn't been saved")
	}
	if err := p.db.WithContext(ctx).Delete(&models.PostSave{}, save.ID).Error; err != nil {
		return nil, err
	}
	return p.Single(ctx, postID)
}

// Tag marks a user as tagged in a post, at most once per pair.
func (p *PostService) Tag(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if err := p.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	var user models.User
	if err := p.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, orNotFound(err, "user not found")
	}
	var existing models.PostTag
	err := p.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
	if err == nil {
		return nil, Conflict("user already tagged")
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	if err := p.db.WithContext(ctx).Create(&models.PostTag{PostID: postID, UserID: userID}).Error; err != nil {
		return nil, err
	}
	var post models.Post
	if err := p.db.WithContext(ctx).Preload("User").First(&post, postID).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Untag removes a tag pair.
func (p *PostService) Untag(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if err := p.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	var tag models.PostTag
	if err := p.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).First(&tag).Error; err != nil {
		return nil, orNotFound(err, "user not tagged")
	}
	if err := p.db.WithContext(ctx).Delete(&models.PostTag{}, tag.ID).Error; err != nil {
		return nil, err
	}
	var post models.Post
	if err := p.db.WithContext(ctx).Preload("User").First(&post, postID).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// IsLiked reports whether the viewer liked the post.
func (p *PostService) IsLiked(ctx context.Context, viewerID, postID uint) (bool, error) {
	var n int64
	if err := p.db.WithContext(ctx).Model(&models.PostLike{}).
		Where("post_id = ? AND user_id = ?", postID, viewerID).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsSaved reports whether the viewer saved the post.
func (p *PostService) IsSaved(ctx context.Context, viewerID, postID uint) (bool, error) {
	var n int64
	if err := p.db.WithContext(ctx).Model(&models.PostSave{}).
		Where("post_id = ? AND user_id = ?", postID, viewerID).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (p *PostService) requirePost(ctx context.Context, postID uint) error {
	var post models.Post
	if err := p.db.WithContext(ctx).Select("id").First(&post, postID).Error; err != nil {
		return orNotFound(err, "post not found")
	}
	return nil
}
