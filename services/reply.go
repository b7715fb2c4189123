package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/berkai/picshare/models"
)

// ReplyService handles comments and their nested replies. Creating or
// deleting a row always adjusts the owning counter (the post's CommentsCount
// for top-level comments, the parent comment's CommentsCount for replies) in
// the same transaction.
type ReplyService struct {
	db       *gorm.DB
	sanitize func(string) string
}

// NewReplyService creates a ReplyService.
func NewReplyService(db *gorm.DB, sanitize func(string) string) *ReplyService {
	if sanitize == nil {
		sanitize = func(s string) string { return s }
	}
	return &ReplyService{db: db, sanitize: sanitize}
}

// ByPost lists every reply row for a post, newest first.
func (r *ReplyService) ByPost(ctx context.Context, postID uint) ([]models.Reply, error) {
	var replies []models.Reply
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&replies).Error; err != nil {
		return nil, err
	}
	return replies, nil
}

// CreateComment attaches a top-level comment to a post and bumps the post's
// comment counter.
func (r *ReplyService) CreateComment(ctx context.Context, viewerID, postID uint, content string) (*models.Reply, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, postID).Error; err != nil {
		return nil, orNotFound(err, "post not found")
	}

	comment := models.Reply{PostID: postID, UserID: viewerID, Content: r.sanitize(content)}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}

	var created models.Reply
	if err := r.db.WithContext(ctx).Preload("User").First(&created, comment.ID).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

// CreateReply nests a reply under an existing comment. The reply inherits the
// parent's PostID, and the parent's reply counter is bumped alongside.
func (r *ReplyService) CreateReply(ctx context.Context, viewerID, commentID uint, content string) (*models.Reply, error) {
	var parent models.Reply
	if err := r.db.WithContext(ctx).First(&parent, commentID).Error; err != nil {
		return nil, orNotFound(err, "comment not found")
	}

	parentID := parent.ID
	reply := models.Reply{
		PostID:          parent.PostID,
		UserID:          viewerID,
		Content:         r.sanitize(content),
		OriginalReplyID: &parentID,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&reply).Error; err != nil {
			return err
		}
		return tx.Model(&models.Reply{}).Where("id = ?", parent.ID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}

	var created models.Reply
	if err := r.db.WithContext(ctx).Preload("User").First(&created, reply.ID).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

// Update changes a comment's or reply's content; owner only.
func (r *ReplyService) Update(ctx context.Context, viewerID, replyID uint, content string) (*models.Reply, error) {
	var reply models.Reply
	if err := r.db.WithContext(ctx).Preload("User").First(&reply, replyID).Error; err != nil {
		return nil, orNotFound(err, "comment not found")
	}
	if reply.UserID != viewerID {
		return nil, Forbidden("you can only edit your own comments")
	}
	reply.Content = r.sanitize(content)
	if err := r.db.WithContext(ctx).Model(&models.Reply{}).Where("id = ?", replyID).
		UpdateColumn("content", reply.Content).Error; err != nil {
		return nil, err
	}
	return &reply, nil
}

// Delete removes a comment or reply with its likes and lowers the owning
// counter: the post's for a top-level comment, the parent comment's for a
// nested reply.
func (r *ReplyService) Delete(ctx context.Context, viewerID, replyID uint) (*models.Reply, error) {
	var reply models.Reply
	if err := r.db.WithContext(ctx).Preload("User").First(&reply, replyID).Error; err != nil {
		return nil, orNotFound(err, "comment not found")
	}
	if reply.UserID != viewerID {
		return nil, Forbidden("you can only delete your own comments")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reply_id = ?", replyID).Delete(&models.ReplyLike{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Reply{}, replyID).Error; err != nil {
			return err
		}
		if reply.IsTopLevel() {
			return tx.Model(&models.Post{}).Where("id = ?", reply.PostID).
				UpdateColumn("comments_count", gorm.Expr("comments_count - ?", 1)).Error
		}
		return tx.Model(&models.Reply{}).Where("id = ?", *reply.OriginalReplyID).
			UpdateColumn("comments_count", gorm.Expr("comments_count - ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

// Like records a like on a comment or reply and bumps its counter.
func (r *ReplyService) Like(ctx context.Context, viewerID, replyID uint) (*models.ReplyLike, error) {
	var reply models.Reply
	if err := r.db.WithContext(ctx).First(&reply, replyID).Error; err != nil {
		return nil, orNotFound(err, "comment not found")
	}

	var like models.ReplyLike
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.ReplyLike
		err := tx.Where("reply_id = ? AND user_id = ?", replyID, viewerID).First(&existing).Error
		if err == nil {
			return Conflict("comment already liked")
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		like = models.ReplyLike{ReplyID: replyID, UserID: viewerID}
		if err := tx.Create(&like).Error; err != nil {
			return err
		}
		return tx.Model(&models.Reply{}).Where("id = ?", replyID).
			UpdateColumn("like_count", gorm.Expr("like_count + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Preload("User").First(&like, like.ID).Error; err != nil {
		return nil, err
	}
	return &like, nil
}

// Unlike removes a comment like and lowers the counter.
func (r *ReplyService) Unlike(ctx context.Context, viewerID, replyID uint) (*models.ReplyLike, error) {
	var reply models.Reply
	if err := r.db.WithContext(ctx).First(&reply, replyID).Error; err != nil {
		return nil, orNotFound(err, "comment not found")
	}

	var like models.ReplyLike
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("User").Where("reply_id = ? AND user_id = ?", replyID, viewerID).First(&like).Error; err != nil {
			return orNotFound(err, "comment not liked")
		}
		if err := tx.Delete(&models.ReplyLike{}, like.ID).Error; err != nil {
			return err
		}
		return tx.Model(&models.Reply{}).Where("id = ?", replyID).
			UpdateColumn("like_count", gorm.Expr("like_count - ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}
	return &like, nil
}
