package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/berkai/picshare/models"
	"github.com/berkai/picshare/utils"
)

// StoryService groups stories into one entry per author and handles the story
// lifecycle mutations.
type StoryService struct {
	db       *gorm.DB
	uploader utils.Uploader
}

// NewStoryService creates a StoryService.
func NewStoryService(db *gorm.DB, uploader utils.Uploader) *StoryService {
	return &StoryService{db: db, uploader: uploader}
}

// StoryItem is one story enriched with its author and likers.
type StoryItem struct {
	ID        uint              `json:"id"`
	File      string            `json:"file"`
	LikeCount int               `json:"like_count"`
	IsSaved   bool              `json:"is_saved"`
	UserID    uint              `json:"user_id"`
	Username  string            `json:"username"`
	Name      string            `json:"name"`
	CreatedAt string            `json:"created_at"`
	UpdatedAt string            `json:"updated_at"`
	User      models.PublicUser `json:"user"`
	Likes     []LikeInfo        `json:"likes"`
}

// AuthorStories is one story-feed entry: an author and their stories in
// global newest-first order.
type AuthorStories struct {
	User    models.PublicUser `json:"user"`
	Stories []StoryItem       `json:"stories"`
}

// StoryFeed returns stories authored by the viewer and their followees,
// grouped by author. Grouping preserves each story's position in the global
// newest-first order, and authors appear in first-occurrence order: whoever
// posted most recently comes first.
func (s *StoryService) StoryFeed(ctx context.Context, viewerID uint) ([]AuthorStories, error) {
	var viewer models.User
	if err := s.db.WithContext(ctx).First(&viewer, viewerID).Error; err != nil {
		return nil, orNotFound(err, "user not found")
	}

	ids, err := followingIDs(ctx, s.db, viewerID)
	if err != nil {
		return nil, err
	}
	authorIDs := uniqueUint(append([]uint{viewerID}, ids...))

	var stories []models.Story
	if err := s.db.WithContext(ctx).
		Preload("User").
		Where("user_id IN ?", authorIDs).
		Order("created_at DESC, id DESC").
		Find(&stories).Error; err != nil {
		return nil, err
	}

	likesByStory, err := s.storyLikes(ctx, stories)
	if err != nil {
		return nil, err
	}

	index := make(map[uint]int)
	grouped := make([]AuthorStories, 0)
	for _, st := range stories {
		i, ok := index[st.UserID]
		if !ok {
			i = len(grouped)
			index[st.UserID] = i
			grouped = append(grouped, AuthorStories{User: st.User.Public(), Stories: []StoryItem{}})
		}
		grouped[i].Stories = append(grouped[i].Stories, toStoryItem(st, likesByStory[st.ID]))
	}
	return grouped, nil
}

func (s *StoryService) storyLikes(ctx context.Context, stories []models.Story) (map[uint][]LikeInfo, error) {
	byStory := make(map[uint][]LikeInfo)
	if len(stories) == 0 {
		return byStory, nil
	}
	ids := make([]uint, 0, len(stories))
	for _, st := range stories {
		ids = append(ids, st.ID)
	}
	var likes []models.StoryLike
	if err := s.db.WithContext(ctx).Preload("User").Where("story_id IN ?", ids).Find(&likes).Error; err != nil {
		return nil, err
	}
	for _, l := range likes {
		byStory[l.StoryID] = append(byStory[l.StoryID], LikeInfo{ID: l.ID, UserID: l.UserID, User: l.User.Public()})
	}
	return byStory, nil
}

func toStoryItem(st models.Story, likes []LikeInfo) StoryItem {
	return StoryItem{
		ID:        st.ID,
		File:      st.File,
		LikeCount: st.LikeCount,
		IsSaved:   st.IsSaved,
		UserID:    st.UserID,
		Username:  st.User.Username,
		Name:      st.User.Name,
		CreatedAt: st.CreatedAt.Format(timeLayout),
		UpdatedAt: st.UpdatedAt.Format(timeLayout),
		User:      st.User.Public(),
		Likes:     emptyLikes(likes),
	}
}

// Create uploads the image and stores a new story for the viewer.
func (s *StoryService) Create(ctx context.Context, viewerID uint, file string) (*models.Story, error) {
	url, err := s.uploader.Upload(ctx, file, utils.PostTransform)
	if err != nil {
		return nil, Upstream("image upload failed", err)
	}

	story := models.Story{UserID: viewerID, File: url}
	if err := s.db.WithContext(ctx).Create(&story).Error; err != nil {
		return nil, err
	}

	var created models.Story
	if err := s.db.WithContext(ctx).Preload("User").First(&created, story.ID).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

// Delete removes the viewer's story and its likes.
func (s *StoryService) Delete(ctx context.Context, viewerID, storyID uint) (*models.Story, error) {
	var story models.Story
	if err := s.db.WithContext(ctx).Preload("User").First(&story, storyID).Error; err != nil {
		return nil, orNotFound(err, "story not found")
	}
	if story.UserID != viewerID {
		return nil, Forbidden("you can only delete your own story")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("story_id = ?", storyID).Delete(&models.StoryLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Story{}, storyID).Error
	})
	if err != nil {
		return nil, err
	}
	return &story, nil
}

// Like records a story like and bumps its counter in the same transaction.
func (s *StoryService) Like(ctx context.Context, viewerID, storyID uint) (*models.StoryLike, error) {
	var story models.Story
	if err := s.db.WithContext(ctx).First(&story, storyID).Error; err != nil {
		return nil, orNotFound(err, "story not found")
	}

	var like models.StoryLike
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.StoryLike
		err := tx.Where("story_id = ? AND user_id = ?", storyID, viewerID).First(&existing).Error
		if err == nil {
			return Conflict("story already liked")
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		like = models.StoryLike{StoryID: storyID, UserID: viewerID}
		if err := tx.Create(&like).Error; err != nil {
			return err
		}
		return tx.Model(&models.Story{}).Where("id = ?", storyID).
			UpdateColumn("like_count", gorm.Expr("like_count + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Preload("User").First(&like, like.ID).Error; err != nil {
		return nil, err
	}
	return &like, nil
}

// Unlike removes a story like and lowers its counter in the same transaction.
func (s *StoryService) Unlike(ctx context.Context, viewerID, storyID uint) (*models.StoryLike, error) {
	var story models.Story
	if err := s.db.WithContext(ctx).First(&story, storyID).Error; err != nil {
		return nil, orNotFound(err, "story not found")
	}

	var like models.StoryLike
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("User").Where("story_id = ? AND user_id = ?", storyID, viewerID).First(&like).Error; err != nil {
			return orNotFound(err, "story not liked")
		}
		if err := tx.Delete(&models.StoryLike{}, like.ID).Error; err != nil {
			return err
		}
		return tx.Model(&models.Story{}).Where("id = ?", storyID).
			UpdateColumn("like_count", gorm.Expr("like_count - ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}
	return &like, nil
}

// Save marks the story as saved. The flag lives on the story row, so only the
// owner can save.
func (s *StoryService) Save(ctx context.Context, viewerID, storyID uint) (*models.Story, error) {
	return s.setSaved(ctx, viewerID, storyID, true)
}

// Unsave clears the owner-scoped saved flag.
func (s *StoryService) Unsave(ctx context.Context, viewerID, storyID uint) (*models.Story, error) {
	return s.setSaved(ctx, viewerID, storyID, false)
}

func (s *StoryService) setSaved(ctx context.Context, viewerID, storyID uint, saved bool) (*models.Story, error) {
	var story models.Story
	if err := s.db.WithContext(ctx).Preload("User").First(&story, storyID).Error; err != nil {
		return nil, orNotFound(err, "story not found")
	}
	if story.UserID != viewerID {
		return nil, Forbidden("only the story owner can change the saved flag")
	}
	if story.IsSaved == saved {
		if saved {
			return nil, Conflict("story already saved")
		}
		return nil, Conflict("story not saved")
	}
	if err := s.db.WithContext(ctx).Model(&models.Story{}).Where("id = ?", storyID).
		UpdateColumn("is_saved", saved).Error; err != nil {
		return nil, err
	}
	story.IsSaved = saved
	return &story, nil
}

// ByAuthor lists a single user's stories newest first.
func (s *StoryService) ByAuthor(ctx context.Context, userID uint) ([]StoryItem, error) {
	var stories []models.Story
	if err := s.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&stories).Error; err != nil {
		return nil, err
	}
	likes, err := s.storyLikes(ctx, stories)
	if err != nil {
		return nil, err
	}
	items := make([]StoryItem, 0, len(stories))
	for _, st := range stories {
		items = append(items, toStoryItem(st, likes[st.ID]))
	}
	return items, nil
}

// ByFollowings lists stories authored by anyone the given user follows.
func (s *StoryService) ByFollowings(ctx context.Context, userID uint) ([]StoryItem, error) {
	ids, err := followingIDs(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []StoryItem{}, nil
	}
	var stories []models.Story
	if err := s.db.WithContext(ctx).
		Preload("User").
		Where("user_id IN ?", ids).
		Order("created_at DESC, id DESC").
		Find(&stories).Error; err != nil {
		return nil, err
	}
	likes, err := s.storyLikes(ctx, stories)
	if err != nil {
		return nil, err
	}
	items := make([]StoryItem, 0, len(stories))
	for _, st := range stories {
		items = append(items, toStoryItem(st, likes[st.ID]))
	}
	return items, nil
}
