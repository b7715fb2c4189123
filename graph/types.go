package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/berkai/picshare/services"
)

// typeRegistry holds the GraphQL object types. Built per schema because the
// viewer-scoped fields close over the resolver's services.
type typeRegistry struct {
	publicUser  *graphql.Object
	user        *graphql.Object
	authPayload *graphql.Object
	message     *graphql.Object

	likeInfo    *graphql.Object
	saveInfo    *graphql.Object
	tagInfo     *graphql.Object
	feedReply   *graphql.Object
	feedComment *graphql.Object
	feedPost    *graphql.Object

	post      *graphql.Object
	reply     *graphql.Object
	replyLike *graphql.Object

	story         *graphql.Object
	storyItem     *graphql.Object
	storyLike     *graphql.Object
	authorStories *graphql.Object

	follow  *graphql.Object
	profile *graphql.Object
}

// feedPostID handles both the slice element and pointer shapes the services
// return.
func feedPostID(source interface{}) uint {
	switch v := source.(type) {
	case services.FeedPost:
		return v.ID
	case *services.FeedPost:
		return v.ID
	}
	return 0
}

func newTypes(r *Resolver) *typeRegistry {
	t := &typeRegistry{}

	t.publicUser = graphql.NewObject(graphql.ObjectConfig{
		Name: "PublicUser",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.Int},
			"name":          &graphql.Field{Type: graphql.String},
			"username":      &graphql.Field{Type: graphql.String},
			"profile_photo": &graphql.Field{Type: graphql.String},
		},
	})

	t.user = graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":               &graphql.Field{Type: graphql.Int},
			"name":             &graphql.Field{Type: graphql.String},
			"username":         &graphql.Field{Type: graphql.String},
			"email":            &graphql.Field{Type: graphql.String},
			"description":      &graphql.Field{Type: graphql.String},
			"profile_photo":    &graphql.Field{Type: graphql.String},
			"post_count":       &graphql.Field{Type: graphql.Int},
			"followers_count":  &graphql.Field{Type: graphql.Int},
			"followings_count": &graphql.Field{Type: graphql.Int},
			"created_at":       &graphql.Field{Type: graphql.DateTime},
			"updated_at":       &graphql.Field{Type: graphql.DateTime},
		},
	})

	t.authPayload = graphql.NewObject(graphql.ObjectConfig{
		Name: "AuthPayload",
		Fields: graphql.Fields{
			"token": &graphql.Field{Type: graphql.String},
			"user":  &graphql.Field{Type: t.user},
		},
	})

	t.message = graphql.NewObject(graphql.ObjectConfig{
		Name: "Message",
		Fields: graphql.Fields{
			"message": &graphql.Field{Type: graphql.String},
		},
	})

	t.likeInfo = graphql.NewObject(graphql.ObjectConfig{
		Name: "Like",
		Fields: graphql.Fields{
			"id":      &graphql.Field{Type: graphql.Int},
			"user_id": &graphql.Field{Type: graphql.Int},
			"user":    &graphql.Field{Type: t.publicUser},
		},
	})

	t.saveInfo = graphql.NewObject(graphql.ObjectConfig{
		Name: "Save",
		Fields: graphql.Fields{
			"id":      &graphql.Field{Type: graphql.Int},
			"post_id": &graphql.Field{Type: graphql.Int},
			"user":    &graphql.Field{Type: t.publicUser},
		},
	})

	t.tagInfo = graphql.NewObject(graphql.ObjectConfig{
		Name: "Tag",
		Fields: graphql.Fields{
			"id":      &graphql.Field{Type: graphql.Int},
			"post_id": &graphql.Field{Type: graphql.Int},
			"user_id": &graphql.Field{Type: graphql.Int},
			"user":    &graphql.Field{Type: t.publicUser},
		},
	})

	t.feedReply = graphql.NewObject(graphql.ObjectConfig{
		Name: "FeedReply",
		Fields: graphql.Fields{
			"id":                &graphql.Field{Type: graphql.Int},
			"user_id":           &graphql.Field{Type: graphql.Int},
			"post_id":           &graphql.Field{Type: graphql.Int},
			"content":           &graphql.Field{Type: graphql.String},
			"like_count":        &graphql.Field{Type: graphql.Int},
			"comments_count":    &graphql.Field{Type: graphql.Int},
			"original_reply_id": &graphql.Field{Type: graphql.Int},
			"created_at":        &graphql.Field{Type: graphql.String},
			"updated_at":        &graphql.Field{Type: graphql.String},
			"user":              &graphql.Field{Type: t.publicUser},
		},
	})

	t.feedComment = graphql.NewObject(graphql.ObjectConfig{
		Name: "FeedComment",
		Fields: graphql.Fields{
			"id":                &graphql.Field{Type: graphql.Int},
			"user_id":           &graphql.Field{Type: graphql.Int},
			"post_id":           &graphql.Field{Type: graphql.Int},
			"content":           &graphql.Field{Type: graphql.String},
			"like_count":        &graphql.Field{Type: graphql.Int},
			"comments_count":    &graphql.Field{Type: graphql.Int},
			"original_reply_id": &graphql.Field{Type: graphql.Int},
			"created_at":        &graphql.Field{Type: graphql.String},
			"updated_at":        &graphql.Field{Type: graphql.String},
			"user":              &graphql.Field{Type: t.publicUser},
			"replies":           &graphql.Field{Type: graphql.NewList(t.feedReply)},
			"replies_likes":     &graphql.Field{Type: graphql.NewList(t.likeInfo)},
		},
	})

	t.feedPost = graphql.NewObject(graphql.ObjectConfig{
		Name: "FeedPost",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.Int},
			"user_id":        &graphql.Field{Type: graphql.Int},
			"username":       &graphql.Field{Type: graphql.String},
			"name":           &graphql.Field{Type: graphql.String},
			"file":           &graphql.Field{Type: graphql.String},
			"content":        &graphql.Field{Type: graphql.String},
			"like_count":     &graphql.Field{Type: graphql.Int},
			"comments_count": &graphql.Field{Type: graphql.Int},
			"created_at":     &graphql.Field{Type: graphql.String},
			"updated_at":     &graphql.Field{Type: graphql.String},
			"user":           &graphql.Field{Type: t.publicUser},
			"likes":          &graphql.Field{Type: graphql.NewList(t.likeInfo)},
			"saves":          &graphql.Field{Type: graphql.NewList(t.saveInfo)},
			"post_tagged":    &graphql.Field{Type: graphql.NewList(t.tagInfo)},
			"post_replies":   &graphql.Field{Type: graphql.NewList(t.feedComment)},
			"is_liked": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					viewer := ViewerFrom(p.Context)
					if viewer == 0 {
						return false, nil
					}
					liked, err := r.Posts.IsLiked(p.Context, viewer, feedPostID(p.Source))
					return liked, wrapErr(err)
				},
			},
			"is_saved": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					viewer := ViewerFrom(p.Context)
					if viewer == 0 {
						return false, nil
					}
					saved, err := r.Posts.IsSaved(p.Context, viewer, feedPostID(p.Source))
					return saved, wrapErr(err)
				},
			},
		},
	})

	t.post = graphql.NewObject(graphql.ObjectConfig{
		Name: "Post",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.Int},
			"user_id":        &graphql.Field{Type: graphql.Int},
			"file":           &graphql.Field{Type: graphql.String},
			"content":        &graphql.Field{Type: graphql.String},
			"like_count":     &graphql.Field{Type: graphql.Int},
			"comments_count": &graphql.Field{Type: graphql.Int},
			"created_at":     &graphql.Field{Type: graphql.DateTime},
			"updated_at":     &graphql.Field{Type: graphql.DateTime},
			"user":           &graphql.Field{Type: t.publicUser},
		},
	})

	t.reply = graphql.NewObject(graphql.ObjectConfig{
		Name: "Reply",
		Fields: graphql.Fields{
			"id":                &graphql.Field{Type: graphql.Int},
			"post_id":           &graphql.Field{Type: graphql.Int},
			"user_id":           &graphql.Field{Type: graphql.Int},
			"content":           &graphql.Field{Type: graphql.String},
			"original_reply_id": &graphql.Field{Type: graphql.Int},
			"like_count":        &graphql.Field{Type: graphql.Int},
			"comments_count":    &graphql.Field{Type: graphql.Int},
			"created_at":        &graphql.Field{Type: graphql.DateTime},
			"updated_at":        &graphql.Field{Type: graphql.DateTime},
			"user":              &graphql.Field{Type: t.publicUser},
		},
	})

	t.replyLike = graphql.NewObject(graphql.ObjectConfig{
		Name: "ReplyLike",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.Int},
			"reply_id":   &graphql.Field{Type: graphql.Int},
			"user_id":    &graphql.Field{Type: graphql.Int},
			"created_at": &graphql.Field{Type: graphql.DateTime},
		},
	})

	t.story = graphql.NewObject(graphql.ObjectConfig{
		Name: "Story",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.Int},
			"user_id":    &graphql.Field{Type: graphql.Int},
			"file":       &graphql.Field{Type: graphql.String},
			"like_count": &graphql.Field{Type: graphql.Int},
			"is_saved":   &graphql.Field{Type: graphql.Boolean},
			"created_at": &graphql.Field{Type: graphql.DateTime},
			"updated_at": &graphql.Field{Type: graphql.DateTime},
			"user":       &graphql.Field{Type: t.publicUser},
		},
	})

	t.storyItem = graphql.NewObject(graphql.ObjectConfig{
		Name: "StoryItem",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.Int},
			"file":       &graphql.Field{Type: graphql.String},
			"like_count": &graphql.Field{Type: graphql.Int},
			"is_saved":   &graphql.Field{Type: graphql.Boolean},
			"user_id":    &graphql.Field{Type: graphql.Int},
			"username":   &graphql.Field{Type: graphql.String},
			"name":       &graphql.Field{Type: graphql.String},
			"created_at": &graphql.Field{Type: graphql.String},
			"updated_at": &graphql.Field{Type: graphql.String},
			"user":       &graphql.Field{Type: t.publicUser},
			"likes":      &graphql.Field{Type: graphql.NewList(t.likeInfo)},
		},
	})

	t.storyLike = graphql.NewObject(graphql.ObjectConfig{
		Name: "StoryLike",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.Int},
			"story_id":   &graphql.Field{Type: graphql.Int},
			"user_id":    &graphql.Field{Type: graphql.Int},
			"created_at": &graphql.Field{Type: graphql.DateTime},
		},
	})

	t.authorStories = graphql.NewObject(graphql.ObjectConfig{
		Name: "AuthorStories",
		Fields: graphql.Fields{
			"user":    &graphql.Field{Type: t.publicUser},
			"stories": &graphql.Field{Type: graphql.NewList(t.storyItem)},
		},
	})

	t.follow = graphql.NewObject(graphql.ObjectConfig{
		Name: "Follow",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.Int},
			"follower_id":  &graphql.Field{Type: graphql.Int},
			"following_id": &graphql.Field{Type: graphql.Int},
			"created_at":   &graphql.Field{Type: graphql.DateTime},
		},
	})

	t.profile = graphql.NewObject(graphql.ObjectConfig{
		Name: "Profile",
		Fields: graphql.Fields{
			"id":               &graphql.Field{Type: graphql.Int},
			"name":             &graphql.Field{Type: graphql.String},
			"username":         &graphql.Field{Type: graphql.String},
			"email":            &graphql.Field{Type: graphql.String},
			"description":      &graphql.Field{Type: graphql.String},
			"profile_photo":    &graphql.Field{Type: graphql.String},
			"post_count":       &graphql.Field{Type: graphql.Int},
			"followers_count":  &graphql.Field{Type: graphql.Int},
			"followings_count": &graphql.Field{Type: graphql.Int},
			"created_at":       &graphql.Field{Type: graphql.String},
			"updated_at":       &graphql.Field{Type: graphql.String},
			"posts":            &graphql.Field{Type: graphql.NewList(t.feedPost)},
			"followers":        &graphql.Field{Type: graphql.NewList(t.publicUser)},
			"followings":       &graphql.Field{Type: graphql.NewList(t.publicUser)},
			"mutual_note": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					viewer := ViewerFrom(p.Context)
					if viewer == 0 {
						return "", nil
					}
					var profileID uint
					switch v := p.Source.(type) {
					case services.Profile:
						profileID = v.ID
					case *services.Profile:
						profileID = v.ID
					}
					note, err := r.Social.MutualNote(p.Context, profileID, viewer)
					return note, wrapErr(err)
				},
			},
		},
	})

	return t
}
