package graph

import (
	"time"

	"github.com/graphql-go/graphql"

	"github.com/berkai/picshare/models"
	"github.com/berkai/picshare/services"
	"github.com/berkai/picshare/utils"
)

// Resolver bundles the service handles the schema resolves against.
type Resolver struct {
	Auth     *services.AuthService
	Feed     *services.FeedService
	Posts    *services.PostService
	Replies  *services.ReplyService
	Stories  *services.StoryService
	Social   *services.SocialService
	Profiles *services.ProfileService
	TokenTTL time.Duration
}

func uintArg(p graphql.ResolveParams, name string) uint {
	if v, ok := p.Args[name].(int); ok && v > 0 {
		return uint(v)
	}
	return 0
}

func stringArg(p graphql.ResolveParams, name string) string {
	if v, ok := p.Args[name].(string); ok {
		return v
	}
	return ""
}

// viewer returns the authenticated user id or an authorization error.
func viewer(p graphql.ResolveParams) (uint, error) {
	id := ViewerFrom(p.Context)
	if id == 0 {
		return 0, errAuthRequired
	}
	return id, nil
}

func nonNullInt() *graphql.ArgumentConfig {
	return &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)}
}

func nonNullString() *graphql.ArgumentConfig {
	return &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)}
}

func optionalString() *graphql.ArgumentConfig {
	return &graphql.ArgumentConfig{Type: graphql.String}
}

// stringPtrArg distinguishes an omitted argument (nil) from a supplied one.
func stringPtrArg(p graphql.ResolveParams, name string) *string {
	if v, ok := p.Args[name].(string); ok {
		return &v
	}
	return nil
}

// authResult pairs a fresh JWT with the account it belongs to.
type authResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// NewSchema builds the executable schema over the resolver's services.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	t := newTypes(r)

	issueToken := func(u *models.User) (*authResult, error) {
		token, err := utils.GenerateToken(u.ID, u.Username, r.TokenTTL)
		if err != nil {
			return nil, wrapErr(err)
		}
		return &authResult{Token: token, User: u}, nil
	}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"authentication": &graphql.Field{
				Type: t.user,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					u, err := r.Auth.ByID(p.Context, id)
					return u, wrapErr(err)
				},
			},
			"posts": &graphql.Field{
				Type: graphql.NewList(t.feedPost),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					feed, err := r.Feed.Feed(p.Context, id)
					return feed, wrapErr(err)
				},
			},
			"getSinglePost": &graphql.Field{
				Type: t.feedPost,
				Args: graphql.FieldConfigArgument{"postId": nonNullInt()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					post, err := r.Posts.Single(p.Context, uintArg(p, "postId"))
					return post, wrapErr(err)
				},
			},
			"getUserProfile": &graphql.Field{
				Type: t.profile,
				Args: graphql.FieldConfigArgument{"username": nonNullString()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					profile, err := r.Profiles.ByUsername(p.Context, stringArg(p, "username"))
					return profile, wrapErr(err)
				},
			},
			"replies": &graphql.Field{
				Type: graphql.NewList(t.reply),
				Args: graphql.FieldConfigArgument{"postId": nonNullInt()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					replies, err := r.Replies.ByPost(p.Context, uintArg(p, "postId"))
					return replies, wrapErr(err)
				},
			},
			"getStoryList": &graphql.Field{
				Type: graphql.NewList(t.authorStories),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					stories, err := r.Stories.StoryFeed(p.Context, id)
					return stories, wrapErr(err)
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"register": &graphql.Field{
				Type: t.authPayload,
				Args: graphql.FieldConfigArgument{
					"name":     nonNullString(),
					"username": nonNullString(),
					"email":    nonNullString(),
					"password": nonNullString(),
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					u, err := r.Auth.Register(p.Context,
						stringArg(p, "name"), stringArg(p, "username"),
						stringArg(p, "email"), stringArg(p, "password"))
					if err != nil {
						return nil, wrapErr(err)
					}
					return issueToken(u)
				},
			},
			"login": &graphql.Field{
				Type: t.authPayload,
				Args: graphql.FieldConfigArgument{
					"identifier": nonNullString(),
					"password":   nonNullString(),
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					u, err := r.Auth.Login(p.Context, stringArg(p, "identifier"), stringArg(p, "password"))
					if err != nil {
						return nil, wrapErr(err)
					}
					return issueToken(u)
				},
			},
			"logout": &graphql.Field{
				Type: t.message,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if _, err := viewer(p); err != nil {
						return nil, err
					}
					token := TokenFrom(p.Context)
					if token != "" {
						if claims, err := utils.ParseToken(token); err == nil && claims.ExpiresAt != nil {
							utils.BlacklistToken(token, claims.ExpiresAt.Time)
						}
					}
					return map[string]interface{}{"message": "Logged out"}, nil
				},
			},
			"sendResetEmail": &graphql.Field{
				Type: t.message,
				Args: graphql.FieldConfigArgument{"email": nonNullString()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					msg, err := r.Auth.SendResetEmail(p.Context, stringArg(p, "email"))
					if err != nil {
						return nil, wrapErr(err)
					}
					return map[string]interface{}{"message": msg}, nil
				},
			},
			"resetPassword": &graphql.Field{
				Type: t.message,
				Args: graphql.FieldConfigArgument{
					"token":       nonNullString(),
					"newPassword": nonNullString(),
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					msg, err := r.Auth.ResetPassword(p.Context, stringArg(p, "token"), stringArg(p, "newPassword"))
					if err != nil {
						return nil, wrapErr(err)
					}
					return map[string]interface{}{"message": msg}, nil
				},
			},

			"createPost": &graphql.Field{
				Type: t.post,
				Args: graphql.FieldConfigArgument{
					"file":    nonNullString(),
					"content": optionalString(),
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					post, err := r.Posts.Create(p.Context, id, stringArg(p, "file"), stringArg(p, "content"))
					return post, wrapErr(err)
				},
			},
			"updatePost": &graphql.Field{
				Type: t.post,
				Args: graphql.FieldConfigArgument{
					"postId":  nonNullInt(),
					"content": nonNullString(),
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					post, err := r.Posts.Update(p.Context, id, uintArg(p, "postId"), stringArg(p, "content"))
					return post, wrapErr(err)
				},
			},
			"deletePost": &graphql.Field{
				Type: t.post,
				Args: graphql.FieldConfigArgument{"postId": nonNullInt()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					post, err := r.Posts.Delete(p.Context, id, uintArg(p, "postId"))
					return post, wrapErr(err)
				},
			},
			"likePost": &graphql.Field{
				Type: t.feedPost,
				Args: graphql.FieldConfigArgument{"postId": nonNullInt()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					post, err := r.Posts.Like(p.Context, id, uintArg(p, "postId"))
					return post, wrapErr(err)
				},
			},
			"unlikePost": &graphql.Field{
				Type: t.feedPost,
				Args: graphql.FieldConfigArgument{"postId": nonNullInt()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					post, err := r.Posts.Unlike(p.Context, id, uintArg(p, "postId"))
					return post, wrapErr(err)
				},
			},
			"savePost": &graphql.Field{
				Type: t.feedPost,
				Args: graphql.FieldConfigArgument{"postId": nonNullInt()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					post, err := r.Posts.Save(p.Context, id, uintArg(p, "postId"))
					return post, wrapErr(err)
				},
			},
			"unsavePost": &graphql.Field{
				Type: t.feedPost,
				Args: graphql.FieldConfigArgument{"postId": nonNullInt()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					post, err := r.Posts.Unsave(p.Context, id, uintArg(p, "postId"))
					return post, wrapErr(err)
				},
			},
			"tagUser": &graphql.Field{
				Type: t.post,
				Args: graphql.FieldConfigArgument{
					"postId": nonNullInt(),
					"userId": nonNullInt(),
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if _, err := viewer(p); err != nil {
						return nil, err
					}
					post, err := r.Posts.Tag(p.Context, uintArg(p, "userId"), uintArg(p, "postId"))
					return post, wrapErr(err)
				},
			},
			"untagUser": &graphql.Field{
				Type: t.post,
				Args: graphql.FieldConfigArgument{
					"postId": nonNullInt(),
					"userId": nonNullInt(),
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if _, err := viewer(p); err != nil {
						return nil, err
					}
					post, err := r.Posts.Untag(p.Context, uintArg(p, "userId"), uintArg(p, "postId"))
					return post, wrapErr(err)
				},
			},

			"createComment": &graphql.Field{
				Type: t.reply,
				Args: graphql.FieldConfigArgument{
					"postId":  nonNullInt(),
					"content": nonNullString(),
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					reply, err := r.Replies.CreateComment(p.Context, id, uintArg(p, "postId"), stringArg(p, "content"))
					return reply, wrapErr(err)
				},
			},
			"updateComment": &graphql.Field{
				Type: t.reply,
				Args: graphql.FieldConfigArgument{
					"commentId": nonNullInt(),
					"content":   nonNullString(),
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					reply, err := r.Replies.Update(p.Context, id, uintArg(p, "commentId"), stringArg(p, "content"))
					return reply, wrapErr(err)
				},
			},
			"deleteComment": &graphql.Field{
				Type: t.reply,
				Args: graphql.FieldConfigArgument{"commentId": nonNullInt()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					reply, err := r.Replies.Delete(p.Context, id, uintArg(p, "commentId"))
					return reply, wrapErr(err)
				},
			},
			"likeComment": &graphql.Field{
				Type: t.replyLike,
				Args: graphql.FieldConfigArgument{"commentId": nonNullInt()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					like, err := r.Replies.Like(p.Context, id, uintArg(p, "commentId"))
					return like, wrapErr(err)
				},
			},
			"unlikeComment": &graphql.Field{
				Type: t.replyLike,
				Args: graphql.FieldConfigArgument{"commentId": nonNullInt()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					like, err := r.Replies.Unlike(p.Context, id, uintArg(p, "commentId"))
					return like, wrapErr(err)
				},
			},

			"createReply": &graphql.Field{
				Type: t.reply,
				Args: graphql.FieldConfigArgument{
					"commentId": nonNullInt(),
					"content":   nonNullString(),
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					reply, err := r.Replies.CreateReply(p.Context, id, uintArg(p, "commentId"), stringArg(p, "content"))
					return reply, wrapErr(err)
				},
			},
			"updateReply": &graphql.Field{
				Type: t.reply,
				Args: graphql.FieldConfigArgument{
					"replyId": nonNullInt(),
					"content": nonNullString(),
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					reply, err := r.Replies.Update(p.Context, id, uintArg(p, "replyId"), stringArg(p, "content"))
					return reply, wrapErr(err)
				},
			},
			"deleteReply": &graphql.Field{
				Type: t.reply,
				Args: graphql.FieldConfigArgument{"replyId": nonNullInt()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					reply, err := r.Replies.Delete(p.Context, id, uintArg(p, "replyId"))
					return reply, wrapErr(err)
				},
			},
			"likeReply": &graphql.Field{
				Type: t.replyLike,
				Args: graphql.FieldConfigArgument{"replyId": nonNullInt()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					like, err := r.Replies.Like(p.Context, id, uintArg(p, "replyId"))
					return like, wrapErr(err)
				},
			},
			"unlikeReply": &graphql.Field{
				Type: t.replyLike,
				Args: graphql.FieldConfigArgument{"replyId": nonNullInt()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					like, err := r.Replies.Unlike(p.Context, id, uintArg(p, "replyId"))
					return like, wrapErr(err)
				},
			},

			"followUser": &graphql.Field{
				Type: t.follow,
				Args: graphql.FieldConfigArgument{"userId": nonNullInt()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					edge, err := r.Social.Follow(p.Context, id, uintArg(p, "userId"))
					return edge, wrapErr(err)
				},
			},
			"unfollowUser": &graphql.Field{
				Type: t.follow,
				Args: graphql.FieldConfigArgument{"userId": nonNullInt()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					edge, err := r.Social.Unfollow(p.Context, id, uintArg(p, "userId"))
					return edge, wrapErr(err)
				},
			},

			"profilePosts": &graphql.Field{
				Type: graphql.NewList(t.feedPost),
				Args: graphql.FieldConfigArgument{"userId": nonNullInt()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					posts, err := r.Profiles.Posts(p.Context, uintArg(p, "userId"))
					return posts, wrapErr(err)
				},
			},
			"profileStories": &graphql.Field{
				Type: graphql.NewList(t.storyItem),
				Args: graphql.FieldConfigArgument{"userId": nonNullInt()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					stories, err := r.Stories.ByAuthor(p.Context, uintArg(p, "userId"))
					return stories, wrapErr(err)
				},
			},
			"profileFollowers": &graphql.Field{
				Type: graphql.NewList(t.publicUser),
				Args: graphql.FieldConfigArgument{"userId": nonNullInt()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					users, err := r.Social.Followers(p.Context, uintArg(p, "userId"))
					return users, wrapErr(err)
				},
			},
			"profileFollowings": &graphql.Field{
				Type: graphql.NewList(t.publicUser),
				Args: graphql.FieldConfigArgument{"userId": nonNullInt()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					users, err := r.Social.Followings(p.Context, uintArg(p, "userId"))
					return users, wrapErr(err)
				},
			},
			"suggestFollow": &graphql.Field{
				Type: graphql.NewList(t.publicUser),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					users, err := r.Social.Suggestions(p.Context, id)
					return users, wrapErr(err)
				},
			},
			"profileSuggest": &graphql.Field{
				Type: graphql.String,
				Args: graphql.FieldConfigArgument{"userId": nonNullInt()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					note, err := r.Social.MutualNote(p.Context, uintArg(p, "userId"), id)
					return note, wrapErr(err)
				},
			},

			"savedPosts": &graphql.Field{
				Type: graphql.NewList(t.feedPost),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					posts, err := r.Profiles.Saved(p.Context, id)
					return posts, wrapErr(err)
				},
			},
			"taggedPosts": &graphql.Field{
				Type: graphql.NewList(t.feedPost),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					posts, err := r.Profiles.Tagged(p.Context, id)
					return posts, wrapErr(err)
				},
			},
			"likedPosts": &graphql.Field{
				Type: graphql.NewList(t.feedPost),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					posts, err := r.Profiles.Liked(p.Context, id)
					return posts, wrapErr(err)
				},
			},

			"editProfile": &graphql.Field{
				Type: t.user,
				Args: graphql.FieldConfigArgument{
					"name":         optionalString(),
					"description":  optionalString(),
					"profilePhoto": optionalString(),
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					u, err := r.Profiles.Edit(p.Context, id, id,
						stringPtrArg(p, "name"), stringPtrArg(p, "description"), stringArg(p, "profilePhoto"))
					return u, wrapErr(err)
				},
			},

			"createStory": &graphql.Field{
				Type: t.story,
				Args: graphql.FieldConfigArgument{"file": nonNullString()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					story, err := r.Stories.Create(p.Context, id, stringArg(p, "file"))
					return story, wrapErr(err)
				},
			},
			"deleteStory": &graphql.Field{
				Type: t.story,
				Args: graphql.FieldConfigArgument{"storyId": nonNullInt()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					story, err := r.Stories.Delete(p.Context, id, uintArg(p, "storyId"))
					return story, wrapErr(err)
				},
			},
			"likeStory": &graphql.Field{
				Type: t.storyLike,
				Args: graphql.FieldConfigArgument{"storyId": nonNullInt()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					like, err := r.Stories.Like(p.Context, id, uintArg(p, "storyId"))
					return like, wrapErr(err)
				},
			},
			"unlikeStory": &graphql.Field{
				Type: t.storyLike,
				Args: graphql.FieldConfigArgument{"storyId": nonNullInt()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					like, err := r.Stories.Unlike(p.Context, id, uintArg(p, "storyId"))
					return like, wrapErr(err)
				},
			},
			"saveStory": &graphql.Field{
				Type: t.story,
				Args: graphql.FieldConfigArgument{"storyId": nonNullInt()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					story, err := r.Stories.Save(p.Context, id, uintArg(p, "storyId"))
					return story, wrapErr(err)
				},
			},
			"unsaveStory": &graphql.Field{
				Type: t.story,
				Args: graphql.FieldConfigArgument{"storyId": nonNullInt()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := viewer(p)
					if err != nil {
						return nil, err
					}
					story, err := r.Stories.Unsave(p.Context, id, uintArg(p, "storyId"))
					return story, wrapErr(err)
				},
			},
			"followingsStory": &graphql.Field{
				Type: graphql.NewList(t.storyItem),
				Args: graphql.FieldConfigArgument{"userId": nonNullInt()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					stories, err := r.Stories.ByFollowings(p.Context, uintArg(p, "userId"))
					return stories, wrapErr(err)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}
