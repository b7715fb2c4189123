package main

import (
	"time"

	"github.com/berkai/picshare/config"
	"github.com/berkai/picshare/graph"
	"github.com/berkai/picshare/models"
	"github.com/berkai/picshare/routes"
	"github.com/berkai/picshare/services"
	"github.com/berkai/picshare/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Post{},
		&models.Reply{},
		&models.PostLike{},
		&models.ReplyLike{},
		&models.PostSave{},
		&models.PostTag{},
		&models.Follow{},
		&models.Story{},
		&models.StoryLike{},
	)

	uploader := utils.NewCloudinary(
		cfg.CloudinaryCloudName,
		cfg.CloudinaryAPIKey,
		cfg.CloudinaryAPISecret,
		cfg.CloudinaryFolder,
	)

	resolver := &graph.Resolver{
		Auth:     services.NewAuthService(db, utils.SMTPMailer{}, cfg.ResetBaseURL),
		Feed:     services.NewFeedService(db),
		Posts:    services.NewPostService(db, uploader, utils.Sanitize),
		Replies:  services.NewReplyService(db, utils.Sanitize),
		Stories:  services.NewStoryService(db, uploader),
		Social:   services.NewSocialService(db),
		Profiles: services.NewProfileService(db, uploader),
		TokenTTL: time.Duration(cfg.TokenTTLHours) * time.Hour,
	}

	schema, err := graph.NewSchema(resolver)
	if err != nil {
		utils.Sugar.Fatalf("schema build failed: %v", err)
	}

	r := routes.SetupRouter(schema)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
