package handler

import (
	"gorm.io/gorm"

	"github.com/openshare/internal/config"
	"github.com/openshare/internal/service"
	"github.com/openshare/internal/upload"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db           *gorm.DB
	auth         *service.AuthService
	identity     *service.IdentityService
	feed         *service.FeedService
	interactions *service.InteractionService
	content      *service.ContentService
	profiles     *service.ProfileService
	reports      *service.ReportService
	contacts     *service.ContactService
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, cfg config.AppConfig) *API {
	uploader := upload.NewRetry(upload.NewLocalStore(cfg.UploadDir, cfg.UploadURLPath))
	identity := service.NewIdentityService(gdb)

	return &API{
		db:           gdb,
		auth:         service.NewAuthService(gdb, cfg.JWTSecret),
		identity:     identity,
		feed:         service.NewFeedService(gdb, identity),
		interactions: service.NewInteractionService(gdb, identity),
		content:      service.NewContentService(gdb, uploader),
		profiles:     service.NewProfileService(gdb, uploader, cfg.DefaultAvatarURL),
		reports:      service.NewReportService(gdb),
		contacts:     service.NewContactService(gdb),
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}
