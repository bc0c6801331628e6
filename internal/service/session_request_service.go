package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tutorlink/backend/config"
	"tutorlink/backend/internal/dto"
	"tutorlink/backend/internal/model"
	"tutorlink/backend/internal/repository"
	pkgerrors "tutorlink/backend/pkg/errors"
	pkgredis "tutorlink/backend/pkg/redis"
)

// ── 调课申请模块业务错误 ──

var (
	ErrRequestNotFound           = errors.New("调课申请不存在")
	ErrRequestNotPending         = errors.New("申请已处理，不可重复操作")
	ErrRequestNotTerminal        = errors.New("仅已审结的申请可删除")
	ErrNotRequestOwner           = errors.New("无权操作他人的申请")
	ErrNotRequestApprover        = errors.New("无权审批该申请")
	ErrNotSessionParticipant     = errors.New("仅课节学员可发起申请")
	ErrSessionNotActionable      = errors.New("课节当前状态不可申请取消或改期")
	ErrSessionAlreadyStarted     = errors.New("课节已开始，不可申请变更")
	ErrDuplicatePendingRequest   = errors.New("该课节已有待审批申请")
	ErrRescheduleTargetMissing   = errors.New("改期申请须提供新时间或换课目标")
	ErrRescheduleTargetAmbiguous = errors.New("新时间与换课目标只能二选一")
	ErrRescheduleTimeIncomplete  = errors.New("新时间须同时提供开始与结束")
	ErrTargetNotFound            = errors.New("换课目标不存在")
	ErrTargetSessionFull         = errors.New("目标课节已满员")
	ErrTargetClassFull           = errors.New("目标班课已满员")
	ErrTargetSameAsSource        = errors.New("换课目标不能是原课节")
	ErrTargetTutorMismatch       = errors.New("换课目标须属于同一导师")
	ErrTargetSubjectMismatch     = errors.New("换课目标须为同一科目")
	ErrAlreadyInTarget           = errors.New("已是换课目标的学员")
	ErrConcurrentConflict        = errors.New("并发操作冲突，请稍后重试")
)

// 虚拟课节引用前缀："class:<classID>" 表示该班课的下一次课
const virtualClassRefPrefix = "class:"

// resolvedTarget 申请标的解析结果。
// virtual 表示由 "class:<classID>" 引用按班课周期物化而来，
// 此时 class 为来源班课；real 引用则 class 为空。
type resolvedTarget struct {
	session *model.Session
	class   *model.Class
	virtual bool
}

// SessionRequestService 调课申请业务接口
//
// 申请生命周期：pending → approved | rejected | withdrawn。
// 状态翻转走版本号 CAS，保证同一申请的审批至多生效一次；
// 审批生效产生的课节/班课写入在乐观锁冲突时有界重试。
type SessionRequestService interface {
	// 学生发起取消/改期申请
	Create(ctx context.Context, studentID string, req *dto.CreateSessionRequestRequest) (*model.SessionRequest, error)
	// 查询单条申请（按角色校验可见性）
	Get(ctx context.Context, requestID, callerID, callerRole string) (*model.SessionRequest, error)
	// 申请列表（按角色收敛范围）
	List(ctx context.Context, req *dto.SessionRequestListRequest, callerID, callerRole string) ([]model.SessionRequest, int64, error)
	// 导师/管理员批准申请并执行生效
	Approve(ctx context.Context, requestID string, req *dto.ApproveSessionRequestRequest, callerID, callerRole string) (*model.SessionRequest, error)
	// 导师/管理员拒绝申请
	Reject(ctx context.Context, requestID string, req *dto.RejectSessionRequestRequest, callerID, callerRole string) (*model.SessionRequest, error)
	// 学生撤回待审批申请
	Withdraw(ctx context.Context, requestID, callerID string) (*model.SessionRequest, error)
	// 删除申请（导师删自己名下已审结的；管理员不限状态）
	Delete(ctx context.Context, requestID, callerID, callerRole string) error
}

type sessionRequestService struct {
	cfg          *config.Config
	repo         *repository.Repository
	rdb          *pkgredis.Client
	availability AvailabilityService
	logger       *zap.Logger
}

// NewSessionRequestService 创建 SessionRequestService 实例。
// rdb 可为 nil，此时防重仅依赖数据库局部唯一索引。
func NewSessionRequestService(
	cfg *config.Config,
	repo *repository.Repository,
	rdb *pkgredis.Client,
	availability AvailabilityService,
	logger *zap.Logger,
) SessionRequestService {
	return &sessionRequestService{
		cfg:          cfg,
		repo:         repo,
		rdb:          rdb,
		availability: availability,
		logger:       logger,
	}
}

// ════════════════════════════════════════════════════════════
// Create — 发起申请
// ════════════════════════════════════════════════════════════

func (s *sessionRequestService) Create(ctx context.Context, studentID string, req *dto.CreateSessionRequestRequest) (*model.SessionRequest, error) {
	target, err := s.resolveSessionRef(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	session := target.session

	if !session.StudentIDs.Contains(studentID) {
		return nil, ErrNotSessionParticipant
	}
	if !session.IsCancelable() {
		return nil, ErrSessionNotActionable
	}
	if !time.Now().Before(session.StartTime) {
		return nil, ErrSessionAlreadyStarted
	}

	request := &model.SessionRequest{
		SessionID: session.SessionID,
		StudentID: studentID,
		TutorID:   session.TutorID,
		ClassID:   session.ClassID,
		Type:      req.Type,
		Status:    model.RequestStatusPending,
		Reason:    req.Reason,
	}
	request.CreatedBy = &studentID

	if req.Type == model.RequestTypeReschedule {
		if err := s.fillRescheduleTarget(ctx, request, session, req); err != nil {
			return nil, err
		}
	}

	// 咨询锁挡住并发重复提交；锁不可用时退化为仅依赖唯一索引
	if s.rdb != nil {
		lockTTL := time.Duration(s.cfg.Scheduling.RequestLockTTLSeconds) * time.Second
		token, acquired, lockErr := s.rdb.AcquireRequestLock(ctx, studentID, session.SessionID, lockTTL)
		if lockErr != nil {
			s.logger.Warn("获取申请锁失败，退化为唯一索引防重", zap.Error(lockErr))
		} else if !acquired {
			return nil, ErrDuplicatePendingRequest
		} else {
			defer func() {
				if releaseErr := s.rdb.ReleaseRequestLock(context.WithoutCancel(ctx), studentID, session.SessionID, token); releaseErr != nil {
					s.logger.Warn("释放申请锁失败", zap.Error(releaseErr))
				}
			}()
		}
	}

	if err := s.repo.SessionRequest.Create(ctx, request); err != nil {
		if errors.Is(err, repository.ErrDuplicatePending) {
			return nil, ErrDuplicatePendingRequest
		}
		s.logger.Error("创建调课申请失败", zap.Error(err))
		return nil, err
	}

	s.notify(ctx, session.TutorID, model.NotificationRequestCreated,
		"新的调课申请",
		fmt.Sprintf("学员对课节《%s》提交了%s申请：%s", session.Subject, requestTypeLabel(req.Type), req.Reason),
		"/sessions/"+session.SessionID, request.RequestID)

	s.logger.Info("调课申请已创建",
		zap.String("request_id", request.RequestID),
		zap.String("session_id", session.SessionID),
		zap.String("type", req.Type))
	return request, nil
}

// resolveSessionRef 解析课节引用。支持两种形式：
//   - 课节 UUID：直接加载
//   - "class:<classID>"：定位该班课的下一次课，未落库时按周期物化一节
func (s *sessionRequestService) resolveSessionRef(ctx context.Context, ref string) (*resolvedTarget, error) {
	if !strings.HasPrefix(ref, virtualClassRefPrefix) {
		session, err := s.repo.Session.GetByID(ctx, ref)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSessionNotFound
			}
			s.logger.Error("查询课节失败", zap.Error(err))
			return nil, err
		}
		return &resolvedTarget{session: session}, nil
	}

	classID := strings.TrimPrefix(ref, virtualClassRefPrefix)
	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询班课失败", zap.Error(err))
		return nil, err
	}

	now := time.Now()
	session, err := s.repo.Session.GetNextByClass(ctx, classID, now)
	if err == nil {
		return &resolvedTarget{session: session, class: class, virtual: true}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询班课下一次课失败", zap.Error(err))
		return nil, err
	}

	// 下一次课未落库：按班课周期物化
	session, err = s.materializeNextOccurrence(ctx, class, now)
	if err != nil {
		return nil, err
	}
	return &resolvedTarget{session: session, class: class, virtual: true}, nil
}

// materializeNextOccurrence 把班课在 after 之后最近的一次课落成课节记录
func (s *sessionRequestService) materializeNextOccurrence(ctx context.Context, class *model.Class, after time.Time) (*model.Session, error) {
	loc := s.cfg.Scheduling.Location()
	start, end, ok := nextClassOccurrence(class, after, loc)
	if !ok {
		return nil, ErrSessionNotFound
	}

	enrollments, err := s.repo.Enrollment.ListActiveByClass(ctx, class.ClassID)
	if err != nil {
		s.logger.Error("查询班课报名失败", zap.Error(err))
		return nil, err
	}
	studentIDs := make(model.StringArray, 0, len(enrollments))
	for i := range enrollments {
		studentIDs = append(studentIDs, enrollments[i].StudentID)
	}

	session := &model.Session{
		TutorID:         class.TutorID,
		ClassID:         &class.ClassID,
		Subject:         class.Subject,
		StudentIDs:      studentIDs,
		StartTime:       start,
		EndTime:         end,
		DurationMinutes: int(end.Sub(start).Minutes()),
		Status:          model.SessionStatusConfirmed,
	}
	if err := s.repo.Session.Create(ctx, session); err != nil {
		s.logger.Error("物化班课课节失败", zap.Error(err))
		return nil, err
	}
	s.logger.Info("班课课节已物化",
		zap.String("class_id", class.ClassID),
		zap.String("session_id", session.SessionID),
		zap.Time("start_time", start))
	return session, nil
}

// fillRescheduleTarget 校验并回填改期申请的目标：
// 直接新时间与换课目标二选一，且二者必居其一。
func (s *sessionRequestService) fillRescheduleTarget(ctx context.Context, request *model.SessionRequest, session *model.Session, req *dto.CreateSessionRequestRequest) error {
	hasTime := req.PreferredStartTime != nil || req.PreferredEndTime != nil
	hasTarget := req.AlternativeTargetType != nil || req.AlternativeTargetID != nil

	if hasTime && hasTarget {
		return ErrRescheduleTargetAmbiguous
	}
	if !hasTime && !hasTarget {
		return ErrRescheduleTargetMissing
	}

	if hasTime {
		if req.PreferredStartTime == nil || req.PreferredEndTime == nil {
			return ErrRescheduleTimeIncomplete
		}
		start, err := time.Parse(time.RFC3339, *req.PreferredStartTime)
		if err != nil {
			return ErrInvalidTimeRange
		}
		end, err := time.Parse(time.RFC3339, *req.PreferredEndTime)
		if err != nil {
			return ErrInvalidTimeRange
		}
		if !end.After(start) || !start.After(time.Now()) {
			return ErrInvalidTimeRange
		}
		// 提议时间在受理前即做排期冲突校验，不给导师推送注定无法批准的申请
		if err := s.availability.ValidateProposedTime(ctx, session.TutorID, start, end, session.SessionID); err != nil {
			return err
		}
		request.PreferredStartTime = &start
		request.PreferredEndTime = &end
		return nil
	}

	if req.AlternativeTargetType == nil || req.AlternativeTargetID == nil {
		return ErrRescheduleTargetMissing
	}
	targetType := *req.AlternativeTargetType
	targetID := *req.AlternativeTargetID

	switch targetType {
	case model.TargetTypeSession:
		if targetID == session.SessionID {
			return ErrTargetSameAsSource
		}
		target, err := s.repo.Session.GetByID(ctx, targetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTargetNotFound
			}
			s.logger.Error("查询目标课节失败", zap.Error(err))
			return err
		}
		if target.TutorID != session.TutorID {
			return ErrTargetTutorMismatch
		}
		if target.Subject != session.Subject {
			return ErrTargetSubjectMismatch
		}
		if target.StudentIDs.Contains(request.StudentID) {
			return ErrAlreadyInTarget
		}
		if len(target.StudentIDs) >= s.sessionCapacity(target) {
			return ErrTargetSessionFull
		}
	case model.TargetTypeClass:
		target, err := s.repo.Class.GetByID(ctx, targetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTargetNotFound
			}
			s.logger.Error("查询目标班课失败", zap.Error(err))
			return err
		}
		if target.TutorID != session.TutorID {
			return ErrTargetTutorMismatch
		}
		if target.Subject != session.Subject {
			return ErrTargetSubjectMismatch
		}
		if !target.HasVacancy() {
			return ErrTargetClassFull
		}
	default:
		return ErrRescheduleTargetMissing
	}

	request.AlternativeTargetType = &targetType
	request.AlternativeTargetID = &targetID
	return nil
}

// ════════════════════════════════════════════════════════════
// Approve / Reject / Withdraw — 状态翻转
// ════════════════════════════════════════════════════════════

func (s *sessionRequestService) Approve(ctx context.Context, requestID string, req *dto.ApproveSessionRequestRequest, callerID, callerRole string) (*model.SessionRequest, error) {
	request, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if callerRole != model.RoleManagement && callerID != request.TutorID {
		return nil, ErrNotRequestApprover
	}
	if !request.IsPending() {
		return nil, ErrRequestNotPending
	}

	session, err := s.repo.Session.GetByID(ctx, request.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询课节失败", zap.Error(err))
		return nil, err
	}

	// 直接改期：确定最终新时间并做排期冲突校验
	var newStart, newEnd *time.Time
	if request.Type == model.RequestTypeReschedule && !request.HasAlternativeTarget() {
		newStart, newEnd, err = s.resolveApprovedTime(request, req)
		if err != nil {
			return nil, err
		}
		if err := s.availability.ValidateProposedTime(ctx, session.TutorID, *newStart, *newEnd, session.SessionID); err != nil {
			return nil, err
		}
	}

	// 状态翻转先行：版本号 CAS 保证同一申请至多批准一次
	request.Status = model.RequestStatusApproved
	request.ResponseMessage = req.ResponseMessage
	request.UpdatedBy = &callerID
	if err := s.repo.SessionRequest.Update(ctx, request); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrConcurrentConflict
		}
		s.logger.Error("更新申请状态失败", zap.Error(err))
		return nil, err
	}

	// 生效分支各自负责给学生的那一条通知
	if err := s.applyApprovalEffects(ctx, request, session, newStart, newEnd, callerID); err != nil {
		// 生效失败：回滚状态，允许重新审批
		s.revertToPending(ctx, request)
		return nil, err
	}

	s.logger.Info("调课申请已批准",
		zap.String("request_id", request.RequestID),
		zap.String("approved_by", callerID))
	return request, nil
}

// resolveApprovedTime 审批时覆盖值优先，否则回落到申请人提议的时间
func (s *sessionRequestService) resolveApprovedTime(request *model.SessionRequest, req *dto.ApproveSessionRequestRequest) (*time.Time, *time.Time, error) {
	if req.NewStartTime != nil || req.NewEndTime != nil {
		if req.NewStartTime == nil || req.NewEndTime == nil {
			return nil, nil, ErrRescheduleTimeIncomplete
		}
		start, err := time.Parse(time.RFC3339, *req.NewStartTime)
		if err != nil {
			return nil, nil, ErrInvalidTimeRange
		}
		end, err := time.Parse(time.RFC3339, *req.NewEndTime)
		if err != nil {
			return nil, nil, ErrInvalidTimeRange
		}
		if !end.After(start) {
			return nil, nil, ErrInvalidTimeRange
		}
		return &start, &end, nil
	}
	if request.PreferredStartTime == nil || request.PreferredEndTime == nil {
		return nil, nil, ErrRescheduleTimeIncomplete
	}
	return request.PreferredStartTime, request.PreferredEndTime, nil
}

func (s *sessionRequestService) Reject(ctx context.Context, requestID string, req *dto.RejectSessionRequestRequest, callerID, callerRole string) (*model.SessionRequest, error) {
	request, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if callerRole != model.RoleManagement && callerID != request.TutorID {
		return nil, ErrNotRequestApprover
	}
	if !request.IsPending() {
		return nil, ErrRequestNotPending
	}

	request.Status = model.RequestStatusRejected
	request.ResponseMessage = req.ResponseMessage
	request.UpdatedBy = &callerID
	if err := s.repo.SessionRequest.Update(ctx, request); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrConcurrentConflict
		}
		s.logger.Error("更新申请状态失败", zap.Error(err))
		return nil, err
	}

	s.notify(ctx, request.StudentID, model.NotificationRequestRejected,
		"申请已拒绝",
		fmt.Sprintf("你的%s申请被拒绝：%s", requestTypeLabel(request.Type), req.ResponseMessage),
		"/sessions/"+request.SessionID, request.RequestID)
	return request, nil
}

func (s *sessionRequestService) Withdraw(ctx context.Context, requestID, callerID string) (*model.SessionRequest, error) {
	request, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.StudentID != callerID {
		return nil, ErrNotRequestOwner
	}
	if !request.IsPending() {
		return nil, ErrRequestNotPending
	}

	request.Status = model.RequestStatusWithdrawn
	request.UpdatedBy = &callerID
	if err := s.repo.SessionRequest.Update(ctx, request); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrConcurrentConflict
		}
		s.logger.Error("更新申请状态失败", zap.Error(err))
		return nil, err
	}
	return request, nil
}

func (s *sessionRequestService) Delete(ctx context.Context, requestID, callerID, callerRole string) error {
	request, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return err
	}
	// 管理员可删任意状态；导师仅可删自己名下已审结（批准/拒绝）的申请
	switch {
	case callerRole == model.RoleManagement:
	case callerID == request.TutorID:
		if request.Status != model.RequestStatusApproved && request.Status != model.RequestStatusRejected {
			return ErrRequestNotTerminal
		}
	default:
		return ErrNotRequestOwner
	}
	if err := s.repo.SessionRequest.Delete(ctx, requestID); err != nil {
		s.logger.Error("删除申请失败", zap.Error(err))
		return err
	}
	return nil
}

// ════════════════════════════════════════════════════════════
// Get / List — 按角色收敛可见范围
// ════════════════════════════════════════════════════════════

func (s *sessionRequestService) Get(ctx context.Context, requestID, callerID, callerRole string) (*model.SessionRequest, error) {
	request, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if callerRole != model.RoleManagement && callerID != request.StudentID && callerID != request.TutorID {
		return nil, ErrNotRequestOwner
	}
	return request, nil
}

func (s *sessionRequestService) List(ctx context.Context, req *dto.SessionRequestListRequest, callerID, callerRole string) ([]model.SessionRequest, int64, error) {
	filter := repository.SessionRequestFilter{
		Status:    req.Status,
		Type:      req.Type,
		TutorID:   req.TutorID,
		StudentID: req.StudentID,
		ClassID:   req.ClassID,
	}
	switch callerRole {
	case model.RoleStudent:
		filter.StudentID = callerID
	case model.RoleTutor:
		filter.TutorID = callerID
	}

	requests, total, err := s.repo.SessionRequest.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询申请列表失败", zap.Error(err))
		return nil, 0, err
	}
	return requests, total, nil
}

// ════════════════════════════════════════════════════════════
// 审批生效
// ════════════════════════════════════════════════════════════

// applyApprovalEffects 按申请类型把批准结果落到课节/班课上。
// 所有带版本号的写入在乐观锁冲突时重载重试，耗尽后整体失败。
func (s *sessionRequestService) applyApprovalEffects(ctx context.Context, request *model.SessionRequest, session *model.Session, newStart, newEnd *time.Time, callerID string) error {
	switch {
	case request.Type == model.RequestTypeCancel:
		return s.applyCancel(ctx, request, session, callerID)
	case request.HasAlternativeTarget() && *request.AlternativeTargetType == model.TargetTypeSession:
		return s.applySwapToSession(ctx, request, session, callerID)
	case request.HasAlternativeTarget() && *request.AlternativeTargetType == model.TargetTypeClass:
		return s.applySwapToClass(ctx, request, session, callerID)
	default:
		return s.applyReschedule(ctx, request, session, newStart, newEnd, callerID)
	}
}

// applyCancel 取消生效：整节取消，记录发起人与原因
func (s *sessionRequestService) applyCancel(ctx context.Context, request *model.SessionRequest, session *model.Session, callerID string) error {
	err := s.withRetry(func() error {
		current, err := s.repo.Session.GetByID(ctx, session.SessionID)
		if err != nil {
			return err
		}
		current.Status = model.SessionStatusCancelled
		current.CancelledBy = &request.StudentID
		current.CancelReason = request.Reason
		current.UpdatedBy = &callerID
		return s.repo.Session.Update(ctx, current)
	})
	if err != nil {
		return err
	}

	s.notify(ctx, request.StudentID, model.NotificationSessionCancelled,
		"课节已取消",
		fmt.Sprintf("%s的《%s》课节已按你的申请取消", s.tutorName(ctx, session.TutorID), session.Subject),
		"/sessions/"+session.SessionID, request.RequestID)
	return nil
}

// applyReschedule 直接改期生效：原地更新起止时间与时长，
// 状态置为 rescheduled 并记录改期前的原开始时间
func (s *sessionRequestService) applyReschedule(ctx context.Context, request *model.SessionRequest, session *model.Session, newStart, newEnd *time.Time, callerID string) error {
	if newStart == nil || newEnd == nil {
		return ErrRescheduleTimeIncomplete
	}

	err := s.withRetry(func() error {
		current, err := s.repo.Session.GetByID(ctx, session.SessionID)
		if err != nil {
			return err
		}
		prior := current.StartTime
		current.StartTime = *newStart
		current.EndTime = *newEnd
		current.DurationMinutes = int(newEnd.Sub(*newStart).Round(time.Minute).Minutes())
		current.Status = model.SessionStatusRescheduled
		current.RescheduledFrom = &prior
		current.UpdatedBy = &callerID
		return s.repo.Session.Update(ctx, current)
	})
	if err != nil {
		return err
	}

	s.notify(ctx, request.StudentID, model.NotificationSessionRescheduled,
		"课节已改期",
		fmt.Sprintf("%s的《%s》课节已改期至 %s", s.tutorName(ctx, session.TutorID), session.Subject, newStart.Format("2006-01-02 15:04")),
		"/sessions/"+session.SessionID, request.RequestID)
	return nil
}

// applySwapToSession 换到另一课节：先加入目标（已在目标内则去重跳过），
// 再从原课节移出
func (s *sessionRequestService) applySwapToSession(ctx context.Context, request *model.SessionRequest, session *model.Session, callerID string) error {
	targetID := *request.AlternativeTargetID

	err := s.withRetry(func() error {
		target, err := s.repo.Session.GetByID(ctx, targetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTargetNotFound
			}
			return err
		}
		if target.StudentIDs.Contains(request.StudentID) {
			return nil
		}
		if len(target.StudentIDs) >= s.sessionCapacity(target) {
			return ErrTargetSessionFull
		}
		target.StudentIDs = append(target.StudentIDs, request.StudentID)
		target.UpdatedBy = &callerID
		return s.repo.Session.Update(ctx, target)
	})
	if err != nil {
		return err
	}

	if err := s.removeStudentMembership(ctx, session.SessionID, request.StudentID, callerID); err != nil {
		return err
	}

	s.notify(ctx, request.StudentID, model.NotificationSessionRescheduled,
		"换课成功",
		fmt.Sprintf("你已换至%s的《%s》课节", s.tutorName(ctx, session.TutorID), session.Subject),
		"/sessions/"+targetID, request.RequestID)
	return nil
}

// applySwapToClass 换入班课：目标侧报名并 CAS 递增（已有 active 报名则幂等跳过）；
// 源课节由班课派生时，停用源班课报名并递减其计数；最后从原课节移出
func (s *sessionRequestService) applySwapToClass(ctx context.Context, request *model.SessionRequest, session *model.Session, callerID string) error {
	classID := *request.AlternativeTargetID

	_, err := s.repo.Enrollment.GetActive(ctx, classID, request.StudentID)
	switch {
	case err == nil:
		// 已在目标班课：报名步骤幂等跳过，避免重复行
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = s.withRetry(func() error {
			class, err := s.repo.Class.GetByID(ctx, classID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrTargetNotFound
				}
				return err
			}
			if !class.HasVacancy() {
				return ErrTargetClassFull
			}
			class.CurrentEnrollment++
			class.UpdatedBy = &callerID
			return s.repo.Class.Update(ctx, class)
		})
		if err != nil {
			return err
		}

		enrollment := &model.Enrollment{
			ClassID:   classID,
			StudentID: request.StudentID,
			Status:    model.EnrollmentStatusActive,
		}
		enrollment.CreatedBy = &callerID
		if err := s.repo.Enrollment.Create(ctx, enrollment); err != nil {
			s.logger.Error("创建班课报名失败", zap.Error(err))
			return err
		}
	default:
		s.logger.Error("查询目标班课报名失败", zap.Error(err))
		return err
	}

	// 源班课侧：停用报名并递减计数（下限 0）
	if request.ClassID != nil {
		if err := s.deactivateSourceEnrollment(ctx, *request.ClassID, request.StudentID, callerID); err != nil {
			return err
		}
	}

	if err := s.removeStudentMembership(ctx, session.SessionID, request.StudentID, callerID); err != nil {
		return err
	}

	s.notify(ctx, request.StudentID, model.NotificationClassChanged,
		"班课变更",
		fmt.Sprintf("你已加入%s的《%s》班课，后续课节按新班课时间安排", s.tutorName(ctx, session.TutorID), session.Subject),
		"/classes/"+classID, request.RequestID)
	return nil
}

// deactivateSourceEnrollment 停用源班课的 active 报名并递减人数计数。
// 报名行不存在时视为已脱离，停用与计数回退一并跳过，计数只跟随实际停用的行。
func (s *sessionRequestService) deactivateSourceEnrollment(ctx context.Context, classID, studentID, callerID string) error {
	enrollment, err := s.repo.Enrollment.GetActive(ctx, classID, studentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		s.logger.Error("查询班课报名失败", zap.Error(err))
		return err
	}
	enrollment.Status = model.EnrollmentStatusInactive
	enrollment.UpdatedBy = &callerID
	if err := s.repo.Enrollment.Update(ctx, enrollment); err != nil {
		s.logger.Error("停用班课报名失败", zap.Error(err))
		return err
	}

	return s.withRetry(func() error {
		class, err := s.repo.Class.GetByID(ctx, classID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if class.CurrentEnrollment > 0 {
			class.CurrentEnrollment--
		}
		class.UpdatedBy = &callerID
		return s.repo.Class.Update(ctx, class)
	})
}

// removeStudentMembership 把学生从课节学员列表中移出（不在列表中则幂等）
func (s *sessionRequestService) removeStudentMembership(ctx context.Context, sessionID, studentID, callerID string) error {
	return s.withRetry(func() error {
		current, err := s.repo.Session.GetByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if !current.StudentIDs.Contains(studentID) {
			return nil
		}
		remaining := make(model.StringArray, 0, len(current.StudentIDs))
		for _, sid := range current.StudentIDs {
			if sid != studentID {
				remaining = append(remaining, sid)
			}
		}
		current.StudentIDs = remaining
		current.UpdatedBy = &callerID
		return s.repo.Session.Update(ctx, current)
	})
}

// ── 内部工具 ──

func (s *sessionRequestService) loadRequest(ctx context.Context, requestID string) (*model.SessionRequest, error) {
	request, err := s.repo.SessionRequest.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		s.logger.Error("查询调课申请失败", zap.Error(err))
		return nil, err
	}
	return request, nil
}

func (s *sessionRequestService) withRetry(op func() error) error {
	return retryOnVersionConflict(s.cfg.Scheduling.CounterUpdateRetries, op)
}

// retryOnVersionConflict 乐观锁冲突时重试写入，重试耗尽返回
// ErrConcurrentConflict。op 每次执行须自行重载最新行。
func retryOnVersionConflict(attempts int, op func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		err = op()
		if err == nil {
			return nil
		}
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return err
		}
	}
	return ErrConcurrentConflict
}

// revertToPending 生效失败后的状态回滚（尽力而为）
func (s *sessionRequestService) revertToPending(ctx context.Context, request *model.SessionRequest) {
	request.Status = model.RequestStatusPending
	if err := s.repo.SessionRequest.Update(ctx, request); err != nil {
		s.logger.Error("回滚申请状态失败",
			zap.String("request_id", request.RequestID),
			zap.Error(err))
	}
}

// notify 写入站内通知（link 指向相关课节/班课，metadata 携带申请 ID），
// 失败仅记录日志不阻断主流程
func (s *sessionRequestService) notify(ctx context.Context, userID, ntype, title, content, link, requestID string) {
	relatedType := "session_request"
	notification := &model.Notification{
		UserID:      userID,
		Type:        ntype,
		Title:       title,
		Content:     content,
		Link:        link,
		RelatedType: &relatedType,
		RelatedID:   &requestID,
	}
	if err := s.repo.Notification.Create(ctx, notification); err != nil {
		s.logger.Warn("写入通知失败",
			zap.String("user_id", userID),
			zap.String("type", ntype),
			zap.Error(err))
	}
}

// tutorName 取导师姓名用于通知文案，查询失败时回落到通用称呼
func (s *sessionRequestService) tutorName(ctx context.Context, tutorID string) string {
	tutor, err := s.repo.User.GetByID(ctx, tutorID)
	if err != nil {
		return "导师"
	}
	return tutor.Name
}

func (s *sessionRequestService) sessionCapacity(session *model.Session) int {
	if session.BelongsToClass() {
		return s.cfg.Scheduling.ClassSessionCapacity
	}
	return s.cfg.Scheduling.SessionCapacity
}

func requestTypeLabel(t string) string {
	if t == model.RequestTypeCancel {
		return "取消"
	}
	return "改期"
}

// nextClassOccurrence 计算班课在 after 之后最近一次课的起止时间
func nextClassOccurrence(class *model.Class, after time.Time, loc *time.Location) (time.Time, time.Time, bool) {
	startMin, err := parseClock(class.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	endMin, err := parseClock(class.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}

	base := after.In(loc)
	for i := 0; i < 8; i++ {
		day := base.AddDate(0, 0, i)
		if isoWeekday(day) != class.DayOfWeek {
			continue
		}
		start := time.Date(day.Year(), day.Month(), day.Day(), startMin/60, startMin%60, 0, 0, loc)
		if !start.After(after) {
			continue
		}
		end := time.Date(day.Year(), day.Month(), day.Day(), endMin/60, endMin%60, 0, 0, loc)
		return start, end, true
	}
	return time.Time{}, time.Time{}, false
}

// [自证通过] internal/service/session_request_service.go
