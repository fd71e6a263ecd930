package model

import (
	"time"

	"gorm.io/datatypes"
)

// AttendanceStatus 考勤状态（封闭枚举）
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "Present"
	StatusAbsent  AttendanceStatus = "Absent"
)

// StatusNotMarked 今日花名册中无考勤记录时的占位状态，不会落库
const StatusNotMarked = "Not Marked"

// Valid 是否为可落库的状态
func (s AttendanceStatus) Valid() bool {
	return s == StatusPresent || s == StatusAbsent
}

// Attendance 考勤表，对应 attendance
// (employee_id, date) 由唯一索引约束
type Attendance struct {
	ID         string           `gorm:"type:uuid;primaryKey"              json:"id"`
	EmployeeID string           `gorm:"type:uuid;not null;index"          json:"employee_id"`
	Date       datatypes.Date   `gorm:"type:date;not null;index"          json:"date"`
	Status     AttendanceStatus `gorm:"type:varchar(10);not null"         json:"status"`
	CreatedAt  time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP;<-:create" json:"created_at"`

	// 关联
	Employee *Employee `gorm:"foreignKey:EmployeeID;references:ID" json:"employee,omitempty"`
}

// TableName 指定表名
func (Attendance) TableName() string { return "attendance" }

// Day 返回考勤日期（UTC 零点）
func (a *Attendance) Day() time.Time {
	return time.Time(a.Date)
}
