package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel 通用时间戳字段（可变实体嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ensureID 在插入前补齐 UUID 主键
func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// BeforeCreate GORM 钩子：生成员工主键
func (e *Employee) BeforeCreate(_ *gorm.DB) error {
	ensureID(&e.ID)
	return nil
}

// BeforeCreate GORM 钩子：生成考勤主键
func (a *Attendance) BeforeCreate(_ *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
