package database

import (
	"time"

	"gorm.io/datatypes"
)

// ResumeSnapshot 保存一份完整的简历文档快照，每个 Key 只保留最后一次写入。
type ResumeSnapshot struct {
	ID        uint           `gorm:"primarykey"`
	Key       string         `gorm:"column:store_key;uniqueIndex;size:128"`
	ResumeID  string         `gorm:"size:64"`
	Content   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
