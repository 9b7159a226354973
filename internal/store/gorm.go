package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"atsResume/internal/database"
)

// GormPersister 将快照保存在 resume_snapshots 表中，以 store_key 唯一。
type GormPersister struct {
	db  *gorm.DB
	key string
}

// NewGormPersister 构造基于 GORM 的持久化实现。
func NewGormPersister(db *gorm.DB, key string) *GormPersister {
	return &GormPersister{db: db, key: key}
}

// Load 读取快照内容。
func (p *GormPersister) Load(ctx context.Context) ([]byte, error) {
	var snapshot database.ResumeSnapshot
	err := p.db.WithContext(ctx).
		Where("store_key = ?", p.key).
		First(&snapshot).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNoSnapshot
	case err != nil:
		return nil, fmt.Errorf("query snapshot %q: %w", p.key, err)
	}
	return []byte(snapshot.Content), nil
}

// Save 以 upsert 方式整体覆盖快照。
func (p *GormPersister) Save(ctx context.Context, snapshot Snapshot) error {
	row := database.ResumeSnapshot{
		Key:      p.key,
		ResumeID: snapshot.ResumeID,
		Content:  datatypes.JSON(snapshot.Data),
	}
	err := p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "store_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"resume_id", "content", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert snapshot %q: %w", p.key, err)
	}
	return nil
}
