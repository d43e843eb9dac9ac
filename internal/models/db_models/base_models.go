package db_models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel is embedded by every catalog table. Timestamps are unix seconds.
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CreatedAt int64          `gorm:"autoCreateTime"`
	UpdatedAt int64          `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// BeforeCreate assigns an id when the caller did not and keeps a
// caller-supplied CreatedAt.
func (b *BaseModel) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.touch(true)
	return nil
}

func (b *BaseModel) BeforeUpdate(*gorm.DB) error {
	b.touch(false)
	return nil
}

func (b *BaseModel) touch(created bool) {
	now := time.Now().Unix()
	if created && b.CreatedAt == 0 {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}
