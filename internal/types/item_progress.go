package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ItemProgress struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	InstanceID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_instance_item,unique" json:"instance_id"`
	ItemID        uuid.UUID      `gorm:"type:uuid;not null;index:idx_instance_item,unique" json:"item_id"`
	CompletedByID uuid.UUID      `gorm:"type:uuid;not null" json:"completed_by_id"`
	CompletedBy   *Employee      `gorm:"foreignKey:CompletedByID;references:ID" json:"completed_by,omitempty"`
	Notes         string         `gorm:"column:notes" json:"notes,omitempty"`
	CompletedAt   time.Time      `gorm:"column:completed_at;not null" json:"completed_at"`
	Metadata      datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
}

func (ItemProgress) TableName() string { return "item_progress" }
