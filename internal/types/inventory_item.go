package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InventoryItem struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	Unit      string         `gorm:"column:unit" json:"unit,omitempty"`
	Stock     int            `gorm:"column:stock;not null;default:0" json:"stock"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (InventoryItem) TableName() string { return "inventory_item" }
