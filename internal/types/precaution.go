package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Precaution struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string         `gorm:"column:title;not null" json:"title"`
	Content   string         `gorm:"column:content" json:"content,omitempty"`
	WorkArea  string         `gorm:"column:work_area;index" json:"work_area,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Precaution) TableName() string { return "precaution" }
