package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Manual struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string         `gorm:"column:title;not null" json:"title"`
	Content   string         `gorm:"column:content" json:"content,omitempty"`
	MediaURL  string         `gorm:"column:media_url" json:"media_url,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Manual) TableName() string { return "manual" }
