package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChecklistItem struct {
	ID          uuid.UUID                  `gorm:"type:uuid;primaryKey" json:"id"`
	TemplateID  uuid.UUID                  `gorm:"type:uuid;not null;index" json:"template_id"`
	ParentID    *uuid.UUID                 `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	SortOrder   int                        `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
	Content     string                     `gorm:"column:content;not null" json:"content"`
	IsRequired  bool                       `gorm:"column:is_required;not null;default:true" json:"is_required"`
	Connections []*ChecklistItemConnection `gorm:"foreignKey:ItemID;references:ID" json:"connections,omitempty"`
	CreatedAt   time.Time                  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time                  `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt             `gorm:"index" json:"deleted_at,omitempty"`
}

func (ChecklistItem) TableName() string { return "checklist_item" }
