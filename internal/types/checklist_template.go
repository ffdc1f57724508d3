package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Shift periods a checklist template can be scoped to.
const (
	ShiftPeriodOpen  = "open"
	ShiftPeriodMid   = "mid"
	ShiftPeriodClose = "close"
)

type ChecklistTemplate struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string           `gorm:"column:name;not null" json:"name"`
	WorkArea    string           `gorm:"column:work_area;not null;index" json:"work_area"`
	Category    string           `gorm:"column:category;index" json:"category"`
	ShiftPeriod string           `gorm:"column:shift_period;not null;index" json:"shift_period"`
	Items       []*ChecklistItem `gorm:"foreignKey:TemplateID;references:ID" json:"items,omitempty"`
	CreatedAt   time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"deleted_at,omitempty"`
}

func (ChecklistTemplate) TableName() string { return "checklist_template" }
