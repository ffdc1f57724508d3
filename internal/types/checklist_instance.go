package types

import (
	"time"
	"github.com/google/uuid"
)

// ChecklistInstance is the per-day occurrence of a template. Exactly one row
// may exist per (template_id, target_date); creation is insert-if-absent on
// the unique index. Once IsSubmitted is set the row is immutable.
type ChecklistInstance struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	TemplateID  uuid.UUID          `gorm:"type:uuid;not null;index:idx_template_day,unique" json:"template_id"`
	Template    *ChecklistTemplate `gorm:"foreignKey:TemplateID;references:ID" json:"template,omitempty"`
	TargetDate  time.Time          `gorm:"column:target_date;not null;index:idx_template_day,unique" json:"target_date"`
	EmployeeID  uuid.UUID          `gorm:"type:uuid;not null;index" json:"employee_id"`
	Employee    *Employee          `gorm:"foreignKey:EmployeeID;references:ID" json:"employee,omitempty"`
	IsCompleted bool               `gorm:"column:is_completed;not null;default:false" json:"is_completed"`
	IsSubmitted bool               `gorm:"column:is_submitted;not null;default:false" json:"is_submitted"`
	CompletedAt *time.Time         `gorm:"column:completed_at" json:"completed_at,omitempty"`
	SubmittedAt *time.Time         `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	CreatedAt   time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"not null" json:"updated_at"`
}

func (ChecklistInstance) TableName() string { return "checklist_instance" }
