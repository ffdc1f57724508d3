package types

import (
	"time"
	"github.com/google/uuid"
)

// SlotLock serializes work on one (work area, shift period, day) slot. At
// most one row exists per key (unique composite index) and transitions are
// guarded single-statement updates. Expiry is evaluated lazily against
// LockedAt; an expired lock is taken over in the same statement that grants
// the new owner.
type SlotLock struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	WorkArea    string     `gorm:"column:work_area;not null;index:idx_slot_key,unique" json:"work_area"`
	ShiftPeriod string     `gorm:"column:shift_period;not null;index:idx_slot_key,unique" json:"shift_period"`
	LockDate    time.Time  `gorm:"column:lock_date;not null;index:idx_slot_key,unique" json:"lock_date"`
	IsLocked    bool       `gorm:"column:is_locked;not null;default:false" json:"is_locked"`
	LockedByID  *uuid.UUID `gorm:"type:uuid" json:"locked_by_id,omitempty"`
	LockedBy    *Employee  `gorm:"foreignKey:LockedByID;references:ID" json:"locked_by,omitempty"`
	LockedAt    *time.Time `gorm:"column:locked_at" json:"locked_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (SlotLock) TableName() string { return "slot_lock" }
