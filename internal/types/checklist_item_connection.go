package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ConnectionKind is the closed set of external resources a checklist item can
// reference. Dispatch on it must be exhaustive; anything else is rejected at
// load time.
type ConnectionKind string

const (
	ConnectionKindInventory  ConnectionKind = "inventory"
	ConnectionKindPrecaution ConnectionKind = "precaution"
	ConnectionKindManual     ConnectionKind = "manual"
)

func (k ConnectionKind) Valid() bool {
	switch k {
	case ConnectionKindInventory, ConnectionKindPrecaution, ConnectionKindManual:
		return true
	}
	return false
}

type ChecklistItemConnection struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ItemID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"item_id"`
	Kind       ConnectionKind `gorm:"column:kind;type:varchar(20);not null" json:"kind"`
	ResourceID uuid.UUID      `gorm:"type:uuid;not null" json:"resource_id"`
	SortOrder  int            `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
	// StockDelta is the signed stock adjustment applied when an inventory
	// connection is completed. Zero for precaution/manual connections.
	StockDelta int            `gorm:"column:stock_delta;not null;default:0" json:"stock_delta"`
	IsRequired bool           `gorm:"column:is_required;not null;default:true" json:"is_required"`
	Config     datatypes.JSON `gorm:"type:jsonb;column:config" json:"config,omitempty"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
}

func (ChecklistItemConnection) TableName() string { return "checklist_item_connection" }
