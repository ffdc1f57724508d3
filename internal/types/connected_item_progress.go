package types

import (
	"time"
	"github.com/google/uuid"
)

// ConnectedItemProgress records one applied connection per instance. The
// unique (instance_id, connection_id) index is the exactly-once guard for
// stock mutations: a second apply conflicts on insert and returns the
// recorded snapshot instead of mutating again.
type ConnectedItemProgress struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	InstanceID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_instance_connection,unique" json:"instance_id"`
	ConnectionID  uuid.UUID      `gorm:"type:uuid;not null;index:idx_instance_connection,unique" json:"connection_id"`
	ItemID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"item_id"`
	Kind          ConnectionKind `gorm:"column:kind;type:varchar(20);not null" json:"kind"`
	CompletedByID uuid.UUID      `gorm:"type:uuid;not null" json:"completed_by_id"`
	PreviousStock *int           `gorm:"column:previous_stock" json:"previous_stock,omitempty"`
	UpdatedStock  *int           `gorm:"column:updated_stock" json:"updated_stock,omitempty"`
	CompletedAt   time.Time      `gorm:"column:completed_at;not null" json:"completed_at"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
}

func (ConnectedItemProgress) TableName() string { return "connected_item_progress" }
