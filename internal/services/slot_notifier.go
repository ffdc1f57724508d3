package services

import (
  "context"

  "github.com/google/uuid"
)

// SlotEvent is broadcast when a slot changes hands or an instance is
// submitted, so open UIs can refresh without polling tight loops.
type SlotEvent struct {
  Type        string    `json:"type"`
  WorkArea    string    `json:"work_area"`
  ShiftPeriod string    `json:"shift_period"`
  Date        string    `json:"date"`
  EmployeeID  uuid.UUID `json:"employee_id"`
}

// SlotEventPublisher is implemented by the redis client; a nil publisher
// disables broadcasting.
type SlotEventPublisher interface {
  PublishSlotEvent(ctx context.Context, evt SlotEvent) error
}
