package apierr

import (
  "fmt"
  "net/http"

  "github.com/google/uuid"
)

// Expected, recoverable outcomes of the checklist lifecycle. Each is surfaced
// to the caller verbatim and never retried by the core.
const (
  CodeLockDenied              = "LOCK_DENIED"
  CodeLockNotOwned            = "LOCK_NOT_OWNED"
  CodeTemplateNotFound        = "TEMPLATE_NOT_FOUND"
  CodeInstanceNotFound        = "INSTANCE_NOT_FOUND"
  CodeItemNotFound            = "ITEM_NOT_FOUND"
  CodeAlreadySubmitted        = "ALREADY_SUBMITTED"
  CodeIncompleteRequiredItems = "INCOMPLETE_REQUIRED_ITEMS"
  CodeInsufficientStock       = "INSUFFICIENT_STOCK"
  CodeInvalidTransition       = "INVALID_TRANSITION"
)

func LockDenied(ownerName string) *Error {
  return New(http.StatusConflict, CodeLockDenied, fmt.Errorf("slot is locked by %s", ownerName))
}

func LockNotOwned() *Error {
  return New(http.StatusConflict, CodeLockNotOwned, fmt.Errorf("slot lock is held by another employee"))
}

func TemplateNotFound(id uuid.UUID) *Error {
  return New(http.StatusNotFound, CodeTemplateNotFound, fmt.Errorf("checklist template %s not found", id))
}

func InstanceNotFound(id uuid.UUID) *Error {
  return New(http.StatusNotFound, CodeInstanceNotFound, fmt.Errorf("checklist instance %s not found", id))
}

func ItemNotFound(id uuid.UUID) *Error {
  return New(http.StatusNotFound, CodeItemNotFound, fmt.Errorf("checklist item %s not found", id))
}

func AlreadySubmitted() *Error {
  return New(http.StatusConflict, CodeAlreadySubmitted, fmt.Errorf("checklist instance has already been submitted"))
}

func IncompleteRequiredItems(remaining int) *Error {
  return New(http.StatusConflict, CodeIncompleteRequiredItems, fmt.Errorf("%d required items are still incomplete", remaining))
}

func InsufficientStock(itemName string, delta int) *Error {
  return New(http.StatusUnprocessableEntity, CodeInsufficientStock, fmt.Errorf("insufficient stock for %s (delta %d)", itemName, delta))
}

func InvalidTransition(msg string) *Error {
  return New(http.StatusConflict, CodeInvalidTransition, fmt.Errorf("invalid transition: %s", msg))
}
