package requestdata

import (
  "context"
  "github.com/google/uuid"
)

var requestDataKey = struct{}{}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
  return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
  val := ctx.Value(requestDataKey)
  if rd, ok := val.(*RequestData); ok {
    return rd
  }
  return nil
}

// RequestData is the pre-authenticated principal resolved by the identity
// boundary. The core performs no credential checks of its own.
type RequestData struct {
  TokenString  string
  EmployeeID   uuid.UUID
  EmployeeName string
  IsSuperAdmin bool
}
