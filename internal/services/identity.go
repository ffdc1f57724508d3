package services

import (
  "context"
  "fmt"
  "time"

  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/yungbote/shiftcheck-backend/internal/logger"
  "github.com/yungbote/shiftcheck-backend/internal/repos"
  "github.com/yungbote/shiftcheck-backend/internal/requestdata"
  "github.com/yungbote/shiftcheck-backend/internal/types"
)

// IdentityService is the boundary to the external identity provider. Tokens
// arrive already issued; this only verifies the signature, lifts the claims
// into request data, and mirrors the employee row so foreign keys resolve.
type IdentityService interface {
  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type identityClaims struct {
  Name         string `json:"name"`
  IsSuperAdmin bool   `json:"is_super_admin"`
  jwt.RegisteredClaims
}

type identityService struct {
  db           *gorm.DB
  log          *logger.Logger
  employeeRepo repos.EmployeeRepo
  secret       []byte
}

func NewIdentityService(db *gorm.DB, baseLog *logger.Logger, employeeRepo repos.EmployeeRepo, secret string) IdentityService {
  return &identityService{
    db:           db,
    log:          baseLog.With("service", "IdentityService"),
    employeeRepo: employeeRepo,
    secret:       []byte(secret),
  }
}

func (s *identityService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  claims := &identityClaims{}
  token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
    if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
      return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
    }
    return s.secret, nil
  })
  if err != nil {
    return ctx, fmt.Errorf("parse token: %w", err)
  }
  if !token.Valid {
    return ctx, fmt.Errorf("invalid token")
  }
  employeeID, err := uuid.Parse(claims.Subject)
  if err != nil {
    return ctx, fmt.Errorf("token subject is not an employee id: %w", err)
  }

  now := time.Now()
  if err := s.employeeRepo.EnsureExists(ctx, nil, &types.Employee{
    ID:           employeeID,
    Name:         claims.Name,
    IsSuperAdmin: claims.IsSuperAdmin,
    CreatedAt:    now,
    UpdatedAt:    now,
  }); err != nil {
    return ctx, fmt.Errorf("mirror employee: %w", err)
  }

  return requestdata.WithRequestData(ctx, &requestdata.RequestData{
    TokenString:  tokenString,
    EmployeeID:   employeeID,
    EmployeeName: claims.Name,
    IsSuperAdmin: claims.IsSuperAdmin,
  }), nil
}
