package handlers

import (
  "fmt"
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/yungbote/shiftcheck-backend/internal/requestdata"
)

type EmployeeHandler struct{}

func NewEmployeeHandler() *EmployeeHandler {
  return &EmployeeHandler{}
}

// GET /api/me
func (h *EmployeeHandler) GetMe(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusForbidden, "FORBIDDEN", fmt.Errorf("no principal"))
    return
  }
  RespondOK(c, gin.H{
    "employee_id":    rd.EmployeeID,
    "name":           rd.EmployeeName,
    "is_super_admin": rd.IsSuperAdmin,
  })
}
