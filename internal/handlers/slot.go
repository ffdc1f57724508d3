package handlers

import (
  "fmt"
  "net/http"
  "time"

  "github.com/gin-gonic/gin"

  "github.com/yungbote/shiftcheck-backend/internal/apierr"
  "github.com/yungbote/shiftcheck-backend/internal/requestdata"
  "github.com/yungbote/shiftcheck-backend/internal/services"
)

type SlotHandler struct {
  svc services.SlotLockService
}

func NewSlotHandler(svc services.SlotLockService) *SlotHandler {
  return &SlotHandler{svc: svc}
}

type slotLockRequest struct {
  WorkArea    string `json:"work_area" binding:"required"`
  ShiftPeriod string `json:"shift_period" binding:"required"`
  Date        string `json:"date" binding:"required"`
  Action      string `json:"action" binding:"required"`
}

// POST /api/slot/lock
func (h *SlotHandler) Lock(c *gin.Context) {
  var req slotLockRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
    return
  }
  date, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", fmt.Errorf("invalid date %q", req.Date))
    return
  }
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusForbidden, "FORBIDDEN", fmt.Errorf("no principal"))
    return
  }
  key := services.SlotKey{WorkArea: req.WorkArea, ShiftPeriod: req.ShiftPeriod, Date: date}

  switch req.Action {
  case "lock":
    res, err := h.svc.Acquire(c.Request.Context(), nil, key, rd.EmployeeID)
    if err != nil {
      RespondServiceError(c, err)
      return
    }
    if !res.Granted {
      c.JSON(http.StatusConflict, gin.H{
        "error": gin.H{
          "code":          apierr.CodeLockDenied,
          "message":       fmt.Sprintf("slot is in use by %s", res.OwnedByName),
          "owned_by_id":   res.OwnedByID,
          "owned_by_name": res.OwnedByName,
        },
      })
      return
    }
    RespondOK(c, gin.H{"granted": true})
  case "unlock":
    if err := h.svc.Release(c.Request.Context(), nil, key, rd.EmployeeID); err != nil {
      RespondServiceError(c, err)
      return
    }
    RespondOK(c, gin.H{"released": true})
  default:
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", fmt.Errorf("unknown action %q", req.Action))
  }
}

// GET /api/slot/status
func (h *SlotHandler) Status(c *gin.Context) {
  date, err := time.ParseInLocation("2006-01-02", c.Query("date"), time.Local)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", fmt.Errorf("invalid date %q", c.Query("date")))
    return
  }
  key := services.SlotKey{
    WorkArea:    c.Query("work_area"),
    ShiftPeriod: c.Query("shift_period"),
    Date:        date,
  }
  status, err := h.svc.Status(c.Request.Context(), key)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, status)
}
