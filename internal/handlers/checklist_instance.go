package handlers

import (
  "fmt"
  "net/http"
  "time"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/yungbote/shiftcheck-backend/internal/requestdata"
  "github.com/yungbote/shiftcheck-backend/internal/services"
)

type ChecklistInstanceHandler struct {
  svc         services.ChecklistInstanceService
  progressSvc services.ProgressService
}

func NewChecklistInstanceHandler(svc services.ChecklistInstanceService, progressSvc services.ProgressService) *ChecklistInstanceHandler {
  return &ChecklistInstanceHandler{svc: svc, progressSvc: progressSvc}
}

type createInstanceRequest struct {
  TemplateID string `json:"template_id" binding:"required"`
  Date       string `json:"date" binding:"required"`
}

// POST /api/instance
func (h *ChecklistInstanceHandler) GetOrCreate(c *gin.Context) {
  var req createInstanceRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
    return
  }
  templateID, err := uuid.Parse(req.TemplateID)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", fmt.Errorf("invalid template id"))
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
  instance, err := h.svc.GetOrCreate(c.Request.Context(), templateID, date, rd.EmployeeID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"instance": instance})
}

// GET /api/instance/:id
func (h *ChecklistInstanceHandler) Get(c *gin.Context) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", fmt.Errorf("invalid instance id"))
    return
  }
  instance, err := h.svc.GetByID(c.Request.Context(), id)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  summary, err := h.progressSvc.Progress(c.Request.Context(), nil, id)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"instance": instance, "progress": summary})
}

type completeItemRequest struct {
  Notes string `json:"notes"`
}

// POST /api/instance/:id/items/:itemId/complete
func (h *ChecklistInstanceHandler) CompleteItem(c *gin.Context) {
  instanceID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", fmt.Errorf("invalid instance id"))
    return
  }
  itemID, err := uuid.Parse(c.Param("itemId"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", fmt.Errorf("invalid item id"))
    return
  }
  var req completeItemRequest
  if c.Request.ContentLength > 0 {
    if err := c.ShouldBindJSON(&req); err != nil {
      RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
      return
    }
  }
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusForbidden, "FORBIDDEN", fmt.Errorf("no principal"))
    return
  }
  progress, connected, err := h.svc.MarkItemComplete(c.Request.Context(), instanceID, itemID, rd.EmployeeID, req.Notes)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{
    "item_progress":     progress,
    "connected_results": connected,
  })
}

// POST /api/instance/:id/items/:itemId/incomplete
func (h *ChecklistInstanceHandler) UncompleteItem(c *gin.Context) {
  instanceID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", fmt.Errorf("invalid instance id"))
    return
  }
  itemID, err := uuid.Parse(c.Param("itemId"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", fmt.Errorf("invalid item id"))
    return
  }
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusForbidden, "FORBIDDEN", fmt.Errorf("no principal"))
    return
  }
  if err := h.svc.MarkItemIncomplete(c.Request.Context(), instanceID, itemID, rd.EmployeeID); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"cleared": true})
}

// POST /api/instance/:id/submit
func (h *ChecklistInstanceHandler) Submit(c *gin.Context) {
  instanceID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", fmt.Errorf("invalid instance id"))
    return
  }
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusForbidden, "FORBIDDEN", fmt.Errorf("no principal"))
    return
  }
  instance, err := h.svc.Submit(c.Request.Context(), instanceID, rd.EmployeeID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"submitted_at": instance.SubmittedAt})
}

// GET /api/instance/:id/progress
func (h *ChecklistInstanceHandler) Progress(c *gin.Context) {
  instanceID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", fmt.Errorf("invalid instance id"))
    return
  }
  summary, err := h.progressSvc.Progress(c.Request.Context(), nil, instanceID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, summary)
}
