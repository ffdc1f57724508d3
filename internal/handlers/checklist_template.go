package handlers

import (
  "fmt"
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/yungbote/shiftcheck-backend/internal/services"
)

type ChecklistTemplateHandler struct {
  svc services.ChecklistTemplateService
}

func NewChecklistTemplateHandler(svc services.ChecklistTemplateService) *ChecklistTemplateHandler {
  return &ChecklistTemplateHandler{svc: svc}
}

// GET /api/templates
func (h *ChecklistTemplateHandler) List(c *gin.Context) {
  templates, err := h.svc.List(
    c.Request.Context(),
    c.Query("work_area"),
    c.Query("shift_period"),
    c.Query("category"),
  )
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"templates": templates})
}

// GET /api/templates/:id
func (h *ChecklistTemplateHandler) Get(c *gin.Context) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", fmt.Errorf("invalid template id"))
    return
  }
  tmpl, tree, err := h.svc.GetTree(c.Request.Context(), id)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"template": tmpl, "tree": tree})
}
