package handlers

import (
  "fmt"
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/yungbote/shiftcheck-backend/internal/services"
)

type ResourceHandler struct {
  svc services.ResourceService
}

func NewResourceHandler(svc services.ResourceService) *ResourceHandler {
  return &ResourceHandler{svc: svc}
}

// GET /api/inventory
func (h *ResourceHandler) ListInventory(c *gin.Context) {
  items, err := h.svc.ListInventory(c.Request.Context())
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"inventory": items})
}

// GET /api/inventory/:id
func (h *ResourceHandler) GetInventoryItem(c *gin.Context) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", fmt.Errorf("invalid inventory item id %q", c.Param("id")))
    return
  }
  item, err := h.svc.GetInventoryItem(c.Request.Context(), id)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  if item == nil {
    RespondError(c, http.StatusNotFound, "NOT_FOUND", fmt.Errorf("inventory item %s not found", id))
    return
  }
  RespondOK(c, gin.H{"item": item})
}

// GET /api/precautions
func (h *ResourceHandler) ListPrecautions(c *gin.Context) {
  precautions, err := h.svc.ListPrecautions(c.Request.Context(), c.Query("work_area"))
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"precautions": precautions})
}

// GET /api/manuals
func (h *ResourceHandler) ListManuals(c *gin.Context) {
  manuals, err := h.svc.ListManuals(c.Request.Context())
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"manuals": manuals})
}
