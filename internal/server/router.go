package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"
  "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

  "github.com/yungbote/shiftcheck-backend/internal/handlers"
  "github.com/yungbote/shiftcheck-backend/internal/middleware"
)

type RouterConfig struct {
  AuthMiddleware  *middleware.AuthMiddleware
  SlotHandler     *handlers.SlotHandler
  InstanceHandler *handlers.ChecklistInstanceHandler
  TemplateHandler *handlers.ChecklistTemplateHandler
  ResourceHandler *handlers.ResourceHandler
  EmployeeHandler *handlers.EmployeeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()
  router.Use(otelgin.Middleware("shiftcheck"))

  // Cors
  router.Use(cors.New(cors.Config{
    AllowOrigins: []string{
      "http://localhost:80",
      "http://localhost:3000",
      "http://localhost:5174",
    },
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

// ===============
// || Public    ||
// ===============
  router.GET("/healthcheck", handlers.HealthCheck)

// ===============
// || Protected ||
// ===============
  api := router.Group("/api")
  api.Use(cfg.AuthMiddleware.RequireAuth())
  // Principal
  api.GET("/me", cfg.EmployeeHandler.GetMe)
  // Slot locks
  api.POST("/slot/lock", cfg.SlotHandler.Lock)
  api.GET("/slot/status", cfg.SlotHandler.Status)
  // Checklist instances
  api.POST("/instance", cfg.InstanceHandler.GetOrCreate)
  api.GET("/instance/:id", cfg.InstanceHandler.Get)
  api.GET("/instance/:id/progress", cfg.InstanceHandler.Progress)
  api.POST("/instance/:id/items/:itemId/complete", cfg.InstanceHandler.CompleteItem)
  api.POST("/instance/:id/items/:itemId/incomplete", cfg.InstanceHandler.UncompleteItem)
  api.POST("/instance/:id/submit", cfg.InstanceHandler.Submit)
  // Templates
  api.GET("/templates", cfg.TemplateHandler.List)
  api.GET("/templates/:id", cfg.TemplateHandler.Get)
  // Resources
  api.GET("/inventory", cfg.ResourceHandler.ListInventory)
  api.GET("/inventory/:id", cfg.ResourceHandler.GetInventoryItem)
  api.GET("/precautions", cfg.ResourceHandler.ListPrecautions)
  api.GET("/manuals", cfg.ResourceHandler.ListManuals)

  return router
}
