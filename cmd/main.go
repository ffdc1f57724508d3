package main

import (
  "context"
  "fmt"
  "os"
  "time"
  "github.com/yungbote/shiftcheck-backend/internal/logger"
  "github.com/yungbote/shiftcheck-backend/internal/utils"
  "github.com/yungbote/shiftcheck-backend/internal/db"
  "github.com/yungbote/shiftcheck-backend/internal/clients/redis"
  "github.com/yungbote/shiftcheck-backend/internal/observability"
  "github.com/yungbote/shiftcheck-backend/internal/repos"
  "github.com/yungbote/shiftcheck-backend/internal/services"
  "github.com/yungbote/shiftcheck-backend/internal/handlers"
  "github.com/yungbote/shiftcheck-backend/internal/middleware"
  "github.com/yungbote/shiftcheck-backend/internal/server"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Env
  log.Info("Loading environment variables from main...")
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  slotLockTTL := utils.GetEnvAsInt("SLOT_LOCK_TTL", 1800, log)

  // Tracing
  shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
    ServiceName: "shiftcheck",
    Environment: utils.GetEnv("APP_ENV", "development", log),
    Version:     utils.GetEnv("APP_VERSION", "dev", log),
  })
  if shutdownOTel != nil {
    defer func() {
      ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
      defer cancel()
      _ = shutdownOTel(ctx)
    }()
  }

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  employeeRepo := repos.NewEmployeeRepo(thePG, log)
  templateRepo := repos.NewChecklistTemplateRepo(thePG, log)
  instanceRepo := repos.NewChecklistInstanceRepo(thePG, log)
  itemProgressRepo := repos.NewItemProgressRepo(thePG, log)
  connectedProgressRepo := repos.NewConnectedItemProgressRepo(thePG, log)
  slotLockRepo := repos.NewSlotLockRepo(thePG, log)
  inventoryRepo := repos.NewInventoryItemRepo(thePG, log)
  precautionRepo := repos.NewPrecautionRepo(thePG, log)
  manualRepo := repos.NewManualRepo(thePG, log)

  // Slot events (optional)
  var slotEvents services.SlotEventPublisher
  if os.Getenv("REDIS_ADDR") != "" {
    bus, err := redis.NewSlotEventBus(log)
    if err != nil {
      log.Warn("Could not init slot event bus, continuing without", "error", err)
    } else {
      defer bus.Close()
      slotEvents = bus
    }
  }

  // Services
  log.Info("Setting up Services from main...")
  identityService := services.NewIdentityService(thePG, log, employeeRepo, jwtSecretKey)
  slotLockService := services.NewSlotLockService(thePG, log, slotLockRepo, slotEvents, time.Duration(slotLockTTL)*time.Second)
  resolver := services.NewConnectionResolver(log, connectedProgressRepo, inventoryRepo)
  progressService := services.NewProgressService(thePG, log, instanceRepo, templateRepo, itemProgressRepo, connectedProgressRepo)
  instanceService := services.NewChecklistInstanceService(
    thePG,
    log,
    instanceRepo,
    templateRepo,
    itemProgressRepo,
    slotLockRepo,
    resolver,
    progressService,
    slotEvents,
  )
  templateService := services.NewChecklistTemplateService(thePG, log, templateRepo)
  resourceService := services.NewResourceService(thePG, log, inventoryRepo, precautionRepo, manualRepo)

  // Handlers
  log.Info("Setting up handlers from main...")
  slotHandler := handlers.NewSlotHandler(slotLockService)
  instanceHandler := handlers.NewChecklistInstanceHandler(instanceService, progressService)
  templateHandler := handlers.NewChecklistTemplateHandler(templateService)
  resourceHandler := handlers.NewResourceHandler(resourceService)
  employeeHandler := handlers.NewEmployeeHandler()

  // Middleware
  log.Info("Setting up middleware from main...")
  authMiddleware := middleware.NewAuthMiddleware(log, identityService)

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    AuthMiddleware:  authMiddleware,
    SlotHandler:     slotHandler,
    InstanceHandler: instanceHandler,
    TemplateHandler: templateHandler,
    ResourceHandler: resourceHandler,
    EmployeeHandler: employeeHandler,
  })

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Error("Server failed", "error", err)
  }
}
