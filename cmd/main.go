package main

import (
  "context"
  "fmt"
  "os"
  "github.com/robfig/cron"
  "github.com/sparkmetric/citewatch-backend/internal/logger"
  "github.com/sparkmetric/citewatch-backend/internal/utils"
  "github.com/sparkmetric/citewatch-backend/internal/db"
  "github.com/sparkmetric/citewatch-backend/internal/clients/redis"
  "github.com/sparkmetric/citewatch-backend/internal/repos"
  "github.com/sparkmetric/citewatch-backend/internal/services"
  "github.com/sparkmetric/citewatch-backend/internal/handlers"
  "github.com/sparkmetric/citewatch-backend/internal/middleware"
  "github.com/sparkmetric/citewatch-backend/internal/server"
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
  schedulerToken := utils.GetEnv("SCHEDULER_TOKEN", "", log)
  monitorCron := utils.GetEnv("MONITOR_CRON", "", log)

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

  // Redis advisory lock around the monitoring batch
  batchLock, err := redis.NewBatchLock(log)
  if err != nil {
    log.Error("Could not init batch lock", "error", err)
    os.Exit(1)
  }
  defer batchLock.Close()

  // Repos
  log.Info("Setting up Repos from main...")
  userRepo := repos.NewUserRepo(thePG, log)
  entryRepo := repos.NewMonitoringEntryRepo(thePG, log)
  checkRepo := repos.NewCitationCheckRepo(thePG, log)
  notificationRepo := repos.NewNotificationRepo(thePG, log)

  // Services
  log.Info("Setting up Services from main...")
  checker, err := services.NewCitationAPIClient(log, services.CitationAPIConfigFromEnv(log))
  if err != nil {
    log.Error("Could not init CitationAPIClient", "error", err)
    os.Exit(1)
  }
  notifier := services.NewCitationNotifier(thePG, log, userRepo, notificationRepo)
  pacer := services.NewSleepPacer(
    utils.GetEnvAsDuration("MONITOR_ENGINE_DELAY", 0, log),
    utils.GetEnvAsDuration("MONITOR_ENTRY_DELAY", 0, log),
  )
  monitorService := services.NewMonitorService(thePG, log, entryRepo, checkRepo, checker, notifier, pacer)
  statsService := services.NewStatsService(thePG, log, checkRepo)
  entryService := services.NewMonitoringEntryService(thePG, log, entryRepo)
  notificationService := services.NewNotificationService(thePG, log, notificationRepo)

  // Optional in-process schedule; most deployments trigger the batch over
  // HTTP from an external cron instead.
  if monitorCron != "" {
    c := cron.New()
    err := c.AddFunc(monitorCron, func() {
      release, ok, err := batchLock.Acquire(context.Background())
      if err != nil {
        log.Error("Scheduled batch could not acquire lock", "error", err)
        return
      }
      if !ok {
        log.Warn("Scheduled batch skipped, another run holds the lock")
        return
      }
      defer release()
      if _, err := monitorService.RunBatch(context.Background()); err != nil {
        log.Error("Scheduled batch failed", "error", err)
      }
    })
    if err != nil {
      log.Error("Invalid MONITOR_CRON expression", "expr", monitorCron, "error", err)
      os.Exit(1)
    }
    c.Start()
    log.Info("In-process monitoring schedule started", "expr", monitorCron)
  }

  // Handlers
  log.Info("Setting up handlers from main...")
  monitorHandler := handlers.NewMonitorHandler(log, monitorService, batchLock)
  statsHandler := handlers.NewStatsHandler(statsService)
  notificationHandler := handlers.NewNotificationHandler(notificationService)
  entryHandler := handlers.NewMonitoringEntryHandler(entryService)

  // Middleware
  schedulerMiddleware := middleware.NewSchedulerMiddleware(log, schedulerToken)

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    SchedulerMiddleware:    schedulerMiddleware,
    MonitorHandler:         monitorHandler,
    StatsHandler:           statsHandler,
    NotificationHandler:    notificationHandler,
    MonitoringEntryHandler: entryHandler,
  })

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Warn("Server failed", "error", err)
  }
}
