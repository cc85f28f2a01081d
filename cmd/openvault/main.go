package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/openvault/openvault/internal/config"
	"github.com/openvault/openvault/internal/db"
	"github.com/openvault/openvault/internal/filestore"
	"github.com/openvault/openvault/internal/handler"
	"github.com/openvault/openvault/internal/job"
	"github.com/openvault/openvault/internal/mail"
	"github.com/openvault/openvault/internal/middleware"
	"github.com/openvault/openvault/internal/ratelimit"
	"github.com/openvault/openvault/internal/repo"
	"github.com/openvault/openvault/internal/schedule"
	"github.com/openvault/openvault/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "openvault",
		Short: "openvault document sharing server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run openvault server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			database, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(database); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, database)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, database *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("base_url", cfg.BaseURL),
		zap.String("file_store", cfg.FileStore.Type),
		zap.String("rate_limit_backend", cfg.RateLimit.Backend),
	)

	linkRepo := repo.NewLinkRepo(database)
	folderRepo := repo.NewFolderRepo(database)
	documentRepo := repo.NewDocumentRepo(database)
	authTokenRepo := repo.NewAuthTokenRepo(database)
	accessLogRepo := repo.NewAccessLogRepo(database)
	ndaRepo := repo.NewNdaRepo(database)
	auditRepo := repo.NewAuditRepo(database)
	downloadRepo := repo.NewDownloadEventRepo(database)
	pageViewRepo := repo.NewPageViewRepo(database)
	roomRepo := repo.NewRoomRepo(database)
	notificationRepo := repo.NewNotificationRepo(database)

	sender := mail.NewSender(cfg.Mail)

	linkService := service.NewLinkService(linkRepo)
	scopeService := service.NewScopeService(folderRepo, documentRepo)
	magicService := service.NewMagicLinkService(authTokenRepo)
	sessionService := service.NewSessionService(accessLogRepo)
	ndaService := service.NewNdaService(ndaRepo)
	auditService := service.NewAuditService(auditRepo)
	engagementService := service.NewEngagementService(downloadRepo, pageViewRepo)
	roomService := service.NewRoomService(roomRepo)
	notifyService := service.NewNotifyService(roomRepo, notificationRepo, sender, cfg.BaseURL)
	stamper := service.NewWatermarkStamper()

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	var limiter ratelimit.Limiter
	var memoryLimiter *ratelimit.MemoryLimiter
	switch cfg.RateLimit.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		limiter = ratelimit.NewRedisLimiter(client)
	default:
		memoryLimiter = ratelimit.NewMemoryLimiter()
		limiter = memoryLimiter
	}

	viewerHandler := handler.NewViewerHandler(handler.ViewerHandlerDeps{
		Links:           linkService,
		Magic:           magicService,
		Sessions:        sessionService,
		Nda:             ndaService,
		Scope:           scopeService,
		Audit:           auditService,
		Notify:          notifyService,
		Limiter:         limiter,
		Sender:          sender,
		BaseURL:         cfg.BaseURL,
		SecureCookies:   strings.HasPrefix(cfg.BaseURL, "https://"),
		MagicLinkMax:    cfg.RateLimit.MagicLinkMax,
		MagicLinkWindow: time.Duration(cfg.RateLimit.MagicLinkWindowS) * time.Second,
	})
	documentHandler := handler.NewDocumentHandler(handler.DocumentHandlerDeps{
		Links:      linkService,
		Sessions:   sessionService,
		Nda:        ndaService,
		Scope:      scopeService,
		Rooms:      roomService,
		Engagement: engagementService,
		Stamper:    stamper,
		Store:      store,
	})
	beaconHandler := handler.NewBeaconHandler(sessionService, engagementService)

	deps := handler.RouterDeps{
		Viewer:    viewerHandler,
		Documents: documentHandler,
		Beacon:    beaconHandler,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.New()
	if memoryLimiter != nil {
		sweepJob := job.NewRateLimitSweepJob(memoryLimiter, time.Duration(cfg.RateLimit.SweepMaxAgeSecond)*time.Second)
		if err := scheduler.AddJob(sweepJob, cfg.RateLimit.SweepCron); err != nil {
			return fmt.Errorf("schedule sweep job: %w", err)
		}
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
