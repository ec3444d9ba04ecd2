package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lingo_edu_backend/internal/cms"
	"lingo_edu_backend/internal/config"
	"lingo_edu_backend/internal/controller"
	"lingo_edu_backend/internal/repository"
	"lingo_edu_backend/internal/service"
	"lingo_edu_backend/internal/store"
	"lingo_edu_backend/pkg/configwatcher"
	"lingo_edu_backend/pkg/database"
	"lingo_edu_backend/pkg/logger"
	"lingo_edu_backend/pkg/monitoring"
	"lingo_edu_backend/pkg/security"
	"lingo_edu_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	class    *repository.ClassRepository
	roadmap  *repository.RoadmapRepository
	vocab    *repository.VocabRepository
	exercise *repository.ExerciseRepository
	outbox   *repository.OutboxRepository
}

type services struct {
	auth     *service.AuthService
	class    *service.ClassService
	roadmap  *service.RoadmapService
	vocab    *service.VocabService
	exercise *service.ExerciseService
	report   *service.ReportService
	storage  *service.StorageService
	ai       *service.AIService
}

type controllers struct {
	auth     *controller.AuthController
	class    *controller.ClassController
	roadmap  *controller.RoadmapController
	vocab    *controller.VocabController
	exercise *controller.ExerciseController
	report   *controller.ReportController
	content  *controller.ContentController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		class:    repository.NewClassRepository(db),
		roadmap:  repository.NewRoadmapRepository(db),
		vocab:    repository.NewVocabRepository(db),
		exercise: repository.NewExerciseRepository(db),
		outbox:   repository.NewOutboxRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client, cmsClient *cms.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.class = service.NewClassService(repos.class, repos.user)
	s.roadmap = service.NewRoadmapService(repos.roadmap)
	s.vocab = service.NewVocabService(repos.vocab, store.NewVocabStore())
	s.exercise = service.NewExerciseService(repos.exercise, repos.outbox, cmsClient, cfg.CMS.MediaCollection, rdb)
	s.report = service.NewReportService(repos.class, repos.roadmap, repos.vocab, repos.user)
	s.ai = service.NewAIService(cfg.AI)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client, cmsClient *cms.Client) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		class:    controller.NewClassController(s.class),
		roadmap:  controller.NewRoadmapController(s.roadmap),
		vocab:    controller.NewVocabController(s.vocab),
		exercise: controller.NewExerciseController(s.exercise),
		report:   controller.NewReportController(s.report),
		content:  controller.NewContentController(s.ai, s.vocab, s.roadmap, s.storage, cmsClient),
		health:   controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 周期驱动CMS媒体补偿队列
func (a *App) startBackgroundTasks(s *services) {
	interval := a.Config.CMS.RetryInterval
	go func() {
		ticker := time.NewTicker(interval)
		for range ticker.C {
			if err := s.exercise.RetryPendingMedia(context.Background()); err != nil {
				logger.Log.Error("media outbox retry error", zap.Error(err))
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	cmsClient := cms.NewClient(cfg.CMS.BaseURL, cfg.CMS.Token, cfg.CMS.Timeout)

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb, cmsClient)
	app.services = services
	controllers := app.initControllers(services, db, rdb, cmsClient)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("lingo-edu-platform", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

	// 配置文件热更新
	go configwatcher.WatchConfig("configs/config.yaml", func(newCfg *config.Config) {
		logger.Log.Info("配置已重新加载")
		app.Config = newCfg
		for _, callback := range app.configCallbacks {
			callback(newCfg)
		}
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
