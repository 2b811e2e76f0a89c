package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"sst_backend/internal/config"
	"sst_backend/internal/controller"
	"sst_backend/internal/repository"
	"sst_backend/internal/service"
	"sst_backend/pkg/configwatcher"
	"sst_backend/pkg/database"
	"sst_backend/pkg/logger"
	"sst_backend/pkg/monitoring"
	"sst_backend/pkg/security"
	"sst_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	services *services

	configMu        sync.RWMutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	worker       *repository.WorkerRepository
	course       *repository.CourseRepository
	enrollment   *repository.EnrollmentRepository
	progress     *repository.ProgressRepository
	lesson       *repository.LessonRepository
	survey       *repository.SurveyRepository
	evaluation   *repository.EvaluationRepository
	certificate  *repository.CertificateRepository
	notification *repository.NotificationRepository
	reinduction  *repository.ReinductionRepository
	dashboard    *repository.DashboardRepository
}

type services struct {
	auth         *service.AuthService
	storage      service.StorageProvider
	course       *service.CourseService
	enrollment   *service.EnrollmentService
	progress     *service.ProgressService
	completion   *service.CompletionService
	evaluation   *service.EvaluationService
	lesson       *service.LessonService
	survey       *service.SurveyService
	certificate  *service.CertificateService
	worker       *service.WorkerService
	reminder     *service.ReminderService
	dashboard    *service.DashboardService
	notification *service.NotificationService
}

type controllers struct {
	auth         *controller.AuthController
	course       *controller.CourseController
	enrollment   *controller.EnrollmentController
	progress     *controller.ProgressController
	evaluation   *controller.EvaluationController
	lesson       *controller.LessonController
	survey       *controller.SurveyController
	worker       *controller.WorkerController
	certificate  *controller.CertificateController
	dashboard    *controller.DashboardController
	notification *controller.NotificationController
	health       *controller.HealthController
}

// RegisterConfigCallback subscribes to config hot reloads. The callback runs
// on the watcher goroutine with the freshly loaded config.
func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configMu.Lock()
	a.configCallbacks = append(a.configCallbacks, callback)
	a.configMu.Unlock()
}

// CurrentConfig returns the live config. Hot reload swaps it under the same
// lock, so callers always see a consistent snapshot.
func (a *App) CurrentConfig() *config.Config {
	a.configMu.RLock()
	defer a.configMu.RUnlock()
	return a.Config
}

// applyConfig installs a reloaded config and fans it out to subscribers.
func (a *App) applyConfig(cfg *config.Config) {
	a.configMu.Lock()
	a.Config = cfg
	callbacks := make([]func(*config.Config), len(a.configCallbacks))
	copy(callbacks, a.configCallbacks)
	a.configMu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		worker:       repository.NewWorkerRepository(db),
		course:       repository.NewCourseRepository(db),
		enrollment:   repository.NewEnrollmentRepository(db),
		progress:     repository.NewProgressRepository(db),
		lesson:       repository.NewLessonRepository(db),
		survey:       repository.NewSurveyRepository(db),
		evaluation:   repository.NewEvaluationRepository(db),
		certificate:  repository.NewCertificateRepository(db),
		notification: repository.NewNotificationRepository(db),
		reinduction:  repository.NewReinductionRepository(db),
		dashboard:    repository.NewDashboardRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	storage, err := service.NewStorageProvider(&cfg.Storage)
	if err != nil {
		logger.Log.Fatal("Failed to initialize storage provider", zap.Error(err))
	}
	s.storage = storage

	renderer, err := service.NewHTMLCertificateRenderer()
	if err != nil {
		logger.Log.Fatal("Failed to initialize certificate renderer", zap.Error(err))
	}

	s.auth = service.NewAuthService(repos.user, repos.worker, cfg)
	s.completion = service.NewCompletionService(
		repos.course, repos.enrollment, repos.progress,
		repos.survey, repos.evaluation, repos.reinduction, db)
	s.progress = service.NewProgressService(
		repos.course, repos.enrollment, repos.progress, repos.lesson, s.completion, db)
	s.course = service.NewCourseService(repos.course, repos.lesson, s.storage, db)
	s.enrollment = service.NewEnrollmentService(
		repos.course, repos.enrollment, repos.worker, repos.reinduction, s.completion, db)
	s.certificate = service.NewCertificateService(
		repos.certificate, repos.user, repos.course, s.storage, renderer, db)
	s.evaluation = service.NewEvaluationService(
		repos.course, repos.enrollment, repos.evaluation, s.completion, s.certificate, db)
	s.lesson = service.NewLessonService(
		repos.lesson, repos.course, repos.enrollment, s.progress, db)
	s.survey = service.NewSurveyService(repos.survey, repos.enrollment, s.completion, db)
	s.worker = service.NewWorkerService(repos.worker, repos.user, repos.reinduction, db)
	s.dashboard = service.NewDashboardService(repos.dashboard)
	s.notification = service.NewNotificationService(repos.notification)

	s.reminder = service.NewReminderService(
		repos.enrollment, repos.notification, repos.reinduction, repos.worker,
		s.completion, rdb, time.Duration(cfg.Reminder.DedupHours)*time.Hour, db)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		course:       controller.NewCourseController(s.course),
		enrollment:   controller.NewEnrollmentController(s.enrollment),
		progress:     controller.NewProgressController(s.progress),
		evaluation:   controller.NewEvaluationController(s.evaluation),
		lesson:       controller.NewLessonController(s.lesson),
		survey:       controller.NewSurveyController(s.survey),
		worker:       controller.NewWorkerController(s.worker),
		certificate:  controller.NewCertificateController(s.certificate),
		dashboard:    controller.NewDashboardController(s.dashboard),
		notification: controller.NewNotificationController(s.notification),
		health:       controller.NewHealthController(db),
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

// startBackgroundTasks launches the reminder sweep and the overdue
// reinduction sweep on the configured interval.
func (a *App) startBackgroundTasks(s *services) {
	if !a.Config.Reminder.Enabled {
		return
	}

	interval := time.Duration(a.Config.Reminder.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			if err := s.reminder.Run(ctx); err != nil {
				logger.Log.Error("Reminder sweep failed", zap.Error(err))
			}
			if _, err := s.worker.MarkOverdueReinductions(time.Now().UTC()); err != nil {
				logger.Log.Error("Overdue reinduction sweep failed", zap.Error(err))
			}
			cancel()
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

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

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("sst-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(func(next *config.Config) {
		services.reminder.SetDedupWindow(time.Duration(next.Reminder.DedupHours) * time.Hour)
	})

	app.startBackgroundTasks(services)
	app.watchConfig()

	return app
}

// watchConfig hot-reloads the config file and fans the new config out to
// registered callbacks.
func (a *App) watchConfig() {
	go configwatcher.WatchConfig("configs/config.yaml", a.Config, func(cfg interface{}) {
		newCfg, ok := cfg.(*config.Config)
		if !ok {
			return
		}
		a.applyConfig(newCfg)
	})
}

func ginMode(mode string) string {
	switch mode {
	case "release":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
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
