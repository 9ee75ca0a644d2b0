package app

import (
	"cptncf_backend/internal/config"
	"cptncf_backend/internal/controller"
	"cptncf_backend/internal/repository"
	"cptncf_backend/internal/service"
	"cptncf_backend/pkg/database"
	"cptncf_backend/pkg/logger"
	"cptncf_backend/pkg/monitoring"
	"cptncf_backend/pkg/security"
	"cptncf_backend/pkg/tracing"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	user       *repository.UserRepository
	group      *repository.GroupRepository
	assessment *repository.AssessmentRepository
	question   *repository.QuestionRepository
	attempt    *repository.AttemptRepository
	evaluation *repository.PeerEvaluationRepository
	pattern    *repository.PatternRepository
	alert      *repository.AlertRepository
	grade      *repository.GradeRepository
	reflection *repository.ReflectionRepository
	material   *repository.MaterialRepository
}

type services struct {
	auth       *service.AuthService
	storage    *service.StorageService
	user       *service.UserService
	group      *service.GroupService
	assessment *service.AssessmentService
	attempt    *service.AttemptService
	evaluation *service.PeerEvaluationService
	analytics  *service.AnalyticsService
	grade      *service.GradeService
	reflection *service.ReflectionService
	material   *service.MaterialService
}

type controllers struct {
	auth       *controller.AuthController
	user       *controller.UserController
	assessment *controller.AssessmentController
	attempt    *controller.AttemptController
	evaluation *controller.PeerEvaluationController
	analytics  *controller.AnalyticsController
	grade      *controller.GradeController
	reflection *controller.ReflectionController
	material   *controller.MaterialController
	health     *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		group:      repository.NewGroupRepository(db),
		assessment: repository.NewAssessmentRepository(db),
		question:   repository.NewQuestionRepository(db),
		attempt:    repository.NewAttemptRepository(db),
		evaluation: repository.NewPeerEvaluationRepository(db),
		pattern:    repository.NewPatternRepository(db),
		alert:      repository.NewAlertRepository(db),
		grade:      repository.NewGradeRepository(db),
		reflection: repository.NewReflectionRepository(db),
		material:   repository.NewMaterialRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.group = service.NewGroupService(repos.group, repos.user)
	s.assessment = service.NewAssessmentService(repos.assessment, repos.question, rdb)

	s.analytics = service.NewAnalyticsService(
		repos.attempt,
		repos.question,
		repos.assessment,
		repos.evaluation,
		repos.pattern,
		repos.alert,
		repos.user,
		cfg,
	)

	s.attempt = service.NewAttemptService(
		repos.attempt,
		repos.assessment,
		repos.question,
		s.analytics,
		cfg,
	)

	s.evaluation = service.NewPeerEvaluationService(repos.evaluation, repos.user, s.analytics)

	s.grade = service.NewGradeService(
		repos.attempt,
		repos.question,
		repos.assessment,
		repos.evaluation,
		repos.pattern,
		repos.grade,
		repos.reflection,
		repos.user,
		repos.group,
	)

	s.reflection = service.NewReflectionService(repos.reflection)
	s.material = service.NewMaterialService(repos.material, s.storage)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth, s.user),
		user:       controller.NewUserController(s.user, s.group),
		assessment: controller.NewAssessmentController(s.assessment, s.auth),
		attempt:    controller.NewAttemptController(s.attempt, s.auth),
		evaluation: controller.NewPeerEvaluationController(s.evaluation, s.auth),
		analytics:  controller.NewAnalyticsController(s.analytics),
		grade:      controller.NewGradeController(s.grade, s.auth),
		reflection: controller.NewReflectionController(s.reflection, s.auth),
		material:   controller.NewMaterialController(s.material, s.auth),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(func(c *gin.Context) {
		c.Set("config", cfg)
		c.Next()
	})

	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(
		cfg.RateLimit.MaxRequests,
		time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute,
	))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks runs the periodic cohort-wide detection sweep.
// Per-student recomputation happens inline when responses and
// evaluations land; the sweep catches cross-student staleness.
func (a *App) startBackgroundTasks(s *services) {
	interval := time.Duration(a.Config.Detection.SweepMinutes) * time.Minute
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			if err := s.analytics.SweepAll(); err != nil {
				logger.Log.Error("detection sweep error", zap.Error(err))
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

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		_, err := tracing.InitTracer("cptncf-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
		router.Static("/api/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Persist any in-memory attempt sessions as abandoned before the
	// process exits.
	if a.services != nil && a.services.attempt != nil {
		a.services.attempt.Shutdown()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
