// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "whvmatch/docs" // swagger docs
	"whvmatch/internal/bootstrap"
	"whvmatch/internal/cache"
	"whvmatch/internal/config"
	"whvmatch/internal/featureflags"
	"whvmatch/internal/middleware"
	"whvmatch/internal/models"
	"whvmatch/internal/notifications"
	"whvmatch/internal/observability"
	"whvmatch/internal/repository"
	"whvmatch/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo         repository.UserRepository
	profileRepo      repository.ProfileRepository
	jobRepo          repository.JobRepository
	likeRepo         repository.LikeRepository
	notificationRepo repository.NotificationRepository
	settingRepo      repository.NotificationSettingRepository

	notifier     *notifications.Notifier
	hub          *notifications.Hub
	likeFeed     *notifications.LikeFeed
	dispatcher   *notifications.Dispatcher
	featureFlags *featureflags.Manager

	identity            *service.IdentityResolver
	likeService         *service.LikeService
	notificationService *service.NotificationService
	profileService      *service.ProfileService
	jobService          *service.JobService
	browseService       *service.BrowseService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, rdb, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SeedDemo: cfg.SeedOnBoot})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, rdb)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and optionally
// performs explicit seeding. redisClient may be nil; realtime events then stay
// on this instance.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	templates, err := notifications.LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("load notification templates: %w", err)
	}

	s := &Server{
		config:           cfg,
		db:               db,
		redis:            redisClient,
		promMiddleware:   middleware.InitMetrics("whvmatch-api"),
		userRepo:         repository.NewUserRepository(db),
		profileRepo:      repository.NewProfileRepository(db),
		jobRepo:          repository.NewJobRepository(db),
		likeRepo:         repository.NewLikeRepository(db),
		notificationRepo: repository.NewNotificationRepository(db),
		settingRepo:      repository.NewNotificationSettingRepository(db),
		featureFlags:     featureflags.NewManager(cfg.FeatureFlags),
	}

	s.notifier = notifications.NewNotifier(redisClient)
	s.hub = notifications.NewHub("notifications")
	s.likeFeed = notifications.NewLikeFeed(s.notifier)
	dispatchTimeout := time.Duration(cfg.NotificationTimeoutSeconds) * time.Second
	if cfg.NotificationQueueSize > 0 {
		s.dispatcher = notifications.NewDispatcherWithQueue(cfg.NotificationWorkers, cfg.NotificationQueueSize, dispatchTimeout)
	} else {
		s.dispatcher = notifications.NewDispatcher(cfg.NotificationWorkers, dispatchTimeout)
	}

	s.identity = service.NewIdentityResolver(s.userRepo)
	s.notificationService = service.NewNotificationService(service.NotificationServiceConfig{
		Notifications: s.notificationRepo,
		Settings:      s.settingRepo,
		Users:         s.userRepo,
		Jobs:          s.jobRepo,
		Templates:     templates,
		Notifier:      s.notifier,
		Hub:           s.hub,
	})
	s.likeService = service.NewLikeService(s.likeRepo, s.userRepo, s.jobRepo,
		s.likeFeed, s.dispatcher, s.notificationService)
	s.profileService = service.NewProfileService(s.userRepo, s.profileRepo)
	s.jobService = service.NewJobService(s.jobRepo)
	s.browseService = service.NewBrowseService(s.profileRepo, s.jobRepo, s.likeRepo)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Propagates request ID and trace ID into the user context for the logger.
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so error responses still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "WHV Match Backend Metrics Dashboard",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)

	// WebSocket routes authenticate with a single-use ticket.
	ws := api.Group("/ws")
	ws.Post("/ticket", s.AuthRequired(), s.IssueWSTicket)
	ws.Get("/", s.AuthRequired(), s.WebsocketHandler())
	ws.Get("/likes", s.AuthRequired(), s.WebSocketLikesHandler())

	protected := api.Group("", s.AuthRequired())

	protected.Get("/features", s.GetFeatureFlags)

	profiles := protected.Group("/profiles")
	profiles.Get("/me", s.GetMyProfile)
	profiles.Put("/me", s.UpdateMyProfile)
	profiles.Get("/:id", s.GetPublicProfile)

	jobs := protected.Group("/jobs")
	jobs.Post("/", s.CreateJob)
	// Specific routes before the generic /:id route.
	jobs.Get("/mine", s.GetMyJobs)
	jobs.Post("/:id/close", s.CloseJob)
	jobs.Put("/:id", s.UpdateJob)
	jobs.Get("/:id", s.GetJob)

	browse := protected.Group("/browse")
	browse.Get("/makers", s.BrowseMakers)
	browse.Get("/jobs", s.BrowseJobs)

	likeLimit := s.config.LikeRateLimit
	if likeLimit <= 0 {
		likeLimit = 60
	}
	likes := protected.Group("/likes")
	likes.Post("/", middleware.RateLimit(s.redis, likeLimit, time.Minute, "like"), s.Like)
	likes.Delete("/", middleware.RateLimit(s.redis, likeLimit, time.Minute, "like"), s.Unlike)
	likes.Get("/status", s.GetLikeStatus)

	protected.Get("/matches", s.GetMatches)

	notifs := protected.Group("/notifications")
	notifs.Get("/", s.GetNotifications)
	notifs.Get("/unread-count", s.GetUnreadCount)
	notifs.Post("/read-all", s.MarkAllNotificationsRead)
	notifs.Post("/:id/read", s.MarkNotificationRead)

	settings := protected.Group("/notification-settings")
	settings.Get("/", s.GetNotificationSettings)
	settings.Put("/", s.UpdateNotificationSettings)
}

// LivenessCheck reports that the process is up
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports whether the database and Redis are reachable
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis is optional: without it realtime delivery stays on this instance.
	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"like_feed_subscribers": s.likeFeed.SubscriberCount(),
		"websocket_connections": s.hub.ConnectionCount(),
		"time":                  time.Now(),
	})
}

// AuthRequired returns the authentication middleware. WebSocket routes accept a
// single-use ticket from the query string; everything else needs a Bearer token.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		isWSPath := strings.HasPrefix(c.Path(), "/api/ws") && c.Path() != "/api/ws/ticket"

		if ticket := c.Query("ticket"); ticket != "" && isWSPath {
			userID, role, err := s.redeemWSTicket(c.Context(), ticket)
			if err != nil {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
			}
			middleware.SetIdentity(c, userID, role)
			return c.Next()
		}

		tokenString, ok := middleware.BearerToken(c.Get("Authorization"))
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := middleware.ParseToken(s.config.JWTSecret, tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		middleware.SetIdentity(c, claims.UserID, claims.Role)
		return c.Next()
	}
}

// redeemWSTicket consumes ticket atomically. Tickets hold "userID:role".
func (s *Server) redeemWSTicket(ctx context.Context, ticket string) (uint, string, error) {
	if s.redis == nil {
		return 0, "", errors.New("websocket tickets need redis")
	}
	ctx, span := observability.TraceRedisOperation(ctx, "getdel")
	defer span.End()

	val, err := s.redis.GetDel(ctx, cache.WSTicketKey(ticket)).Result()
	if err != nil {
		span.RecordError(err)
		return 0, "", err
	}

	idPart, role, _ := strings.Cut(val, ":")
	userID, err := strconv.ParseUint(idPart, 10, 32)
	if err != nil || userID == 0 {
		return 0, "", fmt.Errorf("malformed websocket ticket %q", val)
	}
	return uint(userID), role, nil
}

// App builds the Fiber application with middleware and routes.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "WHV Match API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return c.Status(fiberErr.Code).JSON(models.ErrorResponse{Error: fiberErr.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error",
				slog.String("path", c.Path()),
				slog.String("error", err.Error()),
			)
			return models.RespondWithError(c, models.StatusForError(err), err)
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.App()

	if s.notifier.Enabled() {
		if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
			middleware.Logger.Error("failed to start notification wiring", slog.String("error", err.Error()))
		}
		if err := s.likeFeed.StartRelay(s.shutdownCtx); err != nil {
			middleware.Logger.Error("failed to start like feed relay", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	// Live like streams end when the feed closes.
	s.likeFeed.Close()
	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down hub", slog.String("error", err.Error()))
	}

	// Pending notifications still need the database.
	s.dispatcher.Wait()

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
