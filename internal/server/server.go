// Package server wires the HTTP surface: middleware, route groups and
// the handlers behind them.
package server

import (
	"errors"
	"strings"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"
	"inkwell/internal/token"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

const sessionCookie = "session"

// Server holds the application, its configuration and the service layer.
type Server struct {
	app    *fiber.App
	config *config.Config
	db     *gorm.DB

	issuer   *token.Issuer
	users    *service.UserService
	posts    *service.PostService
	comments *service.CommentService
	follows  *service.FollowService
	access   *service.AccessControl

	// Repositories the admin surface reaches past the services for.
	userRepo    repository.UserRepository
	commentRepo repository.CommentRepository
	tagRepo     repository.TagRepository
}

// NewServer connects the database and builds a fully wired server.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db)
}

// NewServerWithDeps builds a server on an existing database handle.
// Tests use this with the in-memory store.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB) (*Server, error) {
	issuer, err := token.NewIssuer(cfg.JWTSecret, 7*24*time.Hour)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	tagRepo := repository.NewTagRepository(db)
	followRepo := repository.NewFollowRepository(db)

	access := service.NewAccessControl(userRepo)

	s := &Server{
		config:   cfg,
		db:       db,
		issuer:   issuer,
		users:    service.NewUserService(userRepo),
		posts:    service.NewPostService(postRepo, tagRepo, access),
		comments: service.NewCommentService(commentRepo, postRepo, access),
		follows:  service.NewFollowService(followRepo, userRepo),
		access:   access,

		userRepo:    userRepo,
		commentRepo: commentRepo,
		tagRepo:     tagRepo,
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "inkwell",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return c.Status(fiberErr.Code).JSON(models.ErrorResponse{Error: fiberErr.Message})
			}
			return models.RespondWithError(c, models.StatusOf(err), err)
		},
	})

	s.SetupMiddleware()
	s.SetupRoutes()
	return s, nil
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// DB exposes the database handle for tests and seeding.
func (s *Server) DB() *gorm.DB {
	return s.db
}

// SetupMiddleware installs the global middleware chain. Order matters:
// recover first, then request identity and tracing so everything after
// logs with correlation ids.
func (s *Server) SetupMiddleware() {
	s.app.Use(recover.New())
	s.app.Use(requestid.New())
	if s.config.TracingEnabled {
		s.app.Use(middleware.TracingMiddleware())
	}
	s.app.Use(middleware.ContextMiddleware())
	s.app.Use(helmet.New())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))
	s.app.Use(middleware.Locale(s.config.DefaultLocale))
	s.app.Use(middleware.StructuredLogger())

	prom := middleware.InitMetrics("inkwell")
	prom.RegisterAt(s.app, "/metrics")
	s.app.Use(middleware.MetricsMiddleware(prom))
}

// SetupRoutes registers every route group.
func (s *Server) SetupRoutes() {
	s.app.Get("/healthz", s.HealthCheck)
	s.app.Get("/readyz", s.ReadinessCheck)

	authLimiter := middleware.RateLimit(cache.GetClient(), 10, time.Minute, "auth")

	auth := s.app.Group("/auth")
	auth.Post("/register", authLimiter, s.Register)
	auth.Post("/login", authLimiter, s.Login)
	auth.Post("/logout", s.Logout)
	auth.Post("/api", authLimiter, s.TokenLogin)
	auth.Post("/oauth/:provider", authLimiter, s.OAuthResolve)
	auth.Get("/edit_profile", s.AuthRequired, s.GetProfile)
	auth.Post("/edit_profile", s.AuthRequired, s.EditProfile)
	auth.Post("/follow/:username", s.AuthRequired, s.FollowUser)
	auth.Post("/unfollow/:username", s.AuthRequired, s.UnfollowUser)

	blog := s.app.Group("/blog", s.OptionalAuth)
	blog.Get("/", s.PageCache(), s.Home)
	blog.Get("/home", s.PageCache(), s.Home)
	blog.Get("/followed_posts", s.AuthRequired, s.FollowedPosts)
	blog.Post("/new_post", s.AuthRequired, s.NewPost)
	blog.Post("/edit/:id", s.AuthRequired, s.EditPost)
	blog.Get("/post/:id", s.PageCache(), s.ShowPost)
	blog.Post("/post/:id", s.AuthRequired, s.AddComment)
	blog.Get("/tag/:title", s.PageCache(), s.PostsByTag)
	blog.Get("/user/:username", s.PageCache(), s.PostsByUser)

	api := s.app.Group("/api")
	api.Get("/post", s.APIListPosts)
	api.Get("/post/:id", s.APIGetPost)
	api.Post("/post", s.AuthRequired, s.APICreatePost)
	api.Put("/post/:id", s.AuthRequired, s.APIUpdatePost)
	api.Delete("/post/:id", s.AuthRequired, s.APIDeletePost)
	api.Get("/post/:id/comments", s.APIListComments)
	api.Post("/comment", s.AuthRequired, s.APICreateComment)
	api.Put("/comment/:id", s.AuthRequired, s.APIUpdateComment)
	api.Delete("/comment/:id", s.AuthRequired, s.APIDeleteComment)

	admin := s.app.Group("/admin", s.AuthRequired, s.AdminRequired)
	admin.Get("/users", s.AdminListUsers)
	admin.Get("/users/:id", s.AdminGetUser)
	admin.Put("/users/:id", s.AdminUpdateUser)
	admin.Post("/users/:id/roles/:role", s.AdminGrantRole)
	admin.Delete("/users/:id/roles/:role", s.AdminRevokeRole)
	admin.Get("/roles", s.AdminListRoles)
	admin.Post("/roles", s.AdminCreateRole)
	admin.Get("/posts", s.AdminListPosts)
	admin.Delete("/posts/:id", s.AdminDeletePost)
	admin.Get("/comments", s.AdminListComments)
	admin.Delete("/comments/:id", s.AdminDeleteComment)
	admin.Get("/tags", s.AdminListTags)
	admin.Delete("/tags/:id", s.AdminDeleteTag)
}

// bearerOrSession extracts the signed token from the Authorization
// header, falling back to the session cookie set by the web login.
func bearerOrSession(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Cookies(sessionCookie)
}

// AuthRequired rejects the request before any store access when no
// valid identity is presented.
func (s *Server) AuthRequired(c *fiber.Ctx) error {
	raw := bearerOrSession(c)
	if raw == "" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthenticatedError("Missing or invalid token"))
	}
	userID, err := s.issuer.Identify(raw)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized, err)
	}

	user, err := s.users.GetByID(c.UserContext(), userID)
	if err != nil {
		// A token for a since-deleted user is an auth failure, not a 404.
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthenticatedError("Unknown user"))
	}

	c.Locals("userID", user.ID)
	c.Locals("user", user)
	c.Locals("roles", user.RoleNames())
	_ = s.access.TouchLastSeen(c.UserContext(), user.ID)
	return c.Next()
}

// OptionalAuth resolves an identity when one is presented and continues
// anonymously otherwise.
func (s *Server) OptionalAuth(c *fiber.Ctx) error {
	raw := bearerOrSession(c)
	if raw == "" {
		return c.Next()
	}
	userID, err := s.issuer.Identify(raw)
	if err != nil {
		return c.Next()
	}
	user, err := s.users.GetByID(c.UserContext(), userID)
	if err != nil {
		return c.Next()
	}
	c.Locals("userID", user.ID)
	c.Locals("user", user)
	c.Locals("roles", user.RoleNames())
	return c.Next()
}

// AdminRequired must run after AuthRequired.
func (s *Server) AdminRequired(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthenticatedError("Missing or invalid token"))
	}
	if err := s.access.RequireRole(c.UserContext(), userID, models.RoleAdmin); err != nil {
		return models.RespondWithError(c, models.StatusOf(err), err)
	}
	return c.Next()
}

// HealthCheck reports process liveness.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// ReadinessCheck reports whether the database answers.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.UserContext())
	}
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
	}
	status := fiber.Map{"status": "ready"}
	if client := cache.GetClient(); client != nil {
		if err := client.Ping(c.UserContext()).Err(); err != nil {
			status["cache"] = "unavailable"
		}
	}
	return c.JSON(status)
}

// Start listens on the configured port.
func (s *Server) Start() error {
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(10 * time.Second)
}
