// Package api is the HTTP surface: routing, the authorization gate, and
// one handler file per resource.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"backoffice/internal/auth"
	"backoffice/internal/config"
)

type Server struct {
	db     *gorm.DB
	cfg    *config.Config
	tokens *auth.Tokens
	perms  PermissionTable
	log    *zap.Logger
	echo   *echo.Echo
}

// New wires the routes. Everything the handlers need comes in here; no
// package-level state.
func New(db *gorm.DB, cfg *config.Config, log *zap.Logger) *Server {
	s := &Server{
		db:     db,
		cfg:    cfg,
		tokens: auth.NewTokens(cfg.TokenSecret),
		perms:  DefaultPermissions(),
		log:    log,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler
	e.Use(s.requestLogger)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	g := e.Group("/api", s.gate)

	g.POST("/auth/login", s.login)
	g.POST("/auth/logout", s.logout)
	g.GET("/auth/me", s.me)
	g.GET("/internal/user-data", s.userData)

	g.GET("/items", s.listItems)
	g.POST("/items", s.createItem)
	g.PUT("/items/:id", s.updateItem)
	g.DELETE("/items/:id", s.deleteItem)
	g.PATCH("/items/status", s.batchItemStatus)
	g.DELETE("/items", s.batchDeleteItems)

	g.GET("/todos", s.listTodos)
	g.POST("/todos", s.createTodo)
	g.PUT("/todos/:id", s.updateTodo)
	g.DELETE("/todos/:id", s.deleteTodo)

	g.GET("/events", s.listEvents)
	g.POST("/events", s.createEvent)
	g.PUT("/events/:id", s.updateEvent)
	g.DELETE("/events/:id", s.deleteEvent)

	g.GET("/dashboard", s.dashboard)

	// Built browser UI, same as serving ./static from the process root.
	e.Static("/", cfg.StaticDir)

	s.echo = e
	return s
}

// Handler exposes the server for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start blocks serving on the configured address.
func (s *Server) Start() error {
	s.log.Info("server starting", zap.String("addr", s.cfg.Addr))
	return s.echo.Start(s.cfg.Addr)
}
