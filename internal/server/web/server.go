// Package web is the HTTP surface of the server: routing, session cookie
// handling, and the thin HTML/JSON handlers over the application services.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/attachments"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/dmitrijs2005/taskkeeper/internal/server/storage"
)

type Server struct {
	echo    *echo.Echo
	logger  logging.Logger
	users   *services.UserService
	tasks   *services.TaskService
	uploads *attachments.Handler
	store   storage.BlobStore

	addr            string
	sessionValidity time.Duration
}

func NewServer(cfg *config.Config, logger logging.Logger, users *services.UserService,
	tasks *services.TaskService, uploads *attachments.Handler, store storage.BlobStore) (*Server, error) {

	s := &Server{
		logger:          logger,
		users:           users,
		tasks:           tasks,
		uploads:         uploads,
		store:           store,
		addr:            cfg.EndpointAddrHTTP,
		sessionValidity: cfg.SessionValidityDuration,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	renderer, err := newRenderer()
	if err != nil {
		return nil, err
	}
	e.Renderer = renderer

	s.routes(e)
	s.echo = e

	return s, nil
}

func (s *Server) routes(e *echo.Echo) {
	// Public pages: listing and detail are visible to any viewer.
	e.GET("/", s.index)
	e.GET("/task/:id", s.viewTask)
	e.GET("/uploads/:filename", s.serveUpload)

	e.GET("/register", s.registerForm)
	e.POST("/register", s.register)
	e.GET("/login", s.loginForm)
	e.POST("/login", s.login)
	e.GET("/logout", s.logout)

	// Mutations require a session.
	e.POST("/", s.addTask, s.requireAuth)
	e.POST("/toggle/:id", s.toggleTask, s.requireAuth)
	e.POST("/record", s.recordUpload, s.requireAuthJSON)
}

// Run starts the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}
