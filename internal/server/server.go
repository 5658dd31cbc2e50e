// Package server exposes the generation gateway and the packaging pipeline
// over HTTP. It is deliberately thin: forms, theming and editing live in the
// browser client, generation semantics live in the gateway, archive
// semantics live in pack.
package server

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/packsmith-labs/packsmith/internal/config"
	"github.com/packsmith-labs/packsmith/internal/gateway"
)

// Server wires the HTTP surface to the gateway and session pools.
type Server struct {
	App      *fiber.App
	cfg      *config.AppConfig
	gw       *gateway.Gateway
	sessions *sessionStore
}

func NewServer(cfg *config.AppConfig, gw *gateway.Gateway) *Server {
	app := fiber.New(fiber.Config{
		Prefork:      false,
		ErrorHandler: fiberErrHandler,
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		BodyLimit:    cfg.BodySizeLimit,
	})

	app.Use(recover.New())
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))

	s := &Server{
		App:      app,
		cfg:      cfg,
		gw:       gw,
		sessions: newSessionStore(cfg.SessionTTL),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(createResponse(map[string]string{"status": "ok"}, nil))
	})

	api := s.App.Group("/api/v1")
	api.Post("/session", s.handleOpenSession)
	api.Post("/session/:id/upload", s.handleUpload)
	api.Post("/generate", s.handleGenerate)
	api.Post("/package", s.handlePackage)
	api.Post("/package/raw", s.handlePackageRaw)
}

// Listen blocks serving the configured address.
func (s *Server) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Address, s.cfg.Port)
	log.Info().Str("addr", addr).Msg("server listening")
	return s.App.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.App.Shutdown()
}

func createResponse[T any](body T, err error) StdResponse[T] {
	if err != nil {
		errMsg := err.Error()
		return StdResponse[T]{Body: body, Error: &errMsg}
	}
	return StdResponse[T]{Body: body}
}

func fiberErrHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	log.Error().
		Err(err).
		Int("status_code", code).
		Str("path", ctx.Path()).
		Str("method", ctx.Method()).
		Msg("fiber error handler triggered")

	return ctx.Status(code).JSON(createResponse(map[string]interface{}{}, err))
}
