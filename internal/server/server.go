package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/tarjuma/tarjuma/internal/caption"
	"github.com/tarjuma/tarjuma/internal/export"
	"github.com/tarjuma/tarjuma/internal/logging"
	"github.com/tarjuma/tarjuma/internal/project"
)

// Transcriber is the captioning collaborator of the upload endpoint.
type Transcriber interface {
	TranscribeFile(ctx context.Context, path string) ([]caption.Line, error)
}

// Exporter is the rendering collaborator of the export endpoints.
type Exporter interface {
	Start(ctx context.Context, proj project.Project) error
	Status() export.Status
	Cancel()
	EmailResult(ctx context.Context, address string) error
}

// Server is the HTTP editing surface: it exposes the in-memory project
// store and the export pipeline to editing clients.
type Server struct {
	logger      *logging.Logger
	store       *project.Store
	exporter    Exporter
	transcriber Transcriber
	uploadDir   string
	validate    *validator.Validate
	app         *fiber.App
}

func New(
	logger *logging.Logger,
	store *project.Store,
	exporter Exporter,
	transcriber Transcriber,
	uploadDir string,
) *Server {
	s := &Server{
		logger:      logger,
		store:       store,
		exporter:    exporter,
		transcriber: transcriber,
		uploadDir:   uploadDir,
		validate:    validator.New(),
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 512 * 1024 * 1024, // uploads are whole videos
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(s.requestLogger)

	app.Get("/health", s.health)

	api := app.Group("/api")
	api.Get("/project", s.getProject)
	api.Put("/project", s.putProject)
	api.Post("/video", s.uploadVideo)
	api.Get("/captions/active", s.activeCaption)
	api.Post("/export", s.startExport)
	api.Get("/export", s.exportStatus)
	api.Delete("/export", s.cancelExport)
	api.Post("/export/email", s.emailExport)

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving HTTP on the address.
func (s *Server) Listen(addr string) error {
	s.logger.Infow("Starting editing surface", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown drains connections and stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	err := c.Next()
	s.logger.Debugw("Request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
	)
	return err
}

func respondError(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  "error",
		"message": message,
	})
}

func respondJSON(c *fiber.Ctx, statusCode int, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}

func formatValidationErrors(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fmt.Sprintf("field '%s' failed on the '%s' tag", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
