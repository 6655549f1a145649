package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/tarjuma/tarjuma/internal/caption"
	"github.com/tarjuma/tarjuma/internal/project"
	"github.com/tarjuma/tarjuma/internal/video"
)

func (s *Server) health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "ok",
		"message": "tarjuma is healthy",
	})
}

func (s *Server) getProject(c *fiber.Ctx) error {
	return respondJSON(c, fiber.StatusOK, s.store.Read())
}

// putProject replaces the whole project. There is no partial-field API:
// editing clients read the current project and write a full replacement.
func (s *Server) putProject(c *fiber.Ctx) error {
	var proj project.Project
	if err := c.BodyParser(&proj); err != nil {
		return respondError(c, fiber.StatusBadRequest, fmt.Sprintf("invalid project payload: %v", err))
	}

	if err := s.validate.Struct(proj.Style); err != nil {
		return respondError(c, fiber.StatusUnprocessableEntity, formatValidationErrors(err))
	}
	if err := proj.Validate(); err != nil {
		return respondError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	s.store.Write(proj)
	return respondJSON(c, fiber.StatusOK, proj)
}

// uploadVideo accepts a video file, stores it, and captions it. A
// transcription failure does not roll back the upload: the project keeps
// the video with an empty caption list and the client is told.
func (s *Server) uploadVideo(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, fmt.Sprintf("error getting file: %v", err))
	}

	if !video.IsVideoFile(file.Filename) {
		return respondError(c, fiber.StatusUnsupportedMediaType,
			fmt.Sprintf("%s does not look like a video", file.Filename))
	}

	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		return respondError(c, fiber.StatusInternalServerError, fmt.Sprintf("error storing file: %v", err))
	}

	dest := filepath.Join(s.uploadDir, uuid.NewString()+filepath.Ext(file.Filename))
	if err := c.SaveFile(file, dest); err != nil {
		return respondError(c, fiber.StatusInternalServerError, fmt.Sprintf("error storing file: %v", err))
	}

	s.logger.Infow("Video uploaded", "file", file.Filename, "stored", dest)

	proj := s.store.Read().WithVideo(dest)

	var transcriptionError string
	var lines []caption.Line
	if s.transcriber != nil {
		lines, err = s.transcriber.TranscribeFile(c.Context(), dest)
		if err != nil {
			s.logger.Errorw("Transcription failed, keeping video with empty captions", "error", err)
			transcriptionError = err.Error()
			lines = nil
		}
	}
	proj = proj.WithLines(lines)
	s.store.Write(proj)

	payload := fiber.Map{"project": proj}
	if transcriptionError != "" {
		payload["transcriptionError"] = transcriptionError
	}
	return respondJSON(c, fiber.StatusOK, payload)
}

// activeCaption resolves the caption visible at a playback instant,
// with the same first-match rule the export uses.
func (s *Server) activeCaption(c *fiber.Ctx) error {
	t, err := strconv.ParseFloat(c.Query("t"), 64)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "query parameter 't' must be a number of seconds")
	}

	line := caption.Resolve(s.store.Read().Lines, t)
	if line == nil {
		return respondJSON(c, fiber.StatusOK, nil)
	}
	return respondJSON(c, fiber.StatusOK, line)
}

func (s *Server) startExport(c *fiber.Ctx) error {
	// the render outlives the request, so it gets its own context and
	// is stopped through the DELETE endpoint, not by the client hanging up
	if err := s.exporter.Start(context.Background(), s.store.Read()); err != nil {
		return respondError(c, fiber.StatusConflict, err.Error())
	}
	return respondJSON(c, fiber.StatusAccepted, s.exporter.Status())
}

func (s *Server) exportStatus(c *fiber.Ctx) error {
	return respondJSON(c, fiber.StatusOK, s.exporter.Status())
}

func (s *Server) cancelExport(c *fiber.Ctx) error {
	s.exporter.Cancel()
	return respondJSON(c, fiber.StatusOK, s.exporter.Status())
}

type emailRequest struct {
	Email string `json:"email"`
}

// emailExport sends the finished export's location. An empty address is
// accepted and ignored, matching the fire-and-forget contract.
func (s *Server) emailExport(c *fiber.Ctx) error {
	var req emailRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, fmt.Sprintf("invalid payload: %v", err))
	}

	if err := s.exporter.EmailResult(c.Context(), req.Email); err != nil {
		return respondError(c, fiber.StatusConflict, err.Error())
	}
	return respondJSON(c, fiber.StatusOK, fiber.Map{"accepted": true})
}
