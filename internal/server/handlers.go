package server

import (
	"errors"
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/packsmith-labs/packsmith/internal/addon"
	"github.com/packsmith-labs/packsmith/internal/gateway"
	"github.com/packsmith-labs/packsmith/internal/pack"
)

func (s *Server) handleOpenSession(c *fiber.Ctx) error {
	id := s.sessions.open()
	return c.JSON(createResponse(SessionResponse{SessionID: id}, nil))
}

// handleUpload accepts multipart files into the session pool. Uploaded
// containers are extracted eagerly so relocations resolve against their
// members; the raw container is kept too for the in-container search path.
func (s *Server) handleUpload(c *fiber.Ctx) error {
	id := c.Params("id")

	form, err := c.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "multipart form required")
	}

	var inputs []addon.UploadedInput
	for _, header := range form.File["files"] {
		f, err := header.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("open upload %s: %v", header.Filename, err))
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("read upload %s: %v", header.Filename, err))
		}

		in := addon.UploadedInput{Name: header.Filename, Bytes: data, Origin: addon.OriginAsset}
		inputs = append(inputs, in)

		if in.IsContainer() {
			members, err := pack.ExtractContainer(in)
			if err != nil {
				log.Warn().Err(err).Str("name", in.Name).Msg("uploaded container not extractable, keeping raw")
				continue
			}
			inputs = append(inputs, members...)
		}
	}

	if !s.sessions.add(id, inputs...) {
		return fiber.NewError(fiber.StatusNotFound, "unknown session")
	}

	pool, _ := s.sessions.inputs(id)
	names := make([]string, len(pool))
	for i, in := range pool {
		names[i] = in.Name
	}
	return c.JSON(createResponse(UploadResponse{SessionID: id, Files: names}, nil))
}

func (s *Server) handleGenerate(c *fiber.Ctx) error {
	var req GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Prompt == "" {
		return fiber.NewError(fiber.StatusBadRequest, "prompt is required")
	}

	var inputs []addon.UploadedInput
	if req.SessionID != "" {
		pool, ok := s.sessions.inputs(req.SessionID)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "unknown session")
		}
		inputs = pool
	}

	result, err := s.gw.Invoke(c.UserContext(), req.Instruction, req.Prompt, inputs, req.Temperature)
	if err != nil {
		var genErr *gateway.GenerationError
		if errors.As(err, &genErr) {
			return fiber.NewError(fiber.StatusBadGateway, genErr.Error())
		}
		return err
	}

	return c.JSON(createResponse(GenerateResponse{Result: result}, nil))
}

func (s *Server) handlePackage(c *fiber.Ctx) error {
	var req PackageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.Files) == 0 && len(req.Relocations) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "nothing to package")
	}

	var inputs []addon.UploadedInput
	if req.SessionID != "" {
		if pool, ok := s.sessions.inputs(req.SessionID); ok {
			inputs = pool
		}
	}

	name := pack.SanitizeName(req.Name)
	data, warnings, err := pack.Assemble(name, req.Files, inputs, req.Relocations)
	if err != nil {
		return fmt.Errorf("assemble archive: %w", err)
	}

	if len(warnings) > 0 {
		if encoded, err := sonic.MarshalString(packageWarnings{Warnings: warnings}); err == nil {
			c.Set(PackageWarningsHeader, encoded)
		}
	}
	return sendArchive(c, name, data)
}

// handlePackageRaw combines up to two already-built containers verbatim.
func (s *Server) handlePackageRaw(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "multipart form required")
	}

	headers := form.File["containers"]
	if len(headers) == 0 || len(headers) > 2 {
		return fiber.NewError(fiber.StatusBadRequest, "one or two containers required")
	}

	containers := make([]addon.UploadedInput, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("open upload %s: %v", header.Filename, err))
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("read upload %s: %v", header.Filename, err))
		}
		containers = append(containers, addon.UploadedInput{Name: header.Filename, Bytes: data, Origin: addon.OriginAsset})
	}

	name := pack.SanitizeName(c.FormValue("name"))
	data, err := pack.AssembleFromRawContainers(name, containers...)
	if err != nil {
		return fmt.Errorf("combine containers: %w", err)
	}
	return sendArchive(c, name, data)
}

func sendArchive(c *fiber.Ctx, name string, data []byte) error {
	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name+".mcaddon"))
	return c.Send(data)
}
