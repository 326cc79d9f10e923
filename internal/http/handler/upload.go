package handler

import (
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docspace/internal/service"
)

// UploadFormField is the multipart field of the upload endpoint.
const UploadFormField = "file"

// DownloadURLExpiry bounds the presigned links handed out by DownloadUpload.
const DownloadURLExpiry = 15 * time.Minute

func isNotFound(err error) bool {
	return errors.Is(err, service.ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}

// UploadFile is the upload collaborator: it answers JSON true once the file is
// stored, and false otherwise.
//
// @Summary Upload one file
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "file to upload"
// @Success 200 {boolean} boolean
// @Failure 400 {boolean} boolean
// @Failure 500 {boolean} boolean
// @Router /upload [post]
func UploadFile(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile(UploadFormField)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(false)
		}

		f, err := fh.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(false)
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = undeclaredType
		}

		if _, err := svc.Upload(c.UserContext(), f, fh.Filename, ct, fh.Size); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(false)
		}
		return c.JSON(true)
	}
}

// ListUploads pages through stored uploads, newest first.
//
// @Summary List uploads
// @Tags uploads
// @Produce json
// @Param limit query int false "page size" default(10)
// @Param offset query int false "offset" default(0)
// @Success 200 {object} service.UploadListResult
// @Failure 400 {object} errorPayload
// @Router /uploads [get]
func ListUploads(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetUpload returns one upload record.
//
// @Summary Get an upload
// @Tags uploads
// @Produce json
// @Param id path string true "upload id"
// @Success 200 {object} model.Upload
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /uploads/{id} [get]
func GetUpload(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		u, err := svc.Get(c.UserContext(), id)
		if err != nil {
			if isNotFound(err) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "upload not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(u)
	}
}

// UploadContent streams an upload's stored body back with its recorded type.
//
// @Summary Upload content
// @Tags uploads
// @Produce octet-stream
// @Param id path string true "upload id"
// @Success 200
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /uploads/{id}/content [get]
func UploadContent(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rc, u, err := svc.Open(c.UserContext(), id)
		if err != nil {
			if isNotFound(err) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "upload not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		ct := u.ContentType
		if ct == "" {
			ct = undeclaredType
		}
		// Attachment guesses a type from the extension; the recorded one wins.
		c.Attachment(u.OriginalName)
		c.Set(fiber.HeaderContentType, ct)
		// fasthttp closes rc once the body is written.
		return c.SendStream(rc, int(u.Size))
	}
}

// DownloadUpload redirects to a presigned object storage link.
//
// @Summary Upload download link
// @Tags uploads
// @Param id path string true "upload id"
// @Success 302
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /uploads/{id}/download [get]
func DownloadUpload(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		link, err := svc.DownloadURL(c.UserContext(), id, DownloadURLExpiry)
		if err != nil {
			if isNotFound(err) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "upload not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Redirect(link, fiber.StatusFound)
	}
}

// DeleteUpload removes an upload's object and record.
//
// @Summary Delete an upload
// @Tags uploads
// @Param id path string true "upload id"
// @Success 204
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /uploads/{id} [delete]
func DeleteUpload(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			if isNotFound(err) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "upload not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
