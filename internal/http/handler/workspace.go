package handler

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"docspace/internal/model"
	"docspace/internal/service"
)

// GetWorkspace returns the current snapshot.
//
// @Summary Workspace snapshot
// @Tags workspace
// @Produce json
// @Success 200 {object} snapshotView
// @Router /workspace [get]
func GetWorkspace(svc service.WorkspaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(newSnapshotView(svc.Snapshot()))
	}
}

// IngestFiles ingests a picker batch sent as repeated multipart "files" parts.
//
// @Summary Add files to the workspace
// @Tags workspace
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "files to ingest"
// @Success 200 {object} ingestView
// @Failure 400 {object} errorPayload
// @Router /workspace/files [post]
func IngestFiles(svc service.WorkspaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		files, err := formFiles(c, FilesField)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FORM", "multipart form expected")
		}
		if len(files) == 0 {
			return writeError(c, fiber.StatusBadRequest, "FILES_REQUIRED", "at least one file is required")
		}
		res := svc.Ingest(c.UserContext(), files)
		return c.JSON(newIngestView(res))
	}
}

// RemoveDocument removes a document. Unknown ids are accepted.
//
// @Summary Remove a document
// @Tags workspace
// @Param id path string true "document id"
// @Success 204
// @Router /workspace/documents/{id} [delete]
func RemoveDocument(svc service.WorkspaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		svc.Remove(c.Params("id"))
		return c.SendStatus(fiber.StatusNoContent)
	}
}

type activeRequest struct {
	ID string `json:"id"`
}

// SetActiveView opens a document in single-file preview.
//
// @Summary Open a document in preview
// @Tags workspace
// @Accept json
// @Produce json
// @Param body body activeRequest true "document to preview"
// @Success 200 {object} snapshotView
// @Failure 400 {object} errorPayload
// @Router /workspace/active [put]
func SetActiveView(svc service.WorkspaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req activeRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		return c.JSON(newSnapshotView(svc.SetActive(req.ID)))
	}
}

// ClearActiveView returns to the document list.
//
// @Summary Close the preview
// @Tags workspace
// @Produce json
// @Success 200 {object} snapshotView
// @Router /workspace/active [delete]
func ClearActiveView(svc service.WorkspaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(newSnapshotView(svc.SetActive("")))
	}
}

// ToggleSelection flips one document's selection.
//
// @Summary Toggle a document's selection
// @Tags workspace
// @Produce json
// @Param id path string true "document id"
// @Success 200 {object} snapshotView
// @Router /workspace/documents/{id}/toggle [post]
func ToggleSelection(svc service.WorkspaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(newSnapshotView(svc.ToggleSelection(c.Params("id"))))
	}
}

// SelectAll selects every document.
//
// @Summary Select all documents
// @Tags workspace
// @Success 200 {object} snapshotView
// @Router /workspace/selection [post]
func SelectAll(svc service.WorkspaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(newSnapshotView(svc.SelectAll()))
	}
}

// DeselectAll clears the selection.
//
// @Summary Deselect all documents
// @Tags workspace
// @Success 200 {object} snapshotView
// @Router /workspace/selection [delete]
func DeselectAll(svc service.WorkspaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(newSnapshotView(svc.DeselectAll()))
	}
}

// ToggleAll is the list header button.
//
// @Summary Select all, or deselect all when everything is selected
// @Tags workspace
// @Success 200 {object} snapshotView
// @Router /workspace/selection/toggle [post]
func ToggleAll(svc service.WorkspaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(newSnapshotView(svc.ToggleAll()))
	}
}

// ListSources returns the selected documents in workspace order.
//
// @Summary Selected sources
// @Tags workspace
// @Success 200 {array} documentView
// @Router /workspace/sources [get]
func ListSources(svc service.WorkspaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": newDocumentViews(svc.Sources())})
	}
}

// GetBlob streams the bytes behind a live object reference.
//
// @Summary Referenced file content
// @Tags workspace
// @Param handle path string true "object reference"
// @Success 200 {file} binary
// @Failure 404 {object} errorPayload
// @Router /workspace/blobs/{handle} [get]
func GetBlob(svc service.WorkspaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := svc.Blob(model.Handle(c.Params("handle")))
		if err != nil {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "object reference not found")
		}
		rc, err := f.Open()
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		ct := f.MediaType()
		if ct == "" {
			ct = undeclaredType
		}
		c.Set(fiber.HeaderContentType, ct)
		return c.Send(data)
	}
}
