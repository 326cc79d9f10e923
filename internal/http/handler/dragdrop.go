package handler

import (
	"github.com/gofiber/fiber/v2"

	"docspace/internal/dragdrop"
	"docspace/internal/service"
)

type dragRequest struct {
	Kind      dragdrop.Kind   `json:"kind"`
	Target    dragdrop.Target `json:"target"`
	FromChild bool            `json:"from_child"`
}

func validTarget(t dragdrop.Target) bool {
	return t == dragdrop.TargetLocal || t == dragdrop.TargetPage
}

// Drag forwards a dragover or dragleave and returns the resulting affordance state.
//
// @Summary Report a drag event
// @Tags dragdrop
// @Accept json
// @Produce json
// @Param body body dragRequest true "drag event"
// @Success 200 {object} dragdrop.State
// @Failure 400 {object} errorPayload
// @Router /workspace/drag [post]
func Drag(svc service.WorkspaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req dragRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.Kind != dragdrop.KindDragOver && req.Kind != dragdrop.KindDragLeave {
			return writeError(c, fiber.StatusBadRequest, "INVALID_KIND", "kind must be dragover or dragleave")
		}
		if !validTarget(req.Target) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_TARGET", "target must be local or page")
		}
		svc.Drag(c.UserContext(), dragdrop.Event{Kind: req.Kind, Target: req.Target, FromChild: req.FromChild})
		return c.JSON(svc.DragState())
	}
}

// Drop delivers a drop gesture. Repeating a gesture_id is reported as a duplicate
// and ingests nothing.
//
// @Summary Drop files
// @Tags dragdrop
// @Accept multipart/form-data
// @Produce json
// @Param files formData file false "dropped files"
// @Param target formData string true "local or page"
// @Param gesture_id formData string false "identifies the gesture across listeners"
// @Success 200 {object} dropView
// @Failure 400 {object} errorPayload
// @Router /workspace/drop [post]
func Drop(svc service.WorkspaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		files, err := formFiles(c, FilesField)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FORM", "multipart form expected")
		}
		target := dragdrop.Target(c.FormValue("target"))
		if !validTarget(target) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_TARGET", "target must be local or page")
		}

		out := svc.Drag(c.UserContext(), dragdrop.Event{
			ID:     c.FormValue("gesture_id"),
			Kind:   dragdrop.KindDrop,
			Target: target,
			Files:  files,
		})
		return c.JSON(dropView{
			Handled:    out.Handled,
			Duplicate:  out.Duplicate,
			Listener:   out.Listener,
			ingestView: newIngestView(out.Result),
			State:      svc.DragState(),
		})
	}
}

// DragState returns the drag affordance state.
//
// @Summary Drag affordance state
// @Tags dragdrop
// @Produce json
// @Success 200 {object} dragdrop.State
// @Router /workspace/drag [get]
func DragState(svc service.WorkspaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.DragState())
	}
}
