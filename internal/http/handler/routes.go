package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"docspace/internal/events"
	"docspace/internal/service"
)

// Dependencies are the collaborators the HTTP bridge serves. Workspace is required;
// the others switch their routes off when nil.
type Dependencies struct {
	DB        Pinger
	Workspace service.WorkspaceService
	Uploads   service.UploadService
	Bus       *events.Bus
	Gatherer  prometheus.Gatherer
	Logger    *zap.Logger
}

// RegisterRoutes attaches every route to app.
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	app.Get("/health", HealthCheck(deps.DB))
	app.Get("/healthz", LivenessProbe())

	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	ws := app.Group("/workspace")
	svc := deps.Workspace
	ws.Get("/", GetWorkspace(svc))
	ws.Post("/files", IngestFiles(svc))
	ws.Delete("/documents/:id", RemoveDocument(svc))
	ws.Post("/documents/:id/toggle", ToggleSelection(svc))
	ws.Put("/active", SetActiveView(svc))
	ws.Delete("/active", ClearActiveView(svc))
	ws.Post("/selection", SelectAll(svc))
	ws.Delete("/selection", DeselectAll(svc))
	ws.Post("/selection/toggle", ToggleAll(svc))
	ws.Get("/sources", ListSources(svc))
	ws.Get("/blobs/:handle", GetBlob(svc))
	ws.Get("/drag", DragState(svc))
	ws.Post("/drag", Drag(svc))
	ws.Post("/drop", Drop(svc))
	if deps.Bus != nil {
		ws.Get("/events", RequireUpgrade(), Events(deps.Bus, svc, deps.Logger))
	}

	if deps.Uploads != nil {
		app.Post("/upload", UploadFile(deps.Uploads))
		app.Get("/uploads", ListUploads(deps.Uploads))
		app.Get("/uploads/:id", GetUpload(deps.Uploads))
		app.Get("/uploads/:id/content", UploadContent(deps.Uploads))
		app.Get("/uploads/:id/download", DownloadUpload(deps.Uploads))
		app.Delete("/uploads/:id", DeleteUpload(deps.Uploads))
	}
}
