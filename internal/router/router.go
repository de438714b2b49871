package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"school-admin/internal/config"
	"school-admin/internal/handler"
	"school-admin/internal/metrics"
	"school-admin/internal/middleware"
	"school-admin/internal/model"
	"school-admin/internal/websocket"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Admin        *handler.AdminHandler
	Dimension    *handler.DimensionHandler
	Folder       *handler.FolderHandler
	Lock         *handler.LockHandler
	Task         *handler.TaskHandler
	Trash        *handler.TrashHandler
	Storage      *handler.StorageHandler
	Announcement *handler.AnnouncementHandler
	Activity     *handler.ActivityHandler
	Feed         *websocket.Handler
}

// New builds the route tree. m may be nil when metrics are disabled.
func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, m *metrics.Metrics, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)
	if m != nil {
		r.Use(m.Middleware)
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(root chi.Router) {
		// The feed is long-lived and hijacks the connection, so it stays
		// outside the request timeout.
		if h.Feed != nil {
			root.With(authMiddleware.RequireAuth).Get("/ws", h.Feed.ServeWS)
		}

		root.Group(func(api chi.Router) {
			api.Use(middleware.Timeout(cfg.RequestTimeout))

			api.Route("/auth", func(auth chi.Router) {
				auth.Post("/login", h.Auth.Login)
				auth.Post("/refresh", h.Auth.Refresh)
				auth.Post("/logout", h.Auth.Logout)
			})

			api.Group(func(p chi.Router) {
				p.Use(authMiddleware.RequireAuth)

				p.Get("/me", h.Admin.Me)
				p.Patch("/me", h.Admin.UpdateMe)

				p.Route("/admins", func(admins chi.Router) {
					admins.Use(authMiddleware.RequireRoles(model.RoleSuperAdmin, model.RoleAdmin, model.RoleOFP))
					admins.Get("/", h.Admin.List)
					admins.Post("/", h.Admin.Provision)
					admins.Delete("/{id}", h.Admin.Delete)
					admins.Post("/{id}/force-sign-out", h.Admin.ForceSignOut)
				})

				p.Get("/dimensions", h.Dimension.List)
				p.Post("/dimensions", h.Dimension.Create)
				p.Put("/dimensions/{id}", h.Dimension.Update)

				p.Post("/folders", h.Folder.CreateFolder)
				p.Get("/folders/{id}/contents", h.Folder.Contents)
				p.Delete("/folders/{id}", h.Folder.DeleteFolder)
				p.Get("/folders/{id}/lock", h.Lock.Status)
				p.Post("/folders/{id}/unlock", h.Lock.Unlock)
				p.Post("/folders/{id}/unlock/verify", h.Lock.Verify)

				p.Post("/files", h.Folder.RegisterFile)
				p.Put("/files/{id}/rename", h.Folder.RenameFile)
				p.Put("/files/{id}/move", h.Folder.MoveFile)
				p.Delete("/files/{id}", h.Folder.DeleteFile)

				p.Get("/tasks", h.Task.List)
				p.Post("/tasks", h.Task.Create)
				p.Get("/tasks/incomplete-count", h.Task.IncompleteCount)
				p.Get("/tasks/mine", h.Task.Mine)
				p.Get("/tasks/{id}", h.Task.Get)
				p.Put("/tasks/{id}", h.Task.Update)
				p.Delete("/tasks/{id}", h.Task.Delete)
				p.Post("/tasks/{id}/submissions", h.Task.Submit)
				p.Post("/tasks/{id}/review", h.Task.Review)
				p.Get("/tasks/{id}/revisions", h.Task.Revisions)
				p.Get("/submissions", h.Task.Submissions)
				p.Get("/revisions/pending-count", h.Task.PendingRevisions)

				p.Get("/trash", h.Trash.List)
				p.Get("/trash/{id}/items", h.Trash.Items)
				p.Post("/trash/{id}/restore", h.Trash.Restore)

				p.Get("/storage/dimensions", h.Storage.Dimensions)
				p.Get("/storage/overall", h.Storage.Overall)

				p.Get("/announcements", h.Announcement.List)
				p.Get("/announcements/active", h.Announcement.Active)
				p.Post("/announcements", h.Announcement.Create)
				p.Put("/announcements/{id}", h.Announcement.Update)
				p.Delete("/announcements/{id}", h.Announcement.Delete)
				p.Post("/announcements/{id}/dismiss", h.Announcement.Dismiss)

				p.Get("/activity", h.Activity.List)
				p.Get("/activity/system", h.Activity.System)
			})
		})
	})

	return r
}
