package handler

import (
	"grievancedesk/backend/internal/livefeed"
	"grievancedesk/backend/internal/localization"
	"grievancedesk/backend/internal/models"
	"grievancedesk/backend/internal/notify"
	"grievancedesk/backend/internal/reports"

	"github.com/gin-gonic/gin"
)

// Handler holds what the HTTP surface needs to serve reports on behalf of the caller.
type Handler struct {
	Deps      reports.Deps
	Hub       *livefeed.ManagerService
	Auth      *Authenticator
	Localizer *localization.Localizer
	Notifier  notify.Notifier
}

func NewHandler(deps reports.Deps, hub *livefeed.ManagerService, auth *Authenticator,
	localizer *localization.Localizer, notifier notify.Notifier) *Handler {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Handler{
		Deps:      deps,
		Hub:       hub,
		Auth:      auth,
		Localizer: localizer,
		Notifier:  notifier,
	}
}

// Routes registers the authenticated API and the websocket endpoint.
func (h *Handler) Routes(r gin.IRouter) {
	api := r.Group("/api", h.Auth.Middleware())
	api.GET("/grievances", h.ListGrievances)
	api.POST("/grievances", h.SubmitGrievance)
	api.POST("/suspicious", h.CreateSuspicious)
	api.GET("/reports", h.ListReports)
	api.POST("/uploads", h.UploadEvidence)

	r.GET("/ws", h.Auth.Middleware(), h.ServeWebSocket)
}

// client returns a data-access client bound to the authenticated caller.
func (h *Handler) client(c *gin.Context) *reports.Client {
	return reports.NewClient(h.Deps, CurrentUser(c))
}

func (h *Handler) lang(c *gin.Context) string {
	return h.Localizer.PreferredLanguage(c.GetHeader("Accept-Language"))
}

// CurrentUser returns the user set by the auth middleware, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
