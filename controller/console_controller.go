package controller

import (
	"context"
	"net/http"

	"orgconsole/models"
	"orgconsole/services"
	"orgconsole/views"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// csrfFieldName is the hidden field gorilla/csrf reads the token from
const csrfFieldName = "gorilla.csrf.Token"

// ConsoleController renders the console and handles navigation and modals
type ConsoleController struct {
	handler
	ctx    context.Context
	config *models.Config
}

func NewConsoleController(ctx context.Context, h handler, cfg *models.Config) *ConsoleController {
	return &ConsoleController{
		handler: h,
		ctx:     ctx,
		config:  cfg,
	}
}

// Index handles GET /
func (h *ConsoleController) Index(c *gin.Context) {
	console, ok := h.console(c)
	if !ok {
		return
	}

	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, views.PageTemplate, views.Page{
		Snapshot: console.Snapshot(),
		AppName:  h.config.AppName,
		CSRF:     csrf.TemplateField(c.Request),
	})
}

// OrganizationAccess handles POST /nav/organizations
func (h *ConsoleController) OrganizationAccess(c *gin.Context) {
	h.dispatch(c, services.SelectOrganizationAccess{})
}

// UsersDirectory handles POST /nav/users
func (h *ConsoleController) UsersDirectory(c *gin.Context) {
	h.dispatch(c, services.SelectUsersDirectory{})
}

// UserRegistration handles POST /nav/register
func (h *ConsoleController) UserRegistration(c *gin.Context) {
	h.dispatch(c, services.OpenUserRegistration{})
}

// BackToMain handles POST /nav/main
func (h *ConsoleController) BackToMain(c *gin.Context) {
	h.dispatch(c, services.BackToMain{})
}

// SelectTab handles POST /nav/tab/:tab
func (h *ConsoleController) SelectTab(c *gin.Context) {
	tab, ok := models.ParseTab(c.Param("tab"))
	if !ok {
		c.JSON(http.StatusNotFound, models.APIResponse{
			Status:  "error",
			Code:    http.StatusNotFound,
			Message: "Unknown tab",
			Error: &models.APIError{
				Type:    "NotFound",
				Details: "tab must be organizations or users",
			},
		})
		return
	}
	h.dispatch(c, services.SelectTab{Tab: tab})
}

func (h *ConsoleController) CloseModal(c *gin.Context) {
	h.dispatch(c, services.CloseModal{})
}

func (h *ConsoleController) OpenLogin(c *gin.Context) {
	h.dispatch(c, services.OpenLogin{})
}

func (h *ConsoleController) OpenSignup(c *gin.Context) {
	h.dispatch(c, services.OpenSignup{})
}

// Submit handles POST /modal/submit with the open form's fields
func (h *ConsoleController) Submit(c *gin.Context) {
	console, ok := h.console(c)
	if !ok {
		return
	}

	if err := c.Request.ParseForm(); err != nil {
		h.logger.Warnf("Failed to parse form: %v", err)
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Status:  "error",
			Code:    http.StatusBadRequest,
			Message: "Invalid request",
			Error: &models.APIError{
				Type:    "ValidationError",
				Details: err.Error(),
			},
		})
		return
	}

	values := make(map[string]string, len(c.Request.PostForm))
	for name := range c.Request.PostForm {
		if name == csrfFieldName {
			continue
		}
		values[name] = c.Request.PostForm.Get(name)
	}

	if err := console.Submit(c.Request.Context(), values); err != nil {
		h.logger.Debugf("Ignoring submit: %v", err)
	}
	h.redirect(c, console)
}

// ConfirmDelete handles POST /delete/confirm
func (h *ConsoleController) ConfirmDelete(c *gin.Context) {
	console, ok := h.console(c)
	if !ok {
		return
	}
	if err := console.ConfirmDelete(c.Request.Context()); err != nil {
		h.logger.Debugf("Ignoring delete confirmation: %v", err)
	}
	h.redirect(c, console)
}

// Logout handles POST /auth/logout
func (h *ConsoleController) Logout(c *gin.Context) {
	console, ok := h.console(c)
	if !ok {
		return
	}
	console.Logout(c.Request.Context())
	h.redirect(c, console)
}

// DismissNotice handles POST /notice/dismiss
func (h *ConsoleController) DismissNotice(c *gin.Context) {
	console, ok := h.console(c)
	if !ok {
		return
	}
	console.DismissNotice()
	h.redirect(c, console)
}
