package controller

import (
	"net/http"
	"strconv"

	"orgconsole/middelware"
	"orgconsole/models"
	"orgconsole/services"
	"orgconsole/utils/logger"

	"github.com/gin-gonic/gin"
)

// handler holds what every console handler needs
type handler struct {
	sessions *middelware.SessionManager
	logger   logger.Logger
}

// console returns the request's console, answering 500 when the session middleware did not run
func (h handler) console(c *gin.Context) (*services.Console, bool) {
	console, ok := middelware.ConsoleFrom(c)
	if !ok {
		h.logger.Error("Console missing from request context")
		c.JSON(http.StatusInternalServerError, models.APIResponse{
			Status:  "error",
			Code:    http.StatusInternalServerError,
			Message: "Session unavailable",
			Error: &models.APIError{
				Type:    "SessionError",
				Details: "no console bound to request",
			},
		})
		return nil, false
	}
	return console, true
}

// dispatch applies ev and redirects back to the page
func (h handler) dispatch(c *gin.Context, ev services.Event) {
	console, ok := h.console(c)
	if !ok {
		return
	}
	console.Dispatch(c.Request.Context(), ev)
	h.redirect(c, console)
}

// redirect refreshes the session cookie and sends the browser back to the page
func (h handler) redirect(c *gin.Context, console *services.Console) {
	if err := h.sessions.Persist(c, console); err != nil {
		h.logger.Errorf("Failed to persist session: %v", err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// entityID parses the :id route parameter
func (h handler) entityID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.logger.Warnf("Invalid id parameter: %q", c.Param("id"))
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Status:  "error",
			Code:    http.StatusBadRequest,
			Message: "Invalid request",
			Error: &models.APIError{
				Type:    "ValidationError",
				Details: "id must be a positive integer",
			},
		})
		return 0, false
	}
	return id, true
}
