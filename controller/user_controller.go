package controller

import (
	"context"

	"orgconsole/models"
	"orgconsole/services"

	"github.com/gin-gonic/gin"
)

// UserController opens the user modals
type UserController struct {
	handler
	ctx context.Context
}

func NewUserController(ctx context.Context, h handler) *UserController {
	return &UserController{
		handler: h,
		ctx:     ctx,
	}
}

// New handles POST /users/new
func (h *UserController) New(c *gin.Context) {
	h.dispatch(c, services.OpenUserForm{})
}

// Edit handles POST /users/:id/edit
func (h *UserController) Edit(c *gin.Context) {
	id, ok := h.entityID(c)
	if !ok {
		return
	}
	h.dispatch(c, services.OpenUserForm{ID: id})
}

// Delete handles POST /users/:id/delete; the delete itself waits for confirmation
func (h *UserController) Delete(c *gin.Context) {
	id, ok := h.entityID(c)
	if !ok {
		return
	}
	h.dispatch(c, services.RequestDelete{Target: models.Target{Kind: models.EntityUser, ID: id}})
}
