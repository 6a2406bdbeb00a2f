package controller

import (
	"context"

	"orgconsole/models"
	"orgconsole/services"

	"github.com/gin-gonic/gin"
)

// OrganizationController opens the organization modals
type OrganizationController struct {
	handler
	ctx context.Context
}

func NewOrganizationController(ctx context.Context, h handler) *OrganizationController {
	return &OrganizationController{
		handler: h,
		ctx:     ctx,
	}
}

// New handles POST /organizations/new
func (h *OrganizationController) New(c *gin.Context) {
	h.dispatch(c, services.OpenOrganizationForm{})
}

// Edit handles POST /organizations/:id/edit
func (h *OrganizationController) Edit(c *gin.Context) {
	id, ok := h.entityID(c)
	if !ok {
		return
	}
	h.dispatch(c, services.OpenOrganizationForm{ID: id})
}

// Delete handles POST /organizations/:id/delete; the delete itself waits for confirmation
func (h *OrganizationController) Delete(c *gin.Context) {
	id, ok := h.entityID(c)
	if !ok {
		return
	}
	h.dispatch(c, services.RequestDelete{Target: models.Target{Kind: models.EntityOrganization, ID: id}})
}
