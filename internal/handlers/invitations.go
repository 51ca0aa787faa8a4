package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/access"
	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/middleware"
	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/services"
	"github.com/ZephyrexTechnologies/ServerFramework-sub002/pkg/errors"
	"github.com/ZephyrexTechnologies/ServerFramework-sub002/pkg/response"
)

type InvitationHandler struct {
	svc *services.InvitationService
}

func NewInvitationHandler(db *gorm.DB, resolver *access.Resolver) (*InvitationHandler, error) {
	svc, err := services.NewInvitationService(db, resolver)
	if err != nil {
		return nil, err
	}
	return &InvitationHandler{svc: svc}, nil
}

// POST /api/invitations
func (h *InvitationHandler) Create(c *gin.Context) {
	requesterID, ok := middleware.RequesterID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var body struct {
		Email     string     `json:"email" binding:"required,email"`
		ExpiresAt *time.Time `json:"expires_at"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, errors.ErrBadRequest)
		return
	}

	inv, err := h.svc.Create(requestContext(c), requesterID, services.CreateInvitationInput{
		Email:     body.Email,
		ExpiresAt: body.ExpiresAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, inv)
}

// GET /api/invitations/:id
func (h *InvitationHandler) Get(c *gin.Context) {
	requesterID, ok := middleware.RequesterID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	inv, err := h.svc.Get(requestContext(c), requesterID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, inv)
}

// GET /api/invitations
func (h *InvitationHandler) List(c *gin.Context) {
	requesterID, ok := middleware.RequesterID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	invs, err := h.svc.List(requestContext(c), requesterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, invs)
}

// DELETE /api/invitations/:id
func (h *InvitationHandler) Delete(c *gin.Context) {
	requesterID, ok := middleware.RequesterID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.svc.Delete(requestContext(c), requesterID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
