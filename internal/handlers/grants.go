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

type GrantHandler struct {
	svc *services.GrantService
}

func NewGrantHandler(db *gorm.DB, resolver *access.Resolver) (*GrantHandler, error) {
	svc, err := services.NewGrantService(db, resolver)
	if err != nil {
		return nil, err
	}
	return &GrantHandler{svc: svc}, nil
}

type createGrantRequest struct {
	ResourceType string         `json:"resource_type" binding:"required"`
	ResourceID   string         `json:"resource_id" binding:"required"`
	UserID       *string        `json:"user_id"`
	TeamID       *string        `json:"team_id"`
	RoleID       *string        `json:"role_id"`
	Permission   string         `json:"permission" binding:"required"`
	ExpiresAt    *time.Time     `json:"expires_at"`
	Metadata     map[string]any `json:"metadata"`
}

// POST /api/grants
func (h *GrantHandler) Create(c *gin.Context) {
	requesterID, ok := middleware.RequesterID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var body createGrantRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, errors.ErrBadRequest)
		return
	}

	capability, err := access.ParseCapability(body.Permission)
	if err != nil {
		response.Error(c, errors.NewBadRequest(err.Error()))
		return
	}

	grant, err := h.svc.CreateGrant(requestContext(c), requesterID, services.CreateGrantInput{
		ResourceType:   body.ResourceType,
		ResourceID:     body.ResourceID,
		UserID:         body.UserID,
		TeamID:         body.TeamID,
		RoleID:         body.RoleID,
		PermissionType: capability,
		ExpiresAt:      body.ExpiresAt,
		Metadata:       body.Metadata,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, grant)
}

type updateGrantRequest struct {
	Permission  *string    `json:"permission"`
	ExpiresAt   *time.Time `json:"expires_at"`
	ClearExpiry bool       `json:"clear_expiry"`
}

// PATCH /api/grants/:id
func (h *GrantHandler) Update(c *gin.Context) {
	requesterID, ok := middleware.RequesterID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var body updateGrantRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, errors.ErrBadRequest)
		return
	}

	input := services.UpdateGrantInput{
		ExpiresAt:   body.ExpiresAt,
		ClearExpiry: body.ClearExpiry,
	}
	if body.Permission != nil {
		capability, err := access.ParseCapability(*body.Permission)
		if err != nil {
			response.Error(c, errors.NewBadRequest(err.Error()))
			return
		}
		input.PermissionType = &capability
	}

	grant, err := h.svc.UpdateGrant(requestContext(c), requesterID, c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, grant)
}

// DELETE /api/grants/:id
func (h *GrantHandler) Delete(c *gin.Context) {
	requesterID, ok := middleware.RequesterID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.svc.DeleteGrant(requestContext(c), requesterID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GET /api/grants?resource_type=...&resource_id=...
func (h *GrantHandler) List(c *gin.Context) {
	requesterID, ok := middleware.RequesterID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	resourceType := c.Query("resource_type")
	resourceID := c.Query("resource_id")
	if resourceType == "" || resourceID == "" {
		response.Error(c, errors.ErrBadRequest)
		return
	}

	grants, err := h.svc.ListGrants(requestContext(c), requesterID, resourceType, resourceID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, grants)
}
