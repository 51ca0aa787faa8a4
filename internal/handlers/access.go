package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/access"
	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/middleware"
	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/services"
	"github.com/ZephyrexTechnologies/ServerFramework-sub002/pkg/errors"
	"github.com/ZephyrexTechnologies/ServerFramework-sub002/pkg/metrics"
	"github.com/ZephyrexTechnologies/ServerFramework-sub002/pkg/response"
)

type AccessHandler struct {
	resolver *access.Resolver
	audit    *services.AccessAuditService
}

func NewAccessHandler(resolver *access.Resolver, audit *services.AccessAuditService) *AccessHandler {
	return &AccessHandler{resolver: resolver, audit: audit}
}

type checkAccessRequest struct {
	ResourceType string     `json:"resource_type" binding:"required"`
	ResourceID   string     `json:"resource_id" binding:"required"`
	Permission   string     `json:"permission" binding:"required"`
	MinimumRole  string     `json:"minimum_role"`
	At           *time.Time `json:"at"`
}

// POST /api/access/check
func (h *AccessHandler) Check(c *gin.Context) {
	requesterID, ok := middleware.RequesterID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var body checkAccessRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, errors.ErrBadRequest)
		return
	}

	capability, err := access.ParseCapability(body.Permission)
	if err != nil {
		response.Error(c, errors.NewBadRequest(err.Error()))
		return
	}

	minRole := access.MinimumRoleFor(capability)
	if body.MinimumRole != "" {
		minRole, err = access.ParseMinimumRole(body.MinimumRole)
		if err != nil {
			response.Error(c, errors.NewBadRequest(err.Error()))
			return
		}
	}

	req := access.CheckRequest{
		RequesterID:  requesterID,
		ResourceType: body.ResourceType,
		ResourceID:   body.ResourceID,
		Capability:   capability,
		MinimumRole:  minRole,
	}
	if body.At != nil {
		req.At = body.At.UTC()
	}

	decision, err := h.resolver.CheckPermission(requestContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	metrics.AccessDecisions.WithLabelValues(body.ResourceType, string(decision.Result)).Inc()
	h.audit.Record(requestContext(c), requesterID, req, decision)

	if decision.NotFound() {
		response.Error(c, errors.ErrNotFound)
		return
	}

	// The reason stays server side; callers only learn the verdict.
	response.Success(c, http.StatusOK, gin.H{"allowed": decision.Allowed()})
}
