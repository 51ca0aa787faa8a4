package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/access"
	iauth "github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/auth"
	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/handlers"
	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/middleware"
	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, resolver *access.Resolver) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if resolver == nil {
		return nil, fmt.Errorf("resolver must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	// Public endpoints
	r.GET("/health", handlers.Health())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(middleware.NotFoundHandler)

	audit, err := services.NewAccessAuditService(db)
	if err != nil {
		return nil, err
	}

	api := r.Group("/api")
	api.Use(middleware.Auth(jwt))

	// Access checks
	accessHandler := handlers.NewAccessHandler(resolver, audit)
	api.POST("/access/check", accessHandler.Check)

	// Grants
	grantHandler, err := handlers.NewGrantHandler(db, resolver)
	if err != nil {
		return nil, err
	}
	grants := api.Group("/grants")
	{
		grants.GET("", grantHandler.List)
		grants.POST("", grantHandler.Create)
		grants.PATCH("/:id", grantHandler.Update)
		grants.DELETE("/:id", grantHandler.Delete)
	}

	// Invitations
	invitationHandler, err := handlers.NewInvitationHandler(db, resolver)
	if err != nil {
		return nil, err
	}
	invitations := api.Group("/invitations")
	{
		invitations.GET("", invitationHandler.List)
		invitations.GET("/:id", invitationHandler.Get)
		invitations.POST("", invitationHandler.Create)
		invitations.DELETE("/:id", invitationHandler.Delete)
	}

	return r, nil
}
