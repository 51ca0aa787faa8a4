package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ZephyrexTechnologies/ServerFramework-sub002/pkg/errors"
	"github.com/ZephyrexTechnologies/ServerFramework-sub002/pkg/logger"
	"github.com/ZephyrexTechnologies/ServerFramework-sub002/pkg/response"
)

// Recovery turns panics into a 500 error envelope and logs the panic value.
// The handler that panicked never writes to the client, so internals stay
// out of the response body.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			logger.WithModule("http").Error("panic recovered",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("error", r),
			)

			response.Error(c, errors.ErrInternalServer)
			c.Abort()
		}()

		c.Next()
	}
}

// NotFoundHandler renders the standard error envelope for unknown routes.
func NotFoundHandler(c *gin.Context) {
	response.Error(c, errors.New(
		"ROUTE_NOT_FOUND",
		fmt.Sprintf("route %s not found", c.Request.URL.Path),
		http.StatusNotFound,
	))
}
