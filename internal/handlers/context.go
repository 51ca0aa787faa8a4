package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
)

// requestContext extracts the caller's context from the gin request.
// Contexts built by hand in tests may carry no request, so fall back to
// a background context.
func requestContext(c *gin.Context) context.Context {
	if c == nil || c.Request == nil {
		return context.Background()
	}
	return c.Request.Context()
}
