package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "deforest-api/internal/transport/http/response"
)

// MaxBodyBytes bounds request bodies; uploads to the predict proxy are the
// largest expected payloads.
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
		if c.Err() != nil && !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, resp.Fail("request body too large"))
		}
	}
}
