package middleware

import (
	"crudapi/crud"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

// Trace assigns every request a ULID trace id. The id is stamped onto
// mutated records and echoed back in the response header.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader("X-Trace-ID")
		if traceID == "" {
			traceID = ulid.Make().String()
		}
		c.Set(crud.CtxTraceID, traceID)
		c.Header("X-Trace-ID", traceID)
		c.Next()
	}
}
