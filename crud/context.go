package crud

import "github.com/gin-gonic/gin"

// Gin context keys the transport middleware populates. The engine never
// reads request state directly; callers are always passed explicitly.
const (
	CtxUserID  = "user_id"
	CtxTraceID = "trace_id"
)

// Caller identifies the authenticated request origin. It is the only
// request-scoped state the engine consumes: UserID feeds audit stamping and
// SELF scoping, TraceID is stamped on every mutation and echoed in
// envelopes. Both may be empty for anonymous requests.
type Caller struct {
	UserID  string
	TraceID string
}

// CallerFrom extracts the caller identity the auth and trace middleware
// stored on the gin context.
func CallerFrom(c *gin.Context) Caller {
	caller := Caller{}
	if v, ok := c.Get(CtxUserID); ok {
		if s, ok := v.(string); ok {
			caller.UserID = s
		}
	}
	if v, ok := c.Get(CtxTraceID); ok {
		if s, ok := v.(string); ok {
			caller.TraceID = s
		}
	}
	return caller
}
