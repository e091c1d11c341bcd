package crud

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the uniform response wrapper of every extended endpoint:
// code=0 and success=true on success, a non-zero code mirroring the HTTP
// status otherwise. Plain endpoints return raw entity shapes instead.
type Envelope struct {
	Code    int    `json:"code"`
	Msg     string `json:"msg"`
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Meta    Meta   `json:"meta"`
	TraceID string `json:"trace_id,omitempty"`
}

// Meta carries pagination metadata alongside list results.
type Meta struct {
	Total int64 `json:"total"`
}

// RespondOK writes a success envelope.
func RespondOK(c *gin.Context, caller Caller, data any, total int64) {
	RespondOKMsg(c, caller, data, total, "OK")
}

// RespondOKMsg writes a success envelope with a custom message.
func RespondOKMsg(c *gin.Context, caller Caller, data any, total int64, msg string) {
	if data == nil {
		data = gin.H{}
	}
	c.JSON(http.StatusOK, Envelope{
		Code:    0,
		Msg:     msg,
		Success: true,
		Data:    data,
		Meta:    Meta{Total: total},
		TraceID: caller.TraceID,
	})
}

// RespondError maps a failure onto the envelope, mirroring the HTTP status
// in the code field. Nothing is retried and nothing is swallowed: the
// message always carries the underlying description.
func RespondError(c *gin.Context, caller Caller, err error) {
	status := HTTPStatus(err)
	c.JSON(status, Envelope{
		Code:    status,
		Msg:     err.Error(),
		Success: false,
		Data:    gin.H{},
		Meta:    Meta{},
		TraceID: caller.TraceID,
	})
}
