package v1

import (
	"crudapi/handlers/auth"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers routes for the auth API
func RegisterAuthRoutes(r *gin.RouterGroup) {
	auth.RegisterRoutes(r)
}
