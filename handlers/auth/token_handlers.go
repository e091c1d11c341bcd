package auth

import (
	"net/http"

	"crudapi/crud"
	"crudapi/middleware"
	"crudapi/utils/response"

	"github.com/gin-gonic/gin"
)

// IssueToken signs a bearer token for the given identity
// @Summary Issue a token
// @Description Sign a bearer token carrying the caller identity
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body TokenRequest true "Identity"
// @Success 200 {object} TokenResponse
// @Failure 400,500 {object} map[string]string
// @Router /auth/token [post]
func IssueToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, ErrNoIdentity)
		return
	}

	token, err := middleware.IssueToken(req.UserID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrTokenGenerateFailed)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{Token: token, UserID: req.UserID})
}

// CheckAuth reports the identity resolved from the request
// @Summary Check authentication
// @Description Return the caller identity resolved from the bearer token
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/check [get]
func CheckAuth(c *gin.Context) {
	caller := crud.CallerFrom(c)
	if caller.UserID == "" {
		response.Error(c, http.StatusUnauthorized, ErrNotAuthenticated)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": caller.UserID})
}
