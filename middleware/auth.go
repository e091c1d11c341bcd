package middleware

import (
	"strings"

	"crudapi/config"
	"crudapi/crud"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// Auth resolves the caller identity from a Bearer token. Requests without a
// token proceed anonymously; self-scoped collections then serve no rows
// rather than failing the request.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			logrus.WithError(err).Warn("rejected invalid bearer token")
			c.Next()
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if userID, ok := claims["user_id"].(string); ok && userID != "" {
				c.Set(crud.CtxUserID, userID)
			}
		}
		c.Next()
	}
}

// IssueToken signs a token carrying the given user identity.
func IssueToken(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
	})
	return token.SignedString([]byte(config.JWTSecret))
}
