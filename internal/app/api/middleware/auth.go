package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/bloomfeed/billing/pkg/config"
	"github.com/bloomfeed/billing/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// AuthMiddleware resolves the acting user from a bearer token and stores the
// actor id in both gin.Context and the request context. The billing surface
// never trusts a client-supplied actor id.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	secret := []byte(cfg.Auth.JWTSecret)
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeForbidden, nil))
			return
		}

		token, err := jwt.Parse(strings.TrimSpace(parts[1]), func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeForbidden, nil))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeForbidden, nil))
			return
		}
		actorID, _ := claims["user_id"].(string)
		if actorID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeForbidden, nil))
			return
		}

		c.Set("actor_id", actorID)
		ctx := context.WithValue(c.Request.Context(), "actor_id", actorID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// ActorID returns the authenticated actor id set by AuthMiddleware.
func ActorID(c *gin.Context) string {
	if v, ok := c.Get("actor_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
