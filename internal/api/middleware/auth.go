package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// ContextActorID is the gin context key for the authenticated actor.
	ContextActorID = "actor_id"
	// ContextOwnerID is the gin context key for the actor's organization.
	ContextOwnerID = "owner_id"
)

// Claims is the token payload the dashboard issues: the actor in the
// standard subject claim plus the owning organization.
type Claims struct {
	Org string `json:"org"`
	jwt.RegisteredClaims
}

// Auth validates the bearer token and resolves the actor and owning
// organization into the request context. Requests without a resolvable
// actor are rejected before any engine call.
func Auth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		actorID, err := uuid.Parse(claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		ownerID, err := uuid.Parse(claims.Org)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(ContextActorID, actorID)
		c.Set(ContextOwnerID, ownerID)
		c.Next()
	}
}
