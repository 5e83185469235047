package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const actorKey = "actor_id"

// Actor resolves the acting user from the X-Actor header and stores it in
// the request context. Every audited mutation requires it, so requests
// without a valid actor are rejected up front.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-Actor")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   gin.H{"code": "MISSING_ACTOR", "message": "X-Actor header is required"},
			})
			return
		}
		actorID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   gin.H{"code": "INVALID_ACTOR", "message": "X-Actor header must be a UUID"},
			})
			return
		}
		c.Set(actorKey, actorID)
		c.Next()
	}
}

// GetActorID returns the acting user stored by Actor.
func GetActorID(c *gin.Context) (uuid.UUID, error) {
	v, ok := c.Get(actorKey)
	if !ok {
		return uuid.Nil, fmt.Errorf("actor not found in context")
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("actor in context is not a UUID")
	}
	return id, nil
}
