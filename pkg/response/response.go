package response

import (
	"log"
	"net/http"

	"github.com/hirestack/hirestack-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetActorID retrieves the authenticated actor ID from the context
func GetActorID(c *gin.Context) (uuid.UUID, error) {
	actorIDStr, exists := c.Get("actor_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	actorID, err := uuid.Parse(actorIDStr.(string))
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return actorID, nil
}

// GetActorRole retrieves the authenticated actor role from the context
func GetActorRole(c *gin.Context) string {
	role, exists := c.Get("actor_role")
	if !exists {
		return ""
	}
	return role.(string)
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
