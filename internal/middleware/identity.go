package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/identity"
)

// Context keys for the resolved participant.
const (
	StudentIDKey   = "studentID"
	StudentNameKey = "studentName"
)

// RequireIdentity resolves the request credential and rejects the request
// when no identity can be established. All verification failures produce
// the same response so callers cannot probe credential validity.
func RequireIdentity(resolver identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := resolver.Resolve(identity.CredentialFromRequest(c.Request))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}

		c.Set(StudentIDKey, claims.StudentID)
		c.Set(StudentNameKey, claims.FullName)
		c.Next()
	}
}

// OptionalIdentity resolves the credential when present but lets anonymous
// requests through; public room reads are open to everyone.
func OptionalIdentity(resolver identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := resolver.Resolve(identity.CredentialFromRequest(c.Request)); err == nil {
			c.Set(StudentIDKey, claims.StudentID)
			c.Set(StudentNameKey, claims.FullName)
		}
		c.Next()
	}
}

// StudentID returns the resolved participant id, or false for anonymous
// requests.
func StudentID(c *gin.Context) (int64, bool) {
	val, ok := c.Get(StudentIDKey)
	if !ok {
		return 0, false
	}
	id, ok := val.(int64)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}
