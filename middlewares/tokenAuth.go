package middlewares

import (
	"net/http"

	"MediLedger/models"
	"MediLedger/utils"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// Authenticator resolves an access token to the identity it was issued for.
type Authenticator interface {
	Authenticate(token string, roles ...models.Role) (models.Identity, error)
}

// TokenAuthMiddleware validates the access token and stores the acting
// identity on the request context.
func TokenAuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := utils.AccessTokenFrom(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing access token"})
			return
		}

		identity, err := auth.Authenticate(token, models.RolePatient, models.RoleDoctor)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// RoleAuthMiddleware restricts access to identities with the specified role.
func RoleAuthMiddleware(requiredRole models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
			return
		}

		if identity.Role != requiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: insufficient privileges"})
			return
		}

		c.Next()
	}
}

// IdentityFrom returns the identity TokenAuthMiddleware stored.
func IdentityFrom(c *gin.Context) (models.Identity, bool) {
	value, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}, false
	}
	identity, ok := value.(models.Identity)
	return identity, ok
}
