package middlewares

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"eventhub/models"
	"eventhub/utils"
)

// Context keys set by Authenticate.
const (
	CtxUserID = "userId"
	CtxRole   = "role"
	CtxEmail  = "email"
)

// Authenticate accepts "Authorization: Bearer <jwt>" (a bare token also
// works) and stores the caller's id, role and email in the context.
func Authenticate(tokens *utils.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		token := strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
		if token == "" {
			abort(c, models.Unauthorized("No token provided"))
			return
		}

		p, err := tokens.VerifyToken(token)
		if errors.Is(err, utils.ErrTokenExpired) {
			abort(c, models.Unauthorized("Token expired"))
			return
		}
		if err != nil {
			abort(c, models.Unauthorized("Invalid token"))
			return
		}

		c.Set(CtxUserID, p.ID)
		c.Set(CtxRole, models.Role(p.Role))
		c.Set(CtxEmail, p.Email)
		c.Next()
	}
}

// Authorize lets the request through only for the listed roles.
func Authorize(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CurrentRole(c)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		abort(c, models.Forbidden("Insufficient permissions"))
	}
}

func CurrentUserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(CtxUserID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

func CurrentRole(c *gin.Context) models.Role {
	if v, ok := c.Get(CtxRole); ok {
		if r, ok := v.(models.Role); ok {
			return r
		}
	}
	return ""
}

// abort records err for ErrorHandler and stops the chain.
func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
