package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/payroll/internal/employercontext"
)

const (
	HeaderEmployer = "X-Employer-ID"
	HeaderActor    = "X-Actor-ID"
)

// EmployerContext scopes the request to the employer resolved by the
// gateway. Requests without an employer are rejected.
func EmployerContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		employerID := strings.TrimSpace(c.GetHeader(HeaderEmployer))
		if employerID == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := employercontext.WithEmployerID(c.Request.Context(), employerID)
		if actorID := strings.TrimSpace(c.GetHeader(HeaderActor)); actorID != "" {
			ctx = employercontext.WithActorID(ctx, actorID)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func actorID(c *gin.Context) string {
	actor, _ := employercontext.ActorIDFromContext(c.Request.Context())
	return actor
}
