package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/GauthierNelkinsky/shipshipship-template-default/pkg/utils"
)

const (
	// VisitorCookie names the identity cookie set for every visitor.
	VisitorCookie = "ssship_visitor"
	// VisitorKey is the gin context key the handlers read.
	VisitorKey = "visitorId"

	cookieMaxAge = 365 * 24 * 60 * 60
)

// VisitorIdentity assigns each browser a stable anonymous id. Votes and
// feedback rate limits hang off this id; there are no accounts here.
func VisitorIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(VisitorCookie)
		if err != nil || !utils.IsUUID(id) {
			id = uuid.NewString()
			c.SetCookie(VisitorCookie, id, cookieMaxAge, "/", "", false, true)
		}
		c.Set(VisitorKey, id)
		c.Next()
	}
}
