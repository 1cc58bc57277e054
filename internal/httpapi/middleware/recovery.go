package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/getsentry/sentry-go"
	"github.com/nullforge/queuectl/internal/common"
)

// Recovery contains panics in HTTP handlers, reports them to Sentry when
// configured, and replies per spec §7: a StoreError-shaped 500, never a
// crashed process. Kept as its own middleware (rather than gin.Recovery())
// so the error body matches the {"detail": ...} wire shape.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("panic recovered: %v", r)
				sentry.CurrentHub().Recover(r)
				common.Fail(c, http.StatusInternalServerError, "internal error")
				c.Abort()
			}
		}()
		c.Next()
	}
}
