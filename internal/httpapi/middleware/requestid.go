package middleware

import (
	"math/rand"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

const headerRequestID = "X-Request-Id"

// RequestID stamps every response with a sortable, time-ordered id, the
// way the teacher's router exposes X-Request-Id via its CORS config.
// ulid.Monotonic's entropy source isn't safe for concurrent use, so access
// to it is serialised here (gin handles requests on separate goroutines).
func RequestID() gin.HandlerFunc {
	var mu sync.Mutex
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)

	return func(c *gin.Context) {
		mu.Lock()
		id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
		mu.Unlock()

		c.Writer.Header().Set(headerRequestID, id)
		c.Set(headerRequestID, id)
		c.Next()
	}
}
