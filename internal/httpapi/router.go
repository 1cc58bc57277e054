// Package httpapi assembles the gin router (C6) over the Engine, mirroring
// the teacher's own router.go structure: global middleware first, then flat
// route registration against a single Handler.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/nullforge/queuectl/internal/common"
	"github.com/nullforge/queuectl/internal/engine"
	"github.com/nullforge/queuectl/internal/httpapi/handlers"
	"github.com/nullforge/queuectl/internal/httpapi/middleware"
)

// NewRouter builds the gin engine serving spec §4.6's endpoints over eng.
func NewRouter(eng *engine.Engine) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Use(middleware.RequestID())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:3001"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	h := handlers.NewHandler(eng)

	r.GET("/list", h.List)
	r.POST("/enqueue", h.Enqueue)
	r.PUT("/update", h.Update)

	r.GET("/worker/start", h.WorkerStart)
	r.GET("/worker/stop", h.WorkerStop)

	r.GET("/status", h.Status)

	r.GET("/dlq/list", h.DLQList)
	r.POST("/dlq/retry", h.DLQRetry)

	r.POST("/config/set", h.ConfigSet)
	r.GET("/config/get", h.ConfigGet)

	return r
}
