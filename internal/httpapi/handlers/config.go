package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nullforge/queuectl/internal/common"
	"github.com/nullforge/queuectl/internal/registry"
)

type configSetBody struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// ConfigSet handles POST /config/set.
func (h *Handler) ConfigSet(c *gin.Context) {
	var body configSetBody
	if err := c.ShouldBindJSON(&body); err != nil {
		common.Fail(c, http.StatusBadRequest, "malformed config body: "+err.Error())
		return
	}
	if err := h.Engine.Registry.Set(c.Request.Context(), body.Key, body.Value); err != nil {
		if errors.Is(err, registry.ErrUnknownKey) {
			common.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		common.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Status(http.StatusOK)
}

// ConfigGet handles GET /config/get?key=….
func (h *Handler) ConfigGet(c *gin.Context) {
	key := c.Query("key")
	value, err := h.Engine.Registry.Get(key)
	if err != nil {
		if errors.Is(err, registry.ErrUnknownKey) {
			common.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		common.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}
