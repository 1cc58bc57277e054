// Package common holds the tiny HTTP response helpers shared by every
// handler, matching the wire error shape from spec §6.2.
package common

import "github.com/gin-gonic/gin"

// Fail writes {"detail": msg} at the given status code.
func Fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}
