package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}

// internalError logs the cause and hides it from the client.
func internalError(c *gin.Context, log *zap.SugaredLogger, err error) {
	_ = c.Error(err)
	log.Errorw("internal error", "route", c.FullPath(), "error", err)
	respondError(c, http.StatusInternalServerError, "Internal server error")
}
