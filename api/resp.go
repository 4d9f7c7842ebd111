package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": data})
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"ok": true, "data": data})
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"ok": false, "error": msg})
}

func badRequest(c *gin.Context, msg string)   { fail(c, http.StatusBadRequest, msg) }
func unauthorized(c *gin.Context, msg string) { fail(c, http.StatusUnauthorized, msg) }
func notFound(c *gin.Context, msg string)     { fail(c, http.StatusNotFound, msg) }
func serverError(c *gin.Context, msg string)  { fail(c, http.StatusInternalServerError, msg) }

// badGateway reports a failed read from the record store.
func badGateway(c *gin.Context, msg string) { fail(c, http.StatusBadGateway, msg) }
