package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"metislap/internal/domain"
)

// writeError maps a domain error kind onto an HTTP status. Unclassified
// errors never leak their message to the client.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch domain.KindOf(err) {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindUnauthorized:
		status = http.StatusUnauthorized
	case domain.KindForbidden:
		status = http.StatusForbidden
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindConflict:
		status = http.StatusConflict
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(http.StatusInternalServerError)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
