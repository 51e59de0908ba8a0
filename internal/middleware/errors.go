package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/spimexpulse/internal/domain/dto"
)

// ErrorHandler turns errors attached with c.Error into a 500 JSON body when the handler
// did not write a response itself.
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}
	last := c.Errors.Last()
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error", last.Err))
}

// AbortWithError stops the chain and writes a dto.ErrorResponse with status.
// err is recorded on the context so RequestLogger can report it.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
