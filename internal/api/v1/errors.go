package v1

import (
	"github.com/gin-gonic/gin"

	ierr "github.com/billrun/billrun/internal/errors"
)

// ErrorResponse represents the API error response structure
type ErrorResponse struct {
	Error  string `json:"error" example:"Invalid request payload"`
	Detail string `json:"detail" example:"Invalid request payload"`
}

func NewErrorResponse(c *gin.Context, code int, message string, err error) {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:  message,
		Detail: detail,
	})
}

// AbortWithError maps a domain error to its HTTP status and wire shape. Use
// it for errors built through the ierr builder; raw binding errors keep going
// through NewErrorResponse with an explicit code.
func AbortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(ierr.HTTPStatusFromErr(err), ierr.NewErrorResponse(err))
}
