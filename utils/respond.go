// utils/respond.go
package utils

import (
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Message string         `json:"message"`
	Code    string         `json:"code,omitempty"`
	Details []FieldProblem `json:"details,omitempty"`
}

// FieldProblem describes one rejected request field.
type FieldProblem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RespondWithError aborts the chain and writes {"message": ...}.
func RespondWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Message: message})
}

// RespondWithCode is RespondWithError plus a machine-readable code.
func RespondWithCode(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Message: message, Code: code})
}
