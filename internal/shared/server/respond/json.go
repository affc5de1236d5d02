package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Result is the success envelope every CV operation returns.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

// Success writes a successful Result with the given status.
func Success(c *gin.Context, status int, message, id string, data any) {
	JSON(c, status, Result{Success: true, Message: message, ID: id, Data: data})
}
