package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// Resp is the JSON envelope shared by all endpoints.
type Resp struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// OK sends 200 with data.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Resp{Status: StatusSuccess, Data: data})
}

// Message sends a success envelope carrying only a message.
func Message(c *gin.Context, code int, msg string) {
	c.JSON(code, Resp{Status: StatusSuccess, Message: msg})
}

// Fail sends an anticipated, client-attributable failure (not found, duplicate, bad input).
func Fail(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, Resp{Status: StatusFail, Message: msg})
}

// Error sends 500 with the error detail.
func Error(c *gin.Context, err error) {
	ErrorWithCode(c, http.StatusInternalServerError, err)
}

// ErrorWithCode sends an error envelope with a custom status code.
func ErrorWithCode(c *gin.Context, code int, err error) {
	c.AbortWithStatusJSON(code, Resp{Status: StatusError, Message: err.Error()})
}

// NoContent sends 204 with an empty body.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
