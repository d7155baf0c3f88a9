package common

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// ErrResp is the structured error body for every non-2xx response.
type ErrResp struct {
	Error string `json:"error"`
}

func SuccessResp(c *gin.Context, data any) {
	c.JSON(200, data)
}

func CreatedResp(c *gin.Context, data any) {
	c.JSON(201, data)
}

func ErrorStrResp(c *gin.Context, msg string, code int) {
	c.JSON(code, ErrResp{Error: msg})
}

// ErrorResp logs the underlying error with its stack and surfaces only the
// given message, so internals never leak to clients.
func ErrorResp(c *gin.Context, err error, msg string, code int) {
	log.Errorf("%s: %+v", msg, err)
	ErrorStrResp(c, msg, code)
}
