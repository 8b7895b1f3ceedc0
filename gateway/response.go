package gateway

import (
	"net/http"

	"github.com/example/fooddash/pkg/apperr"
	"github.com/example/fooddash/pkg/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// envelope is the body of every API response.
type envelope struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	Code       string              `json:"code,omitempty"`
	Data       interface{}         `json:"data,omitempty"`
	Pagination *service.Pagination `json:"pagination,omitempty"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func respondPage(c *gin.Context, message string, data interface{}, p service.Pagination) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: message, Data: data, Pagination: &p})
}

// respondError maps err onto a status code. Internal details are logged,
// never returned.
func (g *Gateway) respondError(c *gin.Context, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		appErr = apperr.Internal("unexpected error", err)
	}

	message := appErr.Message
	switch appErr.Kind {
	case apperr.KindInternal:
		g.logger.Error("Internal error",
			zap.String("request_id", requestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
			zap.Stack("stack"))
		message = "Internal server error"
	case apperr.KindUnavailable:
		g.logger.Warn("Dependency unavailable",
			zap.String("request_id", requestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		message = "Service temporarily unavailable, please retry"
	}

	c.AbortWithStatusJSON(apperr.HTTPStatus(appErr.Kind), envelope{
		Success: false,
		Message: message,
		Code:    appErr.Code,
	})
}

func (g *Gateway) badRequest(c *gin.Context, message string) {
	g.respondError(c, apperr.Validation(message))
}
