package webapp

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/vladimiradmaev/diabetes-webapp/internal/errors"
	"github.com/vladimiradmaev/diabetes-webapp/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	// Fatal tells the page to show the blocking screen with a reload button.
	Fatal bool `json:"fatal,omitempty"`
}

// statusOf maps an error to the status returned to the mini-app. Remote 4xx
// statuses pass through; other remote failures are a bad gateway.
func statusOf(err error) int {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeIdentity:
		return http.StatusUnauthorized
	case apperrors.ErrorTypeRemote:
		if appErr.HTTPStatus >= 400 && appErr.HTTPStatus < 500 {
			return appErr.HTTPStatus
		}
		return http.StatusBadGateway
	case apperrors.ErrorTypeTransport, apperrors.ErrorTypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	apperrors.NewHandler(logger.WithContext(ctx)).Handle(ctx, err)

	resp := errorResponse{
		Error: apperrors.UserMessage(err),
		Fatal: apperrors.IsType(err, apperrors.ErrorTypeIdentity),
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		resp.Code = appErr.Code
	}
	c.AbortWithStatusJSON(statusOf(err), resp)
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, apperrors.NewValidationError("Некорректные данные запроса"))
		return false
	}
	return true
}

func parseIDParam(c *gin.Context, key string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(key), 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, apperrors.NewValidationError(fmt.Sprintf("Некорректный идентификатор: %s", c.Param(key))))
		return 0, false
	}
	return id, true
}
