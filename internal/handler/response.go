package handler

import (
	"errors"
	"net/http"

	"github.com/blues/trs/internal/claim"
	"github.com/blues/trs/internal/logger"
	"github.com/gin-gonic/gin"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// WriteError 把 logic/ledger/verify 层的类型化错误翻译成 HTTP 响应，
// 这里是唯一的翻译点，错误不会被吞成笼统的 500
func WriteError(c *gin.Context, err error) {
	var invalidErr *claim.InvalidIdentityError
	var conflictErr *claim.ConflictError
	var precondErr *claim.PreconditionError

	switch {
	case errors.As(err, &invalidErr):
		ErrorResponse(c, http.StatusBadRequest, invalidErr.Error())
	case errors.As(err, &conflictErr):
		ErrorResponse(c, http.StatusConflict, conflictErr.Error())
	case errors.As(err, &precondErr):
		message := precondErr.Reason
		if precondErr.Guidance != "" {
			message += ", " + precondErr.Guidance
		}
		ErrorResponse(c, http.StatusUnprocessableEntity, message)
	case errors.Is(err, claim.ErrUnauthorized):
		// 不透露任何拒绝原因
		ErrorResponse(c, http.StatusForbidden, "forbidden")
	case errors.Is(err, claim.ErrNotFound):
		ErrorResponse(c, http.StatusNotFound, "claim record not found")
	case errors.Is(err, claim.ErrInvalidTransition):
		ErrorResponse(c, http.StatusConflict, "invalid status transition")
	case errors.Is(err, claim.ErrTemporary):
		ErrorResponse(c, http.StatusServiceUnavailable, "verification temporarily unavailable, try again shortly")
	default:
		logger.Error("Unhandled claim error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "internal server error")
	}
}
