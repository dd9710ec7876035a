package api

import (
	"errors"
	"net/http"

	"github.com/fsdevblog/groph-bundles/internal/domain"
	"github.com/fsdevblog/groph-bundles/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// getUserIDFromContext берет из контекста gin ID текущего юзера. ID устанавливается в middlewares.AuthRequired.
// В случае, если значения в контексте нет или ошибка утверждения типа - вернется 0.
func getUserIDFromContext(c *gin.Context) int64 {
	userIDStr, exist := c.Get(middlewares.CurrentUserIDKey)
	if !exist {
		return 0
	}
	userID, ok := userIDStr.(int64)
	if !ok {
		return 0
	}
	return userID
}

type orderURI struct {
	ID int64 `binding:"required,min=1" uri:"id"`
}

type pageQuery struct {
	Filter string `form:"filter"`
	Page   uint   `binding:"omitempty,min=1" form:"page"`
}

// abortWithBindError ошибки валидации - 422, ошибки разбора - 400.
func abortWithBindError(c *gin.Context, bindErr error) {
	var valErrs validator.ValidationErrors
	if errors.As(bindErr, &valErrs) {
		_ = c.AbortWithError(http.StatusUnprocessableEntity, bindErr).SetType(gin.ErrorTypePublic)
		return
	}
	_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
}

type errorMapping struct {
	target error
	status int
}

// serviceErrors порядок важен: ошибка поставщика может оборачивать ошибки маппинга заказа.
var serviceErrors = []errorMapping{
	{domain.ErrForwardingFailed, http.StatusBadGateway},
	{domain.ErrInvalidAmount, http.StatusUnprocessableEntity},
	{domain.ErrInvalidRecipient, http.StatusUnprocessableEntity},
	{domain.ErrUnknownProvider, http.StatusUnprocessableEntity},
	{domain.ErrInvalidFilter, http.StatusBadRequest},
	{domain.ErrInvalidReference, http.StatusUnprocessableEntity},
	{domain.ErrBundleUnavailable, http.StatusNotFound},
	{domain.ErrPriceMismatch, http.StatusConflict},
	{domain.ErrInsufficientFunds, http.StatusPaymentRequired},
	{domain.ErrNotCancellable, http.StatusConflict},
	{domain.ErrWindowExpired, http.StatusConflict},
	{domain.ErrNotForwardable, http.StatusConflict},
	{domain.ErrAlreadyCompleted, http.StatusConflict},
	{domain.ErrStatusConflict, http.StatusConflict},
	{domain.ErrForwardingBusy, http.StatusConflict},
	{domain.ErrNothingToWithdraw, http.StatusConflict},
	{domain.ErrRecordNotFound, http.StatusNotFound},
}

// abortWithServiceError переводит ошибку сервиса в http статус. Клиент видит только текст доменной ошибки,
// полная цепочка уходит в лог. Неизвестные ошибки - 500.
func abortWithServiceError(c *gin.Context, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			_ = c.AbortWithError(m.status, m.target).SetType(gin.ErrorTypePublic)
			_ = c.Error(err).SetType(gin.ErrorTypePrivate)
			return
		}
	}
	_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
}
