package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fsdevblog/groph-bundles/internal/transport/api/tokens"
	"github.com/gin-gonic/gin"
)

var (
	ErrTokenNotExist = errors.New("token not exist")
	ErrNotAdmin      = errors.New("operator role required")
)

const (
	CurrentUserIDKey = "currentUserID"
	IsAdminKey       = "isAdmin"
)

// checkAuthorization извлекает токен из заголовка Authorization и проверяет его. Если токен не передан, вернется
// ошибка ErrTokenNotExist.
func checkAuthorization(c *gin.Context, jwtTokenSecret []byte) (*tokens.UserClaims, error) {
	tokenStr, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !found || tokenStr == "" {
		return nil, ErrTokenNotExist
	}

	claims, err := tokens.ValidateUserJWT(tokenStr, jwtTokenSecret)
	if err != nil {
		return nil, fmt.Errorf("check authorization: %w", err)
	}
	return claims, nil
}

// AuthRequired проверяет, что запрос авторизован. Записывает в контекст id юзера (CurrentUserIDKey) и признак
// оператора (IsAdminKey).
func AuthRequired(jwtTokenSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := checkAuthorization(c, jwtTokenSecret)
		if err != nil {
			_ = c.AbortWithError(http.StatusUnauthorized, err).SetType(gin.ErrorTypePrivate)
			return
		}
		c.Set(CurrentUserIDKey, claims.ID)
		c.Set(IsAdminKey, claims.Admin)
		c.Next()
	}
}

// AdminRequired пропускает только операторов. Ставится после AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(IsAdminKey) {
			_ = c.AbortWithError(http.StatusForbidden, ErrNotAdmin).SetType(gin.ErrorTypePrivate)
			return
		}
		c.Next()
	}
}
