package middleware

import (
	"net/http"
	"strings"

	"agrimarket/internal/infra/security"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey   = "user_id"  // int64
	CtxIdentityKey = "identity" // model.Identity
	CtxErrorKey    = "error"    // handlerが返したerror（ログ用）
)

// bearerAuth用のJWT検証ミドルウェア。
func AuthJWT(secret string) echo.MiddlewareFunc {
	return authJWT([]byte(secret), false)
}

// OptionalAuthJWT はトークンなしでも通す（未ログインで閲覧できるページ用）。
// トークンが付いていて不正なら401。
func OptionalAuthJWT(secret string) echo.MiddlewareFunc {
	return authJWT([]byte(secret), true)
}

func authJWT(secret []byte, optional bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				if optional {
					return next(c)
				}
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//署名・期限・subを検証する
			userID, err := security.ParseAccessToken(secret, rawToken)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//contextへ保存
			c.Set(CtxUserIDKey, userID)
			return next(c)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
