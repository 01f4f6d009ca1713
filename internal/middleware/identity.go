package middleware

import (
	"context"
	"errors"
	"net/http"

	"agrimarket/internal/domain/model"
	"agrimarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 権限は毎リクエストDBから読む（トークンのroleは信用しない）
type IdentityLoader interface {
	Identity(ctx context.Context, userID int64) (model.Identity, error)
}

// LoadIdentity はAuthJWTの後ろに置く。user_idがなければ何もしない。
func LoadIdentity(loader IdentityLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get(CtxUserIDKey).(int64)
			if !ok || userID <= 0 {
				return next(c)
			}

			id, err := loader.Identity(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, usecase.ErrUnauthorized) || errors.Is(err, usecase.ErrNotFound) {
					return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
				}
				return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
			}

			c.Set(CtxIdentityKey, id)
			return next(c)
		}
	}
}

// IdentityFrom はcontextのIdentity。未ログインならゼロ値とfalse。
func IdentityFrom(c echo.Context) (model.Identity, bool) {
	id, ok := c.Get(CtxIdentityKey).(model.Identity)
	if !ok || id.UserID <= 0 {
		return model.Identity{}, false
	}
	return id, true
}
