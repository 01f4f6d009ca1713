package handler

import (
	"net/http"
	"strconv"

	"agrimarket/internal/domain/model"
	"agrimarket/internal/middleware"
	"agrimarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// Guards はルート登録で使うミドルウェアの組。
type Guards struct {
	Auth     []echo.MiddlewareFunc // ログイン必須
	Optional []echo.MiddlewareFunc // 未ログインでも通す
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	//ログ用に元のエラーを残す
	c.Set(middleware.CtxErrorKey, err)

	if he, ok := usecase.AsHTTPError(err); ok {
		msg := he.Message
		if he.Status >= http.StatusInternalServerError {
			msg = "internal error"
		}
		return c.JSON(he.Status, ErrorResponse{Error: msg})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// LoadIdentityが入れたIdentityを取り出す
func currentIdentity(c echo.Context) (model.Identity, bool) {
	return middleware.IdentityFrom(c)
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
}

func pathID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// 正のID。省略時は0
func queryID(c echo.Context, name string) (int64, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// 省略時はdefを返す
func queryInt(c echo.Context, name string, def int) (int, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
