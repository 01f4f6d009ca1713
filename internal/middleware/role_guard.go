package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const permissionDenied = "You do not have permission to perform this action."

// StaffGuard はスタッフ以外を拒否する。
func StaffGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			if !id.IsStaff {
				return c.JSON(http.StatusForbidden, errorJSON(permissionDenied))
			}
			return next(c)
		}
	}
}

// SellerGuard は承認済みseller以外を拒否する。
func SellerGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			if !id.CanSell() {
				return c.JSON(http.StatusForbidden, errorJSON("Only approved sellers can manage products."))
			}
			return next(c)
		}
	}
}
