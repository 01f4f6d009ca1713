package server

import (
	"net/http"

	"agrimarket/internal/config"
	"agrimarket/internal/handler"
	"agrimarket/internal/middleware"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, cfg config.Config, uc Usecases) {
	identity := middleware.LoadIdentity(uc.Auth)
	g := handler.Guards{
		Auth:     []echo.MiddlewareFunc{middleware.AuthJWT(cfg.JWTSecret), identity},
		Optional: []echo.MiddlewareFunc{middleware.OptionalAuthJWT(cfg.JWTSecret), identity},
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, handler.SuccessResponse{Message: "ok"})
	})

	handler.NewAuthHandler(uc.Auth, uc.Dashboard).RegisterRoutes(e, g)
	handler.NewProductHandler(uc.Products).RegisterRoutes(e, g)
	handler.NewSellerProductHandler(uc.Products).RegisterRoutes(e, g)
	handler.NewReviewHandler(uc.Reviews).RegisterRoutes(e, g)
	handler.NewCartHandler(uc.Cart).RegisterRoutes(e, g)
	handler.NewOrderHandler(uc.Orders).RegisterRoutes(e, g)
	handler.NewAdminUserHandler(uc.Auth).RegisterRoutes(e, g)
	handler.NewAdminOrderHandler(uc.AdminOrder).RegisterRoutes(e, g)
}
