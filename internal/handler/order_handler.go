package handler

import (
	"net/http"

	"agrimarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// 空ならプロフィールの住所・電話を使う
type CheckoutRequest struct {
	ShippingAddress string `json:"shipping_address"`
	ShippingPhone   string `json:"shipping_phone"`
	PaymentMethod   string `json:"payment_method"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	orders := e.Group("/orders", g.Auth...)

	orders.POST("/checkout", h.checkout)
	orders.GET("", h.list)
	orders.GET("/:id", h.detail)
}

func (h *OrderHandler) checkout(c echo.Context) error {
	id, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.Checkout(c.Request().Context(), id.UserID, usecase.CheckoutInput{
		ShippingAddress: req.ShippingAddress,
		ShippingPhone:   req.ShippingPhone,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	id, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.ListMyOrders(c.Request().Context(), id.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	id, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.GetMyOrder(c.Request().Context(), id.UserID, orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
