package handler

import (
	"net/http"

	"agrimarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

// /cart, /cart/{id} を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	cart := e.Group("/cart", g.Auth...)

	cart.GET("", h.getCart)
	cart.POST("/:productId", h.addToCart)
	cart.PATCH("/:id", h.patchItem)
	cart.DELETE("/:id", h.deleteItem)
}

func (h *CartHandler) getCart(c echo.Context) error {
	id, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.GetCart(c.Request().Context(), id.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 1個追加（既にあれば+1）
func (h *CartHandler) addToCart(c echo.Context) error {
	id, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}
	productID, ok := pathID(c, "productId")
	if !ok {
		return badRequest(c, "invalid product id")
	}

	out, err := h.uc.AddToCart(c.Request().Context(), id.UserID, productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// quantity<=0なら削除
func (h *CartHandler) patchItem(c echo.Context) error {
	id, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}
	lineID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.UpdateQuantity(c.Request().Context(), id.UserID, lineID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	id, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}
	lineID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.RemoveFromCart(c.Request().Context(), id.UserID, lineID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
