package handler

import (
	"encoding/json"
	"net/http"

	"agrimarket/internal/middleware"
	"agrimarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

// price は "12.50" のような文字列でも数値でも受ける
type ProductRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	CategoryID  *int64      `json:"category_id"`
	Price       json.Number `json:"price"`
	Stock       int64       `json:"stock"`
	IsActive    *bool       `json:"is_active"`
}

// /seller/products（承認済みsellerのみ）
type SellerProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewSellerProductHandler(uc *usecase.ProductUsecase) *SellerProductHandler {
	return &SellerProductHandler{uc: uc}
}

func (h *SellerProductHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	seller := e.Group("/seller", g.Auth...)
	seller.Use(middleware.SellerGuard())

	seller.POST("/products", h.createProduct)
	seller.PUT("/products/:id", h.updateProduct)
	seller.DELETE("/products/:id", h.deleteProduct)
}

func (req ProductRequest) input() usecase.ProductInput {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return usecase.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Price:       string(req.Price),
		Stock:       req.Stock,
		IsActive:    active,
	}
}

func (h *SellerProductHandler) createProduct(c echo.Context) error {
	id, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.CreateProduct(c.Request().Context(), id, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *SellerProductHandler) updateProduct(c echo.Context) error {
	id, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}
	productID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.UpdateProduct(c.Request().Context(), id, productID, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SellerProductHandler) deleteProduct(c echo.Context) error {
	id, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}
	productID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	if err := h.uc.DeleteProduct(c.Request().Context(), id, productID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Product deleted successfully!"})
}
