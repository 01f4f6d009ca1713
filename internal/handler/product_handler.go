package handler

import (
	"net/http"
	"strconv"

	"agrimarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /products, /categories, /wishlist の公開API
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	e.GET("/categories", h.categories)
	e.GET("/products", h.list)
	e.GET("/products/:id", h.detail, g.Optional...)

	w := e.Group("/wishlist", g.Auth...)
	w.GET("", h.wishlist)
	w.POST("/:productId", h.toggleWishlist)
}

func (h *ProductHandler) list(c echo.Context) error {
	// page（default 1）
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return badRequest(c, "invalid page")
	}

	// limit（default 20）
	limit, ok := queryInt(c, "limit", 20)
	if !ok {
		return badRequest(c, "invalid limit")
	}

	var categoryID *int64
	if v := c.QueryParam("category"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid category")
		}
		categoryID = &x
	}

	out, err := h.uc.ListPublicProducts(c.Request().Context(), usecase.ListProductsInput{
		Page:       page,
		Limit:      limit,
		Q:          c.QueryParam("q"),
		CategoryID: categoryID,
		Sort:       c.QueryParam("sort"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	productID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	//未ログインなら0
	var viewerID int64
	if id, ok := currentIdentity(c); ok {
		viewerID = id.UserID
	}

	out, err := h.uc.GetProductDetail(c.Request().Context(), viewerID, productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) categories(c echo.Context) error {
	out, err := h.uc.ListCategories(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) wishlist(c echo.Context) error {
	id, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.uc.ListWishlist(c.Request().Context(), id.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) toggleWishlist(c echo.Context) error {
	id, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}
	productID, ok := pathID(c, "productId")
	if !ok {
		return badRequest(c, "invalid product id")
	}
	out, err := h.uc.ToggleWishlist(c.Request().Context(), id.UserID, productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
