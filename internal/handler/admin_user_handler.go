package handler

import (
	"net/http"

	"agrimarket/internal/middleware"
	"agrimarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

// sellerの承認（スタッフのみ）
type AdminUserHandler struct {
	uc *usecase.AuthUsecase
}

func NewAdminUserHandler(uc *usecase.AuthUsecase) *AdminUserHandler {
	return &AdminUserHandler{uc: uc}
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	admin := e.Group("/admin/sellers", g.Auth...)
	admin.Use(middleware.StaffGuard())

	admin.GET("/pending", h.pending)
	admin.POST("/:id/approve", h.approve)
}

func (h *AdminUserHandler) pending(c echo.Context) error {
	id, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.uc.ListPendingSellers(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) approve(c echo.Context) error {
	id, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}
	sellerID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.uc.ApproveSeller(c.Request().Context(), id, sellerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
