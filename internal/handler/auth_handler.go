package handler

import (
	"net/http"

	"agrimarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /auth と /me のHTTP
type AuthHandler struct {
	uc   *usecase.AuthUsecase
	dash *usecase.DashboardUsecase
}

// DI
func NewAuthHandler(uc *usecase.AuthUsecase, dash *usecase.DashboardUsecase) *AuthHandler {
	return &AuthHandler{uc: uc, dash: dash}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	e.POST("/auth/register", h.register)
	e.POST("/auth/login", h.login)

	me := e.Group("/me", g.Auth...)
	me.GET("", h.me)
	me.PUT("/profile", h.updateProfile)
	me.GET("/dashboard", h.dashboard)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.Register(c.Request().Context(), usecase.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.Login(c.Request().Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) me(c echo.Context) error {
	id, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.uc.Me(c.Request().Context(), id.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) updateProfile(c echo.Context) error {
	id, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}

	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.UpdateProfile(c.Request().Context(), id.UserID, usecase.ProfileInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ロールごとのダッシュボード
func (h *AuthHandler) dashboard(c echo.Context) error {
	id, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.dash.Dashboard(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
