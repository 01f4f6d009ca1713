package handler

import (
	"net/http"

	"agrimarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ReviewHandler struct {
	uc *usecase.ReviewUsecase
}

func NewReviewHandler(uc *usecase.ReviewUsecase) *ReviewHandler {
	return &ReviewHandler{uc: uc}
}

type ReviewRequest struct {
	Rating int    `json:"rating"`
	Body   string `json:"body"`
}

func (h *ReviewHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	e.GET("/products/:id/reviews", h.list)
	e.POST("/products/:id/reviews", h.create, g.Auth...)
}

func (h *ReviewHandler) list(c echo.Context) error {
	productID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.uc.ListReviews(c.Request().Context(), productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReviewHandler) create(c echo.Context) error {
	id, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}
	productID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req ReviewRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.AddReview(c.Request().Context(), id.UserID, productID, usecase.AddReviewInput{
		Rating: req.Rating,
		Body:   req.Body,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}
