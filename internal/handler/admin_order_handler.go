package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"agrimarket/internal/domain/model"
	"agrimarket/internal/middleware"
	"agrimarket/internal/repository"
	"agrimarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	admin := e.Group("/admin", g.Auth...)
	admin.Use(middleware.StaffGuard())

	admin.GET("/orders", h.list)
	admin.POST("/orders/:id/advance", h.advance)
	admin.POST("/orders/:id/revert", h.revert)
	admin.POST("/orders/:id/cancel", h.cancel)
	admin.POST("/orders/:id/paid", h.markPaid)
	admin.GET("/audit-logs", h.auditLogs)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	id, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}

	page, ok := queryInt(c, "page", 1)
	if !ok {
		return badRequest(c, "invalid page")
	}
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return badRequest(c, "invalid limit")
	}

	var userID *int64
	if v := c.QueryParam("user_id"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid user_id")
		}
		userID = &x
	}

	fromPtr, ok := queryTime(c, "from")
	if !ok {
		return badRequest(c, "invalid from")
	}
	toPtr, ok := queryTime(c, "to")
	if !ok {
		return badRequest(c, "invalid to")
	}

	out, err := h.uc.List(c.Request().Context(), id, repository.AdminOrderListFilter{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
		UserID: userID,
		From:   fromPtr,
		To:     toPtr,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type statusChangeFunc func(ctx context.Context, actor model.Identity, orderID int64) (usecase.StatusChangeOutput, error)

func (h *AdminOrderHandler) advance(c echo.Context) error {
	return h.changeStatus(c, h.uc.Advance)
}

// 戻せない状態でも200（changed=false）
func (h *AdminOrderHandler) revert(c echo.Context) error {
	return h.changeStatus(c, h.uc.Revert)
}

func (h *AdminOrderHandler) cancel(c echo.Context) error {
	return h.changeStatus(c, h.uc.Cancel)
}

func (h *AdminOrderHandler) changeStatus(c echo.Context, fn statusChangeFunc) error {
	id, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := fn(c.Request().Context(), id, orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) markPaid(c echo.Context) error {
	id, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.MarkPaid(c.Request().Context(), id, orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ?action=A,B&actor_id=&order_id=|product_id=|user_id=&from=&to=&limit=&offset=
func (h *AdminOrderHandler) auditLogs(c echo.Context) error {
	id, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}

	limit, ok := queryInt(c, "limit", repository.DefaultAuditLogLimit)
	if !ok {
		return badRequest(c, "invalid limit")
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return badRequest(c, "invalid offset")
	}

	q := repository.AuditLogQuery{Limit: limit, Offset: offset}
	for _, a := range strings.Split(c.QueryParam("action"), ",") {
		if a = strings.TrimSpace(a); a != "" {
			q.Actions = append(q.Actions, model.AuditAction(strings.ToUpper(a)))
		}
	}
	if q.ActorID, ok = queryID(c, "actor_id"); !ok {
		return badRequest(c, "invalid actor_id")
	}
	if q.Target, ok = auditTarget(c); !ok {
		return badRequest(c, "use one of order_id, product_id, user_id")
	}

	from, ok := queryTime(c, "from")
	if !ok {
		return badRequest(c, "invalid from")
	}
	to, ok := queryTime(c, "to")
	if !ok {
		return badRequest(c, "invalid to")
	}
	if from != nil {
		q.Since = *from
	}
	if to != nil {
		q.Until = *to
	}

	out, err := h.uc.AuditLogs(c.Request().Context(), id, q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// order_id / product_id / user_id は1つだけ指定できる
func auditTarget(c echo.Context) (*model.AuditTarget, bool) {
	params := []struct {
		name string
		of   func(int64) model.AuditTarget
	}{
		{"order_id", model.OrderTarget},
		{"product_id", model.ProductTarget},
		{"user_id", model.UserTarget},
	}

	var target *model.AuditTarget
	for _, p := range params {
		if c.QueryParam(p.name) == "" {
			continue
		}
		id, ok := queryID(c, p.name)
		if !ok || target != nil {
			return nil, false
		}
		t := p.of(id)
		target = &t
	}
	return target, true
}

// RFC3339。省略時はnil
func queryTime(c echo.Context, name string) (*time.Time, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, false
	}
	return &t, true
}
