package server

import (
	"context"
	"net/http"
	"time"

	"agrimarket/internal/config"
	"agrimarket/internal/infra/security"
	"agrimarket/internal/middleware"
	repo "agrimarket/internal/repository"
	"agrimarket/internal/usecase"
	"agrimarket/internal/validator"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// Usecases はハンドラに渡すusecaseの組。
type Usecases struct {
	Auth       *usecase.AuthUsecase
	Dashboard  *usecase.DashboardUsecase
	Products   *usecase.ProductUsecase
	Cart       *usecase.CartUsecase
	Orders     *usecase.OrderUsecase
	AdminOrder *usecase.AdminOrderUsecase
	Reviews    *usecase.ReviewUsecase
}

// NewUsecases はTransactionManagerから全usecaseを組み立てる。
func NewUsecases(cfg config.Config, tx repo.TransactionManager, log logrus.FieldLogger) Usecases {
	hasher := security.NewBcryptPasswordHasher(cfg.BcryptCost)
	issuer := security.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)

	return Usecases{
		Auth:       usecase.NewAuthUsecase(tx, hasher, issuer, validator.NewAuthValidator(), log),
		Dashboard:  usecase.NewDashboardUsecase(tx),
		Products:   usecase.NewProductUsecase(tx),
		Cart:       usecase.NewCartUsecase(tx),
		Orders:     usecase.NewOrderUsecase(tx, usecase.NewUUIDOrderNumberGenerator(), log),
		AdminOrder: usecase.NewAdminOrderUsecase(tx, log),
		Reviews:    usecase.NewReviewUsecase(tx),
	}
}

// New はルート登録済みのechoを返す。
func New(cfg config.Config, uc Usecases, log logrus.FieldLogger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	if cfg.FEURL != "" {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     []string{cfg.FEURL},
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
			AllowCredentials: true,
		}))
	}

	RegisterRoutes(e, cfg, uc)
	return e
}

// Start はctxがキャンセルされるまで待ち、その後graceful shutdownする。
func Start(ctx context.Context, e *echo.Echo, addr string, log logrus.FieldLogger) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
