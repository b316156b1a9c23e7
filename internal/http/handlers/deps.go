package handlers

import (
	"leder/internal/config"
	"leder/internal/repos"
	"leder/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	Auth *services.AuthService

	AuthHandler     *AuthHandler
	CategoryHandler *CategoryHandler
	ProductHandler  *ProductHandler
	CartHandler     *CartHandler
	OrderHandler    *OrderHandler
	PaymentHandler  *PaymentHandler
	ShippingHandler *ShippingHandler
	ReviewHandler   *ReviewHandler
	SupportHandler  *SupportHandler
	AdminHandler    *AdminHandler
}

// NewDeps wires repositories, services and handlers. gw and mail may be nil
// when online payments or SMTP are not configured.
func NewDeps(db *sqlx.DB, cfg config.Config, gw services.Gateway, dir Directory, mail services.Mailer) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	invRepo := repos.NewInventoryRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	userRepo := repos.NewUserRepo(db)
	reviewRepo := repos.NewReviewRepo(db)
	supportRepo := repos.NewSupportRepo(db)
	payRepo := repos.NewPaymentRepo(db)

	authSvc := services.NewAuthService(userRepo, cfg.SessionTTL)
	catalogSvc := services.NewCatalogService(catRepo, prodRepo)
	invSvc := services.NewInventoryService(invRepo)
	cartSvc := services.NewCartService(prodRepo)
	orderSvc := services.NewOrderService(db, prodRepo, invRepo, orderRepo, services.NewOrderNumbers(cfg.OrderPrefix))
	paySvc := services.NewPaymentService(db, orderRepo, payRepo, gw)
	reviewSvc := services.NewReviewService(reviewRepo, userRepo, prodRepo)
	supportSvc := services.NewSupportService(supportRepo, mail)
	adminSvc := &services.AdminService{Orders: orderRepo, Prods: prodRepo, Inv: invSvc, Tickets: supportRepo, Reviews: reviewRepo}

	return &Deps{
		Auth:            authSvc,
		AuthHandler:     &AuthHandler{Auth: authSvc, SecureCookie: cfg.SecureCookie},
		CategoryHandler: &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc, Inv: invSvc},
		CartHandler:     &CartHandler{Cart: cartSvc},
		OrderHandler:    &OrderHandler{Orders: orderSvc},
		PaymentHandler:  &PaymentHandler{Payments: paySvc, PublicURL: cfg.PublicURL},
		ShippingHandler: &ShippingHandler{Dir: dir},
		ReviewHandler:   &ReviewHandler{Reviews: reviewSvc},
		SupportHandler:  &SupportHandler{Support: supportSvc},
		AdminHandler:    &AdminHandler{Admin: adminSvc, Auth: authSvc, Reviews: reviewSvc, Support: supportSvc},
	}
}
