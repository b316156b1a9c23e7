package services

import (
	"leder/internal/domain"
	"leder/internal/repos"

	"github.com/shopspring/decimal"
)

type Stats struct {
	TotalOrders   int                 `json:"totalOrders"`
	NewOrders     int                 `json:"newOrders"`
	Revenue       decimal.Decimal     `json:"revenue"`
	TotalProducts int                 `json:"totalProducts"`
	LowStock      []repos.LowStockRow `json:"lowStock"`
	OpenSupport   int                 `json:"openSupport"`
	NewReviews    int                 `json:"newReviews"`
	RecentOrders  []domain.Order      `json:"recentOrders"`
}

type AdminService struct {
	Orders  *repos.OrderRepo
	Prods   *repos.ProductRepo
	Inv     *InventoryService
	Tickets *repos.SupportRepo
	Reviews *repos.ReviewRepo
}

func (s *AdminService) Stats() (*Stats, error) {
	ord, err := s.Orders.Stats()
	if err != nil {
		return nil, err
	}
	st := &Stats{TotalOrders: ord.Total, NewOrders: ord.New, Revenue: ord.Revenue}
	if st.TotalProducts, err = s.Prods.CountActive(); err != nil {
		return nil, err
	}
	if st.LowStock, err = s.Inv.LowStock(); err != nil {
		return nil, err
	}
	if st.OpenSupport, err = s.Tickets.CountOpen(); err != nil {
		return nil, err
	}
	if st.NewReviews, err = s.Reviews.CountNew(); err != nil {
		return nil, err
	}
	if st.RecentOrders, err = s.Orders.List(repos.OrderFilter{Limit: 5}); err != nil {
		return nil, err
	}
	return st, nil
}
