package services

import (
	"errors"

	"leder/internal/domain"
	"leder/internal/repos"
)

const (
	InStock    = "IN_STOCK"
	LowStock   = "LOW_STOCK"
	OutOfStock = "OUT_OF_STOCK"

	lowStockThreshold = 3
)

type InventoryService struct {
	Inv *repos.InventoryRepo
}

func NewInventoryService(inv *repos.InventoryRepo) *InventoryService {
	return &InventoryService{Inv: inv}
}

// AvailabilityOf converts a stock level to IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func AvailabilityOf(qty int) domain.Availability {
	switch {
	case qty > lowStockThreshold:
		return domain.Availability{Status: InStock, Qty: qty}
	case qty > 0:
		return domain.Availability{Status: LowStock, Qty: qty}
	default:
		return domain.Availability{Status: OutOfStock, Qty: 0}
	}
}

// Availability reports a variant's stock. Unknown variants are out of stock.
func (s *InventoryService) Availability(productID, variantID string) (domain.Availability, error) {
	qty, err := s.Inv.Stock(productID, variantID)
	if errors.Is(err, repos.ErrNotFound) {
		return AvailabilityOf(0), nil
	}
	if err != nil {
		return domain.Availability{}, err
	}
	return AvailabilityOf(qty), nil
}

func (s *InventoryService) SetStock(productID, variantID string, qty int) error {
	if qty < 0 {
		return invalid(ErrInvalidInput, "Stock cannot be negative")
	}
	err := s.Inv.SetStock(productID, variantID, qty)
	if errors.Is(err, repos.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *InventoryService) LowStock() ([]repos.LowStockRow, error) {
	return s.Inv.LowStock(lowStockThreshold)
}
