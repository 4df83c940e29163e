package service

import (
	"context"

	"garage-booking/internal/domain"
	"garage-booking/internal/logger"
	"garage-booking/internal/repository"
)

type inventoryService struct {
	inventoryRepo repository.InventoryRepository
}

func NewInventoryService(inventoryRepo repository.InventoryRepository) InventoryService {
	return &inventoryService{inventoryRepo: inventoryRepo}
}

func withStockStatus(items []domain.InventoryItem) []domain.InventoryItem {
	for i := range items {
		items[i].StockStatus = items[i].Status()
	}
	return items
}

func (s *inventoryService) ListItems(ctx context.Context) ([]domain.InventoryItem, error) {
	logger.EnterMethod("inventoryService.ListItems")
	items, err := s.inventoryRepo.List(ctx)
	if err != nil {
		logger.ExitMethodWithError("inventoryService.ListItems", err)
		return nil, err
	}
	logger.ExitMethod("inventoryService.ListItems", "count", len(items))
	return withStockStatus(items), nil
}

func (s *inventoryService) ListLowStock(ctx context.Context) ([]domain.InventoryItem, error) {
	logger.EnterMethod("inventoryService.ListLowStock")
	items, err := s.inventoryRepo.ListLowStock(ctx)
	if err != nil {
		logger.ExitMethodWithError("inventoryService.ListLowStock", err)
		return nil, err
	}
	logger.ExitMethod("inventoryService.ListLowStock", "count", len(items))
	return withStockStatus(items), nil
}

// Restock adds units to an item. Only managers may restock.
func (s *inventoryService) Restock(ctx context.Context, actor domain.Actor, itemID int64, quantity int32) (*domain.InventoryItem, error) {
	logger.EnterMethod("inventoryService.Restock", "actorID", actor.ID, "itemID", itemID, "quantity", quantity)

	if actor.Role != domain.RoleManager {
		logger.ExitMethodWithError("inventoryService.Restock", domain.ErrForbidden)
		return nil, domain.ErrForbidden
	}
	if quantity <= 0 {
		logger.ExitMethodWithError("inventoryService.Restock", domain.ErrInvalidQuantity)
		return nil, domain.ErrInvalidQuantity
	}

	if err := s.inventoryRepo.AdjustStock(ctx, itemID, quantity); err != nil {
		logger.ExitMethodWithError("inventoryService.Restock", err)
		return nil, err
	}
	item, err := s.inventoryRepo.GetByID(ctx, itemID)
	if err != nil {
		logger.ExitMethodWithError("inventoryService.Restock", err)
		return nil, err
	}
	item.StockStatus = item.Status()

	logger.ExitMethod("inventoryService.Restock", "itemID", itemID, "stockLevel", item.StockLevel)
	return item, nil
}
