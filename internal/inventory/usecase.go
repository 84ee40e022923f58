package inventory

import (
	"context"

	"github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/filter"
	"github.com/fekuna/omnipos-stock-service/internal/model"
)

type UseCase interface {
	AddStock(ctx context.Context, input *dto.StockInput) (*model.InventoryRecord, error)
	RemoveStock(ctx context.Context, input *dto.StockInput) (*model.InventoryRecord, error)
	CorrectStock(ctx context.Context, input *dto.CorrectStockInput) (*model.InventoryRecord, error)

	ListStock(ctx context.Context, criteria filter.Criteria, sortKey filter.SortKey) ([]model.InventoryRecord, error)
	CountStock(ctx context.Context, criteria filter.Criteria) (int64, error)

	ImportBatch(ctx context.Context, input *dto.ImportBatchInput) ([]model.InventoryRecord, error)

	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, error)
}
