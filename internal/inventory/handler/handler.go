package handler

import (
	"context"
	"strings"

	"github.com/fekuna/omnipos-stock-service/internal/inventory"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/filter"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/reqctx"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InventoryHandler) AddStock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	input, err := stockInput(ctx, req)
	if err != nil {
		return nil, err
	}

	rec, err := h.uc.AddStock(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}
	return recordResponse(rec)
}

func (h *InventoryHandler) RemoveStock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	input, err := stockInput(ctx, req)
	if err != nil {
		return nil, err
	}

	rec, err := h.uc.RemoveStock(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}
	return recordResponse(rec)
}

func (h *InventoryHandler) CorrectStock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredString(req, "id")
	if err != nil {
		return nil, err
	}
	category, err := requiredString(req, "category")
	if err != nil {
		return nil, err
	}
	attr, err := requiredNumber(req, "attribute_value")
	if err != nil {
		return nil, err
	}
	qty, err := requiredInt(req, "quantity")
	if err != nil {
		return nil, err
	}

	rec, err := h.uc.CorrectStock(ctx, &dto.CorrectStockInput{
		ID:             id,
		Category:       category,
		AttributeValue: attr,
		Quantity:       qty,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return recordResponse(rec)
}

func (h *InventoryHandler) ListStock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	criteria, err := criteriaFrom(req)
	if err != nil {
		return nil, err
	}
	sortBy, err := stringField(req, "sort_by")
	if err != nil {
		return nil, err
	}
	sortKey, err := filter.ParseSortKey(sortBy)
	if err != nil {
		return nil, mapError(err)
	}

	records, err := h.uc.ListStock(ctx, criteria, sortKey)
	if err != nil {
		return nil, mapError(err)
	}
	return recordsResponse(records)
}

func (h *InventoryHandler) CountStock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	criteria, err := criteriaFrom(req)
	if err != nil {
		return nil, err
	}

	count, err := h.uc.CountStock(ctx, criteria)
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(map[string]interface{}{"count": count})
}

func (h *InventoryHandler) ImportBatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	content, err := stringField(req, "content")
	if err != nil {
		return nil, err
	}
	name, err := stringField(req, "name")
	if err != nil {
		return nil, err
	}
	key, err := stringField(req, "idempotency_key")
	if err != nil {
		return nil, err
	}
	if key == "" {
		key = reqctx.GetIdempotencyKey(ctx)
	}

	records, err := h.uc.ImportBatch(ctx, &dto.ImportBatchInput{
		Source:         strings.NewReader(content),
		Name:           name,
		IdempotencyKey: key,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return recordsResponse(records)
}

func (h *InventoryHandler) ListMovements(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	recordID, err := stringField(req, "record_id")
	if err != nil {
		return nil, err
	}
	movementType, err := stringField(req, "movement_type")
	if err != nil {
		return nil, err
	}
	if movementType != "" && !model.MovementType(movementType).Valid() {
		return nil, status.Errorf(codes.InvalidArgument, "unknown movement type %q", movementType)
	}
	start, err := optionalTime(req, "start_date")
	if err != nil {
		return nil, err
	}
	end, err := optionalTime(req, "end_date")
	if err != nil {
		return nil, err
	}

	movements, err := h.uc.ListMovements(ctx, &dto.MovementFilters{
		RecordID:     recordID,
		MovementType: model.MovementType(movementType),
		StartDate:    start,
		EndDate:      end,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return movementsResponse(movements)
}

func stockInput(ctx context.Context, req *structpb.Struct) (*dto.StockInput, error) {
	category, err := requiredString(req, "category")
	if err != nil {
		return nil, err
	}
	attr, err := requiredNumber(req, "attribute_value")
	if err != nil {
		return nil, err
	}
	qty, err := requiredInt(req, "quantity")
	if err != nil {
		return nil, err
	}
	ref, err := stringField(req, "reference")
	if err != nil {
		return nil, err
	}
	if ref == "" {
		ref = reqctx.GetRequestID(ctx)
	}

	return &dto.StockInput{
		Category:       category,
		AttributeValue: attr,
		Quantity:       qty,
		Reference:      ref,
	}, nil
}

func criteriaFrom(req *structpb.Struct) (filter.Criteria, error) {
	var (
		c   filter.Criteria
		err error
	)
	if c.Category, err = optionalString(req, "category"); err != nil {
		return c, err
	}
	if c.Exact, err = optionalNumber(req, "exact_attribute_value"); err != nil {
		return c, err
	}
	if c.Min, err = optionalNumber(req, "min_attribute_value"); err != nil {
		return c, err
	}
	if c.Max, err = optionalNumber(req, "max_attribute_value"); err != nil {
		return c, err
	}
	return c, nil
}
