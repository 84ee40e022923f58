package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/inventory"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/errs"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/feed"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/pkg/cache"
	"go.uber.org/zap"
)

// ImportBatch applies every line of the feed with add semantics inside one
// transaction. The first failing line aborts the batch and nothing is kept.
// The result holds the final state of each record touched, in the order the
// records first appear in the feed.
func (uc *inventoryUseCase) ImportBatch(ctx context.Context, input *dto.ImportBatchInput) ([]model.InventoryRecord, error) {
	if input == nil || input.Source == nil {
		return nil, errs.Validationf("batch source is required")
	}

	claimed, err := uc.claimBatch(ctx, input.IdempotencyKey)
	if err != nil {
		uc.logFailure("import batch", err, zap.String("name", input.Name))
		return nil, err
	}

	started := time.Now()
	var (
		result  []model.InventoryRecord
		applied int
	)
	err = uc.repo.RunInTx(ctx, func(repo inventory.Repository) error {
		var err error
		result, applied, err = uc.applyFeed(ctx, repo, input)
		return err
	})
	uc.metrics.ObserveOperation("import", err)
	if err != nil {
		if claimed {
			// The key must stay usable when nothing was stored.
			if relErr := uc.guard.Release(context.WithoutCancel(ctx), input.IdempotencyKey); relErr != nil {
				uc.logger.Error("failed to release idempotency key",
					zap.String("key", input.IdempotencyKey), zap.Error(relErr))
			}
		}
		uc.logFailure("import batch", err, zap.String("name", input.Name))
		return nil, err
	}

	uc.metrics.ObserveImport(applied, started)
	uc.logger.Info("batch imported",
		zap.String("name", input.Name),
		zap.Int("lines", applied),
		zap.Int("records", len(result)),
		zap.Duration("took", time.Since(started)),
	)
	return result, nil
}

func (uc *inventoryUseCase) claimBatch(ctx context.Context, key string) (bool, error) {
	if key == "" || uc.guard == nil {
		return false, nil
	}

	ok, err := uc.guard.Claim(ctx, key, cache.IdempotencyKeyTTL)
	if err != nil {
		return false, fmt.Errorf("claim idempotency key: %w", err)
	}
	if !ok {
		return false, &errs.Error{
			Kind: errs.ErrDuplicateRequest,
			Msg:  fmt.Sprintf("batch with idempotency key %q was already submitted", key),
		}
	}
	return true, nil
}

func (uc *inventoryUseCase) applyFeed(ctx context.Context, repo inventory.Repository, input *dto.ImportBatchInput) ([]model.InventoryRecord, int, error) {
	reader := feed.NewReader(input.Source)

	var (
		order   []string
		latest  = map[string]model.InventoryRecord{}
		applied int
	)

	for {
		line, ok := reader.Next()
		if !ok {
			break
		}

		rec, err := uc.add(ctx, repo, &dto.StockInput{
			Category:       line.Category,
			AttributeValue: line.AttributeValue,
			Quantity:       line.Quantity,
			Reference:      input.Name,
		}, model.MovementImport)
		if err != nil {
			if errors.Is(err, errs.ErrValidation) || errors.Is(err, errs.ErrInsufficientStock) {
				return nil, 0, &errs.LineError{Kind: errs.ErrBusiness, LineNo: line.No, Line: line.Raw, Err: err}
			}
			return nil, 0, fmt.Errorf("batch line %d: %w", line.No, err)
		}

		if _, seen := latest[rec.ID]; !seen {
			order = append(order, rec.ID)
		}
		latest[rec.ID] = *rec
		applied++
	}
	if err := reader.Err(); err != nil {
		return nil, 0, err
	}

	result := make([]model.InventoryRecord, 0, len(order))
	for _, id := range order {
		result = append(result, latest[id])
	}
	return result, applied, nil
}
