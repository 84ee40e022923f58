package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/inventory"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/errs"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/filter"
	"github.com/fekuna/omnipos-stock-service/internal/metrics"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	minAttributeValue = 0.0
	maxAttributeValue = 100.0

	maxQuantity = math.MaxInt64
)

// IdempotencyGuard remembers keys of batches that were already submitted.
type IdempotencyGuard interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type inventoryUseCase struct {
	repo    inventory.Repository
	guard   IdempotencyGuard
	metrics *metrics.Metrics
	logger  logger.ZapLogger
}

// NewInventoryUseCase wires the inventory rules to a store. guard and m may
// be nil.
func NewInventoryUseCase(repo inventory.Repository, guard IdempotencyGuard, m *metrics.Metrics, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:    repo,
		guard:   guard,
		metrics: m,
		logger:  log,
	}
}

func (uc *inventoryUseCase) AddStock(ctx context.Context, input *dto.StockInput) (*model.InventoryRecord, error) {
	var rec *model.InventoryRecord
	err := uc.repo.RunInTx(ctx, func(repo inventory.Repository) error {
		var err error
		rec, err = uc.add(ctx, repo, input, model.MovementIncome)
		return err
	})
	uc.metrics.ObserveOperation("add", err)
	if err != nil {
		uc.logFailure("add stock", err, zap.String("category", input.Category), zap.Float64("attribute_value", input.AttributeValue))
		return nil, err
	}
	return rec, nil
}

func (uc *inventoryUseCase) RemoveStock(ctx context.Context, input *dto.StockInput) (*model.InventoryRecord, error) {
	var rec *model.InventoryRecord
	err := uc.repo.RunInTx(ctx, func(repo inventory.Repository) error {
		var err error
		rec, err = uc.remove(ctx, repo, input)
		return err
	})
	uc.metrics.ObserveOperation("remove", err)
	if err != nil {
		uc.logFailure("remove stock", err, zap.String("category", input.Category), zap.Float64("attribute_value", input.AttributeValue))
		return nil, err
	}
	return rec, nil
}

func (uc *inventoryUseCase) CorrectStock(ctx context.Context, input *dto.CorrectStockInput) (*model.InventoryRecord, error) {
	var rec *model.InventoryRecord
	err := uc.repo.RunInTx(ctx, func(repo inventory.Repository) error {
		var err error
		rec, err = uc.correct(ctx, repo, input)
		return err
	})
	uc.metrics.ObserveOperation("correct", err)
	if err != nil {
		uc.logFailure("correct stock", err, zap.String("id", input.ID))
		return nil, err
	}
	return rec, nil
}

func (uc *inventoryUseCase) ListStock(ctx context.Context, criteria filter.Criteria, sortKey filter.SortKey) ([]model.InventoryRecord, error) {
	key, err := filter.ParseSortKey(string(sortKey))
	if err != nil {
		return nil, err
	}

	records, err := uc.repo.FindAll(ctx, filter.Build(criteria))
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	return filter.Sort(records, key), nil
}

func (uc *inventoryUseCase) CountStock(ctx context.Context, criteria filter.Criteria) (int64, error) {
	records, err := uc.repo.FindAll(ctx, filter.Build(criteria))
	if err != nil {
		return 0, fmt.Errorf("query inventory: %w", err)
	}
	return filter.TotalQuantity(records), nil
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, error) {
	return uc.repo.ListMovements(ctx, filters)
}

// add increases the stock of an identity, creating the record on first use.
// It must run inside a transaction.
func (uc *inventoryUseCase) add(ctx context.Context, repo inventory.Repository, input *dto.StockInput, movementType model.MovementType) (*model.InventoryRecord, error) {
	if input.Category == "" {
		return nil, errs.Validationf("Stock income error - category should not be empty")
	}
	if !validAttributeValue(input.AttributeValue) {
		return nil, errs.Validationf("Stock income error - attribute value should be 0-100 (passed value is %f)", input.AttributeValue)
	}
	if input.Quantity < 0 {
		return nil, errs.Validationf("Stock income error - quantity should not be negative (passed value is %d)", input.Quantity)
	}

	existing, err := repo.FindByIdentity(ctx, input.Category, input.AttributeValue)
	if err != nil {
		return nil, fmt.Errorf("find inventory record: %w", err)
	}

	var rec *model.InventoryRecord
	if existing != nil {
		if existing.Quantity > maxQuantity-input.Quantity {
			return nil, errs.Validationf("Stock income error - quantity %d would overflow the stock of %d", input.Quantity, existing.Quantity)
		}
		rec, err = repo.AdjustQuantity(ctx, existing.ID, input.Quantity)
		if err != nil {
			return nil, fmt.Errorf("increase inventory record %s: %w", existing.ID, err)
		}
	} else {
		rec = &model.InventoryRecord{
			ID:             uuid.New().String(),
			Category:       input.Category,
			AttributeValue: input.AttributeValue,
			Quantity:       input.Quantity,
		}
		// Create accumulates if another caller created the identity meanwhile.
		if err := repo.Create(ctx, rec); err != nil {
			return nil, fmt.Errorf("create inventory record: %w", err)
		}
	}

	if err := uc.logMovement(ctx, repo, rec, movementType, input.Quantity, input.Reference); err != nil {
		return nil, err
	}
	return rec, nil
}

// remove decreases the stock of an identity. It must run inside a
// transaction.
func (uc *inventoryUseCase) remove(ctx context.Context, repo inventory.Repository, input *dto.StockInput) (*model.InventoryRecord, error) {
	if input.Quantity < 0 {
		return nil, errs.Validationf("Stock outcome error - quantity should not be negative (passed value is %d)", input.Quantity)
	}

	notInStock := &errs.StockError{
		Category:       input.Category,
		AttributeValue: input.AttributeValue,
		Quantity:       input.Quantity,
	}

	existing, err := repo.FindByIdentity(ctx, input.Category, input.AttributeValue)
	if err != nil {
		return nil, fmt.Errorf("find inventory record: %w", err)
	}
	if existing == nil {
		notInStock.Missing = true
		return nil, notInStock
	}
	if existing.Quantity-input.Quantity < 0 {
		return nil, notInStock
	}

	rec, err := repo.AdjustQuantity(ctx, existing.ID, -input.Quantity)
	if err != nil {
		if errors.Is(err, inventory.ErrQuantityConflict) {
			// Another caller took the stock between the read and the update.
			return nil, notInStock
		}
		return nil, fmt.Errorf("decrease inventory record %s: %w", existing.ID, err)
	}

	if err := uc.logMovement(ctx, repo, rec, model.MovementOutcome, -input.Quantity, input.Reference); err != nil {
		return nil, err
	}
	return rec, nil
}

// correct overwrites a record by id. Unlike add it does not accumulate: the
// passed quantity replaces the stored one.
func (uc *inventoryUseCase) correct(ctx context.Context, repo inventory.Repository, input *dto.CorrectStockInput) (*model.InventoryRecord, error) {
	if input.Category == "" {
		return nil, errs.Validationf("Update error - category should not be empty")
	}
	if !validAttributeValue(input.AttributeValue) {
		return nil, errs.Validationf("Update error - attribute value should be 0-100 (passed value is %f)", input.AttributeValue)
	}
	if input.Quantity < 0 {
		return nil, errs.Validationf("Update error - quantity should not be negative (passed value is %d)", input.Quantity)
	}

	rec, err := repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("find inventory record: %w", err)
	}
	if rec == nil {
		return nil, errs.NotFoundf("Update error - missing items with the passed Id: %s", input.ID)
	}

	identityTaken := func(cause error) error {
		return errs.Conflict(fmt.Sprintf("Update error - items with category %s and attribute value %f already exist", input.Category, input.AttributeValue), cause)
	}

	if rec.Category != input.Category || rec.AttributeValue != input.AttributeValue {
		owner, err := repo.FindByIdentity(ctx, input.Category, input.AttributeValue)
		if err != nil {
			return nil, fmt.Errorf("find inventory record: %w", err)
		}
		if owner != nil && owner.ID != rec.ID {
			return nil, identityTaken(inventory.ErrIdentityTaken)
		}
	}

	before := rec.Quantity
	rec.Category = input.Category
	rec.AttributeValue = input.AttributeValue
	rec.Quantity = input.Quantity

	if err := repo.Update(ctx, rec); err != nil {
		if errors.Is(err, inventory.ErrIdentityTaken) {
			return nil, identityTaken(err)
		}
		return nil, fmt.Errorf("update inventory record %s: %w", rec.ID, err)
	}

	if err := uc.logMovement(ctx, repo, rec, model.MovementCorrection, rec.Quantity-before, ""); err != nil {
		return nil, err
	}
	return rec, nil
}

func (uc *inventoryUseCase) logMovement(ctx context.Context, repo inventory.Repository, rec *model.InventoryRecord, movementType model.MovementType, change int, reference string) error {
	var ref *string
	if reference != "" {
		ref = &reference
	}

	movement := &model.InventoryMovement{
		ID:             uuid.New().String(),
		RecordID:       rec.ID,
		MovementType:   movementType,
		QuantityChange: change,
		QuantityBefore: rec.Quantity - change,
		QuantityAfter:  rec.Quantity,
		Reference:      ref,
		CreatedAt:      time.Now().UTC(),
	}

	if err := repo.LogMovement(ctx, movement); err != nil {
		return fmt.Errorf("log inventory movement: %w", err)
	}
	return nil
}

// logFailure logs rule violations as warnings and everything else as errors.
func (uc *inventoryUseCase) logFailure(op string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if isRuleViolation(err) {
		uc.logger.Warn(op+" rejected", fields...)
		return
	}
	uc.logger.Error(op+" failed", fields...)
}

func isRuleViolation(err error) bool {
	for _, kind := range []error{
		errs.ErrValidation, errs.ErrInsufficientStock, errs.ErrNotFound,
		errs.ErrConflict, errs.ErrTechnical, errs.ErrBusiness, errs.ErrDuplicateRequest,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// validAttributeValue also rejects NaN.
func validAttributeValue(v float64) bool {
	return v >= minAttributeValue && v <= maxAttributeValue
}
