package inventory

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/filter"
	"github.com/fekuna/omnipos-stock-service/internal/model"
)

var (
	// ErrQuantityConflict is returned by AdjustQuantity when the change would
	// leave the record with a negative quantity, or the record is gone.
	ErrQuantityConflict = errors.New("quantity conflict")
	// ErrIdentityTaken is returned by Update when another record already owns
	// the target (category, attribute value) pair.
	ErrIdentityTaken = errors.New("identity already taken")
)

type Repository interface {
	// Records. Finders return (nil, nil) when nothing matches.
	FindByIdentity(ctx context.Context, category string, attributeValue float64) (*model.InventoryRecord, error)
	FindByID(ctx context.Context, id string) (*model.InventoryRecord, error)
	FindAll(ctx context.Context, predicates filter.Set) ([]model.InventoryRecord, error)

	// Create inserts rec, or adds rec.Quantity to the record already holding
	// the same identity. rec is refreshed with the stored row.
	Create(ctx context.Context, rec *model.InventoryRecord) error
	// Update overwrites category, attribute value and quantity by id.
	Update(ctx context.Context, rec *model.InventoryRecord) error
	// AdjustQuantity applies delta atomically and fails with
	// ErrQuantityConflict instead of letting quantity drop below zero.
	AdjustQuantity(ctx context.Context, id string, delta int) (*model.InventoryRecord, error)

	// Movements / Audit
	LogMovement(ctx context.Context, movement *model.InventoryMovement) error
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, error)

	// Transaction support. fn receives a Repository bound to the transaction;
	// calling RunInTx on it joins the same transaction.
	RunInTx(ctx context.Context, fn func(repo Repository) error) error
}
