package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/inventory"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/filter"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/jmoiron/sqlx"
)

const recordColumns = "id, category, attribute_value, quantity, created_at, updated_at"

// SQLRepository stores inventory in inventory_records / inventory_movements.
// Queries are written with '?' placeholders and rebound per driver, so the
// same code runs on Postgres (pgx) and SQLite.
type SQLRepository struct {
	DB *sqlx.DB
	// ext is DB outside a transaction and the open *sqlx.Tx inside one.
	ext sqlx.ExtContext
	tx  *sqlx.Tx
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db, ext: db}
}

func (r *SQLRepository) FindByIdentity(ctx context.Context, category string, attributeValue float64) (*model.InventoryRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM inventory_records WHERE category = ? AND attribute_value = ?`
	return r.getRecord(ctx, query, category, attributeValue)
}

func (r *SQLRepository) FindByID(ctx context.Context, id string) (*model.InventoryRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM inventory_records WHERE id = ?`
	return r.getRecord(ctx, query, id)
}

func (r *SQLRepository) getRecord(ctx context.Context, query string, args ...any) (*model.InventoryRecord, error) {
	var rec model.InventoryRecord
	err := sqlx.GetContext(ctx, r.ext, &rec, r.ext.Rebind(query), args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *SQLRepository) FindAll(ctx context.Context, predicates filter.Set) ([]model.InventoryRecord, error) {
	where, args, err := compileWhere(predicates)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + recordColumns + ` FROM inventory_records` + where + ` ORDER BY created_at ASC, id ASC`

	items := []model.InventoryRecord{}
	if err := sqlx.SelectContext(ctx, r.ext, &items, r.ext.Rebind(query), args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *SQLRepository) Create(ctx context.Context, rec *model.InventoryRecord) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	query := `
        INSERT INTO inventory_records (` + recordColumns + `)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT (category, attribute_value)
        DO UPDATE SET
            quantity = inventory_records.quantity + excluded.quantity,
            updated_at = excluded.updated_at
        RETURNING ` + recordColumns

	return sqlx.GetContext(ctx, r.ext, rec, r.ext.Rebind(query),
		rec.ID, rec.Category, rec.AttributeValue, rec.Quantity, rec.CreatedAt, rec.UpdatedAt)
}

func (r *SQLRepository) Update(ctx context.Context, rec *model.InventoryRecord) error {
	rec.UpdatedAt = time.Now().UTC()

	query := `
        UPDATE inventory_records
        SET category = ?, attribute_value = ?, quantity = ?, updated_at = ?
        WHERE id = ?`

	res, err := r.ext.ExecContext(ctx, r.ext.Rebind(query),
		rec.Category, rec.AttributeValue, rec.Quantity, rec.UpdatedAt, rec.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update inventory record %s: %w", rec.ID, inventory.ErrIdentityTaken)
		}
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("update inventory record %s: %w", rec.ID, sql.ErrNoRows)
	}
	return nil
}

func (r *SQLRepository) AdjustQuantity(ctx context.Context, id string, delta int) (*model.InventoryRecord, error) {
	query := `
        UPDATE inventory_records
        SET quantity = quantity + ?, updated_at = ?
        WHERE id = ? AND quantity + ? >= 0
        RETURNING ` + recordColumns

	var rec model.InventoryRecord
	err := sqlx.GetContext(ctx, r.ext, &rec, r.ext.Rebind(query), delta, time.Now().UTC(), id, delta)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, inventory.ErrQuantityConflict
		}
		return nil, err
	}
	return &rec, nil
}

func (r *SQLRepository) LogMovement(ctx context.Context, movement *model.InventoryMovement) error {
	query := `
        INSERT INTO inventory_movements (
            id, record_id, movement_type, quantity_change,
            quantity_before, quantity_after, reference, created_at
        ) VALUES (
            :id, :record_id, :movement_type, :quantity_change,
            :quantity_before, :quantity_after, :reference, :created_at
        )`
	_, err := sqlx.NamedExecContext(ctx, r.ext, query, movement)
	return err
}

func (r *SQLRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.InventoryMovement, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f != nil {
		if f.RecordID != "" {
			conditions = append(conditions, "record_id = :record_id")
			args["record_id"] = f.RecordID
		}
		if f.MovementType != "" {
			conditions = append(conditions, "movement_type = :movement_type")
			args["movement_type"] = string(f.MovementType)
		}
		if f.StartDate != nil {
			conditions = append(conditions, "created_at >= :start_date")
			args["start_date"] = f.StartDate.UTC()
		}
		if f.EndDate != nil {
			conditions = append(conditions, "created_at <= :end_date")
			args["end_date"] = f.EndDate.UTC()
		}
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := `SELECT id, record_id, movement_type, quantity_change, quantity_before, quantity_after, reference, created_at
        FROM inventory_movements` + whereClause + ` ORDER BY created_at DESC, id DESC`

	bound, boundArgs, err := r.ext.BindNamed(query, args)
	if err != nil {
		return nil, err
	}

	items := []model.InventoryMovement{}
	if err := sqlx.SelectContext(ctx, r.ext, &items, bound, boundArgs...); err != nil {
		return nil, err
	}
	return items, nil
}

// RunInTx runs fn inside a transaction. The transaction is rolled back when
// fn returns an error or panics, and committed otherwise.
func (r *SQLRepository) RunInTx(ctx context.Context, fn func(repo inventory.Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op once committed

	if err := fn(&SQLRepository{DB: r.DB, ext: tx, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
