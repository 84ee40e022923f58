package model

import "time"

type InventoryRecord struct {
	ID             string    `db:"id" json:"id"`
	Category       string    `db:"category" json:"category"`
	AttributeValue float64   `db:"attribute_value" json:"attribute_value"`
	Quantity       int       `db:"quantity" json:"quantity"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// MovementType classifies a row of the stock audit log.
type MovementType string

const (
	MovementIncome     MovementType = "income"
	MovementOutcome    MovementType = "outcome"
	MovementCorrection MovementType = "correction"
	MovementImport     MovementType = "import"
)

func (t MovementType) Valid() bool {
	switch t {
	case MovementIncome, MovementOutcome, MovementCorrection, MovementImport:
		return true
	}
	return false
}

type InventoryMovement struct {
	ID             string       `db:"id" json:"id"`
	RecordID       string       `db:"record_id" json:"record_id"`
	MovementType   MovementType `db:"movement_type" json:"movement_type"`
	QuantityChange int          `db:"quantity_change" json:"quantity_change"`
	QuantityBefore int          `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  int          `db:"quantity_after" json:"quantity_after"`
	Reference      *string      `db:"reference" json:"reference"` // Nullable
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
}
