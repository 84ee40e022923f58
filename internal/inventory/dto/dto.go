package dto

import (
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/model"
)

type MovementFilters struct {
	RecordID     string
	MovementType model.MovementType
	StartDate    *time.Time
	EndDate      *time.Time
}
