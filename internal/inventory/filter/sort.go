package filter

import (
	"cmp"
	"slices"
	"strings"

	"github.com/fekuna/omnipos-stock-service/internal/inventory/errs"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"golang.org/x/text/cases"
)

type SortKey string

const (
	SortNone          SortKey = ""
	SortAttributeAsc  SortKey = "attribute_asc"
	SortAttributeDesc SortKey = "attribute_desc"
	SortCategoryAsc   SortKey = "category_asc"
	SortCategoryDesc  SortKey = "category_desc"
)

// ParseSortKey accepts the lower case key names as well as their upper case
// spelling (ATTRIBUTE_ASC) used by older clients.
func ParseSortKey(s string) (SortKey, error) {
	switch key := SortKey(strings.ToLower(strings.TrimSpace(s))); key {
	case SortNone, SortAttributeAsc, SortAttributeDesc, SortCategoryAsc, SortCategoryDesc:
		return key, nil
	}
	return SortNone, errs.Validationf("unknown sort key %q", s)
}

// Comparator returns the ordering for key, or nil for SortNone and unknown keys.
func Comparator(key SortKey) func(a, b model.InventoryRecord) int {
	switch key {
	case SortAttributeAsc:
		return compareAttribute
	case SortAttributeDesc:
		return func(a, b model.InventoryRecord) int { return compareAttribute(b, a) }
	case SortCategoryAsc:
		return compareCategory
	case SortCategoryDesc:
		return func(a, b model.InventoryRecord) int { return compareCategory(b, a) }
	}
	return nil
}

// Sort orders records in place and returns them. Equal keys keep their store
// order; SortNone leaves the slice untouched.
func Sort(records []model.InventoryRecord, key SortKey) []model.InventoryRecord {
	if cmpFn := Comparator(key); cmpFn != nil {
		slices.SortStableFunc(records, cmpFn)
	}
	return records
}

func compareAttribute(a, b model.InventoryRecord) int {
	return cmp.Compare(a.AttributeValue, b.AttributeValue)
}

func compareCategory(a, b model.InventoryRecord) int {
	// A new Caser per call: cases.Caser keeps state and is not safe for
	// concurrent use.
	fold := cases.Fold()
	return strings.Compare(fold.String(a.Category), fold.String(b.Category))
}
