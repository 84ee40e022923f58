// Package filter turns optional query parameters into a small set of
// predicates and orders query results.
//
// A Set is plain data: backends translate it into their own query language
// (see the SQL repository) and Match evaluates it in memory.
package filter

import "github.com/fekuna/omnipos-stock-service/internal/model"

type Field string

const (
	FieldCategory       Field = "category"
	FieldAttributeValue Field = "attribute_value"
)

// Predicate is implemented only by the types in this package.
type Predicate interface {
	predicateNode()
}

// Equals matches records whose field equals Value exactly. Value is a string
// for FieldCategory and a float64 for FieldAttributeValue.
type Equals struct {
	Field Field
	Value any
}

func (Equals) predicateNode() {}

// Range matches Min <= field <= Max. A nil bound is open.
type Range struct {
	Field Field
	Min   *float64
	Max   *float64
}

func (Range) predicateNode() {}

// Set is a conjunction of predicates. An empty Set matches every record.
type Set []Predicate

type Criteria struct {
	Category *string
	Exact    *float64
	Min      *float64
	Max      *float64
}

func Build(c Criteria) Set {
	set := Set{}
	if c.Category != nil {
		set = append(set, Equals{Field: FieldCategory, Value: *c.Category})
	}
	if c.Exact != nil {
		set = append(set, Equals{Field: FieldAttributeValue, Value: *c.Exact})
	}
	if c.Min != nil || c.Max != nil {
		set = append(set, Range{Field: FieldAttributeValue, Min: c.Min, Max: c.Max})
	}
	return set
}

func (s Set) Match(r model.InventoryRecord) bool {
	for _, p := range s {
		if !match(p, r) {
			return false
		}
	}
	return true
}

func match(p Predicate, r model.InventoryRecord) bool {
	switch pred := p.(type) {
	case Equals:
		switch pred.Field {
		case FieldCategory:
			v, ok := pred.Value.(string)
			return ok && r.Category == v
		case FieldAttributeValue:
			v, ok := pred.Value.(float64)
			return ok && r.AttributeValue == v
		}
	case Range:
		if pred.Field != FieldAttributeValue {
			return false
		}
		if pred.Min != nil && r.AttributeValue < *pred.Min {
			return false
		}
		if pred.Max != nil && r.AttributeValue > *pred.Max {
			return false
		}
		return true
	}
	return false
}

// TotalQuantity sums Quantity over records. It is the value reported by
// count queries, which is a stock total and not a number of records.
func TotalQuantity(records []model.InventoryRecord) int64 {
	var total int64
	for _, r := range records {
		total += int64(r.Quantity)
	}
	return total
}
