package repository

import (
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-stock-service/internal/inventory/filter"
)

var columns = map[filter.Field]string{
	filter.FieldCategory:       "category",
	filter.FieldAttributeValue: "attribute_value",
}

// compileWhere turns a predicate set into a WHERE clause with '?'
// placeholders. Values are always passed as parameters. An empty set yields
// an empty clause.
func compileWhere(set filter.Set) (string, []any, error) {
	var (
		conditions []string
		args       []any
	)

	for _, p := range set {
		sql, params, err := compilePredicate(p)
		if err != nil {
			return "", nil, err
		}
		if sql == "" {
			continue
		}
		conditions = append(conditions, sql)
		args = append(args, params...)
	}

	if len(conditions) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args, nil
}

func compilePredicate(p filter.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case filter.Equals:
		col, err := column(pred.Field)
		if err != nil {
			return "", nil, err
		}
		return col + " = ?", []any{pred.Value}, nil

	case filter.Range:
		col, err := column(pred.Field)
		if err != nil {
			return "", nil, err
		}
		switch {
		case pred.Min != nil && pred.Max != nil:
			return col + " BETWEEN ? AND ?", []any{*pred.Min, *pred.Max}, nil
		case pred.Min != nil:
			return col + " >= ?", []any{*pred.Min}, nil
		case pred.Max != nil:
			return col + " <= ?", []any{*pred.Max}, nil
		}
		return "", nil, nil

	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func column(f filter.Field) (string, error) {
	col, ok := columns[f]
	if !ok {
		return "", fmt.Errorf("unknown filter field %q", f)
	}
	return col, nil
}
