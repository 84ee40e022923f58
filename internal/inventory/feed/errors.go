package feed

import (
	"errors"
	"fmt"
)

var errEmptyLine = errors.New("empty line inside batch")

type fieldCountError struct {
	got int
}

func (e *fieldCountError) Error() string {
	return fmt.Sprintf("expected %d fields, got %d", fieldCount, e.got)
}
