// Package feed reads stock changes from a comma separated text feed, one
// "category,attributeValue,quantity" entry per line.
package feed

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/fekuna/omnipos-stock-service/internal/inventory/errs"
)

const (
	separator  = ","
	fieldCount = 3
)

type Line struct {
	No             int
	Raw            string
	Category       string
	AttributeValue float64
	Quantity       int
}

// Reader yields parsed lines lazily. Blank lines are held back until a data
// line follows them, so a feed ending in one or more newlines is not treated
// as containing an empty entry.
type Reader struct {
	scanner *bufio.Scanner
	lineNo  int
	blankNo int
	err     error
}

func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Next returns the next line. ok is false at end of input or after an error;
// Err reports which.
func (r *Reader) Next() (line Line, ok bool) {
	if r.err != nil {
		return Line{}, false
	}
	for r.scanner.Scan() {
		r.lineNo++
		raw := r.scanner.Text()
		if strings.TrimSpace(raw) == "" {
			if r.blankNo == 0 {
				r.blankNo = r.lineNo
			}
			continue
		}
		if r.blankNo != 0 {
			r.err = &errs.LineError{Kind: errs.ErrTechnical, LineNo: r.blankNo, Line: "", Err: errEmptyLine}
			return Line{}, false
		}
		parsed, err := Parse(raw)
		if err != nil {
			r.err = &errs.LineError{Kind: errs.ErrTechnical, LineNo: r.lineNo, Line: raw, Err: err}
			return Line{}, false
		}
		parsed.No = r.lineNo
		return parsed, true
	}
	if err := r.scanner.Err(); err != nil {
		r.err = &errs.LineError{Kind: errs.ErrTechnical, Err: err}
	}
	return Line{}, false
}

func (r *Reader) Err() error {
	return r.err
}

// Parse splits one raw entry. Fields are trimmed of surrounding whitespace.
func Parse(raw string) (Line, error) {
	fields := strings.Split(raw, separator)
	if len(fields) != fieldCount {
		return Line{}, &fieldCountError{got: len(fields)}
	}

	attr, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return Line{}, err
	}
	qty, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return Line{}, err
	}

	return Line{
		Raw:            raw,
		Category:       strings.TrimSpace(fields[0]),
		AttributeValue: attr,
		Quantity:       qty,
	}, nil
}
