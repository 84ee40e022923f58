package dto

import "io"

type StockInput struct {
	Category       string
	AttributeValue float64
	Quantity       int
	Reference      string // event or request id recorded on the movement
}

type CorrectStockInput struct {
	ID             string
	Category       string
	AttributeValue float64
	Quantity       int
}

type ImportBatchInput struct {
	Source         io.Reader
	Name           string // file name, for logs
	IdempotencyKey string
}
