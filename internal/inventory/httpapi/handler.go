// Package httpapi exposes the inventory operations as a REST API under
// /api/inventory.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-stock-service/internal/inventory"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/errs"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/filter"
	"github.com/fekuna/omnipos-stock-service/internal/reqctx"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"go.uber.org/zap"
)

const maxUploadSize = 32 << 20

type HTTPHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewHTTPHandler(uc inventory.UseCase, log logger.ZapLogger) *HTTPHandler {
	return &HTTPHandler{uc: uc, logger: log}
}

// Register mounts the routes on mux. metrics may be nil.
func (h *HTTPHandler) Register(mux *http.ServeMux, metrics http.Handler) {
	mux.HandleFunc("POST /api/inventory/income", h.Income)
	mux.HandleFunc("POST /api/inventory/outcome", h.Outcome)
	mux.HandleFunc("PUT /api/inventory/{id}", h.Correct)
	mux.HandleFunc("GET /api/inventory", h.List)
	mux.HandleFunc("GET /api/inventory/count", h.Count)
	mux.HandleFunc("POST /api/inventory/batch", h.UploadBatch)
	mux.HandleFunc("GET /health", h.HealthCheck)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
}

func (h *HTTPHandler) Income(w http.ResponseWriter, r *http.Request) {
	input, err := stockParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	h.logger.Info("Request to income stock",
		zap.String("category", input.Category),
		zap.Float64("attribute_value", input.AttributeValue),
		zap.Int("quantity", input.Quantity))

	rec, err := h.uc.AddStock(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *HTTPHandler) Outcome(w http.ResponseWriter, r *http.Request) {
	input, err := stockParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	h.logger.Info("Request to remove stock",
		zap.String("category", input.Category),
		zap.Float64("attribute_value", input.AttributeValue),
		zap.Int("quantity", input.Quantity))

	rec, err := h.uc.RemoveStock(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *HTTPHandler) Correct(w http.ResponseWriter, r *http.Request) {
	input, err := stockParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id := r.PathValue("id")
	h.logger.Info("Request to update stock", zap.String("id", id))

	rec, err := h.uc.CorrectStock(r.Context(), &dto.CorrectStockInput{
		ID:             id,
		Category:       input.Category,
		AttributeValue: input.AttributeValue,
		Quantity:       input.Quantity,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	criteria, err := criteriaParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	sortKey, err := filter.ParseSortKey(r.URL.Query().Get("sortBy"))
	if err != nil {
		writeError(w, err)
		return
	}

	records, err := h.uc.ListStock(r.Context(), criteria, sortKey)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *HTTPHandler) Count(w http.ResponseWriter, r *http.Request) {
	criteria, err := criteriaParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	count, err := h.uc.CountStock(r.Context(), criteria)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, count)
}

// UploadBatch imports the multipart form file "file".
func (h *HTTPHandler) UploadBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, errs.Validationf("multipart file %q is required: %v", "file", err))
		return
	}
	defer file.Close()

	h.logger.Info("Request for adding stock from file", zap.String("file", header.Filename))

	records, err := h.uc.ImportBatch(r.Context(), &dto.ImportBatchInput{
		Source:         file,
		Name:           header.Filename,
		IdempotencyKey: reqctx.GetIdempotencyKey(r.Context()),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, records)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func stockParams(r *http.Request) (*dto.StockInput, error) {
	q := r.URL.Query()

	category := q.Get("category")
	if category == "" {
		return nil, errs.Validationf("query parameter %q is required", "category")
	}
	attr, err := strconv.ParseFloat(q.Get("attributeValue"), 64)
	if err != nil {
		return nil, errs.Validationf("query parameter %q must be a number", "attributeValue")
	}
	qty, err := strconv.Atoi(q.Get("quantity"))
	if err != nil {
		return nil, errs.Validationf("query parameter %q must be an integer", "quantity")
	}

	return &dto.StockInput{
		Category:       category,
		AttributeValue: attr,
		Quantity:       qty,
		Reference:      reqctx.GetRequestID(r.Context()),
	}, nil
}

func criteriaParams(r *http.Request) (filter.Criteria, error) {
	q := r.URL.Query()
	var c filter.Criteria

	if v := q.Get("category"); v != "" {
		c.Category = &v
	}
	for _, p := range []struct {
		name string
		dst  **float64
	}{
		{"exactAttributeValue", &c.Exact},
		{"minAttributeValue", &c.Min},
		{"maxAttributeValue", &c.Max},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c, errs.Validationf("query parameter %q must be a number", p.name)
		}
		*p.dst = &v
	}
	return c, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrTechnical), errors.Is(err, errs.ErrBusiness), errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrDuplicateRequest), errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrInsufficientStock):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, code, ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
