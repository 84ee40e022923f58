package handler

import (
	"errors"

	"github.com/fekuna/omnipos-stock-service/internal/inventory/errs"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// mapError converts an inventory error to a gRPC status. The order matters:
// a removal from a missing identity is both not found and insufficient
// stock, and is reported as NotFound.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	code := codes.Internal
	switch {
	case errors.Is(err, errs.ErrTechnical), errors.Is(err, errs.ErrBusiness), errors.Is(err, errs.ErrValidation):
		code = codes.InvalidArgument
	case errors.Is(err, errs.ErrDuplicateRequest), errors.Is(err, errs.ErrConflict):
		code = codes.AlreadyExists
	case errors.Is(err, errs.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, errs.ErrInsufficientStock):
		code = codes.FailedPrecondition
	}
	return status.Error(code, err.Error())
}
