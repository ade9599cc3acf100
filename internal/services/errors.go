package services

import (
	"errors"

	apperrors "chartsvc/internal/errors"
	"chartsvc/internal/payload"
)

// textError maps a payload normalization failure on free text to a typed error.
func textError(err error, limit int64) error {
	if errors.Is(err, payload.ErrTooLarge) {
		return apperrors.NewPayloadTooLargeError(limit, err)
	}
	return apperrors.NewMalformedInputError("Invalid text payload", err)
}
