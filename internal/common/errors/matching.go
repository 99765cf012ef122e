// internal/common/errors/matching.go
package errors

import (
	"context"
	stderrors "errors"

	"freelance-matcher/internal/matching/matcher"
	"freelance-matcher/internal/models"
)

// FromMatchingError classifies an error returned by the matcher or its store.
// Errors that are already StandardErrors pass through unchanged.
func FromMatchingError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}

	switch {
	case stderrors.Is(err, matcher.ErrDataSourceUnavailable):
		return NewDataSourceUnavailableError(nil)
	case stderrors.Is(err, matcher.ErrRankingCancelled):
		return NewRankingCancelledError(err)
	case stderrors.Is(err, matcher.ErrInvalidInput), stderrors.Is(err, models.ErrInvalidRecord):
		return NewInvalidMatchInputError(err.Error())
	case stderrors.Is(err, models.ErrNotFound):
		return NewResourceNotFoundError("store", err.Error())
	case stderrors.Is(err, context.DeadlineExceeded), stderrors.Is(err, context.Canceled):
		return NewRankingCancelledError(err)
	default:
		return AsStandardError(err)
	}
}
