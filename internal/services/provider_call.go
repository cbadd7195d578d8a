package services

import (
	"context"
	"errors"
	"time"

	"safe-route-service/internal/platform/apperr"
)

// withTimeout bounds a single provider call. A zero timeout leaves ctx as is.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// providerError types an untyped provider failure as ProviderUnavailable.
// Errors that already carry a kind pass through unchanged.
func providerError(op string, err error) error {
	var typed *apperr.Error
	if errors.As(err, &typed) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.ProviderUnavailable("provider call timed out", err).WithOp(op)
	}
	return apperr.ProviderUnavailable("provider call failed", err).WithOp(op)
}
