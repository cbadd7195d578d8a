package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindInvalidInput, http.StatusBadRequest},
		{KindResolutionFailed, http.StatusUnprocessableEntity},
		{KindProviderUnavailable, http.StatusBadGateway},
		{KindProviderContractViolation, http.StatusBadGateway},
		{KindMalformedGeometry, http.StatusBadGateway},
		{KindNotFound, http.StatusNotFound},
		{KindNotReady, http.StatusConflict},
		{KindSuperseded, http.StatusConflict},
		{KindUnknown, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := New(tt.kind, "x").HTTPStatus(); got != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestStatusFollowsWrappedKind(t *testing.T) {
	err := fmt.Errorf("route 2: %w", MalformedGeometry("polyline: unexpected end of input"))

	if got := Status(err); got != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", got, http.StatusBadGateway)
	}
	if !Is(err, KindMalformedGeometry) {
		t.Fatalf("kind lost through wrapping: %v", err)
	}
	if got := Status(errors.New("plain")); got != http.StatusInternalServerError {
		t.Fatalf("untyped status = %d, want 500", got)
	}
}
