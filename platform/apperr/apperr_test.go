package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusByKind(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{NotFound("quote not found"), http.StatusNotFound},
		{Validation("bad input"), http.StatusBadRequest},
		{BadRequest("bad id"), http.StatusBadRequest},
		{Persistence("store down", errors.New("dial tcp")), http.StatusServiceUnavailable},
		{Notification("webhook failed", nil), http.StatusBadGateway},
		{Unavailable("minio disabled"), http.StatusServiceUnavailable},
		{Internal("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := tc.err.HTTPStatus(); got != tc.want {
			t.Fatalf("%s: expected status %d, got %d", tc.err.Kind, tc.want, got)
		}
	}
}

func TestGetKindFollowsWrapChain(t *testing.T) {
	base := Persistence("insert quote", errors.New("connection refused"))
	wrapped := fmt.Errorf("submit: %w", base)

	if GetKind(wrapped) != KindPersistence {
		t.Fatalf("expected persistence kind through wrap, got %s", GetKind(wrapped))
	}
	if !Is(wrapped, KindPersistence) {
		t.Fatal("expected Is to match persistence kind")
	}
	if Is(nil, KindPersistence) {
		t.Fatal("nil error must not match any kind")
	}
}

func TestErrorMessageIncludesOpAndCause(t *testing.T) {
	err := Persistence("failed to insert quote", errors.New("timeout")).WithOp("CreateQuote")
	want := "CreateQuote: failed to insert quote: timeout"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}
