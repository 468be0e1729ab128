package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("follow: %w", Conflict("Already following"))

	if got := KindOf(wrapped); got != KindConflict {
		t.Errorf("KindOf(wrapped conflict) = %q", got)
	}
	if got := KindOf(errors.New("boom")); got != KindUpstream {
		t.Errorf("KindOf(plain) = %q", got)
	}
	if got := KindOf(nil); got != "" {
		t.Errorf("KindOf(nil) = %q", got)
	}
}

func TestStatus(t *testing.T) {
	cases := map[*Error]int{
		Validation("x"):              http.StatusBadRequest,
		NotFound("x"):                http.StatusNotFound,
		Forbidden("x"):               http.StatusForbidden,
		Unapproved("x"):              http.StatusForbidden,
		Unauthorized("x"):            http.StatusUnauthorized,
		Conflict("x"):                http.StatusConflict,
		Upstream(errors.New("x"), ""): http.StatusInternalServerError,
	}
	for e, want := range cases {
		if got := e.Status(); got != want {
			t.Errorf("%s: Status() = %d, want %d", e.Kind, got, want)
		}
	}
}

func TestPublicHidesUpstreamDetail(t *testing.T) {
	cause := errors.New("connection refused")
	err := Upstream(cause, "Failed to save post")

	if Public(err) != "Internal server error" {
		t.Errorf("upstream message leaked: %q", Public(err))
	}
	if !errors.Is(err, cause) {
		t.Error("upstream error should unwrap to its cause")
	}
	if Public(NotFound("Post not found")) != "Post not found" {
		t.Error("classified message should be public")
	}
}
