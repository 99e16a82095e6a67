package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want *Error
	}{
		{
			name: "coded passes through",
			in:   fmt.Errorf("wrap: %w", NotFound()),
			want: &Error{Code: CodeVehicleNotFound, Message: MessageVehicleNotFound},
		},
		{
			name: "uncoded keeps message",
			in:   errors.New("disk full"),
			want: &Error{Code: CodeUnknown, Message: "disk full"},
		},
		{
			name: "empty message falls back",
			in:   errors.New(""),
			want: &Error{Code: CodeUnknown, Message: FallbackCreate},
		},
		{
			name: "cancellation",
			in:   context.Canceled,
			want: &Error{Code: CodeCancelled, Message: context.Canceled.Error()},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in, FallbackCreate)
			var coded *Error
			if !errors.As(got, &coded) {
				t.Fatalf("expected *Error, got %T", got)
			}
			if diff := cmp.Diff(tt.want, coded, cmpopts.IgnoreFields(Error{}, "Err")); diff != "" {
				t.Fatalf("normalized mismatch (-want +got):\n%s", diff)
			}
		})
	}
	if Normalize(nil, FallbackCreate) != nil {
		t.Fatalf("nil must stay nil")
	}
}

func TestError_IsMatchesCode(t *testing.T) {
	err := fmt.Errorf("op: %w", NotFound())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected errors.Is to match by code")
	}
	if errors.Is(err, ErrBackendNotInitialized) {
		t.Fatalf("unexpected match")
	}
	if CodeOf(err) != CodeVehicleNotFound {
		t.Fatalf("unexpected code %q", CodeOf(err))
	}
	if CodeOf(errors.New("x")) != CodeUnknown || CodeOf(nil) != "" {
		t.Fatalf("unexpected CodeOf result")
	}
}

func TestUnavailable_ShortCircuitsEveryOperation(t *testing.T) {
	ctx := context.Background()
	var u Unavailable
	calls := map[string]error{}
	_, calls["list"] = u.List(ctx, "owner")
	_, calls["get"] = u.Get(ctx, "id")
	_, calls["create"] = u.Create(ctx, "owner", validData())
	_, calls["update"] = u.Update(ctx, "id", validPatch())
	calls["delete"] = u.Delete(ctx, "id")
	calls["profile"] = u.CreateProfile(ctx, "uid", "a@b.co")
	_, calls["getProfile"] = u.GetProfile(ctx, "uid")

	for op, err := range calls {
		if !errors.Is(err, ErrBackendNotInitialized) {
			t.Fatalf("%s: expected backend-not-initialized, got %v", op, err)
		}
		if err.Error() != MessageBackendNotInitialized {
			t.Fatalf("%s: unexpected message %q", op, err.Error())
		}
	}
}

func TestSubmitter_NilStore(t *testing.T) {
	var s *Submitter
	if _, err := s.Create(context.Background(), "owner", validData()); CodeOf(err) != CodeBackendNotInitialized {
		t.Fatalf("expected backend-not-initialized, got %v", err)
	}
}
