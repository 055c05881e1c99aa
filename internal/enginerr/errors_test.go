package enginerr

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
)

func TestRecoverableByKind(t *testing.T) {
	cases := []struct {
		err  *EngineError
		want bool
	}{
		{NewResourceBound("m", "max-call-depth", "too deep"), true},
		{NewMalformedInstruction("m", "bad operand"), true},
		{NewUnhandledException("m", "uncaught"), false},
		{WrapIO(fmt.Errorf("disk full"), "writing output"), false},
		{NewConfigError("missing <input>"), false},
	}
	for _, c := range cases {
		if got := c.err.Recoverable(); got != c.want {
			t.Errorf("%s: Recoverable() = %v, want %v", c.err.Kind, got, c.want)
		}
	}
}

func TestErrorMessageIncludesContext(t *testing.T) {
	err := NewResourceBound("Lcom/app/A;->m()V", "max-address-visits", "visited too many addresses")
	msg := err.Error()
	if msg == "" {
		t.Fatal("expected non-empty message")
	}
	want := "ResourceBoundExceeded: visited too many addresses (method Lcom/app/A;->m()V) [bound=max-address-visits]"
	if msg != want {
		t.Fatalf("unexpected message:\n got:  %s\n want: %s", msg, want)
	}
}

func TestIsKindUnwrapsThroughWrapChains(t *testing.T) {
	base := NewMalformedInstruction("Lcom/app/A;->m()V", "unexpected operand")
	wrapped := errors.Wrap(base, "building graph")
	doubleWrapped := errors.Wrap(wrapped, "analyzing class")

	if !IsKind(doubleWrapped, MalformedInstruction) {
		t.Fatal("expected IsKind to unwrap through nested errors.Wrap calls")
	}
	if IsKind(doubleWrapped, IOError) {
		t.Fatal("expected IsKind to reject a non-matching kind")
	}
}

func TestIsKindRejectsPlainErrors(t *testing.T) {
	if IsKind(fmt.Errorf("plain"), IOError) {
		t.Fatal("a plain error is never any Kind")
	}
}

func TestWrapIOPreservesCause(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := WrapIO(cause, "writing output")
	if err.Unwrap() == nil {
		t.Fatal("expected WrapIO to retain an unwrappable cause")
	}
	if !errors.Is(err, err.Unwrap()) {
		t.Fatal("expected err to unwrap to itself via errors.Is identity")
	}
}
