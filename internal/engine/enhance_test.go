package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestEnhance(t *testing.T) {
	db := testDB(t)
	mock := mockClient("  Here is a simpler version.  ")
	eng := New(db, mock)

	out, err := eng.Enhance(context.Background(), "simplify", "The Kolmogorov axioms state...")
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if out != "Here is a simpler version." {
		t.Errorf("out = %q, want trimmed response", out)
	}
	if len(mock.Calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(mock.Calls))
	}
	if !strings.Contains(mock.Calls[0], "The Kolmogorov axioms state...") {
		t.Error("prompt does not include the note text")
	}
}

func TestEnhanceUnknownKind(t *testing.T) {
	db := testDB(t)
	eng := New(db, mockClient("x"))

	_, err := eng.Enhance(context.Background(), "summarize-backwards", "text")
	if !errors.Is(err, ErrUserInput) {
		t.Errorf("err = %v, want ErrUserInput", err)
	}
}

func TestEnhanceEmptyText(t *testing.T) {
	db := testDB(t)
	eng := New(db, mockClient("x"))

	_, err := eng.Enhance(context.Background(), "explain", "   ")
	if !errors.Is(err, ErrUserInput) {
		t.Errorf("err = %v, want ErrUserInput", err)
	}
}
