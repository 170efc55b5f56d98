package errors

import (
	"fmt"
	"testing"
)

func TestBuilderDefaults(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("boom")
	ee := New(err).Build()

	if ee.Error() != "boom" {
		t.Errorf("expected message 'boom', got %q", ee.Error())
	}
	if ee.Category != CategoryGeneric {
		t.Errorf("expected generic category, got %q", ee.Category)
	}
	if Unwrap(ee) != err {
		t.Error("Unwrap should return the original error")
	}
}

func TestExplicitComponentAndCategory(t *testing.T) {
	t.Parallel()

	ee := Newf("device %q offline", "zebra-1").
		Component("printer").
		Category(CategoryDeviceWrite).
		Context("device", "zebra-1").
		Build()

	if ee.GetComponent() != "printer" {
		t.Errorf("expected component printer, got %q", ee.GetComponent())
	}
	if !IsCategory(ee, CategoryDeviceWrite) {
		t.Error("IsCategory should match CategoryDeviceWrite")
	}
	if IsCategory(ee, CategoryLedgerWrite) {
		t.Error("IsCategory must not match a different category")
	}
	if ee.GetContext()["device"] != "zebra-1" {
		t.Error("context value lost")
	}
}

func TestContextCopyIsolation(t *testing.T) {
	t.Parallel()

	ee := New(NewStd("x")).Context("k", "v").Build()
	ctx := ee.GetContext()
	ctx["k"] = "mutated"

	if ee.GetContext()["k"] != "v" {
		t.Error("GetContext must return a defensive copy")
	}
}

func TestIsMatchesByCategory(t *testing.T) {
	t.Parallel()

	a := New(NewStd("a")).Category(CategoryDeviceNotFound).Build()
	b := New(NewStd("b")).Category(CategoryDeviceNotFound).Build()

	if !Is(a, b) {
		t.Error("enhanced errors with the same category should satisfy Is")
	}
	if !IsDeviceNotFound(a) {
		t.Error("IsDeviceNotFound should report true")
	}
}

func TestWrappedCategorySurvivesFmtErrorf(t *testing.T) {
	t.Parallel()

	inner := New(NewStd("disk full")).Category(CategoryLedgerWrite).Build()
	outer := fmt.Errorf("append serial 42: %w", inner)

	if !IsCategory(outer, CategoryLedgerWrite) {
		t.Error("category should be discoverable through wrapping")
	}
}
