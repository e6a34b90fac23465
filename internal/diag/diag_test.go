package diag

import (
	"errors"
	"fmt"
	"testing"
)

func TestFormatShortDiagnostics(t *testing.T) {
	items := []Diagnostic{
		NewError(UntBadType, "malformed type \"a.<\"").At("./units/b.kp.yaml", 7),
		New(SevWarning, IOCache, "cache disabled\nfalling back").At("units/a.kp.yaml", 0),
		NewError(TplIndexOutOfRange, "index 3 for '%3L' not in range (received 2 arguments)").At("units/a.kp.yaml", 12),
	}

	expected := "warning IO4003 units/a.kp.yaml cache disabled falling back\n" +
		"error TPL1003 units/a.kp.yaml:12 index 3 for '%3L' not in range (received 2 arguments)\n" +
		"error UNT6003 units/b.kp.yaml:7 malformed type \"a.<\""

	if got := FormatShortDiagnostics(items); got != expected {
		t.Fatalf("unexpected diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
	if items[0].Code != UntBadType {
		t.Fatalf("input slice was reordered")
	}
}

func TestErrorClasses(t *testing.T) {
	tests := []struct {
		code Code
		want error
	}{
		{TplUnusedArgument, ErrTemplate},
		{StrNestedStatement, ErrStructure},
		{SymInvalidIdentifier, ErrSymbol},
		{IOWriteOutput, ErrIO},
		{CfgOutOfRange, ErrConfig},
		{UntUnknownKind, ErrUnit},
	}
	for _, tt := range tests {
		t.Run(tt.code.ID(), func(t *testing.T) {
			err := fmt.Errorf("render: %w", Errorf(tt.code, "boom"))
			if !errors.Is(err, tt.want) {
				t.Fatalf("errors.Is(%v, %v) = false", err, tt.want)
			}
			if errors.Is(err, ErrUnit) && tt.want != ErrUnit {
				t.Fatalf("%s must not match ErrUnit", tt.code.ID())
			}
		})
	}
}

func TestBagLimitAndDedup(t *testing.T) {
	bag := NewBag(2)
	d := NewError(StrBadUnindent, "cannot unindent 1 from 0")
	if !bag.Add(d) || !bag.Add(d) {
		t.Fatalf("expected first two diagnostics to be accepted")
	}
	if bag.Add(d) {
		t.Fatalf("expected third diagnostic to be dropped")
	}
	bag.Dedup()
	if bag.Len() != 1 {
		t.Fatalf("expected 1 diagnostic after dedup, got %d", bag.Len())
	}
	if !bag.HasErrors() {
		t.Fatalf("expected HasErrors")
	}
}
