package integration

import (
	"path/filepath"
	"testing"

	stddec "github.com/shopspring/decimal"

	"github.com/rpgo/policy-projector/internal/config"
	"github.com/rpgo/policy-projector/internal/output"
)

func TestFormatters(t *testing.T) {
	d1 := stddec.NewFromFloat(123456.5)
	if got := output.FormatCurrency(d1); got != "$123,456.50" {
		t.Fatalf("FormatCurrency got %s", got)
	}
	// FormatPercentage expects the value already in percentage units (not a 0-1 fraction)
	d2 := stddec.NewFromFloat(12.34)
	if got := output.FormatPercentage(d2); got != "12.34%" {
		t.Fatalf("FormatPercentage got %s", got)
	}
	if got := output.FormatRate(stddec.NewFromFloat(0.104)); got != "10.40%" {
		t.Fatalf("FormatRate got %s", got)
	}
}

func TestSaveAssumptions_RoundTrip(t *testing.T) {
	parser := config.NewInputParser()
	in := parser.CreateExampleAssumptions()
	out := filepath.Join(t.TempDir(), "assumptions.yaml")
	if err := output.SaveAssumptions(in, out); err != nil {
		t.Fatalf("SaveAssumptions error: %v", err)
	}

	back, err := parser.LoadFromFile(out)
	if err != nil {
		t.Fatalf("reload error: %v", err)
	}
	if *back.Age != *in.Age || back.Sex != in.Sex || *back.MonthlyBudget != *in.MonthlyBudget {
		t.Fatalf("round trip mismatch: got %+v want %+v", back, in)
	}
	if back.TermPolicyLength != in.TermPolicyLength {
		t.Fatalf("term length got %d want %d", back.TermPolicyLength, in.TermPolicyLength)
	}
}
