package statement

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestReconcileFees(t *testing.T) {
	t.Run("no fees leaves total absent", func(t *testing.T) {
		fees, total := ReconcileFees(decimal.NewFromInt(5000), FeeBreakdown{})
		if total != nil {
			t.Errorf("total = %v, want nil", total)
		}
		if !fees.Sum().IsZero() {
			t.Errorf("fee sum = %v, want 0", fees.Sum())
		}
	})

	t.Run("zero fees normalize to absent", func(t *testing.T) {
		fees, total := ReconcileFees(decimal.NewFromInt(100), FeeBreakdown{
			VAT:        dec("0"),
			ServiceFee: dec("0.00"),
		})
		if fees.VAT != nil || fees.ServiceFee != nil {
			t.Errorf("zero fees should be absent, got vat=%v serviceFee=%v", fees.VAT, fees.ServiceFee)
		}
		if total != nil {
			t.Errorf("total = %v, want nil", total)
		}
	})

	t.Run("total equals amount plus fee sum", func(t *testing.T) {
		amount := decimal.RequireFromString("1500.00")
		fees, total := ReconcileFees(amount, FeeBreakdown{
			VAT:         dec("11.25"),
			Commission:  dec("26.88"),
			StampDuty:   dec("50"),
			TransferFee: dec("0"),
		})
		if total == nil {
			t.Fatal("total = nil, want present")
		}
		want := decimal.RequireFromString("1588.13")
		if !total.Equal(want) {
			t.Errorf("total = %v, want %v", total, want)
		}
		if fees.TransferFee != nil {
			t.Errorf("zero transfer fee should be absent, got %v", fees.TransferFee)
		}
		if !total.Equal(amount.Add(fees.Sum())) {
			t.Errorf("total %v != amount %v + fees %v", total, amount, fees.Sum())
		}
	})

	t.Run("single fee field is enough for a total", func(t *testing.T) {
		_, total := ReconcileFees(decimal.NewFromInt(200), FeeBreakdown{OtherFees: dec("4")})
		if total == nil {
			t.Fatal("total = nil, want present")
		}
		if !total.Equal(decimal.NewFromInt(204)) {
			t.Errorf("total = %v, want 204", total)
		}
	})
}

func TestAddFlagIsOrderedSet(t *testing.T) {
	var tx ParsedTransaction
	tx.AddFlag(FlagUnusualAmount)
	tx.AddFlag(FlagDuplicateSuspected)
	tx.AddFlag(FlagUnusualAmount)

	if len(tx.Flags) != 2 {
		t.Fatalf("flags = %v, want 2 distinct entries", tx.Flags)
	}
	if tx.Flags[0] != FlagUnusualAmount || tx.Flags[1] != FlagDuplicateSuspected {
		t.Errorf("flags = %v, want insertion order preserved", tx.Flags)
	}
	if !tx.HasFlag(FlagDuplicateSuspected) {
		t.Error("HasFlag(DUPLICATE_SUSPECTED) = false, want true")
	}
}
