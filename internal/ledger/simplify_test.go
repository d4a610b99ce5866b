package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kmehta/divvy/internal/money"
)

// Nets +50 (A), -20 (B), -30 (C) must settle in exactly two transfers:
// B→A 20 and C→A 30.
func TestSimplifyDebts_ThreeUsers(t *testing.T) {
	l := New()
	if err := l.ApplyExpense("A", splits(map[string]string{"A": "50", "B": "-20", "C": "-30"})); err != nil {
		t.Fatal(err)
	}

	transfers := l.SimplifyDebts()
	if len(transfers) != 2 {
		t.Fatalf("got %d transfers, want 2: %v", len(transfers), transfers)
	}

	want := map[string]string{"B": "20", "C": "30"}
	for _, tr := range transfers {
		if tr.To != "A" {
			t.Errorf("transfer %v should pay A", tr)
		}
		if amt, ok := want[tr.From]; !ok || !tr.Amount.Equal(dec(amt)) {
			t.Errorf("transfer from %s = %s, want %s", tr.From, tr.Amount, amt)
		}
	}
}

func TestSimplifyDebts_EmptyLedger(t *testing.T) {
	if got := New().SimplifyDebts(); len(got) != 0 {
		t.Errorf("empty ledger simplified to %v", got)
	}
}

// A circular debt chain collapses: A owes B, B owes C, C owes A, all 10.
// Every net is zero, so no transfers are needed.
func TestSimplifyDebts_CircularDebtsCancel(t *testing.T) {
	l := New()
	for _, tr := range []Transfer{
		{From: "A", To: "B", Amount: dec("10")},
		{From: "B", To: "C", Amount: dec("10")},
		{From: "C", To: "A", Amount: dec("10")},
	} {
		if err := l.ApplyTransfer(tr.From, tr.To, tr.Amount); err != nil {
			t.Fatal(err)
		}
	}

	if got := l.SimplifyDebts(); len(got) != 0 {
		t.Errorf("circular debts simplified to %v, want none", got)
	}
}

// Replaying the emitted transfers against a copy of the net positions must
// drive every net to zero, with at most n-1 transfers for n non-zero nets.
func TestSimplifyDebts_SettlesAllNets(t *testing.T) {
	tests := []struct {
		name string
		nets map[string]string
	}{
		{"two party", map[string]string{"A": "10", "B": "-10"}},
		{"fan in", map[string]string{"A": "50", "B": "-20", "C": "-30"}},
		{"fan out", map[string]string{"A": "-60", "B": "25", "C": "35"}},
		{"many", map[string]string{"A": "40", "B": "-15", "C": "-10", "D": "10", "E": "-25"}},
		{"uneven cents", map[string]string{"A": "33.34", "B": "-16.67", "C": "-16.67"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nets := make(map[string]decimal.Decimal, len(tt.nets))
			nonZero := 0
			for id, v := range tt.nets {
				nets[id] = dec(v)
				if !money.NearZero(nets[id]) {
					nonZero++
				}
			}

			transfers := settleNets(nets)
			if len(transfers) > nonZero-1 {
				t.Errorf("emitted %d transfers for %d non-zero nets, want <= %d",
					len(transfers), nonZero, nonZero-1)
			}

			remaining := make(map[string]decimal.Decimal, len(nets))
			for id, v := range nets {
				remaining[id] = v
			}
			for _, tr := range transfers {
				if tr.Amount.Sign() <= 0 {
					t.Errorf("non-positive transfer amount: %v", tr)
				}
				remaining[tr.From] = remaining[tr.From].Add(tr.Amount)
				remaining[tr.To] = remaining[tr.To].Sub(tr.Amount)
			}
			for id, v := range remaining {
				if !money.NearZero(v) {
					t.Errorf("net(%s) = %s after replay, want ~0", id, v)
				}
			}
		})
	}
}

// Equal nets must pair deterministically: ascending id wins ties.
func TestSimplifyDebts_TieBreakByID(t *testing.T) {
	nets := map[string]decimal.Decimal{
		"C": dec("10"), "A": dec("10"),
		"D": dec("-10"), "B": dec("-10"),
	}

	for i := 0; i < 10; i++ {
		transfers := settleNets(nets)
		if len(transfers) != 2 {
			t.Fatalf("got %d transfers, want 2: %v", len(transfers), transfers)
		}
		// Largest creditor ties A/C → A; largest debtor ties B/D → B.
		if transfers[0].From != "B" || transfers[0].To != "A" {
			t.Fatalf("first pairing = %s→%s, want B→A", transfers[0].From, transfers[0].To)
		}
		if transfers[1].From != "D" || transfers[1].To != "C" {
			t.Fatalf("second pairing = %s→%s, want D→C", transfers[1].From, transfers[1].To)
		}
	}
}
