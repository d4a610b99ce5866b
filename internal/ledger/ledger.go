// Package ledger owns the pairwise balance graph between users.
//
// The graph is symmetric and zero-sum: for any two users A and B,
// A's balance with B is the exact negation of B's balance with A, and a
// missing entry means zero. The only way to mutate the graph is the transfer
// primitive, which updates both halves of a pair under one lock; every
// higher-level operation (apply expense, reverse expense, complete
// settlement) is expressed through it, so the symmetry invariant holds by
// construction. Any observed asymmetry is a programming defect and panics.
package ledger

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/kmehta/divvy/internal/models"
)

// Balance is one row of a user's ledger: the signed amount outstanding with a
// single counterparty. Positive means the counterparty owes the user.
type Balance struct {
	CounterpartyID string
	Amount         decimal.Decimal
}

// Entry is one directed half of a stored balance pair, used for snapshots and
// rebuilds.
type Entry struct {
	UserID         string
	CounterpartyID string
	Amount         decimal.Decimal
}

// Ledger is the shared balance graph. All methods are safe for concurrent
// use; each mutation is atomic and reads observe a consistent point-in-time
// state.
type Ledger struct {
	mu       sync.Mutex
	balances map[string]map[string]decimal.Decimal
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{balances: make(map[string]map[string]decimal.Decimal)}
}

// ApplyTransfer records that debtor paid (or now owes) amount toward
// creditor: creditor's balance with debtor increases by amount, debtor's
// balance with creditor decreases by the same. Amount must be positive and
// the parties distinct.
func (l *Ledger) ApplyTransfer(debtorID, creditorID string, amount decimal.Decimal) error {
	if err := checkTransfer(debtorID, creditorID, amount); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.transferLocked(debtorID, creditorID, amount)
	return nil
}

// ApplyExpense applies an expense's signed share map: every non-payer
// participant with a negative share owes that much to the payer. The whole
// expense is applied atomically.
func (l *Ledger) ApplyExpense(payerID string, splits map[string]decimal.Decimal) error {
	transfers, err := expenseTransfers(payerID, splits)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range transfers {
		l.transferLocked(t.From, t.To, t.Amount)
	}
	return nil
}

// ReverseExpense undoes ApplyExpense for the same share map, restoring every
// touched balance to its prior value.
func (l *Ledger) ReverseExpense(payerID string, splits map[string]decimal.Decimal) error {
	transfers, err := expenseTransfers(payerID, splits)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range transfers {
		// Swap debtor and creditor for the same amounts.
		l.transferLocked(t.To, t.From, t.Amount)
	}
	return nil
}

// BalanceBetween returns userID's signed balance with counterpartyID,
// zero if the pair has never shared money.
func (l *Ledger) BalanceBetween(userID, counterpartyID string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[userID][counterpartyID]
}

// BalancesFor returns every balance row for userID, sorted by counterparty id.
// Zero rows from fully settled pairs are included; callers may filter.
func (l *Ledger) BalancesFor(userID string) []Balance {
	l.mu.Lock()
	defer l.mu.Unlock()

	row := l.balances[userID]
	out := make([]Balance, 0, len(row))
	for id, amt := range row {
		out = append(out, Balance{CounterpartyID: id, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CounterpartyID < out[j].CounterpartyID })
	return out
}

// NetPosition returns the sum of userID's balances across all counterparties.
// Meaningful only in aggregate (debt simplification); a single counterparty's
// balance must be read via BalanceBetween.
func (l *Ledger) NetPosition(userID string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.netLocked(userID)
}

// Snapshot returns every directed entry in the ledger, sorted, for
// persistence or inspection.
func (l *Ledger) Snapshot() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []Entry
	for userID, row := range l.balances {
		for counterpartyID, amt := range row {
			out = append(out, Entry{UserID: userID, CounterpartyID: counterpartyID, Amount: amt})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].CounterpartyID < out[j].CounterpartyID
	})
	return out
}

// Load rebuilds the ledger from persisted entries, replacing current state.
// Entries must come in symmetric pairs; a lone or mismatched half means the
// stored data is corrupt and the rebuild is refused.
func (l *Ledger) Load(entries []Entry) error {
	balances := make(map[string]map[string]decimal.Decimal)
	for _, e := range entries {
		if e.UserID == e.CounterpartyID {
			return fmt.Errorf("ledger: self-referential entry for user %s", e.UserID)
		}
		if balances[e.UserID] == nil {
			balances[e.UserID] = make(map[string]decimal.Decimal)
		}
		balances[e.UserID][e.CounterpartyID] = e.Amount
	}

	for userID, row := range balances {
		for counterpartyID, amt := range row {
			if !balances[counterpartyID][userID].Equal(amt.Neg()) {
				return fmt.Errorf("ledger: asymmetric pair %s/%s in stored balances", userID, counterpartyID)
			}
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances = balances
	return nil
}

// transferLocked is the single mutation primitive. Callers hold l.mu.
func (l *Ledger) transferLocked(debtorID, creditorID string, amount decimal.Decimal) {
	l.addLocked(creditorID, debtorID, amount)
	l.addLocked(debtorID, creditorID, amount.Neg())
	l.assertSymmetricLocked(debtorID, creditorID)
}

func (l *Ledger) addLocked(userID, counterpartyID string, delta decimal.Decimal) {
	row := l.balances[userID]
	if row == nil {
		row = make(map[string]decimal.Decimal)
		l.balances[userID] = row
	}
	row[counterpartyID] = row[counterpartyID].Add(delta)
}

func (l *Ledger) netLocked(userID string) decimal.Decimal {
	net := decimal.Zero
	for _, amt := range l.balances[userID] {
		net = net.Add(amt)
	}
	return net
}

// assertSymmetricLocked panics if a pair is out of symmetry. Reaching this is
// a defect in the ledger itself, never a user error.
func (l *Ledger) assertSymmetricLocked(a, b string) {
	if !l.balances[a][b].Equal(l.balances[b][a].Neg()) {
		panic(fmt.Sprintf("ledger: symmetry broken between %s and %s: %s vs %s",
			a, b, l.balances[a][b], l.balances[b][a]))
	}
}

func checkTransfer(debtorID, creditorID string, amount decimal.Decimal) error {
	if debtorID == "" || creditorID == "" {
		return models.NewValidationError("user_id", "debtor and creditor required")
	}
	if debtorID == creditorID {
		return models.NewValidationError("user_id", "debtor and creditor must differ")
	}
	if amount.Sign() <= 0 {
		return models.NewValidationError("amount", "must be positive")
	}
	return nil
}

// expenseTransfers validates a share map and flattens it into the transfers
// ApplyExpense will execute. Validation happens before any mutation so a bad
// map leaves the ledger untouched.
func expenseTransfers(payerID string, splits map[string]decimal.Decimal) ([]Transfer, error) {
	if payerID == "" {
		return nil, models.NewValidationError("payer_id", "required")
	}
	if _, ok := splits[payerID]; !ok {
		return nil, models.NewValidationError("splits", "missing payer entry")
	}

	ids := make([]string, 0, len(splits))
	for id := range splits {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var transfers []Transfer
	for _, id := range ids {
		if id == payerID {
			continue
		}
		share := splits[id]
		if share.Sign() >= 0 {
			continue
		}
		transfers = append(transfers, Transfer{From: id, To: payerID, Amount: share.Neg()})
	}
	return transfers, nil
}
