package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kmehta/divvy/internal/money"
)

// Transfer is one settling payment: From pays To.
type Transfer struct {
	From   string
	To     string
	Amount decimal.Decimal
}

// SimplifyDebts reduces the current balance graph to a minimal list of
// transfers that, if executed, zero every net position.
//
// Greedy matching: repeatedly pair the creditor with the largest remaining
// positive net against the debtor with the largest remaining negative net
// (ties broken by ascending user id for determinism) and settle the smaller
// of the two magnitudes. Each emitted transfer retires at least one party, so
// at most n-1 transfers are produced for n users with non-zero nets. Listing
// raw pairwise debts instead would emit up to n*(n-1)/2.
//
// The computation runs against a point-in-time snapshot of the nets; it does
// not mutate the ledger.
func (l *Ledger) SimplifyDebts() []Transfer {
	l.mu.Lock()
	nets := make(map[string]decimal.Decimal, len(l.balances))
	for userID := range l.balances {
		if net := l.netLocked(userID); !money.NearZero(net) {
			nets[userID] = net
		}
	}
	l.mu.Unlock()

	return settleNets(nets)
}

type party struct {
	id  string
	net decimal.Decimal
}

// settleNets runs the greedy matching over a set of non-zero net positions.
// By ledger symmetry the nets sum to zero, so creditors and debtors exhaust
// together.
func settleNets(nets map[string]decimal.Decimal) []Transfer {
	var creditors, debtors []party
	for id, net := range nets {
		switch {
		case net.Sign() > 0:
			creditors = append(creditors, party{id: id, net: net})
		case net.Sign() < 0:
			debtors = append(debtors, party{id: id, net: net})
		}
	}

	var transfers []Transfer
	for len(creditors) > 0 && len(debtors) > 0 {
		ci := maxCreditor(creditors)
		di := maxDebtor(debtors)
		creditor := &creditors[ci]
		debtor := &debtors[di]

		amount := decimal.Min(creditor.net, debtor.net.Neg())
		transfers = append(transfers, Transfer{From: debtor.id, To: creditor.id, Amount: amount})

		creditor.net = creditor.net.Sub(amount)
		debtor.net = debtor.net.Add(amount)

		if money.NearZero(creditor.net) {
			creditors = append(creditors[:ci], creditors[ci+1:]...)
		}
		if money.NearZero(debtor.net) {
			debtors = append(debtors[:di], debtors[di+1:]...)
		}
	}

	sort.Slice(transfers, func(i, j int) bool {
		if transfers[i].From != transfers[j].From {
			return transfers[i].From < transfers[j].From
		}
		return transfers[i].To < transfers[j].To
	})
	return transfers
}

// maxCreditor returns the index of the largest positive net, smallest id on
// ties.
func maxCreditor(parties []party) int {
	best := 0
	for i := 1; i < len(parties); i++ {
		switch parties[i].net.Cmp(parties[best].net) {
		case 1:
			best = i
		case 0:
			if parties[i].id < parties[best].id {
				best = i
			}
		}
	}
	return best
}

// maxDebtor returns the index of the most negative net, smallest id on ties.
func maxDebtor(parties []party) int {
	best := 0
	for i := 1; i < len(parties); i++ {
		switch parties[i].net.Cmp(parties[best].net) {
		case -1:
			best = i
		case 0:
			if parties[i].id < parties[best].id {
				best = i
			}
		}
	}
	return best
}
