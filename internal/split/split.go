// Package split computes signed per-participant shares for an expense.
//
// The output convention matches the ledger's: the payer's entry is a credit
// (total amount minus the payer's own consumed share), every other
// participant's entry is the negation of their consumed share. A valid share
// map therefore sums to zero.
package split

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kmehta/divvy/internal/models"
	"github.com/kmehta/divvy/internal/money"
)

// Compute turns (amount, strategy, params) into a validated signed share map.
//
// The payer is inserted into the participant set if absent. params carries
// the per-participant strategy input (raw amounts for EXACT, percentages for
// PERCENTAGE, weights for SHARES) and must cover exactly the participant set;
// EQUAL takes no params.
func Compute(amount decimal.Decimal, payerID string, participantIDs []string, splitType models.SplitType, params map[string]decimal.Decimal) (map[string]decimal.Decimal, error) {
	if amount.Sign() <= 0 {
		return nil, models.NewValidationError("amount", "must be positive")
	}
	if payerID == "" {
		return nil, models.NewValidationError("payer_id", "required")
	}
	if len(participantIDs) == 0 {
		return nil, models.NewValidationError("participant_ids", "must have at least one participant")
	}

	participants := dedupe(participantIDs, payerID)

	switch splitType {
	case models.SplitEqual:
		return equalSplits(amount, payerID, participants), nil
	case models.SplitExact:
		return exactSplits(amount, payerID, participants, params)
	case models.SplitPercentage:
		return percentageSplits(amount, payerID, participants, params)
	case models.SplitShares:
		return sharesSplits(amount, payerID, participants, params)
	default:
		return nil, models.NewValidationError("split_type", "unknown split type: "+string(splitType))
	}
}

// dedupe produces a sorted, unique participant list that includes the payer.
func dedupe(ids []string, payerID string) []string {
	set := make(map[string]struct{}, len(ids)+1)
	for _, id := range ids {
		set[id] = struct{}{}
	}
	set[payerID] = struct{}{}

	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func equalSplits(amount decimal.Decimal, payerID string, participants []string) map[string]decimal.Decimal {
	n := decimal.NewFromInt(int64(len(participants)))
	share := amount.Div(n)

	splits := make(map[string]decimal.Decimal, len(participants))
	for _, id := range participants {
		if id == payerID {
			splits[id] = amount.Sub(share)
		} else {
			splits[id] = share.Neg()
		}
	}
	return splits
}

func exactSplits(amount decimal.Decimal, payerID string, participants []string, raw map[string]decimal.Decimal) (map[string]decimal.Decimal, error) {
	if err := checkCoverage(participants, raw, "splits"); err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, v := range raw {
		total = total.Add(v)
	}
	if !money.Equalish(total, amount) {
		return nil, models.NewValidationError("splits", "sum of splits must equal the total amount")
	}

	return signShares(amount, payerID, participants, func(id string) decimal.Decimal {
		return raw[id]
	}), nil
}

func percentageSplits(amount decimal.Decimal, payerID string, participants []string, percentages map[string]decimal.Decimal) (map[string]decimal.Decimal, error) {
	if err := checkCoverage(participants, percentages, "percentages"); err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, v := range percentages {
		total = total.Add(v)
	}
	if !money.Equalish(total, money.Hundred) {
		return nil, models.NewValidationError("percentages", "sum of percentages must equal 100")
	}

	return signShares(amount, payerID, participants, func(id string) decimal.Decimal {
		return percentages[id].Mul(amount).Div(money.Hundred)
	}), nil
}

func sharesSplits(amount decimal.Decimal, payerID string, participants []string, weights map[string]decimal.Decimal) (map[string]decimal.Decimal, error) {
	if err := checkCoverage(participants, weights, "shares"); err != nil {
		return nil, err
	}

	total := decimal.Zero
	for id, w := range weights {
		if w.Sign() < 0 {
			return nil, models.NewValidationError("shares", "weight for "+id+" must not be negative")
		}
		total = total.Add(w)
	}
	if total.Sign() <= 0 {
		return nil, models.NewValidationError("shares", "sum of weights must be positive")
	}

	return signShares(amount, payerID, participants, func(id string) decimal.Decimal {
		return weights[id].Mul(amount).Div(total)
	}), nil
}

// signShares applies the common signing rule: payer gets amount minus own
// consumed share, everyone else owes theirs.
func signShares(amount decimal.Decimal, payerID string, participants []string, consumed func(string) decimal.Decimal) map[string]decimal.Decimal {
	splits := make(map[string]decimal.Decimal, len(participants))
	for _, id := range participants {
		if id == payerID {
			splits[id] = amount.Sub(consumed(id))
		} else {
			splits[id] = consumed(id).Neg()
		}
	}
	return splits
}

// checkCoverage requires params to contain exactly the participant set.
func checkCoverage(participants []string, params map[string]decimal.Decimal, field string) error {
	if len(params) == 0 {
		return models.NewValidationError(field, "required for this split type")
	}
	for _, id := range participants {
		if _, ok := params[id]; !ok {
			return models.NewValidationError(field, "missing entry for participant "+id)
		}
	}
	for id := range params {
		if !contains(participants, id) {
			return models.NewValidationError(field, "entry for non-participant "+id)
		}
	}
	return nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
