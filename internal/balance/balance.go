package balance

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/splitpocket/splitpocket-sync/pkg/db/models"
)

// Member is a group participant as the balance engine sees it.
type Member struct {
	ID   uuid.UUID
	Name string
}

// MemberBalance is a member's net position across every shared expense in the
// group. Positive means the member owes the group, negative means the group
// owes the member. Derived fresh on every call, never persisted.
type MemberBalance struct {
	MemberID  uuid.UUID
	NetAmount decimal.Decimal
}

// settledEpsilon absorbs rounding noise when deciding whether a balance is
// effectively zero.
var settledEpsilon = decimal.NewFromFloat(0.005)

// Compute derives each member's net balance from the group's shared expenses.
// The payer's balance drops by the full amount they fronted; every split
// member's balance rises by their owed share. Members with no activity remain
// at zero so they still appear as settled. Balances across the group always
// sum to zero when splits match totals; mismatched splits are tolerated, not
// rejected (see SplitImbalance).
func Compute(members []Member, expenses []models.SharedExpense) []MemberBalance {
	balances := make(map[uuid.UUID]decimal.Decimal, len(members))
	for _, member := range members {
		balances[member.ID] = decimal.Zero
	}

	for _, expense := range expenses {
		balances[expense.PaidBy] = balances[expense.PaidBy].Sub(expense.TotalAmount)
		for _, split := range expense.Splits {
			balances[split.MemberID] = balances[split.MemberID].Add(split.ShareAmount)
		}
	}

	result := make([]MemberBalance, 0, len(balances))
	for memberID, net := range balances {
		result = append(result, MemberBalance{MemberID: memberID, NetAmount: net})
	}

	// Largest imbalance first; member id breaks ties deterministically.
	sort.Slice(result, func(i, j int) bool {
		lhs := result[i].NetAmount.Abs()
		rhs := result[j].NetAmount.Abs()
		if !lhs.Equal(rhs) {
			return lhs.GreaterThan(rhs)
		}
		return result[i].MemberID.String() < result[j].MemberID.String()
	})
	return result
}

// HasUnsettled reports whether any member's balance is meaningfully nonzero.
func HasUnsettled(balances []MemberBalance) bool {
	for _, balance := range balances {
		if balance.NetAmount.Abs().GreaterThanOrEqual(settledEpsilon) {
			return true
		}
	}
	return false
}

// SuggestSettlement returns the payment from a member who owes (positive
// balance) to a member who is owed (negative balance) that most reduces both
// positions without overshooting: min(fromBalance, |toBalance|). This is a
// pairwise greedy suggestion, not a group-wide minimal-transfer solver. When
// the pair's signs do not line up the suggestion is zero.
func SuggestSettlement(from, to uuid.UUID, balances []MemberBalance) decimal.Decimal {
	var fromNet, toNet decimal.Decimal
	for _, balance := range balances {
		switch balance.MemberID {
		case from:
			fromNet = balance.NetAmount
		case to:
			toNet = balance.NetAmount
		}
	}

	if fromNet.LessThanOrEqual(decimal.Zero) || toNet.GreaterThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return decimal.Min(fromNet, toNet.Abs())
}

// SplitImbalance reports sum(splits) minus the expense total. A well-built
// expense yields zero; the engine surfaces drift for callers to log rather
// than failing the whole ledger view over one bad record.
func SplitImbalance(expense models.SharedExpense) decimal.Decimal {
	sum := decimal.Zero
	for _, split := range expense.Splits {
		sum = sum.Add(split.ShareAmount)
	}
	return sum.Sub(expense.TotalAmount)
}
