package balance

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/splitpocket/splitpocket-sync/pkg/errors"
)

// Split is one member's owed share produced by a split builder.
type Split struct {
	MemberID    uuid.UUID
	ShareAmount decimal.Decimal
}

// EqualSplits divides total evenly across the members, truncating each share
// to whole cents and assigning the exact remainder to the last member so the
// shares always sum to the total. No leftover cent ever falls through.
func EqualSplits(total decimal.Decimal, memberIDs []uuid.UUID) ([]Split, error) {
	if len(memberIDs) == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "at least one member required")
	}
	if total.IsNegative() {
		return nil, apperrors.New(apperrors.CodeValidation, "total must not be negative")
	}

	count := int64(len(memberIDs))
	share := total.Div(decimal.NewFromInt(count)).Truncate(2)

	splits := make([]Split, 0, len(memberIDs))
	allocated := decimal.Zero
	for i, memberID := range memberIDs {
		amount := share
		if i == len(memberIDs)-1 {
			amount = total.Sub(allocated)
		}
		splits = append(splits, Split{MemberID: memberID, ShareAmount: amount})
		allocated = allocated.Add(amount)
	}
	return splits, nil
}
