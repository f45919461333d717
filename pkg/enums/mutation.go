package enums

import "fmt"

// MutationItemType identifies the kind of entity a pending mutation targets.
type MutationItemType string

const (
	ItemPersonalExpense MutationItemType = "personal_expense"
	ItemSharedExpense   MutationItemType = "shared_expense"
	ItemBudget          MutationItemType = "budget"
	ItemCategory        MutationItemType = "category"
)

var validMutationItemTypes = []MutationItemType{
	ItemPersonalExpense,
	ItemSharedExpense,
	ItemBudget,
	ItemCategory,
}

// IsValid reports whether the value matches a known item type.
func (m MutationItemType) IsValid() bool {
	for _, candidate := range validMutationItemTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMutationItemType converts raw input into MutationItemType.
func ParseMutationItemType(value string) (MutationItemType, error) {
	for _, candidate := range validMutationItemTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid mutation item type %q", value)
}

// MutationAction identifies what a pending mutation does to its target.
type MutationAction string

const (
	ActionCreate MutationAction = "create"
	ActionUpdate MutationAction = "update"
	ActionDelete MutationAction = "delete"
)

var validMutationActions = []MutationAction{
	ActionCreate,
	ActionUpdate,
	ActionDelete,
}

// IsValid reports whether the value matches a known action.
func (a MutationAction) IsValid() bool {
	for _, candidate := range validMutationActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseMutationAction converts raw input into MutationAction.
func ParseMutationAction(value string) (MutationAction, error) {
	for _, candidate := range validMutationActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid mutation action %q", value)
}
