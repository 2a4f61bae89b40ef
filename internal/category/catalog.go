// Package category maintains the spending/income/fee category catalog and the
// keyword classifier built on top of it.
package category

import "context"

// SemanticGroup says whether a category applies to expenses, income, or fees.
type SemanticGroup string

const (
	GroupExpense SemanticGroup = "expense"
	GroupIncome  SemanticGroup = "income"
	GroupFee     SemanticGroup = "fee"
)

// Groups is the fixed rendering/evaluation order of semantic groups.
var Groups = []SemanticGroup{GroupExpense, GroupIncome, GroupFee}

// Category is one catalog entry. Value is the stable machine identifier,
// distinct from the display Name. Priority is the persisted sort key that
// fixes first-match ordering; it is part of the observable contract, not an
// incidental insertion order.
type Category struct {
	Value       string        `json:"value" firestore:"value"`
	Name        string        `json:"name" firestore:"name"`
	Group       SemanticGroup `json:"group" firestore:"group"`
	Description string        `json:"description,omitempty" firestore:"description"`
	Keywords    []string      `json:"keywords,omitempty" firestore:"keywords"`
	Priority    int           `json:"priority" firestore:"priority"`
}

// Store is the externally owned category catalog. Administrative edits are
// rare and last-writer-wins; the pipeline only reads a snapshot per upload.
type Store interface {
	// List returns the catalog ordered by priority.
	List(ctx context.Context) ([]Category, error)
}
