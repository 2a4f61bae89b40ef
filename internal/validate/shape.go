// Package validate holds the cheap statement-shape gate and the
// per-transaction confidence and flagging rules.
package validate

import (
	"regexp"
	"strings"
)

// transactionKeywords and bankKeywords are the two identity groups the shape
// gate accepts; at least one word from either group must appear.
var (
	transactionKeywords = []string{
		"transaction", "debit", "credit", "balance", "withdrawal", "deposit", "remarks",
	}
	bankKeywords = []string{"bank", "statement", "account"}
)

// amountShapeRe matches amounts with grouped thousands and exactly two
// decimal digits, e.g. 1,234.56 or 500.00.
var amountShapeRe = regexp.MustCompile(`\b\d{1,3}(?:,\d{3})*\.\d{2}\b`)

// ShapeResult is the outcome of the pre-parse statement gate.
type ShapeResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// CheckShape is a heuristic gate confirming text plausibly is a bank
// statement before the expensive model call. Both the keyword check and the
// amount-pattern check must pass.
func CheckShape(text string) ShapeResult {
	lower := strings.ToLower(text)

	if !containsAny(lower, transactionKeywords) && !containsAny(lower, bankKeywords) {
		return ShapeResult{Valid: false, Reason: "not a recognizable bank statement"}
	}
	if !amountShapeRe.MatchString(lower) {
		return ShapeResult{Valid: false, Reason: "no transaction data found"}
	}
	return ShapeResult{Valid: true}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
