package validate

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finreview/statement-pipeline/internal/statement"
)

// genericTerms are descriptions carrying no identifying information at all.
var genericTerms = map[string]struct{}{
	"transfer": {}, "payment": {}, "debit": {}, "credit": {},
	"withdrawal": {}, "deposit": {}, "transaction": {}, "pos": {},
	"atm": {}, "web": {}, "mobile": {}, "online": {}, "bank": {},
}

// onlyNumbersRe matches descriptions made of digits, spaces, hyphens and
// slashes only — reference numbers without a narrative.
var onlyNumbersRe = regexp.MustCompile(`^[\d\s\-/]+$`)

var (
	maxUsualAmount = decimal.NewFromInt(1_000_000)
	minUsualAmount = decimal.NewFromInt(10)
)

const minDescriptionLen = 3

// Transactions applies the per-transaction rules to every entry, then runs
// the batch duplicate pass. It never fails: every input, however malformed,
// receives a defined flag/confidence/needsReview outcome.
func Transactions(txns []statement.ParsedTransaction) []statement.ParsedTransaction {
	out := make([]statement.ParsedTransaction, len(txns))
	for i := range txns {
		out[i] = validateOne(txns[i])
	}
	markDuplicates(out)
	return out
}

// validateOne evaluates the description-shape rules first (first match wins
// for flag and confidence), then the independent amount and category checks,
// which may stack additional flags and downgrade confidence.
func validateOne(t statement.ParsedTransaction) statement.ParsedTransaction {
	if t.OriginalDesc == "" {
		t.OriginalDesc = t.Description
	}
	t.Confidence = statement.ConfidenceHigh

	desc := strings.ToLower(strings.TrimSpace(t.Description))
	switch {
	case desc == "":
		t.AddFlag(statement.FlagNoDescription)
		t.Confidence = statement.ConfidenceManual
		t.NeedsReview = true
	case isGenericTerm(desc):
		t.AddFlag(statement.FlagGenericDescription)
		t.Confidence = statement.ConfidenceLow
		t.NeedsReview = true
	case onlyNumbersRe.MatchString(desc):
		t.AddFlag(statement.FlagOnlyNumbers)
		t.Confidence = statement.ConfidenceManual
		t.NeedsReview = true
	case len(desc) < minDescriptionLen:
		t.AddFlag(statement.FlagGenericDescription)
		t.Confidence = statement.ConfidenceLow
		t.NeedsReview = true
	}

	abs := t.Amount.Abs()
	if abs.GreaterThan(maxUsualAmount) || abs.LessThan(minUsualAmount) {
		t.AddFlag(statement.FlagUnusualAmount)
		t.NeedsReview = true
		// Downgrade only from high; never below what a description rule set.
		if t.Confidence == statement.ConfidenceHigh {
			t.Confidence = statement.ConfidenceMedium
		}
	}

	if t.Category == "" {
		t.NeedsReview = true
		if t.Confidence == statement.ConfidenceHigh {
			t.Confidence = statement.ConfidenceLow
		}
	}

	return t
}

func isGenericTerm(desc string) bool {
	_, ok := genericTerms[desc]
	return ok
}

// markDuplicates flags every member of any (date, abs(amount)) group of two
// or more. The key intentionally ignores the description: same-day repeats
// of the same amount only earn a review suggestion, never a rejection.
func markDuplicates(txns []statement.ParsedTransaction) {
	groups := make(map[string][]int, len(txns))
	for i, t := range txns {
		// StringFixed gives a canonical key: "5000" and "5000.00" are the
		// same amount.
		key := t.Date + "|" + t.Amount.Abs().StringFixed(2)
		groups[key] = append(groups[key], i)
	}
	for _, members := range groups {
		if len(members) < 2 {
			continue
		}
		for _, i := range members {
			txns[i].AddFlag(statement.FlagDuplicateSuspected)
			txns[i].NeedsReview = true
		}
	}
}

// Summary aggregates the reviewable record set for display.
type Summary struct {
	Total           int                          `json:"total"`
	NeedsReview     int                          `json:"needsReview"`
	AutoCategorized int                          `json:"autoCategorized"`
	Flagged         int                          `json:"flagged"`
	ByConfidence    map[statement.Confidence]int `json:"byConfidence"`
}

// Summarize counts the validated batch: total, entries needing review,
// entries auto-categorized without review, flagged entries, and a breakdown
// by confidence level.
func Summarize(txns []statement.ParsedTransaction) Summary {
	s := Summary{
		Total:        len(txns),
		ByConfidence: make(map[statement.Confidence]int),
	}
	for _, t := range txns {
		if t.NeedsReview {
			s.NeedsReview++
		}
		if t.Category != "" && !t.NeedsReview {
			s.AutoCategorized++
		}
		if len(t.Flags) > 0 {
			s.Flagged++
		}
		s.ByConfidence[t.Confidence]++
	}
	return s
}
