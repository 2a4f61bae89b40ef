// Package statement defines the domain model shared by the extraction,
// parsing and validation stages of the statement pipeline.
package statement

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Type distinguishes money leaving the account from money entering it.
type Type string

const (
	TypeDebit  Type = "debit"
	TypeCredit Type = "credit"
)

// Confidence is the categorical trust score driving review prioritization.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceManual Confidence = "manual"
)

// Flag marks a defect or anomaly detected on a transaction.
type Flag string

const (
	FlagNoDescription      Flag = "NO_DESCRIPTION"
	FlagGenericDescription Flag = "GENERIC_DESCRIPTION"
	FlagOnlyNumbers        Flag = "ONLY_NUMBERS"
	FlagUnusualAmount      Flag = "UNUSUAL_AMOUNT"
	FlagDuplicateSuspected Flag = "DUPLICATE_SUSPECTED"
)

// FeeBreakdown decomposes the additional charges carried by a transaction,
// separate from its principal amount. Absent fields marshal away entirely;
// a zero fee is represented as absent, never as 0.
type FeeBreakdown struct {
	VAT           *decimal.Decimal `json:"vat,omitempty"`
	ServiceFee    *decimal.Decimal `json:"serviceFee,omitempty"`
	Commission    *decimal.Decimal `json:"commission,omitempty"`
	StampDuty     *decimal.Decimal `json:"stampDuty,omitempty"`
	TransferFee   *decimal.Decimal `json:"transferFee,omitempty"`
	ProcessingFee *decimal.Decimal `json:"processingFee,omitempty"`
	OtherFees     *decimal.Decimal `json:"otherFees,omitempty"`
}

func (f FeeBreakdown) fields() []*decimal.Decimal {
	return []*decimal.Decimal{
		f.VAT, f.ServiceFee, f.Commission, f.StampDuty,
		f.TransferFee, f.ProcessingFee, f.OtherFees,
	}
}

// Sum returns the total of all present fee fields.
func (f FeeBreakdown) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, d := range f.fields() {
		if d != nil {
			total = total.Add(*d)
		}
	}
	return total
}

// ReconcileFees normalizes a fee breakdown against the principal amount:
// fee fields that evaluate to zero become absent, and the grand total
// (amount + fees) is returned only when at least one fee is nonzero.
// The invariant on the wire is: total is present iff Σfees > 0, and then
// total == amount + Σfees.
func ReconcileFees(amount decimal.Decimal, fees FeeBreakdown) (FeeBreakdown, *decimal.Decimal) {
	norm := FeeBreakdown{
		VAT:           nonZero(fees.VAT),
		ServiceFee:    nonZero(fees.ServiceFee),
		Commission:    nonZero(fees.Commission),
		StampDuty:     nonZero(fees.StampDuty),
		TransferFee:   nonZero(fees.TransferFee),
		ProcessingFee: nonZero(fees.ProcessingFee),
		OtherFees:     nonZero(fees.OtherFees),
	}

	totalFees := norm.Sum()
	if !totalFees.IsPositive() {
		return norm, nil
	}
	total := amount.Add(totalFees)
	return norm, &total
}

func nonZero(d *decimal.Decimal) *decimal.Decimal {
	if d == nil || d.IsZero() {
		return nil
	}
	v := *d
	return &v
}

// ParsedTransaction is a single extracted statement line after normalization.
// Dates are ISO calendar dates (YYYY-MM-DD). Amount never includes fee
// components; Total carries amount + fees when any fee is present.
type ParsedTransaction struct {
	Date        string           `json:"date"`
	Description string           `json:"description"`
	Amount      decimal.Decimal  `json:"amount"`
	Type        Type             `json:"type"`
	Category    string           `json:"category,omitempty"`
	Balance     *decimal.Decimal `json:"balance,omitempty"`
	FeeBreakdown
	FeeNote string           `json:"feeNote,omitempty"`
	Total   *decimal.Decimal `json:"total,omitempty"`

	// Populated by the validation stage.
	Flags        []Flag     `json:"flags,omitempty"`
	Confidence   Confidence `json:"confidence,omitempty"`
	NeedsReview  bool       `json:"needsReview"`
	OriginalDesc string     `json:"originalDesc,omitempty"`
}

// AddFlag appends a flag, keeping the flag list an ordered set.
func (t *ParsedTransaction) AddFlag(f Flag) {
	if slices.Contains(t.Flags, f) {
		return
	}
	t.Flags = append(t.Flags, f)
}

// HasFlag reports whether f is set on the transaction.
func (t *ParsedTransaction) HasFlag(f Flag) bool {
	return slices.Contains(t.Flags, f)
}

// Period is a statement's covering date range, ISO calendar dates.
type Period struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ParseResult is the structured outcome of parsing one uploaded statement.
type ParseResult struct {
	BankName      string              `json:"bankName"`
	AccountNumber string              `json:"accountNumber,omitempty"`
	Period        *Period             `json:"period,omitempty"`
	Transactions  []ParsedTransaction `json:"transactions"`
}
