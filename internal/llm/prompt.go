package llm

import (
	"fmt"
	"strings"
)

const promptSchema = `[
  {
    "bankName": "string",
    "accountNumber": "string (optional)",
    "period": {"from": "YYYY-MM-DD", "to": "YYYY-MM-DD"} (optional),
    "transactions": [
      {
        "date": "YYYY-MM-DD",
        "description": "string",
        "amount": number,
        "type": "debit" | "credit",
        "category": "string (optional, a category value from the list below)",
        "balance": number (optional),
        "vat": number (optional),
        "serviceFee": number (optional),
        "commission": number (optional),
        "stampDuty": number (optional),
        "transferFee": number (optional),
        "processingFee": number (optional),
        "otherFees": number (optional),
        "feeNote": "string (optional)"
      }
    ]
  }
]`

// BuildPrompt assembles the extraction prompt for one statement. The
// category listing is optional; without it the model is told to leave
// categories unset.
func BuildPrompt(statementText, categoryListing string) string {
	var b strings.Builder

	b.WriteString("You are a bank statement parser. Extract every transaction from the statement text below.\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Classify every transaction as \"debit\" (money out) or \"credit\" (money in).\n")
	b.WriteString("- Emit all dates in ISO form (YYYY-MM-DD).\n")
	b.WriteString("- \"amount\" is the principal transaction amount and must NOT include fees.\n")
	b.WriteString("- Fee figures (VAT, commission, stamp duty, service/transfer/processing charges) that appear " +
		"on the same line as a transaction are components of THAT transaction: report them in the matching " +
		"fee fields, never as separate transactions.\n")
	b.WriteString("- A transaction that IS itself a charge (e.g. an SMS alert fee or account maintenance fee, " +
		"where the line amount equals the charge) is a normal transaction with that charge as its amount, " +
		"not a fee field on another transaction.\n")
	if categoryListing != "" {
		b.WriteString("- Assign \"category\" using a category VALUE (the identifier before the parentheses) " +
			"strictly from the list below. Never invent a value and never use a display name. " +
			"Leave \"category\" out if nothing fits.\n")
	} else {
		b.WriteString("- Leave \"category\" out of every transaction.\n")
	}
	b.WriteString("- Respond with JSON only. No Markdown, no commentary.\n\n")

	fmt.Fprintf(&b, "Respond with exactly this JSON structure:\n%s\n", promptSchema)

	if categoryListing != "" {
		b.WriteString("\nAvailable categories:\n")
		b.WriteString(categoryListing)
		b.WriteString("\n")
	}

	b.WriteString("\nStatement text:\n")
	b.WriteString(statementText)

	return b.String()
}
