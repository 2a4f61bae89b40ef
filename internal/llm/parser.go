package llm

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finreview/statement-pipeline/internal/statement"
)

// dateFormats to try when normalizing model-emitted dates.
var dateFormats = []string{
	"2006-01-02", // YYYY-MM-DD
	"2006/01/02", // YYYY/MM/DD
	"02/01/2006", // DD/MM/YYYY
	"2/1/2006",   // D/M/YYYY
	"02-01-2006", // DD-MM-YYYY
	"02.01.2006", // DD.MM.YYYY
	"Jan 02 2006",
	"Jan 2 2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 02, 2006",
	"Jan 2, 2006",
}

// Parser drives the model and normalizes its response into a
// statement.ParseResult.
type Parser struct {
	model ModelClient
	log   zerolog.Logger

	// now is swapped in tests to pin the date fallback.
	now func() time.Time
}

// NewParser creates a parser on top of the given model client.
func NewParser(model ModelClient, log zerolog.Logger) *Parser {
	return &Parser{
		model: model,
		log:   log.With().Str("component", "llm_parser").Logger(),
		now:   time.Now,
	}
}

// rawEnvelope matches the schema the prompt asks for: an array holding
// one statement object.
type rawEnvelope struct {
	BankName      string           `json:"bankName"`
	AccountNumber string           `json:"accountNumber"`
	Period        *rawPeriod       `json:"period"`
	Transactions  *json.RawMessage `json:"transactions"`
}

type rawPeriod struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// rawTransaction uses pointers on the required fields so a missing
// field is distinguishable from a zero value.
type rawTransaction struct {
	Date        *string          `json:"date"`
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Type        *string          `json:"type"`

	Category string           `json:"category"`
	Balance  *decimal.Decimal `json:"balance"`

	VAT           *decimal.Decimal `json:"vat"`
	ServiceFee    *decimal.Decimal `json:"serviceFee"`
	Commission    *decimal.Decimal `json:"commission"`
	StampDuty     *decimal.Decimal `json:"stampDuty"`
	TransferFee   *decimal.Decimal `json:"transferFee"`
	ProcessingFee *decimal.Decimal `json:"processingFee"`
	OtherFees     *decimal.Decimal `json:"otherFees"`
	FeeNote       string           `json:"feeNote"`
}

// Parse sends the statement text to the model and returns the
// normalized result. The category listing feeds the prompt and may be
// empty.
func (p *Parser) Parse(ctx context.Context, statementText, categoryListing string) (*statement.ParseResult, error) {
	prompt := BuildPrompt(statementText, categoryListing)

	raw, err := p.model.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	envelope, err := p.decode(raw)
	if err != nil {
		return nil, err
	}

	return p.normalize(envelope)
}

// decode strips Markdown fences and surrounding junk, then unmarshals
// the array-of-one envelope. A bare object is accepted as a fallback
// for models that ignore the array instruction.
func (p *Parser) decode(raw string) (*rawEnvelope, error) {
	clean := cleanModelJSON(raw)

	var envelopes []rawEnvelope
	if err := json.Unmarshal([]byte(clean), &envelopes); err == nil {
		if len(envelopes) == 0 {
			return nil, statement.NewError(statement.ErrInvalidResponse, "model returned an empty array")
		}
		return &envelopes[0], nil
	}

	var single rawEnvelope
	if err := json.Unmarshal([]byte(clean), &single); err != nil {
		return nil, statement.WrapError(statement.ErrInvalidResponse, "model response is not valid JSON", err)
	}
	return &single, nil
}

func (p *Parser) normalize(envelope *rawEnvelope) (*statement.ParseResult, error) {
	if envelope.Transactions == nil {
		return nil, statement.NewError(statement.ErrInvalidResponse, "model response has no transactions field")
	}
	var rawTxs []rawTransaction
	if err := json.Unmarshal(*envelope.Transactions, &rawTxs); err != nil {
		return nil, statement.WrapError(statement.ErrInvalidResponse, "transactions field is not a list", err)
	}

	result := &statement.ParseResult{
		BankName:      strings.TrimSpace(envelope.BankName),
		AccountNumber: strings.TrimSpace(envelope.AccountNumber),
	}
	if result.BankName == "" {
		result.BankName = "Unknown Bank"
	}
	if envelope.Period != nil {
		result.Period = &statement.Period{
			From: p.normalizeDate(envelope.Period.From),
			To:   p.normalizeDate(envelope.Period.To),
		}
	}

	transactions := make([]statement.ParsedTransaction, 0, len(rawTxs))
	for i, raw := range rawTxs {
		if raw.Date == nil || raw.Description == nil || raw.Amount == nil || raw.Type == nil {
			p.log.Warn().Int("index", i).Msg("dropping transaction with missing required field")
			continue
		}
		transactions = append(transactions, p.normalizeTransaction(raw))
	}
	result.Transactions = transactions

	return result, nil
}

func (p *Parser) normalizeTransaction(raw rawTransaction) statement.ParsedTransaction {
	fees := statement.FeeBreakdown{
		VAT:           coerceFee(raw.VAT),
		ServiceFee:    coerceFee(raw.ServiceFee),
		Commission:    coerceFee(raw.Commission),
		StampDuty:     coerceFee(raw.StampDuty),
		TransferFee:   coerceFee(raw.TransferFee),
		ProcessingFee: coerceFee(raw.ProcessingFee),
		OtherFees:     coerceFee(raw.OtherFees),
	}
	fees, total := statement.ReconcileFees(*raw.Amount, fees)

	return statement.ParsedTransaction{
		Date:         p.normalizeDate(*raw.Date),
		Description:  strings.TrimSpace(*raw.Description),
		Amount:       *raw.Amount,
		Type:         coerceType(*raw.Type),
		Category:     strings.TrimSpace(raw.Category),
		Balance:      raw.Balance,
		FeeBreakdown: fees,
		FeeNote:      strings.TrimSpace(raw.FeeNote),
		Total:        total,
	}
}

// normalizeDate returns an ISO date. Unparseable input falls back to
// the current date rather than dropping the transaction.
func (p *Parser) normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	p.log.Warn().Str("date", s).Msg("unparseable date, substituting current date")
	return p.now().Format("2006-01-02")
}

// coerceType treats anything other than an exact "credit" (after
// trimming and lowering) as a debit.
func coerceType(s string) statement.Type {
	if strings.ToLower(strings.TrimSpace(s)) == "credit" {
		return statement.TypeCredit
	}
	return statement.TypeDebit
}

// coerceFee clamps fee values to non-negative. Models occasionally
// echo the statement's sign convention and report fees as negatives.
func coerceFee(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	abs := d.Abs()
	return &abs
}

// cleanModelJSON strips ```json fences and keeps only the outermost
// JSON payload when the model wraps it in prose.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return s
	}
	var end int
	if s[start] == '[' {
		end = strings.LastIndex(s, "]")
	} else {
		end = strings.LastIndex(s, "}")
	}
	if end > start {
		s = s[start : end+1]
	}
	return strings.TrimSpace(s)
}
