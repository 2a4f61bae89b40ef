// Package pipeline wires the statement processing stages together:
// extract, shape-check, parse, categorize, validate.
package pipeline

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/finreview/statement-pipeline/internal/category"
	"github.com/finreview/statement-pipeline/internal/statement"
	"github.com/finreview/statement-pipeline/internal/validate"
)

// TextExtractor pulls plain text out of PDF bytes.
type TextExtractor interface {
	Extract(data []byte, password string) (string, error)
}

// StatementParser turns statement text into structured transactions.
type StatementParser interface {
	Parse(ctx context.Context, statementText, categoryListing string) (*statement.ParseResult, error)
}

// Archiver stores the original upload. Archiving is best-effort: a
// failure is logged, never surfaced.
type Archiver interface {
	Archive(ctx context.Context, uploadID string, data []byte) (string, error)
}

// Result is the full outcome of processing one uploaded statement.
type Result struct {
	UploadID   string                 `json:"uploadId"`
	ArchiveURI string                 `json:"archiveUri,omitempty"`
	Statement  *statement.ParseResult `json:"statement"`
	Summary    validate.Summary       `json:"summary"`
}

// Service runs the stages strictly in sequence for each upload.
type Service struct {
	extractor TextExtractor
	catalog   category.Store
	parser    StatementParser
	archiver  Archiver // optional
	log       zerolog.Logger

	// preClean normalizes the extracted text before it reaches the
	// model (whitespace, currency symbols, fee-line grouping).
	preClean func(string) string
}

// Option configures a Service.
type Option func(*Service)

// WithArchiver enables best-effort archiving of uploads.
func WithArchiver(a Archiver) Option {
	return func(s *Service) { s.archiver = a }
}

// WithPreClean replaces the text preprocessing step.
func WithPreClean(fn func(string) string) Option {
	return func(s *Service) { s.preClean = fn }
}

// NewService creates the processing pipeline.
func NewService(extractor TextExtractor, catalog category.Store, parser StatementParser, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		extractor: extractor,
		catalog:   catalog,
		parser:    parser,
		log:       log.With().Str("component", "pipeline").Logger(),
		preClean:  func(text string) string { return text },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process runs one statement upload through every stage and returns
// the validated result.
func (s *Service) Process(ctx context.Context, pdfBytes []byte, password string) (*Result, error) {
	uploadID := uuid.New().String()
	log := s.log.With().Str("upload_id", uploadID).Logger()

	var archiveURI string
	if s.archiver != nil {
		uri, err := s.archiver.Archive(ctx, uploadID, pdfBytes)
		if err != nil {
			log.Warn().Err(err).Msg("failed to archive upload, continuing")
		} else {
			archiveURI = uri
		}
	}

	text, err := s.extractor.Extract(pdfBytes, password)
	if err != nil {
		return nil, err
	}

	if shape := validate.CheckShape(text); !shape.Valid {
		return nil, statement.NewError(statement.ErrShapeInvalid, shape.Reason)
	}

	text = s.preClean(text)

	catalog, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	mapper := category.NewMapper(catalog)

	parsed, err := s.parser.Parse(ctx, text, mapper.PromptListing())
	if err != nil {
		return nil, err
	}

	s.categorize(parsed.Transactions, mapper, log)

	parsed.Transactions = validate.Transactions(parsed.Transactions)

	log.Info().
		Str("bank", parsed.BankName).
		Int("transactions", len(parsed.Transactions)).
		Msg("statement processed")

	return &Result{
		UploadID:   uploadID,
		ArchiveURI: archiveURI,
		Statement:  parsed,
		Summary:    validate.Summarize(parsed.Transactions),
	}, nil
}

// categorize clears model-assigned values that are not in the catalog,
// then runs the keyword fallback for anything still uncategorized.
// Already-categorized transactions are left alone, so a second pass is
// a no-op.
func (s *Service) categorize(txs []statement.ParsedTransaction, mapper *category.Mapper, log zerolog.Logger) {
	for i := range txs {
		t := &txs[i]
		if t.Category != "" && !mapper.Contains(t.Category) {
			log.Warn().Str("category", t.Category).Msg("model assigned an unknown category, discarding")
			t.Category = ""
		}
		if t.Category != "" {
			continue
		}
		for _, group := range fallbackGroups(t.Type) {
			if value, ok := mapper.Match(t.Description, group); ok {
				t.Category = value
				break
			}
		}
	}
}

// fallbackGroups orders the semantic groups to try for an
// uncategorized transaction.
func fallbackGroups(t statement.Type) []category.SemanticGroup {
	if t == statement.TypeCredit {
		return []category.SemanticGroup{category.GroupIncome}
	}
	return []category.SemanticGroup{category.GroupExpense, category.GroupFee}
}
