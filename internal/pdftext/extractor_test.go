package pdftext

import (
	"errors"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"

	"github.com/finreview/statement-pipeline/internal/statement"
)

func TestExtractRejectsGarbage(t *testing.T) {
	e := NewExtractor()
	_, err := e.Extract([]byte("this is not a pdf"), "")
	if err == nil {
		t.Fatal("expected an error for non-PDF bytes")
	}
	if got := statement.CodeOf(err); got != statement.ErrExtractionFailed {
		t.Errorf("code = %v, want EXTRACTION_FAILED", got)
	}
}

func TestExtractRejectsEmptyInput(t *testing.T) {
	e := NewExtractor()
	_, err := e.Extract(nil, "")
	if err == nil {
		t.Fatal("expected an error for empty input")
	}
	if got := statement.CodeOf(err); got != statement.ErrExtractionFailed {
		t.Errorf("code = %v, want EXTRACTION_FAILED", got)
	}
}

func TestClassifyOpenError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		hadPassword bool
		wantCode    statement.PipelineErrorCode
	}{
		{"encrypted without password", pdf.ErrInvalidPassword, false, statement.ErrPasswordRequired},
		{"rejected supplied password", pdf.ErrInvalidPassword, true, statement.ErrIncorrectPassword},
		{"message mentions encryption", errors.New("file is encrypted with AES"), false, statement.ErrPasswordRequired},
		{"unrelated failure", errors.New("malformed PDF header"), false, statement.ErrExtractionFailed},
		{"unrelated failure with password", errors.New("malformed PDF header"), true, statement.ErrExtractionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyOpenError(tt.err, tt.hadPassword)
			if code := statement.CodeOf(got); code != tt.wantCode {
				t.Errorf("code = %v, want %v", code, tt.wantCode)
			}
			if !errors.Is(got, tt.err) {
				t.Error("classified error must wrap the original cause")
			}
		})
	}
}

func TestPasswordErrorsAreNotRetryable(t *testing.T) {
	err := classifyOpenError(pdf.ErrInvalidPassword, true)
	var pe *statement.PipelineError
	if !errors.As(err, &pe) {
		t.Fatal("expected a PipelineError")
	}
	if pe.Retryable {
		t.Error("password failures are user-recoverable, not retryable")
	}
}

func TestIsLikelyScanned(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		pages int
		want  bool
	}{
		{"empty single page", "", 1, true},
		{"sparse text across pages", strings.Repeat("x", 90), 3, true},
		{"dense single page", strings.Repeat("line of statement text\n", 20), 1, false},
		{"zero pages treated as one", strings.Repeat("x", 200), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLikelyScanned(tt.text, tt.pages); got != tt.want {
				t.Errorf("IsLikelyScanned = %v, want %v", got, tt.want)
			}
		})
	}
}
