// Package pdftext turns uploaded PDF bytes into plain statement text,
// classifying password and scanned-document failures so callers know whether
// to re-prompt the user.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/finreview/statement-pipeline/internal/statement"
)

const (
	// maxTextBytes caps extracted text; statements past this are truncated.
	maxTextBytes = 1 << 20
	// scannedThreshold is chars per page below which a PDF is considered
	// image-only.
	scannedThreshold = 50
)

// Extractor extracts plain text from PDF documents.
type Extractor struct{}

// NewExtractor creates a text extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the plain text of a PDF. An empty password means the
// document is expected to be unencrypted; encrypted documents then fail with
// PASSWORD_REQUIRED, while a rejected supplied password fails with
// INCORRECT_PASSWORD. A document that opens but yields no text fails with
// EMPTY_EXTRACTION.
func (e *Extractor) Extract(data []byte, password string) (text string, err error) {
	// The pdf library panics on some malformed documents.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = statement.WrapError(statement.ErrExtractionFailed,
				"PDF reader panic", fmt.Errorf("%v", r))
		}
	}()

	var reader *pdf.Reader
	if password == "" {
		reader, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	} else {
		// The reader keeps asking until the callback returns ""; yield the
		// password once so a wrong one fails instead of looping.
		attempted := false
		reader, err = pdf.NewReaderEncrypted(bytes.NewReader(data), int64(len(data)), func() string {
			if attempted {
				return ""
			}
			attempted = true
			return password
		})
	}
	if err != nil {
		return "", classifyOpenError(err, password != "")
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", statement.WrapError(statement.ErrExtractionFailed, "extract plain text", err)
	}

	raw, err := io.ReadAll(io.LimitReader(plain, maxTextBytes))
	if err != nil {
		return "", statement.WrapError(statement.ErrExtractionFailed, "read plain text", err)
	}

	text = strings.TrimSpace(string(raw))
	if text == "" {
		pages := reader.NumPage()
		if pages < 1 {
			pages = 1
		}
		return "", statement.NewError(statement.ErrEmptyExtraction,
			fmt.Sprintf("no extractable text in %d page(s); the document is likely scanned", pages))
	}
	return text, nil
}

// IsLikelyScanned reports whether already-extracted text is too sparse for
// the given page count to be a real text-layer document.
func IsLikelyScanned(text string, pages int) bool {
	if pages <= 0 {
		pages = 1
	}
	return len(text)/pages < scannedThreshold
}

// classifyOpenError maps reader-open failures onto the password taxonomy.
// The pdf library reports both "encrypted, no password" and "wrong password"
// as the same invalid-password error, so the distinction comes from whether
// the caller supplied one.
func classifyOpenError(err error, hadPassword bool) error {
	if isPasswordError(err) {
		if hadPassword {
			return statement.WrapError(statement.ErrIncorrectPassword,
				"the supplied password was rejected", err)
		}
		return statement.WrapError(statement.ErrPasswordRequired,
			"the document is password protected", err)
	}
	return statement.WrapError(statement.ErrExtractionFailed, "open PDF", err)
}

func isPasswordError(err error) bool {
	if errors.Is(err, pdf.ErrInvalidPassword) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "encrypted")
}
