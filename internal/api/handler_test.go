package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finreview/statement-pipeline/internal/category"
	"github.com/finreview/statement-pipeline/internal/pipeline"
	"github.com/finreview/statement-pipeline/internal/statement"
)

type fakeProcessor struct {
	result   *pipeline.Result
	err      error
	password string
}

func (f *fakeProcessor) Process(_ context.Context, _ []byte, password string) (*pipeline.Result, error) {
	f.password = password
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestServer(t *testing.T, processor *fakeProcessor) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	NewHandler(processor, category.NewMemoryStore(), zerolog.Nop()).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func multipartUpload(t *testing.T, fields map[string]string, fileField, fileName string, fileBody []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(fileBody)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func decodeBody(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
}

func TestHandleParse(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		processor := &fakeProcessor{result: &pipeline.Result{
			UploadID:  "upload-1",
			Statement: &statement.ParseResult{BankName: "Example Bank", Transactions: []statement.ParsedTransaction{}},
		}}
		srv := newTestServer(t, processor)

		body, contentType := multipartUpload(t, map[string]string{"password": "hunter2"}, "file", "march.pdf", []byte("%PDF-1.7"))
		resp, err := http.Post(srv.URL+"/v1/statements/parse", contentType, body)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "hunter2", processor.password)

		var got struct {
			UploadID  string `json:"uploadId"`
			Statement struct {
				BankName     string            `json:"bankName"`
				Transactions []json.RawMessage `json:"transactions"`
			} `json:"statement"`
		}
		decodeBody(t, resp, &got)
		assert.Equal(t, "upload-1", got.UploadID)
		assert.Equal(t, "Example Bank", got.Statement.BankName)
		assert.NotNil(t, got.Statement.Transactions, "transactions must serialize as [], not null")
	})

	t.Run("missing file field", func(t *testing.T) {
		srv := newTestServer(t, &fakeProcessor{})
		body, contentType := multipartUpload(t, nil, "", "", nil)
		resp, err := http.Post(srv.URL+"/v1/statements/parse", contentType, body)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("error mapping", func(t *testing.T) {
		tests := []struct {
			name       string
			err        error
			wantStatus int
			wantCode   string
		}{
			{"password required", statement.NewError(statement.ErrPasswordRequired, "document is encrypted"), http.StatusBadRequest, "PASSWORD_REQUIRED"},
			{"incorrect password", statement.NewError(statement.ErrIncorrectPassword, "password rejected"), http.StatusBadRequest, "INCORRECT_PASSWORD"},
			{"empty extraction", statement.NewError(statement.ErrEmptyExtraction, "no text"), http.StatusUnprocessableEntity, "EMPTY_EXTRACTION"},
			{"shape invalid", statement.NewError(statement.ErrShapeInvalid, "not a statement"), http.StatusUnprocessableEntity, "SHAPE_INVALID"},
			{"model blocked", statement.NewError(statement.ErrModelBlocked, "safety"), http.StatusBadGateway, "BLOCKED"},
			{"model unavailable", statement.NewError(statement.ErrModelUnavailable, "quota"), http.StatusBadGateway, "MODEL_UNAVAILABLE"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				srv := newTestServer(t, &fakeProcessor{err: tt.err})
				body, contentType := multipartUpload(t, nil, "file", "x.pdf", []byte("%PDF"))
				resp, err := http.Post(srv.URL+"/v1/statements/parse", contentType, body)
				require.NoError(t, err)
				assert.Equal(t, tt.wantStatus, resp.StatusCode)

				var got struct {
					Code      string `json:"code"`
					Retryable bool   `json:"retryable"`
				}
				decodeBody(t, resp, &got)
				assert.Equal(t, tt.wantCode, got.Code)
			})
		}
	})

	t.Run("retryable is reported for model failures", func(t *testing.T) {
		srv := newTestServer(t, &fakeProcessor{err: statement.NewError(statement.ErrEmptyResponse, "empty")})
		body, contentType := multipartUpload(t, nil, "file", "x.pdf", []byte("%PDF"))
		resp, err := http.Post(srv.URL+"/v1/statements/parse", contentType, body)
		require.NoError(t, err)

		var got struct {
			Retryable bool `json:"retryable"`
		}
		decodeBody(t, resp, &got)
		assert.True(t, got.Retryable)
	})
}

func TestHandleListCategories(t *testing.T) {
	srv := newTestServer(t, &fakeProcessor{})
	resp, err := http.Get(srv.URL + "/v1/categories")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Categories []category.Category `json:"categories"`
	}
	decodeBody(t, resp, &got)
	assert.NotEmpty(t, got.Categories)
}

func TestHandleSuggest(t *testing.T) {
	srv := newTestServer(t, &fakeProcessor{})

	t.Run("returns ranked suggestions", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/v1/categories/suggest?q=uber+trip+lagos")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var got struct {
			Suggestions []category.Suggestion `json:"suggestions"`
		}
		decodeBody(t, resp, &got)
		require.NotEmpty(t, got.Suggestions)
		assert.Equal(t, "transportation", got.Suggestions[0].Value)
	})

	t.Run("no hits is an empty list, not null", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/v1/categories/suggest?q=zzzz")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var got map[string]json.RawMessage
		decodeBody(t, resp, &got)
		assert.JSONEq(t, "[]", string(got["suggestions"]))
	})

	t.Run("missing query", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/v1/categories/suggest")
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, &fakeProcessor{})
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]string
	decodeBody(t, resp, &got)
	assert.Equal(t, "ok", got["status"])
}
