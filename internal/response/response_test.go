package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nlstn/go-posadmin/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body struct {
		Error ErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   apperrors.ErrorCode
		wantTarget string
	}{
		{"validation", apperrors.Validation("items[0].quantity", "quantity must be at least 1"), http.StatusBadRequest, apperrors.CodeValidation, "items[0].quantity"},
		{"not found", apperrors.NotFound("product", 9), http.StatusNotFound, apperrors.CodeNotFound, ""},
		{"conflict", apperrors.Conflict("stale"), http.StatusConflict, apperrors.CodeConflict, ""},
		{"precondition", apperrors.PreconditionFailed(), http.StatusPreconditionFailed, apperrors.CodePreconditionFailed, ""},
		{"persistence", apperrors.Persistence("save order", errors.New("disk full")), http.StatusInternalServerError, apperrors.CodePersistence, ""},
		{"wrapped sentinel", fmt.Errorf("lookup: %w", apperrors.ErrNotFound), http.StatusNotFound, apperrors.CodeNotFound, ""},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, apperrors.CodeInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			require.NoError(t, WriteError(rec, tt.err))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, ContentTypeJSON, rec.Header().Get("Content-Type"))
			body := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantTarget, body.Target)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestWriteErrorHidesInternalMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteError(rec, errors.New("dial tcp 10.0.0.1: secret")))
	assert.Equal(t, "Internal Server Error", decodeError(t, rec).Message)
}

func TestWriteCollection(t *testing.T) {
	rec := httptest.NewRecorder()
	count := int64(12)
	require.NoError(t, WriteCollection(rec, []string{"a"}, &count, "/orders?skiptoken=x"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"value":["a"],"count":12,"nextLink":"/orders?skiptoken=x"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	require.NoError(t, WriteCollection(rec, nil, nil, ""))
	assert.JSONEq(t, `{"value":[]}`, rec.Body.String())
}

func TestNextLink(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/orders?status=new&skiptoken=old", nil)
	assert.Equal(t, "/orders?skiptoken=abc&status=new", NextLink(r, "skiptoken", "abc"))
	assert.Empty(t, NextLink(r, "skiptoken", ""))
}

func TestWriteNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteNoContent(rec)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
