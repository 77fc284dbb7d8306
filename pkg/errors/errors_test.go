package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, detailsOK: true},
		{code: CodeInvalidPayload, status: http.StatusBadRequest},
		{code: CodeProviderNotConfigured, status: http.StatusBadRequest},
		{code: CodeUnauthorized, status: http.StatusUnauthorized},
		{code: CodeNotFound, status: http.StatusNotFound},
		{code: CodeConflict, status: http.StatusConflict},
		{code: CodeRateLimit, status: http.StatusTooManyRequests},
		{code: CodeInternal, status: http.StatusInternalServerError, retryable: true},
		{code: CodeProvider, status: http.StatusBadGateway, retryable: true, detailsOK: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		assert.Equal(t, tt.status, meta.HTTPStatus, "status for %s", tt.code)
		assert.Equal(t, tt.retryable, meta.Retryable, "retryable for %s", tt.code)
		assert.Equal(t, tt.detailsOK, meta.DetailsAllowed, "details for %s", tt.code)
		assert.NotEmpty(t, meta.PublicMessage, "public message for %s", tt.code)
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	assert.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	assert.Equal(t, CodeValidation, base.Code())
	assert.Equal(t, "missing foo", base.Message())
	assert.Nil(t, base.Details())

	base.WithDetails(map[string]any{"field": "foo"})
	assert.NotNil(t, base.Details())

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	assert.True(t, stdErrors.Is(wrapped, cause))
	assert.Equal(t, CodeConflict, wrapped.Code())
	assert.Contains(t, wrapped.Error(), "boom")
}

func TestAsFindsTypedErrorThroughWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeProvider, "upstream 500"))
	got := As(err)
	require.NotNil(t, got)
	assert.Equal(t, CodeProvider, got.Code())
	assert.True(t, IsCode(err, CodeProvider))
	assert.False(t, IsCode(err, CodeNotFound))
	assert.Nil(t, As(nil))
}

func TestDumpExtractsPostgresDetails(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_unique_pending_payment", TableName: "payments"}
	dump := Dump(Wrap(CodeInternal, pgErr, "insert payment"))

	assert.Equal(t, CodeInternal, dump.Code)
	assert.Equal(t, "postgres", dump.DBDriver)
	assert.Equal(t, "23505", dump.DBCode)
	assert.Equal(t, "idx_unique_pending_payment", dump.DBConstraint)
	assert.Len(t, dump.Chain, 2)
}

func TestDumpNil(t *testing.T) {
	assert.Equal(t, ErrorDump{}, Dump(nil))
}
