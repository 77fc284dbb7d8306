package webhooks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	novaerawebhook "github.com/angelmondragon/trackwise-backend/internal/webhooks/novaera"
	pkgerrors "github.com/angelmondragon/trackwise-backend/pkg/errors"
)

type stubHandler struct {
	body   []byte
	result novaerawebhook.Result
	err    error
}

func (s *stubHandler) HandleEvent(ctx context.Context, body []byte) (novaerawebhook.Result, error) {
	s.body = body
	return s.result, s.err
}

func TestNovaEraWebhookPassesRawBody(t *testing.T) {
	h := &stubHandler{result: novaerawebhook.Result{Message: novaerawebhook.MsgProcessed, Updated: 1, Ignored: 2}}
	payload := `{"id":"prov123","status":"approved"}`

	rec := httptest.NewRecorder()
	NovaEraWebhook(h, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/webhooks/novaera", strings.NewReader(payload)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payload, string(h.body))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, novaerawebhook.MsgProcessed, body["message"])
	assert.EqualValues(t, 1, body["updated"])
	assert.NotContains(t, body, "Ignored")
}

func TestNovaEraWebhookInvalidPayload(t *testing.T) {
	h := &stubHandler{err: pkgerrors.New(pkgerrors.CodeInvalidPayload, "Payload inválido")}

	rec := httptest.NewRecorder()
	NovaEraWebhook(h, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/webhooks/novaera", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
