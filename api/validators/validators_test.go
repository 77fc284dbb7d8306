package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/trackwise-backend/pkg/errors"
	"github.com/angelmondragon/trackwise-backend/pkg/pagination"
)

type sample struct {
	Name  string `json:"name" validate:"required,max=5"`
	Email string `json:"email" validate:"omitempty,email"`
}

func TestDecodeJSONBodyStrict(t *testing.T) {
	var dst sample
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"ana","extra":1}`))
	err := DecodeJSONBody(r, &dst)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"ana"}`))
	require.NoError(t, DecodeJSONBody(r, &dst))
	assert.Equal(t, "ana", dst.Name)
}

func TestDecodeJSONBodyLenient(t *testing.T) {
	var dst sample
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"ana","id":3}`))
	require.NoError(t, DecodeJSONBodyLenient(r, &dst))

	var empty struct {
		Note string `json:"note"`
	}
	r = httptest.NewRequest("POST", "/", strings.NewReader(""))
	assert.NoError(t, DecodeJSONBodyLenient(r, &empty))
}

func TestValidationDetailsUseJSONNames(t *testing.T) {
	var dst sample
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"toolong","email":"nope"}`))
	err := DecodeJSONBody(r, &dst)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, map[string]string{
		"name":  "must be at most 5",
		"email": "must be a valid email",
	}, typed.Details())
}

func TestParsePageAndID(t *testing.T) {
	r := httptest.NewRequest("GET", "/?page=3&limit=abc", nil)
	assert.Equal(t, pagination.Params{Page: 3}, ParsePage(r))

	id, err := ParsePathID(" 42 ")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	_, err = ParsePathID("x")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = ParsePathID("0")
	assert.Error(t, err)
}
