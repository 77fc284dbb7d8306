package leads

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		"\ufeffNome":      "nome",
		"Nome do Produto": "nomedoproduto",
		"Endereço":        "endereco",
		"CPF/CNPJ":        "cpfcnpj",
		"  Preço ":        "preco",
		"E-mail":          "email",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeHeader(in), in)
	}
}

func TestImportCountsDuplicatesAndMissingFields(t *testing.T) {
	svc, repo := newTestService(t)
	seedLead(t, repo, "98765432100", "Existente")

	csvBody := "\ufeffNome,Nome Produto,Preço,Telefone,Endereço,CPF/CNPJ,E-mail,Data\n" +
		"Ana Lima,Relógio,\"129,90\",11999990000,Rua A,123.456.789-01,ana@example.com,2026-10-01\n" +
		"Bruno,Tênis,abc,,,12.345.678/0001-90,,\n" +
		"Repetida,Bolsa,10,,,123.456.789-01,,\n" +
		"Antiga,Bolsa,10,,,987.654.321-00,,\n" +
		",Sem nome,10,,,111.111.111-11,,\n"

	res, err := svc.Import(context.Background(), strings.NewReader(csvBody))
	require.NoError(t, err)

	assert.Equal(t, MsgImportDone, res.Message)
	assert.Equal(t, 4, res.Total, "the row without a name is rejected, not processed")
	assert.Equal(t, 2, res.Success)
	assert.Equal(t, 2, res.Duplicates)
	require.Len(t, res.Errors, 3)
	assert.Equal(t, msgDuplicate, res.Errors[0].Error)
	assert.Equal(t, 4, res.Errors[0].Line)
	assert.Equal(t, msgDuplicate, res.Errors[1].Error)
	assert.Equal(t, msgMissingRequired, res.Errors[2].Error)

	ana, err := repo.FindByTracking(context.Background(), "12345678901")
	require.NoError(t, err)
	assert.Equal(t, "Relógio", ana.NomeProduto)
	assert.True(t, ana.Valor.Equal(decimal.RequireFromString("129.90")))
	require.NotNil(t, ana.CPFCNPJ)
	assert.Equal(t, "123.456.789-01", *ana.CPFCNPJ)

	bruno, err := repo.FindByTracking(context.Background(), "12345678000190")
	require.NoError(t, err)
	assert.True(t, bruno.Valor.IsZero())
}

func TestImportEmptyFile(t *testing.T) {
	svc, _ := newTestService(t)
	res, err := svc.Import(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.NotNil(t, res.Errors)
}

func TestParseValor(t *testing.T) {
	assert.True(t, parseValor("12,5").Equal(decimal.RequireFromString("12.5")))
	assert.True(t, parseValor("7.25").Equal(decimal.RequireFromString("7.25")))
	assert.True(t, parseValor("").IsZero())
	assert.True(t, parseValor("R$ 10").IsZero())
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "12345678000190", DigitsOnly("12.345.678/0001-90"))
	assert.Equal(t, "", DigitsOnly("abc"))
}

func TestImportTotalExcludesRowsMissingRequiredFields(t *testing.T) {
	svc, _ := newTestService(t)

	csvBody := "Nome,Nome Produto,CPF/CNPJ\n" +
		",Relógio,123.456.789-01\n" +
		"Ana,,222.222.222-22\n" +
		"Bruno,Tênis,\n"

	res, err := svc.Import(context.Background(), strings.NewReader(csvBody))
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.Zero(t, res.Success)
	require.Len(t, res.Errors, 3)
	for _, e := range res.Errors {
		assert.Equal(t, msgMissingRequired, e.Error)
	}
}
