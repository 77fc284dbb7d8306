package leads

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/angelmondragon/trackwise-backend/pkg/db"
	"github.com/angelmondragon/trackwise-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/trackwise-backend/pkg/errors"
	"github.com/angelmondragon/trackwise-backend/pkg/logger"
)

const (
	MsgImportDone      = "Importação concluída"
	msgMissingRequired = "Campos obrigatórios faltando"
	msgDuplicate       = "Tracking já existe"
	msgInvalidCSV      = "Erro ao processar arquivo CSV"
)

// ImportResult summarizes a CSV upload.
type ImportResult struct {
	Message    string        `json:"message"`
	Total      int           `json:"total"`
	Success    int           `json:"success"`
	Duplicates int           `json:"duplicates"`
	Errors     []ImportError `json:"errors"`
}

// ImportError reports one rejected row. Line is 1-based and counts the header.
type ImportError struct {
	Line  int               `json:"line"`
	Row   map[string]string `json:"row"`
	Error string            `json:"error"`
}

// header aliases after normalization, first match wins
var fieldAliases = map[string][]string{
	"nome":     {"nome"},
	"produto":  {"produto", "nomeproduto"},
	"valor":    {"valor", "price", "preco"},
	"telefone": {"telefone"},
	"endereco": {"endereco"},
	"cpfcnpj":  {"cpfcnpj", "cpf", "cnpj"},
	"email":    {"email"},
	"data":     {"data", "date"},
}

// Importer streams CSV rows into the leads table.
type Importer struct {
	repo Repository
	logg *logger.Logger
}

func NewImporter(repo Repository, logg *logger.Logger) *Importer {
	return &Importer{repo: repo, logg: logg}
}

// Import reads every row of r. Row-level failures are collected in the result;
// only an unreadable file or a storage failure aborts the import.
func (im *Importer) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	result := ImportResult{Message: MsgImportDone, Errors: []ImportError{}}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return result, nil
	}
	if err != nil {
		return ImportResult{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, msgInvalidCSV)
	}
	for i := range header {
		header[i] = NormalizeHeader(header[i])
	}

	seen := make(map[string]struct{})
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return ImportResult{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, msgInvalidCSV)
		}
		if err := ctx.Err(); err != nil {
			return ImportResult{}, err
		}

		row := toRow(header, record)
		lead, ok := leadFromRow(row)
		if !ok {
			result.Errors = append(result.Errors, ImportError{Line: line, Row: row, Error: msgMissingRequired})
			continue
		}
		// rejected rows are reported in Errors but not counted in Total
		result.Total++

		duplicate, err := im.isDuplicate(ctx, seen, lead.Tracking)
		if err != nil {
			return ImportResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, msgInvalidCSV)
		}
		if !duplicate {
			if err := im.repo.Create(ctx, lead); err != nil {
				if !db.IsUniqueViolation(err, "") {
					result.Errors = append(result.Errors, ImportError{Line: line, Row: row, Error: err.Error()})
					continue
				}
				duplicate = true
			}
		}
		seen[lead.Tracking] = struct{}{}

		if duplicate {
			result.Duplicates++
			result.Errors = append(result.Errors, ImportError{Line: line, Row: row, Error: msgDuplicate})
			continue
		}
		result.Success++
	}

	if im.logg != nil {
		im.logg.Info(im.logg.WithFields(ctx, map[string]any{
			"total":      result.Total,
			"success":    result.Success,
			"duplicates": result.Duplicates,
			"errors":     len(result.Errors),
		}), "csv import finished")
	}
	return result, nil
}

func (im *Importer) isDuplicate(ctx context.Context, seen map[string]struct{}, tracking string) (bool, error) {
	if _, ok := seen[tracking]; ok {
		return true, nil
	}
	return im.repo.TrackingExists(ctx, tracking)
}

var headerFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// NormalizeHeader strips the BOM and accents, drops everything that is not a
// letter or digit and lowercases the rest: "Nome do Produto" -> "nomedoproduto".
func NormalizeHeader(raw string) string {
	raw = strings.ReplaceAll(raw, "\ufeff", "")
	folded, _, err := transform.String(headerFolder, raw)
	if err != nil {
		folded = raw
	}
	var b strings.Builder
	for _, r := range folded {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

func toRow(header, record []string) map[string]string {
	row := make(map[string]string, len(header))
	for i, key := range header {
		if key == "" || i >= len(record) {
			continue
		}
		if _, exists := row[key]; exists {
			continue
		}
		row[key] = record[i]
	}
	return row
}

func field(row map[string]string, name string) string {
	for _, alias := range fieldAliases[name] {
		if v := strings.TrimSpace(row[alias]); v != "" {
			return v
		}
	}
	return ""
}

func leadFromRow(row map[string]string) (*models.Lead, bool) {
	nome := field(row, "nome")
	produto := field(row, "produto")
	document := field(row, "cpfcnpj")
	tracking := DigitsOnly(document)
	if nome == "" || produto == "" || tracking == "" {
		return nil, false
	}

	return &models.Lead{
		Tracking:    tracking,
		Nome:        nome,
		NomeProduto: produto,
		Valor:       parseValor(field(row, "valor")),
		Telefone:    strPtr(field(row, "telefone")),
		Endereco:    strPtr(field(row, "endereco")),
		CPFCNPJ:     strPtr(document),
		Email:       strPtr(field(row, "email")),
		Data:        strPtr(field(row, "data")),
	}, true
}

// parseValor accepts "12,50" and "12.50"; anything unparsable is zero.
func parseValor(raw string) decimal.Decimal {
	if raw == "" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(strings.Replace(raw, ",", ".", 1))
	if err != nil {
		return decimal.Zero
	}
	return value
}

// DigitsOnly strips every non-digit rune.
func DigitsOnly(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func strPtr(v string) *string { return &v }
