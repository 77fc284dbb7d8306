package novaera

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"
)

// Credentials is the SK/PK pair issued by the provider.
type Credentials struct {
	SecretKey string
	PublicKey string
}

// Configured reports whether both halves are present.
func (c Credentials) Configured() bool {
	return strings.TrimSpace(c.SecretKey) != "" && strings.TrimSpace(c.PublicKey) != ""
}

// Authorization renders the HTTP Basic header value.
func (c Credentials) Authorization() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.SecretKey+":"+c.PublicKey))
}

// Document types accepted by the provider.
const (
	DocumentCPF  = "cpf"
	DocumentCNPJ = "cnpj"
)

// CreateTransactionRequest is the body of POST /transactions/.
type CreateTransactionRequest struct {
	PaymentMethod string     `json:"paymentMethod"`
	IP            string     `json:"ip"`
	Pix           PixOptions `json:"pix"`
	Items         []Item     `json:"items"`
	Amount        int64      `json:"amount"`
	Customer      Customer   `json:"customer"`
	Metadata      string     `json:"metadata"`
	Traceable     bool       `json:"traceable"`
	ExternalRef   string     `json:"externalRef"`
	PostbackURL   string     `json:"postbackUrl"`
}

type PixOptions struct {
	ExpiresInDays int `json:"expiresInDays"`
}

type Item struct {
	Title        string `json:"title"`
	Quantity     int    `json:"quantity"`
	Tangible     bool   `json:"tangible"`
	UnitPrice    int64  `json:"unitPrice"`
	ProductImage string `json:"product_image,omitempty"`
}

type Customer struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Document Document `json:"document"`
}

type Document struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

// Transaction is the subset of a provider transaction the backend reads.
type Transaction struct {
	ID         FlexString `json:"id"`
	SecureID   FlexString `json:"secureId"`
	ExternalID FlexString `json:"externalId"`
	Status     string     `json:"status"`
	SecureURL  string     `json:"secureUrl"`
	Pix        struct {
		QRCode string `json:"qrcode"`
	} `json:"pix"`
}

// ProviderID is the first present of id, secureId and externalId.
func (t Transaction) ProviderID() string {
	for _, candidate := range []FlexString{t.ID, t.SecureID, t.ExternalID} {
		if v := strings.TrimSpace(string(candidate)); v != "" {
			return v
		}
	}
	return ""
}

// Envelope is the {"data": ...} wrapper used by responses and postbacks.
type Envelope struct {
	Data *Transaction `json:"data"`
}

// ParseTransaction reads a transaction from a wrapped or bare JSON document.
func ParseTransaction(raw []byte) (Transaction, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Transaction{}, err
	}
	if env.Data != nil {
		return *env.Data, nil
	}
	var tx Transaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// FlexString accepts a JSON string or number.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}
