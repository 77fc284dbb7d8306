package settings

import "github.com/angelmondragon/trackwise-backend/pkg/novaera"

// Setting keys persisted in the settings table.
const (
	KeySecretKey   = "novaera.sk"
	KeyPublicKey   = "novaera.pk"
	KeyPostbackURL = "novaera.postbackUrl"
	// KeyBaseURL is reported on reads only; the base URL comes from config.
	KeyBaseURL = "novaera.baseUrl"
)

const (
	msgNothingToUpdate = "Nenhuma configuração para atualizar"
	MsgUpdated         = "Configurações atualizadas com sucesso"
	MsgReloaded        = "Configurações recarregadas"
)

// ProviderSettings is the typed snapshot of provider credentials.
type ProviderSettings struct {
	SecretKey   string
	PublicKey   string
	PostbackURL string
}

// Credentials returns the SK/PK pair for the provider client.
func (p ProviderSettings) Credentials() novaera.Credentials {
	return novaera.Credentials{SecretKey: p.SecretKey, PublicKey: p.PublicKey}
}

// UpdateRequest is the body of POST/PUT /api/settings. Absent fields are left
// untouched; present fields are written even when empty.
type UpdateRequest struct {
	NovaeraSk          *string `json:"novaeraSk"`
	NovaeraPk          *string `json:"novaeraPk"`
	NovaeraPostbackURL *string `json:"novaeraPostbackUrl"`
}

type keyValue struct {
	key    string
	value  string
	secret bool
}

func (r UpdateRequest) entries() []keyValue {
	var out []keyValue
	if r.NovaeraSk != nil {
		out = append(out, keyValue{key: KeySecretKey, value: *r.NovaeraSk, secret: true})
	}
	if r.NovaeraPk != nil {
		out = append(out, keyValue{key: KeyPublicKey, value: *r.NovaeraPk, secret: true})
	}
	if r.NovaeraPostbackURL != nil {
		out = append(out, keyValue{key: KeyPostbackURL, value: *r.NovaeraPostbackURL})
	}
	return out
}

func isSecretKey(key string) bool {
	return key == KeySecretKey || key == KeyPublicKey
}

// mask keeps the last four characters of a secret.
func mask(value string) string {
	if value == "" {
		return ""
	}
	runes := []rune(value)
	if len(runes) > 4 {
		runes = runes[len(runes)-4:]
	}
	return "***" + string(runes)
}
