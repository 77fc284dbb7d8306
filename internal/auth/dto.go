package auth

const (
	msgCredentialsRequired = "Usuário e senha são obrigatórios"
	msgInvalidCredentials  = "Usuário ou senha inválidos"
)

// LoginRequest captures the credentials sent to POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserSummary is the public view of the logged-in admin.
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// LoginResponse carries the bearer token and the user it was issued to.
type LoginResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}
