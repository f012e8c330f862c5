package auth

// User-facing messages. Wrong credentials and an unreachable provider share one.
const (
	MsgMissingCredentials = "Preencha usuário e senha."
	MsgInvalidCredentials = "Usuário e/ou senha incorretos."
	MsgTooManyAttempts    = "Muitas tentativas de login. Tente novamente em instantes."
)
