package entities

// TokenClass is the outcome of classifying a presented token.
type TokenClass int

const (
	TokenInvalid TokenClass = iota
	TokenUser
	TokenAdmin
)

func (c TokenClass) String() string {
	switch c {
	case TokenAdmin:
		return "admin"
	case TokenUser:
		return "user"
	default:
		return "invalid"
	}
}

// TokenConfig é o blob persistido com o token de administrador e os tokens emitidos.
type TokenConfig struct {
	AdminToken string   `yaml:"ADMIN_API"`
	UserTokens []string `yaml:"API_keys"`
}

// Clone returns a copy that shares no backing array with c.
func (c TokenConfig) Clone() TokenConfig {
	tokens := make([]string, len(c.UserTokens))
	copy(tokens, c.UserTokens)
	return TokenConfig{AdminToken: c.AdminToken, UserTokens: tokens}
}
