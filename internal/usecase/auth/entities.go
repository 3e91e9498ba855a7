package auth

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Name     *string
	// empty means user
	Role string
}

type TokenDTO struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
