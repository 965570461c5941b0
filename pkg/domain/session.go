package domain

// Credentials are submitted to the login endpoint as an OAuth2 password form.
// Username carries the email address.
type Credentials struct {
	Username string
	Password string
}

// AuthToken is the login endpoint response.
type AuthToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
