package crm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// DefaultClientID is the OAuth client the CRM ships for its own apps.
const DefaultClientID = "sugar"

// Credentials log a user in with the OAuth2 password grant.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

// Login exchanges credentials for a token at {baseURL}/oauth2/token and
// returns a source that refreshes the token as it expires. hc, when not nil,
// is used for the token requests.
func Login(ctx context.Context, baseURL string, cred Credentials, hc *http.Client) (oauth2.TokenSource, error) {
	if cred.Username == "" {
		return nil, errors.New("crm: login requires a username")
	}
	if cred.ClientID == "" {
		cred.ClientID = DefaultClientID
	}
	conf := &oauth2.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  strings.TrimRight(baseURL, "/") + "/oauth2/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	if hc != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, hc)
	}
	tok, err := conf.PasswordCredentialsToken(ctx, cred.Username, cred.Password)
	if err != nil {
		return nil, fmt.Errorf("crm: login %s: %w", cred.Username, err)
	}
	// Refreshes outlive the login call, so they must not inherit its deadline.
	refreshCtx := context.WithoutCancel(ctx)
	return conf.TokenSource(refreshCtx, tok), nil
}

// WithTokenSource authenticates requests with tokens from ts instead of the
// static token given to New.
func (c *Client) WithTokenSource(ts oauth2.TokenSource) *Client {
	c2 := *c
	c2.tokens = ts
	return &c2
}

func (c *Client) accessToken() (string, error) {
	if c.tokens == nil {
		return c.token, nil
	}
	tok, err := c.tokens.Token()
	if err != nil {
		return "", fmt.Errorf("crm: token: %w", err)
	}
	return tok.AccessToken, nil
}
