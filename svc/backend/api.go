package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/loopinhq/loopin"
)

// Account is the connected-mailbox record the backend keeps per user.
type Account struct {
	Email        string          `json:"email"`
	Provider     loopin.Provider `json:"provider"`
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	IsPrimary    bool            `json:"is_primary"`
}

// AccountFromCredential builds the non-primary account record for c.
func AccountFromCredential(c loopin.Credential) Account {
	return Account{
		Email:        c.ConnectedEmail,
		Provider:     c.Provider,
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
	}
}

// LoginOrSignup registers the signed-in user's primary address and returns
// the backend bearer token for the session.
func (c *Client) LoginOrSignup(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("%w: email", ErrMissingInput)
	}
	req := struct {
		Email     string          `json:"email"`
		IsPrimary bool            `json:"is_primary"`
		Provider  loopin.Provider `json:"provider"`
	}{email, true, loopin.ProviderGoogle}

	var resp struct {
		Token string `json:"token"`
	}
	if err := c.post(ctx, "/users/login-or-signup", "", req, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: token missing", ErrDecode)
	}
	return resp.Token, nil
}

// ConnectAccount records a provider mailbox against the user behind token.
func (c *Client) ConnectAccount(ctx context.Context, token string, acc Account) error {
	if token == "" {
		return ErrMissingToken
	}
	if acc.AccessToken == "" || !acc.Provider.Valid() {
		return fmt.Errorf("%w: account", ErrMissingInput)
	}
	return c.post(ctx, "/users/connect-email-account", token, acc, nil)
}

// UnifiedSummary returns the backend's summary document as-is.
func (c *Client) UnifiedSummary(ctx context.Context, token string) (json.RawMessage, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	var out json.RawMessage
	if err := c.post(ctx, "/email/rag/unified-summary", token, struct{}{}, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		out = json.RawMessage(`{}`)
	}
	return out, nil
}

// RAGSummary answers a free-text question over the user's mail.
func (c *Client) RAGSummary(ctx context.Context, token, query string) (string, error) {
	if token == "" {
		return "", ErrMissingToken
	}
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("%w: query", ErrMissingInput)
	}
	req := struct {
		UserQuery string `json:"userQuery"`
	}{query}

	var resp struct {
		Summary string `json:"summary"`
	}
	if err := c.post(ctx, "/email/rag-summary", token, req, &resp); err != nil {
		return "", err
	}
	if resp.Summary == "" {
		return "No response.", nil
	}
	return resp.Summary, nil
}
