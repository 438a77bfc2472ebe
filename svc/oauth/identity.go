package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// identityResolver returns the email of the account an access token
// belongs to.
type identityResolver func(ctx context.Context, client *http.Client, accessToken string) (string, error)

// getJSON issues an authenticated GET and decodes a 2xx JSON body into v.
func getJSON(ctx context.Context, client *http.Client, url, authorization string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", authorization)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: status %d: %s", url, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// googleIdentity tries each userinfo endpoint in order until one yields an email.
func googleIdentity(urls []string) identityResolver {
	return func(ctx context.Context, client *http.Client, accessToken string) (string, error) {
		var errs []error
		for _, u := range urls {
			var info struct {
				Email string `json:"email"`
			}
			if err := getJSON(ctx, client, u, "Bearer "+accessToken, &info); err != nil {
				errs = append(errs, err)
				continue
			}
			if info.Email != "" {
				return info.Email, nil
			}
			errs = append(errs, fmt.Errorf("GET %s: no email in response", u))
		}
		return "", errors.Join(append([]error{ErrEmailResolution}, errs...)...)
	}
}

// outlookIdentity reads Graph /me, preferring mail over userPrincipalName.
func outlookIdentity(url string) identityResolver {
	return func(ctx context.Context, client *http.Client, accessToken string) (string, error) {
		var me struct {
			Mail              string `json:"mail"`
			UserPrincipalName string `json:"userPrincipalName"`
		}
		if err := getJSON(ctx, client, url, "Bearer "+accessToken, &me); err != nil {
			return "", errors.Join(ErrEmailResolution, err)
		}
		switch {
		case me.Mail != "":
			return me.Mail, nil
		case me.UserPrincipalName != "":
			return me.UserPrincipalName, nil
		}
		return "", ErrEmailResolution
	}
}

// zohoIdentity reads the first Zoho Mail account. Zoho expects its own
// authorization scheme on the Mail API.
func zohoIdentity(url string) identityResolver {
	return func(ctx context.Context, client *http.Client, accessToken string) (string, error) {
		var accounts struct {
			Data []zohoAccount `json:"data"`
		}
		if err := getJSON(ctx, client, url, "Zoho-oauthtoken "+accessToken, &accounts); err != nil {
			return "", errors.Join(ErrEmailResolution, err)
		}
		if len(accounts.Data) == 0 {
			return "", ErrNoAccountsFound
		}
		if email := accounts.Data[0].email(); email != "" {
			return email, nil
		}
		return "", ErrEmailResolution
	}
}

// zohoAccount.EmailAddress is a plain string on some API versions and a
// list of {mailId, isPrimary} on others.
type zohoAccount struct {
	EmailAddress        json.RawMessage `json:"emailAddress"`
	PrimaryEmailAddress string          `json:"primaryEmailAddress"`
}

func (a zohoAccount) email() string {
	var s string
	if json.Unmarshal(a.EmailAddress, &s) == nil && s != "" {
		return s
	}
	if a.PrimaryEmailAddress != "" {
		return a.PrimaryEmailAddress
	}
	var list []struct {
		MailID    string `json:"mailId"`
		IsPrimary bool   `json:"isPrimary"`
	}
	if json.Unmarshal(a.EmailAddress, &list) != nil || len(list) == 0 {
		return ""
	}
	for _, m := range list {
		if m.IsPrimary && m.MailID != "" {
			return m.MailID
		}
	}
	return list[0].MailID
}
