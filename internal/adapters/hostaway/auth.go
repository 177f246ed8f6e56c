package hostaway

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"hostaway_sync/internal/domain"
)

// Authenticate resolves a usable credential by trying, in order: the secret as a
// bearer token, a client-credentials token exchange, and HTTP Basic. First success wins.
func (c *Client) Authenticate(ctx context.Context, creds domain.APICredentials) (domain.Credential, error) {
	if !creds.Complete() {
		return domain.Credential{}, fmt.Errorf("%w: account id and secret are required", domain.ErrAuthenticationFailed)
	}

	strategies := []struct {
		name string
		try  func(context.Context, domain.APICredentials) (domain.Credential, error)
	}{
		{"bearer", c.tryBearer},
		{"client_credentials", c.tryTokenExchange},
		{"basic", c.tryBasic},
	}

	var errs []error
	for _, s := range strategies {
		cred, err := s.try(ctx, creds)
		if err == nil {
			log.Debug().Str("strategy", s.name).Str("kind", string(cred.Kind)).Msg("hostaway credential resolved")
			return cred, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
	}
	return domain.Credential{}, fmt.Errorf("%w: %w", domain.ErrAuthenticationFailed, errors.Join(errs...))
}

func (c *Client) tryBearer(ctx context.Context, creds domain.APICredentials) (domain.Credential, error) {
	cred := domain.Credential{Kind: domain.CredentialBearer, Value: creds.Secret}
	return cred, c.verify(ctx, cred)
}

func (c *Client) tryBasic(ctx context.Context, creds domain.APICredentials) (domain.Credential, error) {
	pair := base64.StdEncoding.EncodeToString([]byte(creds.AccountID + ":" + creds.Secret))
	cred := domain.Credential{Kind: domain.CredentialBasic, Value: pair}
	return cred, c.verify(ctx, cred)
}

// verify hits the cheapest authenticated endpoint; only 200 counts as success.
func (c *Client) verify(ctx context.Context, cred domain.Credential) error {
	req, err := c.newRequest(http.MethodGet, "/listings", url.Values{"limit": {"1"}}, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", cred.Authorization())
	resp, err := c.send(ctx, "listings_verify", c.authTimeout, req)
	if err != nil {
		return err
	}
	if resp.status != http.StatusOK {
		return fmt.Errorf("verify status %d", resp.status)
	}
	return nil
}

func (c *Client) tryTokenExchange(ctx context.Context, creds domain.APICredentials) (domain.Credential, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {creds.AccountID},
		"client_secret": {creds.Secret},
		"scope":         {"general"},
	}
	req, err := c.newRequest(http.MethodPost, "/accessTokens", nil, []byte(form.Encode()))
	if err != nil {
		return domain.Credential{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.send(ctx, "access_tokens", c.authTimeout, req)
	if err != nil {
		return domain.Credential{}, err
	}
	if resp.status != http.StatusOK {
		logUpstream("access_tokens", resp.status, resp.body, nil)
		return domain.Credential{}, fmt.Errorf("token exchange status %d", resp.status)
	}
	body, err := decode(resp.body)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("token exchange decode: %w", err)
	}
	tok, _ := lookup(body, "access_token")
	s, _ := tok.(string)
	if strings.TrimSpace(s) == "" {
		return domain.Credential{}, errors.New("token exchange returned no access_token")
	}
	return domain.Credential{Kind: domain.CredentialBearer, Value: s}, nil
}
