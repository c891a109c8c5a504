// Package oauth implements the social sign-in providers.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

var (
	ErrNoEmail          = errors.New("provider returned no email")
	ErrEmailUnverified  = errors.New("provider email is not verified")
	ErrUnknownProvider  = errors.New("unknown oauth provider")
	ErrProviderResponse = errors.New("unexpected provider response")
)

// Profile is the subset of the provider's user info the app consumes.
type Profile struct {
	ID         string
	Email      string
	GivenName  string
	FamilyName string
	PictureURL string
}

type Provider interface {
	Name() string
	AuthCodeURL(state string) string
	// Exchange trades an authorization code for the user's profile.
	Exchange(ctx context.Context, code string) (*Profile, error)
}

// Config holds client credentials. Endpoint and UserInfoURL default to the
// provider's production URLs when left empty.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Endpoint     oauth2.Endpoint
	UserInfoURL  string
}

func (c Config) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// oidcProvider works for any provider exposing a standard OpenID Connect
// userinfo endpoint.
type oidcProvider struct {
	name        string
	oauth       *oauth2.Config
	userInfoURL string
}

func newOIDCProvider(name string, cfg Config, endpoint oauth2.Endpoint, userInfoURL string) *oidcProvider {
	if cfg.Endpoint.AuthURL != "" {
		endpoint = cfg.Endpoint
	}
	if cfg.UserInfoURL != "" {
		userInfoURL = cfg.UserInfoURL
	}
	return &oidcProvider{
		name: name,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     endpoint,
		},
		userInfoURL: userInfoURL,
	}
}

func (p *oidcProvider) Name() string {
	return p.name
}

func (p *oidcProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

type userInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

func (p *oidcProvider) Exchange(ctx context.Context, code string) (*Profile, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s token exchange: %w", p.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s userinfo: %w", p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %s userinfo status %d: %s", ErrProviderResponse, p.name, resp.StatusCode, body)
	}

	var info userInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&info); err != nil {
		return nil, fmt.Errorf("%s userinfo decode: %w", p.name, err)
	}

	if strings.TrimSpace(info.Email) == "" {
		return nil, ErrNoEmail
	}
	if info.EmailVerified != nil && !*info.EmailVerified {
		return nil, ErrEmailUnverified
	}

	return &Profile{
		ID:         info.Sub,
		Email:      strings.TrimSpace(info.Email),
		GivenName:  strings.TrimSpace(info.GivenName),
		FamilyName: strings.TrimSpace(info.FamilyName),
		PictureURL: info.Picture,
	}, nil
}
