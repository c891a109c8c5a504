package oauth

import (
	"golang.org/x/oauth2/google"
)

const (
	Google            = "google"
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

func NewGoogle(cfg Config) Provider {
	return newOIDCProvider(Google, cfg, google.Endpoint, googleUserInfoURL)
}
