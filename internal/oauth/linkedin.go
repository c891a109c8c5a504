package oauth

import (
	"golang.org/x/oauth2/linkedin"
)

const (
	LinkedIn            = "linkedin"
	linkedInUserInfoURL = "https://api.linkedin.com/v2/userinfo"
)

// NewLinkedIn uses LinkedIn's "Sign In with LinkedIn using OpenID Connect" product.
func NewLinkedIn(cfg Config) Provider {
	return newOIDCProvider(LinkedIn, cfg, linkedin.Endpoint, linkedInUserInfoURL)
}
