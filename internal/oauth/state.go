package oauth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	StateCookie = "oauth_state"
	StateTTL    = 10 * time.Minute
)

var ErrInvalidState = errors.New("invalid oauth state")

type stateClaims struct {
	Provider string `json:"provider"`
	Nonce    string `json:"nonce"`
	jwt.RegisteredClaims
}

// StateSigner binds the state query parameter to the browser that started
// the flow: the nonce travels to the provider, a signed copy stays in a cookie.
type StateSigner struct {
	secret []byte
	secure bool
	now    func() time.Time
}

func NewStateSigner(secret []byte, secure bool) *StateSigner {
	return &StateSigner{secret: secret, secure: secure, now: time.Now}
}

// Begin sets the state cookie and returns the nonce to send as the state parameter.
func (s *StateSigner) Begin(w http.ResponseWriter, provider string) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	nonce := hex.EncodeToString(b)

	now := s.now()
	claims := stateClaims{
		Provider: provider,
		Nonce:    nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(StateTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign state: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     StateCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(StateTTL.Seconds()),
	})
	return nonce, nil
}

// Verify checks the callback's state parameter against the cookie and
// always clears the cookie.
func (s *StateSigner) Verify(w http.ResponseWriter, r *http.Request, provider string) error {
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(StateCookie)
	if err != nil || state == "" {
		return ErrInvalidState
	}

	var claims stateClaims
	_, err = jwt.ParseWithClaims(cookie.Value, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	if claims.Provider != provider || subtle.ConstantTimeCompare([]byte(claims.Nonce), []byte(state)) != 1 {
		return ErrInvalidState
	}
	return nil
}
