package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v4"
	josejwt "github.com/go-jose/go-jose/v4/jwt"
)

const (
	DefaultGoogleCertsURL = "https://www.googleapis.com/oauth2/v3/certs"
	keySetTTL             = time.Hour
	clockLeeway           = time.Minute
)

var googleIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

var (
	ErrTokenMalformed = errors.New("google id token malformed")
	ErrTokenRejected  = errors.New("google id token rejected")
)

// Identity es el payload verificado de un ID token de Google.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

type googleClaims struct {
	josejwt.Claims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// GoogleVerifier valida ID tokens de Google contra el JWKS publicado.
type GoogleVerifier struct {
	clientID string
	certsURL string
	client   *http.Client
	now      func() time.Time

	mu        sync.Mutex
	keys      *jose.JSONWebKeySet
	fetchedAt time.Time
}

// NewGoogleVerifier construye un verificador para el client ID dado.
func NewGoogleVerifier(clientID, certsURL string, client *http.Client) *GoogleVerifier {
	if certsURL == "" {
		certsURL = DefaultGoogleCertsURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &GoogleVerifier{
		clientID: clientID,
		certsURL: certsURL,
		client:   client,
		now:      time.Now,
	}
}

// Verify comprueba firma, emisor, audiencia y expiracion del token.
func (v *GoogleVerifier) Verify(ctx context.Context, rawToken string) (Identity, error) {
	if strings.TrimSpace(v.clientID) == "" {
		return Identity{}, fmt.Errorf("%w: google client id not configured", ErrTokenRejected)
	}
	tok, err := josejwt.ParseSigned(rawToken, []jose.SignatureAlgorithm{jose.RS256})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	keys, err := v.keySet(ctx)
	if err != nil {
		return Identity{}, err
	}

	var claims googleClaims
	if err := tok.Claims(keys, &claims); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrTokenRejected, err)
	}
	if !validIssuer(claims.Issuer) {
		return Identity{}, fmt.Errorf("%w: unexpected issuer %q", ErrTokenRejected, claims.Issuer)
	}
	expected := josejwt.Expected{
		AnyAudience: josejwt.Audience{v.clientID},
		Time:        v.now(),
	}
	if err := claims.Claims.ValidateWithLeeway(expected, clockLeeway); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrTokenRejected, err)
	}

	return Identity{
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
	}, nil
}

func (v *GoogleVerifier) keySet(ctx context.Context) (*jose.JSONWebKeySet, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.keys != nil && v.now().Sub(v.fetchedAt) < keySetTTL {
		return v.keys, nil
	}
	keys, err := v.fetchKeys(ctx)
	if err != nil {
		if v.keys != nil {
			return v.keys, nil
		}
		return nil, err
	}
	v.keys = keys
	v.fetchedAt = v.now()
	return keys, nil
}

func (v *GoogleVerifier) fetchKeys(ctx context.Context) (*jose.JSONWebKeySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create certs request: %w", err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch google certs: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read google certs: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("google certs http error: status=%d", resp.StatusCode)
	}

	var keys jose.JSONWebKeySet
	if err := json.Unmarshal(body, &keys); err != nil {
		return nil, fmt.Errorf("decode google certs: %w", err)
	}
	if len(keys.Keys) == 0 {
		return nil, errors.New("google certs empty")
	}
	return &keys, nil
}

func validIssuer(iss string) bool {
	for _, candidate := range googleIssuers {
		if iss == candidate {
			return true
		}
	}
	return false
}
