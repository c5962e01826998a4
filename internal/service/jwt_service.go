package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"chronobus-api/internal/domain"
)

const (
	tokenTypeSession = "session"
	tokenTypeConfirm = "confirm"
)

// JWTService emite y valida tokens de sesion y de confirmacion.
type JWTService struct {
	secret     []byte
	sessionTTL time.Duration
	confirmTTL time.Duration
	issuer     string
	store      RevocationStore
	now        func() time.Time
}

// SessionClaims es el payload del token de sesion de larga duracion.
type SessionClaims struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// ConfirmationClaims es el payload del token de confirmacion de email.
type ConfirmationClaims struct {
	UserID    string `json:"userId"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

var (
	ErrJWTInvalid         = errors.New("jwt invalid")
	ErrJWTExpired         = errors.New("jwt expired")
	ErrJWTMissingIdentity = errors.New("jwt missing identity")
	ErrJWTRevoked         = errors.New("jwt revoked")
)

func NewJWTService(secret string, sessionTTL, confirmTTL time.Duration) *JWTService {
	if sessionTTL <= 0 {
		sessionTTL = 30 * 24 * time.Hour
	}
	if confirmTTL <= 0 {
		confirmTTL = 3 * time.Hour
	}
	return &JWTService{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		confirmTTL: confirmTTL,
		issuer:     "chronobus",
		store:      NewMemoryRevocationStore(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func NewJWTServiceWithStore(secret string, sessionTTL, confirmTTL time.Duration, store RevocationStore) *JWTService {
	svc := NewJWTService(secret, sessionTTL, confirmTTL)
	if store != nil {
		svc.store = store
	}
	return svc
}

// SessionTTL devuelve la vida util de los tokens de sesion.
func (s *JWTService) SessionTTL() time.Duration {
	return s.sessionTTL
}

func (s *JWTService) IssueSession(user domain.User) (string, error) {
	if len(s.secret) == 0 || user.ID == "" {
		return "", ErrJWTInvalid
	}
	now := s.now()
	claims := SessionClaims{
		UserID:           user.ID,
		Email:            user.Email,
		IsAdmin:          user.IsAdmin,
		TokenType:        tokenTypeSession,
		RegisteredClaims: s.registered(user.ID, now, s.sessionTTL),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *JWTService) IssueConfirmation(userID string) (string, error) {
	if len(s.secret) == 0 || userID == "" {
		return "", ErrJWTInvalid
	}
	now := s.now()
	claims := ConfirmationClaims{
		UserID:           userID,
		TokenType:        tokenTypeConfirm,
		RegisteredClaims: s.registered(userID, now, s.confirmTTL),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseSession valida un token de sesion. Un token firmado sin userId
// devuelve ErrJWTMissingIdentity para distinguirlo de uno invalido.
func (s *JWTService) ParseSession(token string) (SessionClaims, error) {
	var claims SessionClaims
	if err := s.parse(token, &claims); err != nil {
		return SessionClaims{}, err
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return SessionClaims{}, ErrJWTMissingIdentity
	}
	if claims.TokenType != tokenTypeSession || claims.Issuer != s.issuer {
		return SessionClaims{}, ErrJWTInvalid
	}
	if s.store != nil {
		revoked, err := s.store.IsRevoked(claims.UserID)
		if err == nil && revoked {
			return SessionClaims{}, ErrJWTRevoked
		}
	}
	return claims, nil
}

func (s *JWTService) ParseConfirmation(token string) (ConfirmationClaims, error) {
	var claims ConfirmationClaims
	if err := s.parse(token, &claims); err != nil {
		return ConfirmationClaims{}, err
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return ConfirmationClaims{}, ErrJWTMissingIdentity
	}
	if claims.TokenType != tokenTypeConfirm || claims.Issuer != s.issuer {
		return ConfirmationClaims{}, ErrJWTInvalid
	}
	return claims, nil
}

// RevokeUser invalida todas las sesiones emitidas para el usuario.
func (s *JWTService) RevokeUser(userID string) error {
	if s.store == nil || strings.TrimSpace(userID) == "" {
		return nil
	}
	return s.store.Revoke(userID, s.sessionTTL)
}

func (s *JWTService) registered(userID string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *JWTService) parse(tokenString string, claims jwt.Claims) error {
	if len(s.secret) == 0 || strings.TrimSpace(tokenString) == "" {
		return ErrJWTInvalid
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrJWTExpired
		}
		return ErrJWTInvalid
	}
	return nil
}
