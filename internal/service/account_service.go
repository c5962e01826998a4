package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"chronobus-api/internal/domain"
	"chronobus-api/internal/email"
	"chronobus-api/internal/oauth"
	"chronobus-api/internal/repository"
)

// IdentityVerifier valida un ID token de un proveedor externo.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawToken string) (oauth.Identity, error)
}

// AccountService coordina el ciclo de vida de las cuentas.
type AccountService struct {
	logger     *zap.Logger
	users      repository.UserRepository
	hasher     PasswordHasher
	tokens     *JWTService
	mailer     email.Sender
	verifier   IdentityVerifier
	limiter    RecoveryLimiter
	confirmURL string
	now        func() time.Time
}

func NewAccountService(
	logger *zap.Logger,
	users repository.UserRepository,
	hasher PasswordHasher,
	tokens *JWTService,
	mailer email.Sender,
	verifier IdentityVerifier,
	limiter RecoveryLimiter,
	confirmURL string,
) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hasher == nil {
		hasher = NewBcryptHasher(bcrypt.DefaultCost)
	}
	if mailer == nil {
		mailer = email.NewDisabledSender("email sender not configured")
	}
	if limiter == nil {
		limiter = NewMemoryRecoveryLimiter(10*time.Minute, 3)
	}
	return &AccountService{
		logger:     logger,
		users:      users,
		hasher:     hasher,
		tokens:     tokens,
		mailer:     mailer,
		verifier:   verifier,
		limiter:    limiter,
		confirmURL: confirmURL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// AuthResult es lo que devuelve un registro o login exitoso.
type AuthResult struct {
	User    domain.User
	Token   string
	Created bool
}

// Register crea una cuenta local sin confirmar y envia el link de confirmacion.
// Cualquier fallo previo al envio exitoso elimina la cuenta recien creada.
func (s *AccountService) Register(ctx context.Context, emailAddr, password string) (AuthResult, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return AuthResult{}, ErrMissingCredentials
	}

	_, err := s.users.GetByEmail(ctx, emailAddr)
	switch {
	case err == nil:
		return AuthResult{}, ErrEmailTaken
	case !errors.Is(err, pgx.ErrNoRows):
		return AuthResult{}, serverError(err)
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return AuthResult{}, err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return AuthResult{}, ErrEmailTaken
		}
		return AuthResult{}, serverError(err)
	}

	// todo lo que puede fallar va antes del envio: despues del correo ya no hay rollback
	token, err := s.tokens.IssueSession(user)
	if err != nil {
		s.rollbackRegistration(ctx, user.ID, err)
		return AuthResult{}, serverError(err)
	}
	confirmToken, err := s.tokens.IssueConfirmation(user.ID)
	if err != nil {
		s.rollbackRegistration(ctx, user.ID, err)
		return AuthResult{}, serverError(err)
	}
	link, err := s.confirmationLink(confirmToken)
	if err != nil {
		s.rollbackRegistration(ctx, user.ID, err)
		return AuthResult{}, serverError(err)
	}
	if err := s.mailer.SendConfirmation(ctx, emailAddr, link); err != nil {
		s.rollbackRegistration(ctx, user.ID, err)
		return AuthResult{}, serverError(err)
	}
	return AuthResult{User: user, Token: token, Created: true}, nil
}

// ConfirmEmail marca la cuenta como confirmada. Devuelve true si ya lo estaba,
// en cuyo caso no escribe nada.
func (s *AccountService) ConfirmEmail(ctx context.Context, token string) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, ErrTokenRequired
	}
	claims, err := s.tokens.ParseConfirmation(token)
	if err != nil {
		return false, ErrConfirmTokenInvalid
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrUserNotFound
		}
		return false, domain.WrapError(domain.KindServer, msgUnexpected, err)
	}
	if user.IsConfirmed {
		return true, nil
	}
	if err := s.users.MarkConfirmed(ctx, user.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrUserNotFound
		}
		return false, domain.WrapError(domain.KindServer, msgUnexpected, err)
	}
	return false, nil
}

// LoginWithGoogle verifica el ID token y emite una sesion, creando la cuenta
// en el primer acceso.
func (s *AccountService) LoginWithGoogle(ctx context.Context, idToken string) (AuthResult, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return AuthResult{}, ErrGoogleTokenMissing
	}
	if s.verifier == nil {
		return AuthResult{}, domain.WrapError(domain.KindServer, msgGoogleAuthFailed, errors.New("google verifier not configured"))
	}

	identity, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return AuthResult{}, domain.WrapError(domain.KindAuth, msgGoogleAuthFailed, err)
	}
	emailAddr := normalizeEmail(identity.Email)
	if emailAddr == "" || !identity.EmailVerified {
		return AuthResult{}, ErrGoogleTokenInvalid
	}

	user, created, err := s.findOrCreateGoogleUser(ctx, emailAddr)
	if err != nil {
		return AuthResult{}, domain.WrapError(domain.KindServer, msgGoogleAuthFailed, err)
	}

	token, err := s.tokens.IssueSession(user)
	if err != nil {
		return AuthResult{}, domain.WrapError(domain.KindServer, msgGoogleAuthFailed, err)
	}
	return AuthResult{User: user, Token: token, Created: created}, nil
}

func (s *AccountService) findOrCreateGoogleUser(ctx context.Context, emailAddr string) (domain.User, bool, error) {
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, false, err
	}

	user = domain.User{
		ID:                    uuid.NewString(),
		Email:                 emailAddr,
		PasswordHash:          domain.NoPassword,
		IsConfirmed:           true,
		IsGoogleAuthenticated: true,
		CreatedAt:             s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if !errors.Is(err, repository.ErrDuplicateEmail) {
			return domain.User{}, false, err
		}
		// otro request creo la cuenta entre el lookup y el insert
		existing, err := s.users.GetByEmail(ctx, emailAddr)
		if err != nil {
			return domain.User{}, false, err
		}
		return existing, false, nil
	}
	return user, true, nil
}

// Login autentica con email y password locales.
func (s *AccountService) Login(ctx context.Context, emailAddr, password string) (AuthResult, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return AuthResult{}, ErrMissingCredentials
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, serverError(err)
	}
	if !user.HasUsablePassword() {
		return AuthResult{}, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}
	if !user.IsConfirmed {
		return AuthResult{}, ErrEmailNotConfirmed
	}

	token, err := s.tokens.IssueSession(user)
	if err != nil {
		return AuthResult{}, serverError(err)
	}
	return AuthResult{User: user, Token: token}, nil
}

// recoveryCodeTTL es la vigencia de un codigo de recuperacion emitido.
const recoveryCodeTTL = 10 * time.Minute

// RequestRecovery genera un codigo de 6 digitos, guarda su hash y lo envia por email.
func (s *AccountService) RequestRecovery(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrRecoveryEmailMissing
	}
	if !s.limiter.Allow(emailAddr) {
		return ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrEmailNotFound
		}
		return serverError(err)
	}

	code, err := generateRecoveryCode()
	if err != nil {
		return serverError(err)
	}
	codeHash, err := s.hasher.Hash(code)
	if err != nil {
		return serverError(err)
	}
	if err := s.users.SetRecoveryCode(ctx, user.ID, codeHash, s.now().Add(recoveryCodeTTL)); err != nil {
		return serverError(err)
	}
	if err := s.mailer.SendRecoveryCode(ctx, emailAddr, code); err != nil {
		return serverError(err)
	}
	return nil
}

// ResetPassword reemplaza el password si el codigo coincide con el pendiente
// y no vencio.
func (s *AccountService) ResetPassword(ctx context.Context, emailAddr, code, password string) error {
	emailAddr = normalizeEmail(emailAddr)
	code = strings.TrimSpace(code)
	if emailAddr == "" || code == "" || password == "" {
		return ErrRecoveryFieldsMissing
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrEmailNotFound
		}
		return serverError(err)
	}
	if !user.HasPendingRecovery() || user.RecoveryExpired(s.now()) {
		return ErrRecoveryCodeMismatch
	}
	if err := s.hasher.Compare(user.RecoveryCodeHash, code); err != nil {
		return ErrRecoveryCodeMismatch
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return err
	}
	if err := s.users.ResetPassword(ctx, user.ID, hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrEmailNotFound
		}
		return serverError(err)
	}
	return nil
}

// Authenticate valida un token de sesion y clasifica el rechazo.
func (s *AccountService) Authenticate(token string) (SessionClaims, error) {
	if strings.TrimSpace(token) == "" {
		return SessionClaims{}, ErrMissingToken
	}
	claims, err := s.tokens.ParseSession(token)
	if err != nil {
		if errors.Is(err, ErrJWTMissingIdentity) {
			return SessionClaims{}, ErrNotValidToken
		}
		return SessionClaims{}, ErrSessionInvalid
	}
	return claims, nil
}

// DeleteAccount elimina la cuenta del token y revoca sus sesiones.
func (s *AccountService) DeleteAccount(ctx context.Context, claims SessionClaims) error {
	if strings.TrimSpace(claims.UserID) == "" {
		return ErrNotValidToken
	}
	n, err := s.users.Delete(ctx, claims.UserID)
	if err != nil {
		return serverError(err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	if err := s.tokens.RevokeUser(claims.UserID); err != nil {
		s.logger.Warn("revoke sessions failed", zap.Error(err), zap.String("user_id", claims.UserID))
	}
	return nil
}

// ListUsers devuelve todas las cuentas; solo para administradores.
func (s *AccountService) ListUsers(ctx context.Context, claims SessionClaims) ([]domain.User, error) {
	if !claims.IsAdmin {
		return nil, ErrAdminRequired
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, serverError(err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (s *AccountService) hashPassword(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", serverError(err)
	}
	return hash, nil
}

func (s *AccountService) rollbackRegistration(ctx context.Context, userID string, cause error) {
	s.logger.Error("registration failed, removing account", zap.Error(cause), zap.String("user_id", userID))
	if _, err := s.users.Delete(context.WithoutCancel(ctx), userID); err != nil {
		s.logger.Error("registration rollback failed", zap.Error(err), zap.String("user_id", userID))
	}
}

func (s *AccountService) confirmationLink(token string) (string, error) {
	u, err := url.Parse(s.confirmURL)
	if err != nil {
		return "", fmt.Errorf("confirm url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func generateRecoveryCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
