package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"chronobus-api/internal/domain"
	"chronobus-api/internal/oauth"
	"chronobus-api/internal/repository"
	"chronobus-api/internal/service"
)

type mockUserRepo struct {
	usersByID    map[string]domain.User
	usersByEmail map[string]string
	writes       int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
	}
}

func (m *mockUserRepo) put(u domain.User) {
	m.usersByID[u.ID] = u
	m.usersByEmail[u.Email] = u.ID
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	if _, ok := m.usersByEmail[user.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	m.writes++
	m.put(user)
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	u, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	id, ok := m.usersByEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) List(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(m.usersByID))
	for _, u := range m.usersByID {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserRepo) MarkConfirmed(_ context.Context, id string) error {
	u, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	m.writes++
	u.IsConfirmed = true
	m.usersByID[id] = u
	return nil
}

func (m *mockUserRepo) SetRecoveryCode(_ context.Context, id, codeHash string, expiresAt time.Time) error {
	u, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	m.writes++
	u.RecoveryCodeHash = codeHash
	u.RecoveryExpiresAt = &expiresAt
	m.usersByID[id] = u
	return nil
}

func (m *mockUserRepo) ResetPassword(_ context.Context, id, passwordHash string) error {
	u, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	m.writes++
	u.PasswordHash = passwordHash
	u.RecoveryCodeHash = ""
	u.RecoveryExpiresAt = nil
	m.usersByID[id] = u
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) (int64, error) {
	u, ok := m.usersByID[id]
	if !ok {
		return 0, nil
	}
	m.writes++
	delete(m.usersByID, id)
	delete(m.usersByEmail, u.Email)
	return 1, nil
}

type mockSender struct {
	lastLink string
	lastCode string
	err      error
}

func (m *mockSender) SendConfirmation(_ context.Context, _ string, link string) error {
	m.lastLink = link
	return m.err
}

func (m *mockSender) SendRecoveryCode(_ context.Context, _ string, code string) error {
	m.lastCode = code
	return m.err
}

type mockVerifier struct {
	identity oauth.Identity
	err      error
}

func (m *mockVerifier) Verify(_ context.Context, _ string) (oauth.Identity, error) {
	return m.identity, m.err
}

type pingStub struct{ err error }

func (p pingStub) Ping(context.Context) error { return p.err }

type testServer struct {
	router   *gin.Engine
	repo     *mockUserRepo
	sender   *mockSender
	verifier *mockVerifier
	tokens   *service.JWTService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	repo := newMockUserRepo()
	sender := &mockSender{}
	verifier := &mockVerifier{}
	tokens := service.NewJWTService("test-secret", time.Hour, time.Hour)
	accounts := service.NewAccountService(
		logger,
		repo,
		service.NewBcryptHasher(bcrypt.MinCost),
		tokens,
		sender,
		verifier,
		service.NewMemoryRecoveryLimiter(10*time.Minute, 3),
		"http://localhost:5173/validation-email",
	)
	router := NewRouter(
		logger,
		RouterOptions{AllowedOrigin: "http://localhost:5173"},
		NewUserHandler(logger, accounts),
		NewSessionHandler(logger, accounts),
		NewCalendarHandler(logger),
		NewHealthHandler(logger, pingStub{}),
	)
	return &testServer{router: router, repo: repo, sender: sender, verifier: verifier, tokens: tokens}
}

func (s *testServer) seed(t *testing.T, user domain.User, password string) domain.User {
	t.Helper()
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		user.PasswordHash = string(hash)
	}
	s.repo.put(user)
	return user
}

func (s *testServer) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

