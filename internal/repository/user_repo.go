package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"chronobus-api/internal/domain"
)

// ErrDuplicateEmail se devuelve cuando la restriccion unica de email falla.
var ErrDuplicateEmail = errors.New("duplicate email")

const uniqueViolation = "23505"

// DBTX es el subconjunto de pgxpool.Pool que usan los repositorios.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository define el contrato de persistencia para usuarios.
// Las busquedas sin resultado devuelven pgx.ErrNoRows.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	MarkConfirmed(ctx context.Context, id string) error
	SetRecoveryCode(ctx context.Context, id, codeHash string, expiresAt time.Time) error
	ResetPassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) (int64, error)
}

// PgUserRepository implementa UserRepository usando pgx.
type PgUserRepository struct {
	pool DBTX
}

func NewPgUserRepository(pool DBTX) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

const userColumns = `id, email, password_hash, is_admin, is_confirmed, is_google_authenticated, recovery_code_hash, recovery_code_expires_at, created_at`

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, email, password_hash, is_admin, is_confirmed, is_google_authenticated, recovery_code_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.IsAdmin,
		user.IsConfirmed,
		user.IsGoogleAuthenticated,
		user.RecoveryCodeHash,
		user.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *PgUserRepository) List(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PgUserRepository) MarkConfirmed(ctx context.Context, id string) error {
	const query = `UPDATE users SET is_confirmed = TRUE WHERE id = $1`
	return r.execOne(ctx, query, id)
}

func (r *PgUserRepository) SetRecoveryCode(ctx context.Context, id, codeHash string, expiresAt time.Time) error {
	const query = `UPDATE users SET recovery_code_hash = $2, recovery_code_expires_at = $3 WHERE id = $1`
	return r.execOne(ctx, query, id, codeHash, expiresAt)
}

// ResetPassword guarda el nuevo hash y limpia el codigo de recuperacion en una sola sentencia.
func (r *PgUserRepository) ResetPassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $2, recovery_code_hash = '', recovery_code_expires_at = NULL WHERE id = $1`
	return r.execOne(ctx, query, id, passwordHash)
}

func (r *PgUserRepository) Delete(ctx context.Context, id string) (int64, error) {
	const query = `DELETE FROM users WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PgUserRepository) execOne(ctx context.Context, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.IsAdmin,
		&u.IsConfirmed,
		&u.IsGoogleAuthenticated,
		&u.RecoveryCodeHash,
		&u.RecoveryExpiresAt,
		&u.CreatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
