package domain

import "time"

// NoPassword marca cuentas creadas solo via Google; nunca es un hash bcrypt valido.
const NoPassword = "!"

type User struct {
	ID                    string     `json:"id"`
	Email                 string     `json:"email"`
	PasswordHash          string     `json:"-"`
	IsAdmin               bool       `json:"isAdmin"`
	IsConfirmed           bool       `json:"isConfirmed"`
	IsGoogleAuthenticated bool       `json:"isGoogleAuthenticated"`
	RecoveryCodeHash      string     `json:"-"`
	RecoveryExpiresAt     *time.Time `json:"-"`
	CreatedAt             time.Time  `json:"createdAt"`
}

// HasUsablePassword indica si la cuenta puede autenticarse con password local.
func (u User) HasUsablePassword() bool {
	return u.PasswordHash != "" && u.PasswordHash != NoPassword
}

// HasPendingRecovery indica si hay un codigo de recuperacion pendiente.
func (u User) HasPendingRecovery() bool {
	return u.RecoveryCodeHash != ""
}

// RecoveryExpired indica si el codigo pendiente ya no puede usarse en now.
// Un codigo sin vencimiento registrado se considera vencido.
func (u User) RecoveryExpired(now time.Time) bool {
	return u.RecoveryExpiresAt == nil || !now.Before(*u.RecoveryExpiresAt)
}
