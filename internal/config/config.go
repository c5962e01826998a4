package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort          string        `env:"HTTP_PORT" envDefault:"8080"`
	AppEnv            string        `env:"APP_ENV" envDefault:"production"`
	DatabaseURL       string        `env:"DATABASE_URL,required,notEmpty"`
	MigrationsEnabled bool          `env:"MIGRATIONS_ENABLED" envDefault:"true"`
	JWTSecret         string        `env:"JWT_SECRET,required,notEmpty"`
	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	ConfirmTTL        time.Duration `env:"CONFIRM_TTL" envDefault:"3h"`
	ConfirmURL        string        `env:"CONFIRM_URL" envDefault:"https://chronobus-1.onrender.com/validation-email"`
	AllowedOrigin     string        `env:"ALLOWED_ORIGIN" envDefault:"http://localhost:5173"`
	GoogleClientID    string        `env:"GOOGLE_CLIENT_ID"`
	GoogleCertsURL    string        `env:"GOOGLE_CERTS_URL" envDefault:"https://www.googleapis.com/oauth2/v3/certs"`
	BcryptCost        int           `env:"BCRYPT_COST" envDefault:"10"`
	SMTPHost          string        `env:"SMTP_HOST"`
	SMTPPort          int           `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser          string        `env:"SMTP_USER"`
	SMTPPass          string        `env:"SMTP_PASS"`
	SMTPFrom          string        `env:"SMTP_FROM"`
	SMTPFromName      string        `env:"SMTP_FROM_NAME" envDefault:"ChronoBus"`
	SMTPUseTLS        bool          `env:"SMTP_USE_TLS" envDefault:"false"`
	ResendAPIKey      string        `env:"RESEND_API_KEY"`
	MailFrom          string        `env:"MAIL_FROM"`
	RedisAddr         string        `env:"REDIS_ADDR"`
	RedisPassword     string        `env:"REDIS_PASSWORD"`
	RedisDB           int           `env:"REDIS_DB" envDefault:"0"`
	RateLimitRPM      int           `env:"RATE_LIMIT_RPM" envDefault:"60"`
	RecoveryMax       int           `env:"RECOVERY_MAX_REQUESTS" envDefault:"3"`
	RecoveryWindow    time.Duration `env:"RECOVERY_WINDOW" envDefault:"10m"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment indica si el servicio corre en modo desarrollo.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
