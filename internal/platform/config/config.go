package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// Config agrupa toda la configuración del servicio, resuelta desde env.
// El .env (si existe) lo carga main con godotenv antes de llamar Load.
type Config struct {
	Port    string `env:"PORT,default=8080"`
	AppName string `env:"APP_NAME,default=shelter-ops"`

	// Si DB_DSN está vacío, el router cae a repos in-memory (modo dev).
	DBDSN string `env:"DB_DSN"`

	// Auth: JWT_SECRET activa el verifier HS256 local;
	// AUTH_BASE_URL + AUTH_API_KEY activan el verifier remoto.
	// Sin ninguno de los dos => modo dev (X-Debug-* headers).
	JWTSecret   string `env:"JWT_SECRET"`
	AuthBaseURL string `env:"AUTH_BASE_URL"`
	AuthAPIKey  string `env:"AUTH_API_KEY"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`

	ReminderWebhookURL string        `env:"REMINDER_WEBHOOK_URL"`
	SweepInterval      time.Duration `env:"SWEEP_INTERVAL,default=1h"`

	ReadTimeout     time.Duration `env:"READ_TIMEOUT,default=5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
