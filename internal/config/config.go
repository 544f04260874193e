// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Required values are enforced by must(); optional
// subsystems (mail, Redis, RabbitMQ) leave their fields empty when unset and
// the application degrades accordingly.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	JWTSecret     string // secret used to sign admin tokens
	AdminUser     string // shared admin username
	AdminPassHash string // bcrypt hash of the shared admin password
	AccessTTLMin  int    // admin token time-to-live in minutes

	SMTPHost string // SMTP server host; empty disables outbound mail
	SMTPPort int    // SMTP server port
	SMTPUser string // SMTP auth username
	SMTPPass string // SMTP auth password
	MailFrom string // From address on confirmation and reminder mail

	ReminderHour   int // local hour of day the reminder loop fires (0-23)
	ReminderPaceMs int // delay between consecutive reminder sends

	RedisAddr     string // host:port of Redis; empty disables the listing cache
	RedisPassword string
	RedisDB       int

	AMQPURL string // RabbitMQ URL; empty disables event publishing
}

// Load reads configuration from environment variables and returns a Config.
// Missing required variables cause the program to exit with a fatal log
// message.
func Load() Config {
	return Config{
		Env:           must("APP_ENV"),
		Port:          must("APP_PORT"),
		DBUser:        must("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"),
		DBHost:        must("DB_HOST"),
		DBPort:        must("DB_PORT"),
		DBName:        must("DB_NAME"),
		JWTSecret:     must("JWT_SECRET"),
		AdminUser:     must("ADMIN_USER"),
		AdminPassHash: must("ADMIN_PASS_HASH"),
		AccessTTLMin:  intOr("ACCESS_TOKEN_TTL_MIN", 60),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: intOr("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		MailFrom: os.Getenv("MAIL_FROM"),

		ReminderHour:   intOr("REMINDER_HOUR", 9),
		ReminderPaceMs: intOr("REMINDER_PACE_MS", 100),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       intOr("REDIS_DB", 0),

		AMQPURL: os.Getenv("RABBITMQ_URL"),
	}
}

// MailEnabled reports whether an SMTP host was configured.
func (c Config) MailEnabled() bool { return c.SMTPHost != "" && c.MailFrom != "" }

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// intOr converts an optional environment variable to an integer, falling back
// to def when unset.  A malformed value is fatal rather than silently
// defaulted.
func intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
