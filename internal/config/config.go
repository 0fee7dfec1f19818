package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	Port        int
	LogLevel    string

	DatabaseURL string

	JWTSecret  []byte
	TokenTTL   time.Duration
	BcryptCost int

	KafkaBrokers []string

	BodyLimit       string
	ShutdownTimeout time.Duration
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	return &Config{
		ServiceName: EnvDefault("SERVICE_NAME", "shop"),
		Port:        EnvIntDefault("PORT", 3000),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: databaseURL(),

		JWTSecret:  []byte(os.Getenv("JWT_SECRET")),
		TokenTTL:   EnvDurationDefault("TOKEN_TTL", 0),
		BcryptCost: EnvIntDefault("BCRYPT_COST", 10),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		BodyLimit:       EnvDefault("BODY_LIMIT", "10M"),
		ShutdownTimeout: EnvDurationDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("missing required env DATABASE_URL (or DB_HOST/DB_USER/DB_NAME)"))
	}
	if len(c.JWTSecret) == 0 {
		errs = append(errs, errors.New("missing required env JWT_SECRET"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %d", c.Port))
	}
	if c.TokenTTL < 0 {
		errs = append(errs, fmt.Errorf("invalid TOKEN_TTL %s", c.TokenTTL))
	}
	return errors.Join(errs...)
}

func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// databaseURL prefers DATABASE_URL and falls back to the discrete DB_* variables.
func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}

	host := os.Getenv("DB_HOST")
	if host == "" {
		return ""
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD")),
		Host:     host + ":" + EnvDefault("DB_PORT", "5432"),
		Path:     "/" + os.Getenv("DB_NAME"),
		RawQuery: "sslmode=" + EnvDefault("DB_SSLMODE", "disable"),
	}
	return u.String()
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
