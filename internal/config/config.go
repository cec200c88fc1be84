package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type AppConfig struct {
	Env             string        `validate:"omitempty,oneof=production development"`
	Port            string        `validate:"required,numeric"`
	ReadTimeout     time.Duration `validate:"gt=0"`
	WriteTimeout    time.Duration `validate:"gt=0"`
	IdleTimeout     time.Duration `validate:"gt=0"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
	AllowedOrigins  []string      `validate:"min=1,dive,required"`
}

type StoreConfig struct {
	Driver string `validate:"oneof=postgres mongo memory"`
}

type DbConfig struct {
	DSN             string
	MaxOpenConns    int           `validate:"gte=0"`
	MaxIdleConns    int           `validate:"gte=0"`
	MaxConnLifetime time.Duration `validate:"gte=0"`
}

type MongoConfig struct {
	URI      string
	Database string `validate:"required"`
}

type JWTConfig struct {
	Secret    string        `validate:"required"`
	AccessTTL time.Duration `validate:"gt=0"`
	Issuer    string
}

type BootstrapConfig struct {
	AdminEmail string `validate:"omitempty,email"`
}

type Config struct {
	AppConfig       *AppConfig       `validate:"required"`
	StoreConfig     *StoreConfig     `validate:"required"`
	DbConfig        *DbConfig        `validate:"required"`
	MongoConfig     *MongoConfig     `validate:"required"`
	JWTConfig       *JWTConfig       `validate:"required"`
	BootstrapConfig *BootstrapConfig `validate:"required"`
}

// LoadConfig reads an optional .env file (ENV_FILE, default ".env") and then the
// process environment.
func LoadConfig(logger *zap.Logger) (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil {
		logger.Warn("no .env file loaded, using process environment", zap.String("path", envFile), zap.Error(err))
	}

	/** app config */
	readTimeout, err := getEnvDuration("APP_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	writeTimeout, err := getEnvDuration("APP_WRITE_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	idleTimeout, err := getEnvDuration("APP_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := getEnvDuration("APP_SHUTDOWN_TIMEOUT", 20*time.Second)
	if err != nil {
		return nil, err
	}

	appConfig := &AppConfig{
		Env:             getEnv("APP_ENV", "production"),
		Port:            getEnv("PORT", "5000"),
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		IdleTimeout:     idleTimeout,
		ShutdownTimeout: shutdownTimeout,
		AllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	/** db config */
	maxOpenConns, err := getEnvInt("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return nil, err
	}
	maxIdleConns, err := getEnvInt("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return nil, err
	}
	maxConnLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	if err != nil {
		return nil, err
	}

	dbConfig := &DbConfig{
		DSN:             os.Getenv("POSTGRES_DSN"),
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		MaxConnLifetime: maxConnLifetime,
	}

	/** mongo config */
	mongoConfig := &MongoConfig{
		URI:      mongoURI(),
		Database: getEnv("MONGO_DATABASE", "travelize_bd_DB"),
	}

	/** jwt config */
	accessTTL, err := getEnvDuration("ACCESS_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	jwtConfig := &JWTConfig{
		Secret:    os.Getenv("ACCESS_TOKEN_SECRET"),
		AccessTTL: accessTTL,
		Issuer:    os.Getenv("JWT_ISSUER"),
	}

	cfg := &Config{
		AppConfig:       appConfig,
		StoreConfig:     &StoreConfig{Driver: strings.ToLower(getEnv("STORE_DRIVER", DriverPostgres))},
		DbConfig:        dbConfig,
		MongoConfig:     mongoConfig,
		JWTConfig:       jwtConfig,
		BootstrapConfig: &BootstrapConfig{AdminEmail: strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_EMAIL"))},
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	switch c.StoreConfig.Driver {
	case DriverPostgres:
		if c.DbConfig.DSN == "" {
			return errors.New("config: POSTGRES_DSN is required for the postgres store")
		}
	case DriverMongo:
		if c.MongoConfig.URI == "" {
			return errors.New("config: MONGO_URI (or DB_USER/DB_PASS/MONGO_HOST) is required for the mongo store")
		}
	}
	return nil
}

// mongoURI prefers MONGO_URI and otherwise assembles an Atlas SRV URI from the
// DB_USER/DB_PASS/MONGO_HOST triple.
func mongoURI() string {
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		return uri
	}
	user, pass, host := os.Getenv("DB_USER"), os.Getenv("DB_PASS"), os.Getenv("MONGO_HOST")
	if user == "" || host == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(user, pass),
		Host:     host,
		Path:     "/",
		RawQuery: "retryWrites=true&w=majority",
	}
	return u.String()
}

func getEnv(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	return val
}

func getEnvInt(key string, fallback int) (int, error) {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
