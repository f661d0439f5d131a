package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Avatar storage modes
const (
	AvatarInline = "inline"
	AvatarS3     = "s3"
)

// Development fallbacks, only honoured with ALLOW_INSECURE_DEFAULTS=true
const (
	insecureJWTSecret = "flyerssoft-learn-secret-2024-xk9p"
	insecureAdminCode = "FLYERSADMIN2024"
)

// Config is built once at startup and passed down by reference
type Config struct {
	Port                  string
	GinMode               string
	LogFormat             string
	LogLevel              slog.Level
	CORSAllowedOrigins    []string
	RateLimitPerSecond    float64
	RateLimitIPHeader     string
	AllowInsecureDefaults bool

	Auth   AuthConfig
	Store  StoreConfig
	SMTP   SMTPConfig
	Chat   ChatConfig
	Avatar AvatarConfig
}

type AuthConfig struct {
	JWTSecret         string
	TokenTTL          time.Duration
	AdminCode         string
	MaxAdmins         int64
	BcryptCost        int
	OTPTTL            time.Duration
	MinPasswordLength int
}

type StoreConfig struct {
	Driver      string
	DatabaseURL string
	MongoURL    string
	DBName      string
	Timeout     time.Duration
}

type SMTPConfig struct {
	Server   string
	Port     int
	Email    string
	Password string
}

// Enabled reports whether enough settings are present to send real mail
func (c SMTPConfig) Enabled() bool {
	return c.Server != "" && c.Email != "" && c.Password != ""
}

type ChatConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
}

type AvatarConfig struct {
	Storage   string
	MaxBytes  int
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	PublicURL string
}

// Load reads configuration from the environment. Missing secrets are an error
// unless ALLOW_INSECURE_DEFAULTS is set.
func Load() (*Config, error) {
	var errs []error

	cfg := &Config{
		Port:                  fallback("SERVER_PORT", "8080"),
		GinMode:               fallback("GIN_MODE", "debug"),
		LogFormat:             fallback("LOG_FORMAT", "json"),
		CORSAllowedOrigins:    splitList(fallback("CORS_ALLOWED_ORIGINS", "*")),
		AllowInsecureDefaults: envBool("ALLOW_INSECURE_DEFAULTS", false, &errs),
		RateLimitPerSecond:    envFloat("RATE_LIMIT_PER_SECOND", 1, &errs),
		RateLimitIPHeader:     os.Getenv("RATE_LIMIT_IP_HEADER"),
	}

	// forwarding headers are client supplied unless a proxy in front sets them
	switch {
	case cfg.RateLimitIPHeader == "":
	case strings.EqualFold(cfg.RateLimitIPHeader, "X-Forwarded-For"):
		cfg.RateLimitIPHeader = "X-Forwarded-For"
	case strings.EqualFold(cfg.RateLimitIPHeader, "X-Real-IP"):
		cfg.RateLimitIPHeader = "X-Real-IP"
	default:
		errs = append(errs, fmt.Errorf("RATE_LIMIT_IP_HEADER %q is not one of X-Forwarded-For, X-Real-IP", cfg.RateLimitIPHeader))
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(fallback("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	cfg.Auth = AuthConfig{
		JWTSecret:         os.Getenv("JWT_SECRET"),
		TokenTTL:          time.Duration(envInt("JWT_TTL_HOURS", 168, &errs)) * time.Hour,
		AdminCode:         os.Getenv("ADMIN_CODE"),
		MaxAdmins:         int64(envInt("MAX_ADMINS", 3, &errs)),
		BcryptCost:        envInt("BCRYPT_COST", 10, &errs),
		OTPTTL:            time.Duration(envInt("OTP_TTL_MINUTES", 10, &errs)) * time.Minute,
		MinPasswordLength: envInt("MIN_PASSWORD_LENGTH", 6, &errs),
	}
	if cfg.Auth.JWTSecret == "" {
		if !cfg.AllowInsecureDefaults {
			errs = append(errs, errors.New("JWT_SECRET is required"))
		}
		cfg.Auth.JWTSecret = insecureJWTSecret
	}
	if cfg.Auth.AdminCode == "" {
		if !cfg.AllowInsecureDefaults {
			errs = append(errs, errors.New("ADMIN_CODE is required"))
		}
		cfg.Auth.AdminCode = insecureAdminCode
	}

	cfg.Store = StoreConfig{
		Driver:   fallback("STORE_DRIVER", DriverPostgres),
		MongoURL: os.Getenv("MONGO_URL"),
		DBName:   fallback("DB_NAME", "learnstudio"),
		Timeout:  time.Duration(envInt("STORE_TIMEOUT_SECONDS", 30, &errs)) * time.Second,
	}
	switch cfg.Store.Driver {
	case DriverPostgres:
		dsn, err := postgresDSN(cfg.Store.DBName)
		if err != nil {
			errs = append(errs, err)
		}
		cfg.Store.DatabaseURL = dsn
	case DriverMongo:
		if cfg.Store.MongoURL == "" {
			errs = append(errs, errors.New("MONGO_URL is required for the mongo driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q is not one of postgres, mongo, memory", cfg.Store.Driver))
	}

	cfg.SMTP = SMTPConfig{
		Server:   fallback("SMTP_SERVER", "smtp.gmail.com"),
		Port:     envInt("SMTP_PORT", 587, &errs),
		Email:    os.Getenv("SMTP_EMAIL"),
		Password: os.Getenv("SMTP_PASSWORD"),
	}

	cfg.Chat = ChatConfig{
		APIKey:      os.Getenv("GROQ_API_KEY"),
		BaseURL:     fallback("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		Model:       fallback("CHAT_MODEL", "moonshotai/kimi-k2-instruct-0905"),
		MaxTokens:   envInt("CHAT_MAX_TOKENS", 512, &errs),
		Temperature: float32(envFloat("CHAT_TEMPERATURE", 0.7, &errs)),
	}

	cfg.Avatar = AvatarConfig{
		Storage:   fallback("AVATAR_STORAGE", AvatarInline),
		MaxBytes:  envInt("AVATAR_MAX_BYTES", 2<<20, &errs),
		Endpoint:  os.Getenv("S3_ENDPOINT"),
		Region:    fallback("S3_REGION", "us-east-1"),
		Bucket:    os.Getenv("S3_BUCKET"),
		AccessKey: os.Getenv("S3_ACCESS_KEY"),
		SecretKey: os.Getenv("S3_SECRET_KEY"),
		PublicURL: os.Getenv("S3_PUBLIC_URL"),
	}
	switch cfg.Avatar.Storage {
	case AvatarInline:
	case AvatarS3:
		if cfg.Avatar.Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required when AVATAR_STORAGE=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("AVATAR_STORAGE %q is not one of inline, s3", cfg.Avatar.Storage))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UsingInsecureDefaults reports whether a development secret was substituted
func (c *Config) UsingInsecureDefaults() bool {
	return c.Auth.JWTSecret == insecureJWTSecret || c.Auth.AdminCode == insecureAdminCode
}

// postgresDSN prefers DATABASE_URL and otherwise assembles a DSN from DB_* variables
func postgresDSN(dbName string) (string, error) {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url, nil
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	sslMode := fallback("DB_SSLMODE", "disable")

	if dbHost == "" || dbPort == "" || dbUser == "" {
		return "", errors.New("set DATABASE_URL or DB_HOST, DB_PORT, DB_USER, DB_PASSWORD for the postgres driver")
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbHost, dbPort, dbUser, dbPassword, dbName, sslMode), nil
}

func fallback(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envInt(key string, def int, errs *[]error) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}

func envFloat(key string, def float64, errs *[]error) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}

func envBool(key string, def bool, errs *[]error) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}
