package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string        `yaml:"database_url"`
	AutoMigrate  bool          `yaml:"auto_migrate"`
	JWTSecretKey string        `yaml:"jwt_secret_key"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
	ServerPort   int           `yaml:"server_port"`
	PublicURL    string        `yaml:"public_url"`
	RedisURL     string        `yaml:"redis_url"`
	LogLevel     string        `yaml:"log_level"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	DB       DBConfig       `yaml:"db"`
	Email    EmailConfig    `yaml:"email"`
	Calendar CalendarConfig `yaml:"calendar"`
	OAuth    OAuthConfig    `yaml:"oauth"`
	R2       R2Config       `yaml:"r2"`
}

// DBConfig задаёт пул соединений Postgres.
type DBConfig struct {
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
}

type EmailConfig struct {
	Provider string `yaml:"provider"` // emailjs | smtp | none

	EmailJSServiceID  string `yaml:"emailjs_service_id"`
	EmailJSTemplateID string `yaml:"emailjs_template_id"`
	EmailJSPublicKey  string `yaml:"emailjs_public_key"`
	EmailJSPrivateKey string `yaml:"emailjs_private_key"`

	SMTPHost string `yaml:"smtp_host"`
	SMTPPort int    `yaml:"smtp_port"`
	SMTPUser string `yaml:"smtp_user"`
	SMTPPass string `yaml:"smtp_pass"`
	SMTPFrom string `yaml:"smtp_from"`
}

type CalendarConfig struct {
	CalendarID      string `yaml:"calendar_id"`
	CredentialsFile string `yaml:"credentials_file"`
	TimeZone        string `yaml:"timezone"`
}

// Enabled reports whether calendar sync has what it needs.
func (c CalendarConfig) Enabled() bool {
	return c.CalendarID != "" && c.CredentialsFile != ""
}

type OAuthConfig struct {
	GoogleClientID string `yaml:"google_client_id"`
}

type R2Config struct {
	AccountID       string `yaml:"account_id"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	BucketName      string `yaml:"bucket_name"`
	PublicBaseURL   string `yaml:"public_base_url"`
}

// Enabled is true when every R2 field is set. Uploads are optional.
func (c R2Config) Enabled() bool {
	return c.AccountID != "" && c.AccessKeyID != "" && c.SecretAccessKey != "" &&
		c.BucketName != "" && c.PublicBaseURL != ""
}

func (c R2Config) partial() bool {
	set := 0
	for _, v := range []string{c.AccountID, c.AccessKeyID, c.SecretAccessKey, c.BucketName, c.PublicBaseURL} {
		if v != "" {
			set++
		}
	}
	return set > 0 && set < 5
}

func defaults() *Config {
	return &Config{
		ServerPort: 8080,
		SessionTTL: 24 * time.Hour,
		RedisURL:   "redis://localhost:6379",
		LogLevel:   "info",
		PublicURL:  "http://localhost:8080",
		DB: DBConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    25,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 15 * time.Minute,
			ConnectTimeout:  5 * time.Second,
		},
		Email: EmailConfig{
			Provider: "none",
			SMTPPort: 587,
		},
		Calendar: CalendarConfig{
			TimeZone: "Australia/Sydney",
		},
	}
}

// Load загружает конфигурацию: значения по умолчанию, затем YAML-файл (если
// указан), затем переменные окружения. Опционально подгружает .env файл.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // .env нужен только для локальной разработки

	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString("DATABASE_URL", &cfg.DatabaseURL)
	setString("JWT_SECRET_KEY", &cfg.JWTSecretKey)
	setString("PUBLIC_URL", &cfg.PublicURL)
	setString("REDIS_URL", &cfg.RedisURL)
	setString("LOG_LEVEL", &cfg.LogLevel)

	setString("EMAIL_PROVIDER", &cfg.Email.Provider)
	setString("EMAILJS_SERVICE_ID", &cfg.Email.EmailJSServiceID)
	setString("EMAILJS_TEMPLATE_ID", &cfg.Email.EmailJSTemplateID)
	setString("EMAILJS_PUBLIC_KEY", &cfg.Email.EmailJSPublicKey)
	setString("EMAILJS_PRIVATE_KEY", &cfg.Email.EmailJSPrivateKey)
	setString("SMTP_HOST", &cfg.Email.SMTPHost)
	setString("SMTP_USER", &cfg.Email.SMTPUser)
	setString("SMTP_PASS", &cfg.Email.SMTPPass)
	setString("SMTP_FROM", &cfg.Email.SMTPFrom)

	setString("GOOGLE_CALENDAR_ID", &cfg.Calendar.CalendarID)
	setString("GOOGLE_CREDENTIALS_FILE", &cfg.Calendar.CredentialsFile)
	setString("GOOGLE_CALENDAR_TIMEZONE", &cfg.Calendar.TimeZone)
	setString("GOOGLE_OAUTH_CLIENT_ID", &cfg.OAuth.GoogleClientID)

	setString("R2_ACCOUNT_ID", &cfg.R2.AccountID)
	setString("R2_ACCESS_KEY_ID", &cfg.R2.AccessKeyID)
	setString("R2_SECRET_ACCESS_KEY", &cfg.R2.SecretAccessKey)
	setString("R2_BUCKET_NAME", &cfg.R2.BucketName)
	setString("R2_PUBLIC_BASE_URL", &cfg.R2.PublicBaseURL)

	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
		}
		cfg.ServerPort = port
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SMTP_PORT environment variable: %w", err)
		}
		cfg.Email.SMTPPort = port
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SESSION_TTL environment variable: %w", err)
		}
		cfg.SessionTTL = ttl
	}
	if v := os.Getenv("AUTO_MIGRATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid AUTO_MIGRATE environment variable: %w", err)
		}
		cfg.AutoMigrate = b
	}
	if v := os.Getenv("DB_MAX_OPEN_CONNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DB_MAX_OPEN_CONNS environment variable: %w", err)
		}
		cfg.DB.MaxOpenConns = n
	}
	if v := os.Getenv("DB_MAX_IDLE_CONNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DB_MAX_IDLE_CONNS environment variable: %w", err)
		}
		cfg.DB.MaxIdleConns = n
	}
	if v := os.Getenv("DB_CONN_MAX_LIFETIME"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid DB_CONN_MAX_LIFETIME environment variable: %w", err)
		}
		cfg.DB.ConnMaxLifetime = d
	}
	if v := os.Getenv("DB_CONNECT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid DB_CONNECT_TIMEOUT environment variable: %w", err)
		}
		cfg.DB.ConnectTimeout = d
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := make([]string, 0)
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORSAllowedOrigins = origins
	}
	return nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL environment variable is not set")
	}
	if c.JWTSecretKey == "" {
		return errors.New("JWT_SECRET_KEY environment variable is not set")
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if c.DB.MaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", c.DB.MaxOpenConns)
	}
	if c.DB.MaxIdleConns < 0 || c.DB.MaxIdleConns > c.DB.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS must be between 0 and %d, got %d", c.DB.MaxOpenConns, c.DB.MaxIdleConns)
	}
	if c.DB.ConnectTimeout <= 0 {
		return fmt.Errorf("DB_CONNECT_TIMEOUT must be positive, got %s", c.DB.ConnectTimeout)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.Email.Provider {
	case "none":
	case "emailjs":
		if c.Email.EmailJSServiceID == "" || c.Email.EmailJSTemplateID == "" || c.Email.EmailJSPublicKey == "" {
			return errors.New("emailjs provider needs EMAILJS_SERVICE_ID, EMAILJS_TEMPLATE_ID and EMAILJS_PUBLIC_KEY")
		}
	case "smtp":
		if c.Email.SMTPHost == "" || c.Email.SMTPFrom == "" {
			return errors.New("smtp provider needs SMTP_HOST and SMTP_FROM")
		}
	default:
		return fmt.Errorf("unknown EMAIL_PROVIDER %q", c.Email.Provider)
	}
	if c.R2.partial() {
		return errors.New("invalid Cloudflare R2 configuration: set all R2_* variables or none")
	}
	return nil
}

// SlogLevel maps LOG_LEVEL onto slog.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown LOG_LEVEL %q", c.LogLevel)
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
