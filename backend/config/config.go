package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DBDriver   string `mapstructure:"DB_DRIVER"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`
	// SQLitePath is used when DBDriver is "sqlite".
	SQLitePath string `mapstructure:"SQLITE_PATH"`

	JWTSecret   string        `mapstructure:"JWT_SECRET"`
	JWTTTL      time.Duration `mapstructure:"JWT_TTL"`
	CookieName  string        `mapstructure:"COOKIE_NAME"`
	CookieHTTPS bool          `mapstructure:"COOKIE_SECURE"`

	ServerPort  string `mapstructure:"SERVER_PORT"`
	CORSOrigins string `mapstructure:"CORS_ORIGINS"`
	LogMode     string `mapstructure:"LOG_MODE"`

	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	RedisPassword  string        `mapstructure:"REDIS_PASSWORD"`
	LeaderboardTTL time.Duration `mapstructure:"LEADERBOARD_TTL"`

	MailAPIKey   string `mapstructure:"MAIL_API_KEY"`
	MailFrom     string `mapstructure:"MAIL_FROM"`
	FrontendURL  string `mapstructure:"FRONTEND_URL"`
	ImageHostURL string `mapstructure:"IMAGE_HOST_URL"`
	ImageHostKey string `mapstructure:"IMAGE_HOST_KEY"`
}

const defaultJWTSecret = "secret"

var ErrInsecureJWTSecret = errors.New("JWT_SECRET must be set in production mode")

var defaults = map[string]interface{}{
	"DB_DRIVER":       "postgres",
	"DB_HOST":         "localhost",
	"DB_PORT":         "5432",
	"DB_USER":         "postgres",
	"DB_PASSWORD":     "postgres",
	"DB_NAME":         "learnhub",
	"DB_SSLMODE":      "disable",
	"SQLITE_PATH":     "learnhub.db",
	"JWT_SECRET":      defaultJWTSecret,
	"JWT_TTL":         "72h",
	"COOKIE_NAME":     "access_token",
	"COOKIE_SECURE":   false,
	"SERVER_PORT":     "8080",
	"CORS_ORIGINS":    "*",
	"LOG_MODE":        "development",
	"REDIS_ADDR":      "",
	"REDIS_PASSWORD":  "",
	"LEADERBOARD_TTL": "5m",
	"MAIL_API_KEY":    "",
	"MAIL_FROM":       "no-reply@learnhub.local",
	"FRONTEND_URL":    "http://localhost:3000",
	"IMAGE_HOST_URL":  "https://api.imgbb.com/1/upload",
	"IMAGE_HOST_KEY":  "",
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, value := range defaults {
		v.SetDefault(key, value)
		// Unmarshal only sees keys viper knows about.
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	production := cfg.LogMode == "production" || cfg.LogMode == "prod"
	if production && (cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret) {
		return nil, ErrInsecureJWTSecret
	}
	return &cfg, nil
}

// AllowedOrigins returns the CORS origins as a comma separated list with
// surrounding whitespace removed.
func (c *Config) AllowedOrigins() string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}
