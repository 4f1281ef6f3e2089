package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"

	MailProviderSMTP       = "smtp"
	MailProviderMailerSend = "mailersend"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string
	// TrustedProxies are the proxy addresses whose forwarding headers gin
	// believes. Empty means the socket address is the client.
	TrustedProxies []string

	// ✅ Database
	DBDriver      string
	MongoURI      string
	MongoDatabase string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// ✅ Redis Config (optional: wizard sessions + rate limit store)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// ✅ Mail Config
	MailProvider     string
	SMTPHost         string
	SMTPPort         string
	SMTPUsername     string
	SMTPPassword     string
	SMTPFromEmail    string
	SMTPFromName     string
	MailerSendAPIKey string

	// ✅ Admin auth
	AdminUsername     string
	AdminPasswordHash string
	JWTSecret         string
	JWTTTLHours       int

	RateLimitPerMinute int64
	WizardSessionTTL   time.Duration
	Location           *time.Location

	LogLevel  string
	LogPretty bool
}

// Load reads environment variables and returns a Config object
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using environment variables")
	}

	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	return &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "release"),
		CORSOrigins: parseList(getEnv("CORS_ORIGINS", "http://localhost:3000")),

		TrustedProxies: parseList(os.Getenv("TRUSTED_PROXIES")),

		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", DriverMongo)),
		MongoURI:      os.Getenv("MONGODB_URI"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "yojana"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		MailProvider:     strings.ToLower(getEnv("MAIL_PROVIDER", MailProviderSMTP)),
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         getEnv("SMTP_PORT", "465"),
		SMTPUsername:     os.Getenv("SMTP_USER"),
		SMTPPassword:     os.Getenv("SMTP_PASS"),
		SMTPFromEmail:    getEnv("SMTP_FROM", os.Getenv("SMTP_USER")),
		SMTPFromName:     getEnv("SMTP_FROM_NAME", "Yojana"),
		MailerSendAPIKey: os.Getenv("MAILERSEND_API_KEY"),

		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		JWTTTLHours:       getInt("JWT_TTL_HOURS", 12),

		RateLimitPerMinute: int64(getInt("RATE_LIMIT_PER_MINUTE", 100)),
		WizardSessionTTL:   getDuration("WIZARD_SESSION_TTL", 2*time.Hour),
		Location:           getLocation(os.Getenv("APP_TIMEZONE")),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getBool("LOG_PRETTY", false),
	}
}

// Validate reports required settings that are missing. The service cannot
// start without a database connection string and mail credentials.
func (c *Config) Validate() error {
	var missing []string

	switch c.DBDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			missing = append(missing, "MONGODB_URI")
		}
	case DriverPostgres:
		if c.DBUser == "" {
			missing = append(missing, "DB_USER")
		}
		if c.DBName == "" {
			missing = append(missing, "DB_NAME")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.MailProvider {
	case MailProviderSMTP:
		if c.SMTPHost == "" {
			missing = append(missing, "SMTP_HOST")
		}
		if c.SMTPUsername == "" {
			missing = append(missing, "SMTP_USER")
		}
		if c.SMTPPassword == "" {
			missing = append(missing, "SMTP_PASS")
		}
	case MailProviderMailerSend:
		if c.MailerSendAPIKey == "" {
			missing = append(missing, "MAILERSEND_API_KEY")
		}
		if c.SMTPFromEmail == "" {
			missing = append(missing, "SMTP_FROM")
		}
	default:
		return fmt.Errorf("unsupported MAIL_PROVIDER %q", c.MailProvider)
	}

	if len(missing) > 0 {
		return errors.New("missing required configuration: " + strings.Join(missing, ", "))
	}
	return nil
}

// AdminAuthEnabled is true when both the admin password hash and the JWT
// signing secret are configured.
func (c *Config) AdminAuthEnabled() bool {
	return c.AdminPasswordHash != "" && c.JWTSecret != ""
}

// PostgresDSN builds the gorm postgres DSN.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getLocation(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("⚠️ unknown APP_TIMEZONE %q, using local time", name)
		return time.Local
	}
	return loc
}

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
