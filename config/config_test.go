package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("JWT_TTL_HOURS", "-4")
	t.Setenv("WIZARD_SESSION_TTL", "45m")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.1")

	cfg := Load()
	if cfg.DBDriver != DriverPostgres {
		t.Fatalf("driver = %s", cfg.DBDriver)
	}
	if strings.Join(cfg.CORSOrigins, "|") != "https://a.example|https://b.example" {
		t.Fatalf("origins = %v", cfg.CORSOrigins)
	}
	if cfg.JWTTTLHours != 12 || cfg.WizardSessionTTL != 45*time.Minute || !cfg.LogPretty {
		t.Fatalf("cfg = %+v", cfg)
	}
	if strings.Join(cfg.TrustedProxies, "|") != "10.0.0.0/8|192.0.2.1" {
		t.Fatalf("trusted proxies = %v", cfg.TrustedProxies)
	}
	if cfg.Location.String() != "UTC" {
		t.Fatalf("location = %s", cfg.Location)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "mongo with smtp",
			cfg:  Config{DBDriver: DriverMongo, MongoURI: "mongodb://x", MailProvider: MailProviderSMTP, SMTPHost: "h", SMTPUsername: "u", SMTPPassword: "p"},
		},
		{
			name: "postgres with mailersend",
			cfg:  Config{DBDriver: DriverPostgres, DBUser: "u", DBName: "d", MailProvider: MailProviderMailerSend, MailerSendAPIKey: "k", SMTPFromEmail: "a@b.co"},
		},
		{
			name: "everything missing",
			cfg:  Config{DBDriver: DriverMongo, MailProvider: MailProviderSMTP},
			want: "missing required configuration: MONGODB_URI, SMTP_HOST, SMTP_USER, SMTP_PASS",
		},
		{
			name: "unknown driver",
			cfg:  Config{DBDriver: "sqlite"},
			want: `unsupported DB_DRIVER "sqlite"`,
		},
		{
			name: "unknown mail provider",
			cfg:  Config{DBDriver: DriverMongo, MongoURI: "m", MailProvider: "pigeon"},
			want: `unsupported MAIL_PROVIDER "pigeon"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			switch {
			case tt.want == "" && err != nil:
				t.Fatalf("unexpected error: %v", err)
			case tt.want != "" && (err == nil || err.Error() != tt.want):
				t.Fatalf("err = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestAdminAuthEnabled(t *testing.T) {
	if (&Config{JWTSecret: "s"}).AdminAuthEnabled() {
		t.Fatal("enabled without password hash")
	}
	if !(&Config{JWTSecret: "s", AdminPasswordHash: "h"}).AdminAuthEnabled() {
		t.Fatal("not enabled")
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "yojana", DBPort: "5432", DBSSLMode: "disable"}
	if got := cfg.PostgresDSN(); got != "host=db user=u password=p dbname=yojana port=5432 sslmode=disable" {
		t.Fatalf("dsn = %s", got)
	}
}
