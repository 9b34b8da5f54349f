package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App      AppConfig
	DB       DBConfig
	JWT      JWTConfig
	HTTP     HTTPConfig
	SMTP     SMTPConfig
	Registry RegistryConfig
	Storage  StorageConfig
	Auth     AuthConfig
	Seed     SeedConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
	BaseURL  string // URL pública del frontend, usada en los enlaces de los correos
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
	MinConns    int
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
	CookieName string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host          string
	Port          int
	BodyLimitMB   int
	SwaggerFile   string
	EnableSwagger bool
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SMTPConfig servidor de correo saliente. Host vacío = correos solo se registran en el log.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Enabled indica si hay servidor SMTP configurado.
func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

// RegistryConfig API institucional de estudiantes (UNAMAD).
type RegistryConfig struct {
	BaseURL string
	Token   string // UNAMAD_API_TOKEN
	Timeout time.Duration
}

// StorageConfig almacenamiento de archivos subidos.
type StorageConfig struct {
	Driver         string // local | minio
	Root           string // raíz de contenido para el driver local
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioSecure    bool
}

// AuthConfig vigencias de los tokens de verificación y recuperación.
type AuthConfig struct {
	VerificationTTL time.Duration
	ResetTTL        time.Duration
}

// SeedConfig superusuario inicial que crea cmd/seed.
type SeedConfig struct {
	AdminEmail    string
	AdminName     string
	AdminPassword string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, JWT_SECRET, UNAMAD_API_TOKEN, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "portal-unamad"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
			BaseURL:  strings.TrimRight(getString(v, "APP_BASE_URL", "http://localhost:3000"), "/"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "portal_unamad"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    getInt(v, "DB_MAX_CONNS", 15),
			MinConns:    getInt(v, "DB_MIN_CONNS", 2),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 480),
			Issuer:     getString(v, "JWT_ISSUER", "portal-unamad"),
			CookieName: getString(v, "SESSION_COOKIE_NAME", "session"),
		},
		HTTP: HTTPConfig{
			Host:          getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:          getInt(v, "HTTP_PORT", 8080),
			BodyLimitMB:   getInt(v, "HTTP_BODY_LIMIT_MB", 20),
			SwaggerFile:   getString(v, "SWAGGER_FILE", "./docs/swagger.json"),
			EnableSwagger: getBool(v, "SWAGGER_ENABLED", true),
		},
		SMTP: SMTPConfig{
			Host:     getString(v, "SMTP_HOST", ""),
			Port:     getInt(v, "SMTP_PORT", 587),
			User:     getString(v, "SMTP_USER", ""),
			Password: getString(v, "SMTP_PASSWORD", ""),
			From:     getString(v, "SMTP_FROM", "no-reply@unamad.edu.pe"),
		},
		Registry: RegistryConfig{
			BaseURL: strings.TrimRight(getString(v, "UNAMAD_API_URL", "https://api.unamad.edu.pe"), "/"),
			Token:   getString(v, "UNAMAD_API_TOKEN", ""),
			Timeout: time.Duration(getInt(v, "UNAMAD_API_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		Storage: StorageConfig{
			Driver:         getString(v, "STORAGE_DRIVER", "local"),
			Root:           getString(v, "STORAGE_ROOT", "./uploads"),
			MinioEndpoint:  getString(v, "MINIO_ENDPOINT", ""),
			MinioAccessKey: getString(v, "MINIO_ACCESS_KEY", ""),
			MinioSecretKey: getString(v, "MINIO_SECRET_KEY", ""),
			MinioBucket:    getString(v, "MINIO_BUCKET", "portal-documentos"),
			MinioSecure:    getBool(v, "MINIO_SECURE", false),
		},
		Auth: AuthConfig{
			VerificationTTL: time.Duration(getInt(v, "VERIFICATION_TTL_HOURS", 24)) * time.Hour,
			ResetTTL:        time.Duration(getInt(v, "RESET_TTL_MINUTES", 60)) * time.Minute,
		},
		Seed: SeedConfig{
			AdminEmail:    getString(v, "SEED_ADMIN_EMAIL", ""),
			AdminName:     getString(v, "SEED_ADMIN_NAME", "Administrador"),
			AdminPassword: getString(v, "SEED_ADMIN_PASSWORD", ""),
		},
	}

	if cfg.App.Env == "production" && cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET es obligatorio en producción")
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		b, err := strconv.ParseBool(v.GetString(key))
		if err != nil {
			return def
		}
		return b
	}
	return def
}
