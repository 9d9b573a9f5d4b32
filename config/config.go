package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Ambientes soportados
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

// DefaultAPIBaseURL es el backend REST que consume la consola
const DefaultAPIBaseURL = "https://hospital-hospital.up.railway.app"

// Config agrupa la configuración de la consola
type Config struct {
	Port               string        `mapstructure:"PORT"`
	Environment        string        `mapstructure:"ENVIRONMENT"`
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
	APIBaseURL         string        `mapstructure:"API_BASE_URL"`
	APITimeout         time.Duration `mapstructure:"API_TIMEOUT"`
	JWTSecret          string        `mapstructure:"JWT_SECRET"`
	SessionTTL         time.Duration `mapstructure:"SESSION_TTL"`
	SessionRememberTTL time.Duration `mapstructure:"SESSION_REMEMBER_TTL"`
	RedisURL           string        `mapstructure:"REDIS_URL"`
	DatabaseURL        string        `mapstructure:"DATABASE_URL"`
	AdminUser          string        `mapstructure:"ADMIN_USER"`
	AdminPasswordHash  string        `mapstructure:"ADMIN_PASSWORD_HASH"`
	AdminTOTPSecret    string        `mapstructure:"ADMIN_TOTP_SECRET"`
	LoginRateMax       int           `mapstructure:"LOGIN_RATE_MAX"`
	LoginRateWindow    time.Duration `mapstructure:"LOGIN_RATE_WINDOW"`
}

var keys = []string{
	"PORT", "ENVIRONMENT", "LOG_LEVEL", "API_BASE_URL", "API_TIMEOUT",
	"JWT_SECRET", "SESSION_TTL", "SESSION_REMEMBER_TTL", "REDIS_URL",
	"DATABASE_URL", "ADMIN_USER", "ADMIN_PASSWORD_HASH", "ADMIN_TOTP_SECRET",
	"LOGIN_RATE_MAX", "LOGIN_RATE_WINDOW",
}

// Load lee el archivo .env (si existe) y las variables de entorno
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No se pudo cargar el archivo .env, se usan variables de entorno")
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()

	v.SetDefault("PORT", "3000")
	v.SetDefault("ENVIRONMENT", EnvDevelopment)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("API_BASE_URL", DefaultAPIBaseURL)
	v.SetDefault("API_TIMEOUT", "15s")
	v.SetDefault("SESSION_TTL", "8h")
	v.SetDefault("SESSION_REMEMBER_TTL", "720h")
	v.SetDefault("LOGIN_RATE_MAX", 20)
	v.SetDefault("LOGIN_RATE_WINDOW", "30m")

	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")

	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		cfg.JWTSecret = "clinisys-dev-secret"
		log.Warn().Msg("JWT_SECRET no definido, se usa una clave de desarrollo")
	}
	return cfg, nil
}

// IsProduction indica si la consola corre en producción
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// IsDev indica si la consola corre en desarrollo
func (c *Config) IsDev() bool {
	return c.Environment == EnvDevelopment
}

// OperadorHabilitado indica si hay cuenta local de operador configurada
func (c *Config) OperadorHabilitado() bool {
	return c.AdminUser != "" && c.AdminPasswordHash != ""
}

// Validate revisa que la configuración permita arrancar el servidor
func (c *Config) Validate() error {
	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET es requerido en producción")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_BASE_URL inválida: %q", c.APIBaseURL)
	}
	if (c.AdminUser == "") != (c.AdminPasswordHash == "") {
		return fmt.Errorf("ADMIN_USER y ADMIN_PASSWORD_HASH deben definirse juntos")
	}
	if c.SessionTTL <= 0 || c.SessionRememberTTL <= 0 {
		return fmt.Errorf("SESSION_TTL y SESSION_REMEMBER_TTL deben ser positivos")
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("API_TIMEOUT debe ser positivo")
	}
	if c.LoginRateMax <= 0 || c.LoginRateWindow <= 0 {
		return fmt.Errorf("LOGIN_RATE_MAX y LOGIN_RATE_WINDOW deben ser positivos")
	}
	return nil
}
