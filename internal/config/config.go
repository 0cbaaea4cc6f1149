package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Listing  *ListingConfig  `mapstructure:"listing"`
	Admin    *AdminConfig    `mapstructure:"admin"`
}

type APIConfig struct {
	Environment        string        `mapstructure:"environment"`
	Port               string        `mapstructure:"port"`
	BaseURL            string        `mapstructure:"base_url"`
	JWTSigningKey      string        `mapstructure:"jwt_signing_key"`
	JWTTTL             time.Duration `mapstructure:"jwt_ttl"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DB              string        `mapstructure:"db"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the key/value connection string understood by pgx.
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DB, c.SSLMode,
	)
}

type ListingConfig struct {
	EventsPageSize int `mapstructure:"events_page_size"`
	UsersPageSize  int `mapstructure:"users_page_size"`
	AdminPageSize  int `mapstructure:"admin_page_size"`
}

// AdminConfig describes the superuser ensured at startup. Empty username
// disables the bootstrap.
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

func Load(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	conf, err := bind(v)
	if err != nil {
		return nil, err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if e.Op&fsnotify.Write == 0 {
			return
		}
		zap.L().Info("config file changed, restart to apply", zap.String("file", e.Name))
	})
	v.WatchConfig()

	return conf, nil
}

func bind(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("conf.Validate -> %w", err)
	}

	return conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.jwt_ttl", "24h")
	v.SetDefault("api.allowed_cors_domains", []string{"http://localhost:3000"})

	v.SetDefault("gin.mode", "debug")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 25)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime", "1h")

	v.SetDefault("listing.events_page_size", 10)
	v.SetDefault("listing.users_page_size", 10)
	v.SetDefault("listing.admin_page_size", 100)

	v.SetDefault("admin.username", "")
	v.SetDefault("admin.email", "")
	v.SetDefault("admin.password", "")

	// Bound explicitly so environment-only overrides are picked up by Unmarshal.
	for _, key := range []string{
		"api.jwt_signing_key",
		"postgres.user", "postgres.password", "postgres.db",
	} {
		_ = v.BindEnv(key)
	}
}

func (c *AppConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.API, validation.Required),
		validation.Field(&c.Gin, validation.Required),
		validation.Field(&c.Postgres, validation.Required),
		validation.Field(&c.Listing, validation.Required),
		validation.Field(&c.Admin, validation.Required),
	)
}

func (c APIConfig) Validate() error {
	return validation.ValidateStruct(
		&c,
		validation.Field(&c.Environment, validation.Required, validation.In("development", "staging", "production", "test")),
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.JWTSigningKey, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.JWTTTL, validation.Required),
	)
}

func (c GinConfig) Validate() error {
	return validation.ValidateStruct(
		&c,
		validation.Field(&c.Mode, validation.Required, validation.In("debug", "release", "test")),
	)
}

func (c PostgresConfig) Validate() error {
	return validation.ValidateStruct(
		&c,
		validation.Field(&c.Host, validation.Required),
		validation.Field(&c.Port, validation.Required),
	)
}

func (c ListingConfig) Validate() error {
	return validation.ValidateStruct(
		&c,
		validation.Field(&c.EventsPageSize, validation.Required, validation.Min(1)),
		validation.Field(&c.UsersPageSize, validation.Required, validation.Min(1)),
		validation.Field(&c.AdminPageSize, validation.Required, validation.Min(1)),
	)
}

func (c AdminConfig) Validate() error {
	if c.Username == "" {
		return nil
	}
	return validation.ValidateStruct(
		&c,
		validation.Field(&c.Password, validation.Required, validation.Length(8, 72)),
	)
}
