package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type App struct {
	Name string
	Env  string // "development" / "production"; production forces Secure cookies
	HTTP HTTP
	// FrontendURL is where OAuth callbacks redirect (dashboard / login?error=...).
	FrontendURL string
	// CORSOrigins are the allowed browser origins (the React frontend).
	CORSOrigins []string
}

type Log struct {
	Level string
	JSON  bool
	// File enables rotated file output alongside stdout when non-empty.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type DB struct {
	Driver             string
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Redis struct {
	Addr     string `mapstructure:"addr"` // empty disables the stats cache
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Google struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type Predict struct {
	// BaseURL of the ML inference service ("/predict", "/health").
	BaseURL    string
	TimeoutSec int
}

// BootstrapAdmin seeds one admin account when the in-memory store is active,
// so a fresh process without a database is still administrable.
type BootstrapAdmin struct {
	Enable   bool
	Email    string
	Username string
	Password string
}

type Config struct {
	App     App
	Log     Log
	JWT     JWT
	DB      DB
	Redis   Redis `mapstructure:"redis"`
	Google  Google
	Predict Predict
	Admin   BootstrapAdmin
}

func Load(path string) *Config {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("read config: %v", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("unmarshal config: %v", err)
	}
	if c.JWT.Secret == "" {
		log.Fatalf("jwt.secret must be set")
	}
	return &c
}

func (c *Config) Production() bool { return c.App.Env == "production" }
