package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port                     string   `mapstructure:"PORT"`
	Env                      string   `mapstructure:"ENV"`
	DatabaseURL              string   `mapstructure:"DATABASE_URL"`
	DBMaxConns               int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns               int32    `mapstructure:"DB_MIN_CONNS"`
	SecretKey                string   `mapstructure:"SECRET_KEY"`
	Algorithm                string   `mapstructure:"ALGORITHM"`
	AccessTokenExpireMinutes int      `mapstructure:"ACCESS_TOKEN_EXPIRE_MINUTES"`
	MLServiceURL             string   `mapstructure:"ML_SERVICE_URL"`
	LLMServiceURL            string   `mapstructure:"LLM_SERVICE_URL"`
	CORSOrigins              []string `mapstructure:"CORS_ORIGINS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("ALGORITHM", "HS256")
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 60)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("SECRET_KEY")
	v.BindEnv("ALGORITHM")
	v.BindEnv("ACCESS_TOKEN_EXPIRE_MINUTES")
	v.BindEnv("ML_SERVICE_URL")
	v.BindEnv("LLM_SERVICE_URL")
	v.BindEnv("CORS_ORIGINS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run. Token signing and the
// downstream service endpoints are required in every mode; a token signed with
// an empty secret would be forgeable.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY is required")
	}
	if c.Algorithm != "HS256" {
		return fmt.Errorf("ALGORITHM must be \"HS256\", got %q", c.Algorithm)
	}
	if c.AccessTokenExpireMinutes <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", c.AccessTokenExpireMinutes)
	}
	if c.MLServiceURL == "" {
		return fmt.Errorf("ML_SERVICE_URL is required")
	}
	if c.LLMServiceURL == "" {
		return fmt.Errorf("LLM_SERVICE_URL is required")
	}
	return nil
}
