package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig mirrors Config for the environment overlay. Only variables that
// are actually set override the current values; token lifetimes follow the
// units the deployment tooling uses (minutes for access/reset, days for
// refresh).
type envConfig struct {
	EndpointAddr            string        `env:"FINAUTH_ADDR"`
	DatabaseDSN             string        `env:"FINAUTH_DATABASE_DSN"`
	SecretKey               string        `env:"FINAUTH_JWT_SECRET_KEY"`
	SigningAlgorithm        string        `env:"FINAUTH_JWT_ALGORITHM"`
	AccessTokenMinutes      int           `env:"FINAUTH_JWT_ACCESS_TOKEN_EXPIRE_MINUTES"`
	RefreshTokenDays        int           `env:"FINAUTH_JWT_REFRESH_TOKEN_EXPIRE_DAYS"`
	ResetTokenMinutes       int           `env:"FINAUTH_RESET_TOKEN_EXPIRE_MINUTES"`
	RevokedSweepInterval    time.Duration `env:"FINAUTH_REVOKED_SWEEP_INTERVAL"`
	IdentityProviderURL     string        `env:"FINAUTH_IDENTITY_PROVIDER_URL"`
	IdentityProviderKey     string        `env:"FINAUTH_IDENTITY_PROVIDER_KEY"`
	IdentityProviderTimeout time.Duration `env:"FINAUTH_IDENTITY_PROVIDER_TIMEOUT"`
}

// parseEnv overlays values from environment variables onto the Config.
func parseEnv(config *Config) {
	e := envConfig{}
	if err := env.Parse(&e); err != nil {
		panic(err)
	}

	if e.EndpointAddr != "" {
		config.EndpointAddr = e.EndpointAddr
	}
	if e.DatabaseDSN != "" {
		config.DatabaseDSN = e.DatabaseDSN
	}
	if e.SecretKey != "" {
		config.SecretKey = e.SecretKey
	}
	if e.SigningAlgorithm != "" {
		config.SigningAlgorithm = e.SigningAlgorithm
	}
	if e.AccessTokenMinutes > 0 {
		config.AccessTokenValidityDuration = time.Duration(e.AccessTokenMinutes) * time.Minute
	}
	if e.RefreshTokenDays > 0 {
		config.RefreshTokenValidityDuration = time.Duration(e.RefreshTokenDays) * 24 * time.Hour
	}
	if e.ResetTokenMinutes > 0 {
		config.ResetTokenValidityDuration = time.Duration(e.ResetTokenMinutes) * time.Minute
	}
	if e.RevokedSweepInterval > 0 {
		config.RevokedSweepInterval = e.RevokedSweepInterval
	}
	if e.IdentityProviderURL != "" {
		config.IdentityProviderURL = e.IdentityProviderURL
	}
	if e.IdentityProviderKey != "" {
		config.IdentityProviderKey = e.IdentityProviderKey
	}
	if e.IdentityProviderTimeout > 0 {
		config.IdentityProviderTimeout = e.IdentityProviderTimeout
	}
}
