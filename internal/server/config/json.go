package config

import (
	"encoding/json"
	"os"

	"github.com/myfinance/finauth/internal/flagx"
	"github.com/myfinance/finauth/internal/timex"
)

// JsonConfig is the intermediate DTO used only for reading JSON configuration
// files. Interval fields use timex.Duration, which accepts both strings such
// as "30m" and integer nanoseconds. After unmarshalling, its fields are
// copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr                 string         `json:"endpoint_addr"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	SigningAlgorithm             string         `json:"signing_algorithm"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	ResetTokenValidityDuration   timex.Duration `json:"reset_token_validity_duration"`
	RevokedSweepInterval         timex.Duration `json:"revoked_sweep_interval"`
	IdentityProviderURL          string         `json:"identity_provider_url"`
	IdentityProviderKey          string         `json:"identity_provider_key"`
	IdentityProviderTimeout      timex.Duration `json:"identity_provider_timeout"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path is taken from the -c or -config flags; if
// neither is set, no JSON file is loaded. An unreadable or invalid file
// panics: a half-applied config is worse than a refused start.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.SigningAlgorithm = c.SigningAlgorithm
	config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	config.ResetTokenValidityDuration = c.ResetTokenValidityDuration.Duration
	config.RevokedSweepInterval = c.RevokedSweepInterval.Duration
	config.IdentityProviderURL = c.IdentityProviderURL
	config.IdentityProviderKey = c.IdentityProviderKey
	config.IdentityProviderTimeout = c.IdentityProviderTimeout.Duration
}
