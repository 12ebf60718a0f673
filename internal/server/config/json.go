package config

import (
	"encoding/json"
	"os"

	"gestortareas/internal/flagx"
	"gestortareas/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "30m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrHTTP              string         `json:"endpoint_addr_http"`
	DatabaseDSN                   string         `json:"database_dsn"`
	JWTSecret                     string         `json:"jwt_secret"`
	JWTRefreshSecret              string         `json:"jwt_refresh_secret"`
	AccessTokenValidityDuration   timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration  timex.Duration `json:"refresh_token_validity_duration"`
	RecoveryTokenValidityDuration timex.Duration `json:"recovery_token_validity_duration"`
	BcryptCost                    int            `json:"bcrypt_cost"`
	EmailJSServiceID              string         `json:"emailjs_service_id"`
	EmailJSPublicKey              string         `json:"emailjs_public_key"`
	EmailJSPrivateKey             string         `json:"emailjs_private_key"`
	EmailJSTemplateRecovery       string         `json:"emailjs_template_recovery"`
	EmailJSTemplateConfirmation   string         `json:"emailjs_template_confirmation"`
	FrontendURL                   string         `json:"frontend_url"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags; if neither
// is set, no JSON file is loaded. Zero values in the file leave the current
// Config values untouched, so the file only needs to list overrides.
// If the file cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
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

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.JWTSecret != "" {
		config.JWTSecret = c.JWTSecret
	}
	if c.JWTRefreshSecret != "" {
		config.JWTRefreshSecret = c.JWTRefreshSecret
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration != 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.RecoveryTokenValidityDuration.Duration != 0 {
		config.RecoveryTokenValidityDuration = c.RecoveryTokenValidityDuration.Duration
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.EmailJSServiceID != "" {
		config.EmailJSServiceID = c.EmailJSServiceID
	}
	if c.EmailJSPublicKey != "" {
		config.EmailJSPublicKey = c.EmailJSPublicKey
	}
	if c.EmailJSPrivateKey != "" {
		config.EmailJSPrivateKey = c.EmailJSPrivateKey
	}
	if c.EmailJSTemplateRecovery != "" {
		config.EmailJSTemplateRecovery = c.EmailJSTemplateRecovery
	}
	if c.EmailJSTemplateConfirmation != "" {
		config.EmailJSTemplateConfirmation = c.EmailJSTemplateConfirmation
	}
	if c.FrontendURL != "" {
		config.FrontendURL = c.FrontendURL
	}
}
