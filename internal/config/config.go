package config

import (
	"os"
	"strconv"

	"github.com/poofware/macro-service/internal/utils"
)

type Config struct {
	AppName            string
	AppPort            string
	AppUrl             string
	DBUrl              string
	PolicyFile         string
	Policy             MacroPolicy
	CORSHighSecurity   bool
	SeedDbWithTestData bool
}

const (
	DefaultAppName                        = "macro-service"
	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"
)

// AppName can be overridden with -ldflags "-X ...config.AppName=...".
var AppName string

func LoadConfig() *Config {
	if AppName == "" {
		AppName = DefaultAppName
	}

	utils.Logger.Info("Loading config for app: ", AppName)

	appUrl := os.Getenv("APP_URL_FROM_ANYWHERE")
	if appUrl == "" {
		utils.Logger.Fatal("APP_URL_FROM_ANYWHERE env var is missing")
	}
	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		utils.Logger.Fatal("APP_PORT env var is missing")
	}
	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		utils.Logger.Fatal("DB_URL env var is missing")
	}

	policyFile := os.Getenv("MACRO_POLICY_FILE")
	policy, err := LoadPolicy(policyFile)
	if err != nil {
		utils.Logger.WithError(err).Fatalf("Failed to load macro policy (%s)", policyFile)
	}

	corsHighSecurity := envBool("CORS_HIGH_SECURITY", true)
	utils.Logger.Debugf("cors_high_security: %t", corsHighSecurity)

	seedDbWithTestData := envBool("SEED_DB_WITH_TEST_DATA", false)
	utils.Logger.Debugf("seed_db_with_test_data: %t", seedDbWithTestData)

	return &Config{
		AppName:            AppName,
		AppPort:            appPort,
		AppUrl:             appUrl,
		DBUrl:              dbURL,
		PolicyFile:         policyFile,
		Policy:             policy,
		CORSHighSecurity:   corsHighSecurity,
		SeedDbWithTestData: seedDbWithTestData,
	}
}

func envBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		utils.Logger.Warnf("Invalid %s '%s', defaulting to %t", key, raw, fallback)
		return fallback
	}
	return v
}
