package config

import (
	"crypto/rsa"
	"encoding/base64"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"

	"github.com/clearclose/closing-service/internal/constants"
	"github.com/clearclose/closing-service/internal/utils"
)

type Config struct {
	AppName          string
	AppPort          string
	AppUrl           string
	DBUrl            string
	SendgridAPIKey   string
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	RSAPublicKey     *rsa.PublicKey

	// Recommendation tuning. Env defaults, optionally overridden by
	// LaunchDarkly when LD_SDK_KEY is set.
	ShortfallLowPct         float64
	ShortfallMidPct         float64
	ShortfallHighPct        float64
	ClosingSoonBusinessDays int

	LDFlag_SendgridFromEmail   string
	LDFlag_SendgridSandboxMode bool
	LDFlag_SeedDbWithTestData  bool
	LDFlag_CORSHighSecurity    bool
}

const (
	AppName             = "closing-service"
	LDConnectionTimeout = 5 * time.Second
)

func LoadConfig() *Config {
	// Local dev convenience; real deployments inject env directly.
	_ = godotenv.Load()

	utils.Logger.Info("Loading config for app: ", AppName)

	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		utils.Logger.Fatal("APP_PORT env var is missing")
	}
	appUrl := os.Getenv("APP_URL")
	if appUrl == "" {
		utils.Logger.Fatal("APP_URL env var is missing")
	}
	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		utils.Logger.Fatal("DB_URL env var is missing")
	}

	pubB64 := os.Getenv("RSA_PUBLIC_KEY_BASE64")
	if pubB64 == "" {
		utils.Logger.Fatal("RSA_PUBLIC_KEY_BASE64 env var is missing")
	}
	pubPEM, err := base64.StdEncoding.DecodeString(pubB64)
	if err != nil {
		utils.Logger.WithError(err).Fatal("RSA_PUBLIC_KEY_BASE64 is not valid base64")
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse RSA public key")
	}

	cfg := &Config{
		AppName:          AppName,
		AppPort:          appPort,
		AppUrl:           appUrl,
		DBUrl:            dbURL,
		SendgridAPIKey:   os.Getenv("SENDGRID_API_KEY"),
		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_FROM_NUMBER"),
		RSAPublicKey:     pubKey,

		ShortfallLowPct:         envFloat("SHORTFALL_LOW_PCT", constants.DefaultShortfallLowPct),
		ShortfallMidPct:         envFloat("SHORTFALL_MID_PCT", constants.DefaultShortfallMidPct),
		ShortfallHighPct:        envFloat("SHORTFALL_HIGH_PCT", constants.DefaultShortfallHighPct),
		ClosingSoonBusinessDays: envInt("CLOSING_SOON_BUSINESS_DAYS", constants.DefaultClosingSoonBusinessDays),

		LDFlag_SendgridFromEmail: "no-reply@clearclose.ca",
	}

	ldSDKKey := os.Getenv("LD_SDK_KEY")
	if ldSDKKey == "" {
		utils.Logger.Info("LD_SDK_KEY not set, using env threshold defaults")
		return cfg
	}

	ldClient, err := ld.MakeClient(ldSDKKey, LDConnectionTimeout)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to create LaunchDarkly client")
	}
	defer ldClient.Close()

	ctx := ldcontext.NewWithKind("service", AppName)

	lowFlag, err := ldClient.Float64Variation("shortfall_low_pct", ctx, cfg.ShortfallLowPct)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving shortfall_low_pct flag")
	}
	cfg.ShortfallLowPct = lowFlag

	midFlag, err := ldClient.Float64Variation("shortfall_mid_pct", ctx, cfg.ShortfallMidPct)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving shortfall_mid_pct flag")
	}
	cfg.ShortfallMidPct = midFlag

	highFlag, err := ldClient.Float64Variation("shortfall_high_pct", ctx, cfg.ShortfallHighPct)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving shortfall_high_pct flag")
	}
	cfg.ShortfallHighPct = highFlag

	closingSoonFlag, err := ldClient.IntVariation("closing_soon_business_days", ctx, cfg.ClosingSoonBusinessDays)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving closing_soon_business_days flag")
	}
	cfg.ClosingSoonBusinessDays = closingSoonFlag

	sgFromFlag, err := ldClient.StringVariation("sendgrid_from_email", ctx, cfg.LDFlag_SendgridFromEmail)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving sendgrid_from_email flag")
	}
	cfg.LDFlag_SendgridFromEmail = sgFromFlag

	sgSandboxFlag, err := ldClient.BoolVariation("sendgrid_sandbox_mode", ctx, false)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving sendgrid_sandbox_mode flag")
	}
	cfg.LDFlag_SendgridSandboxMode = sgSandboxFlag

	seedFlag, err := ldClient.BoolVariation("seed_db_with_test_data", ctx, false)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving seed_db_with_test_data flag")
	}
	cfg.LDFlag_SeedDbWithTestData = seedFlag

	corsFlag, err := ldClient.BoolVariation("cors_high_security", ctx, false)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving cors_high_security flag")
	}
	cfg.LDFlag_CORSHighSecurity = corsFlag

	utils.Logger.Debugf("shortfall bands: low=%.1f mid=%.1f high=%.1f", cfg.ShortfallLowPct, cfg.ShortfallMidPct, cfg.ShortfallHighPct)

	return cfg
}

func (c *Config) Close() {}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		utils.Logger.Fatalf("%s is not a number: %q", key, raw)
	}
	return v
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		utils.Logger.Fatalf("%s is not an integer: %q", key, raw)
	}
	return v
}
