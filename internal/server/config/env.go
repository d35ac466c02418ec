package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// parseEnv overlays Config with environment variables. Unset or empty
// variables leave the current value untouched. Malformed numbers or
// durations panic, the same way malformed flags and JSON do.
//
//	PORT                  port for the REST API, becomes ":<PORT>"
//	HTTP_ADDR             full REST bind address (wins over PORT)
//	GRPC_ADDR             gRPC health bind address
//	DATABASE_DSN          PostgreSQL DSN
//	DB_CONNECT_TIMEOUT    duration, e.g. "10s"
//	JWT_SECRET            token signing secret
//	JWT_ACCESS_EXPIRY     duration, e.g. "15m"
//	CORS_ORIGINS          comma separated allow-list
//	TRUSTED_PROXIES       comma separated IPs or CIDRs of reverse proxies
//	RATE_LIMIT_RPS        float, requests per second per client
//	RATE_LIMIT_BURST      int
//	LOG_LEVEL, LOG_FORMAT
//	OPENAI_API_KEY, OPENAI_BASE_URL, OPENAI_MODEL, LLM_TIMEOUT
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT
//	HEALTH_CHECK_INTERVAL duration
func parseEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.EndpointAddrHTTP = ":" + port
	}
	envString("HTTP_ADDR", &cfg.EndpointAddrHTTP)
	envString("GRPC_ADDR", &cfg.EndpointAddrGRPC)
	envString("DATABASE_DSN", &cfg.DatabaseDSN)
	envDuration("DB_CONNECT_TIMEOUT", &cfg.DatabaseConnectTimeout)
	envString("JWT_SECRET", &cfg.SecretKey)
	envDuration("JWT_ACCESS_EXPIRY", &cfg.AccessTokenValidityDuration)

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}
	if proxies := os.Getenv("TRUSTED_PROXIES"); proxies != "" {
		cfg.TrustedProxies = splitList(proxies)
	}

	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			panic(fmt.Errorf("RATE_LIMIT_RPS: %w", err))
		}
		cfg.RateLimitRPS = rps
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("RATE_LIMIT_BURST: %w", err))
		}
		cfg.RateLimitBurst = burst
	}

	envString("LOG_LEVEL", &cfg.LogLevel)
	envString("LOG_FORMAT", &cfg.LogFormat)
	envString("OPENAI_API_KEY", &cfg.LLMAPIKey)
	envString("OPENAI_BASE_URL", &cfg.LLMBaseURL)
	envString("OPENAI_MODEL", &cfg.LLMModel)
	envDuration("LLM_TIMEOUT", &cfg.LLMTimeout)
	envString("S3_ROOT_USER", &cfg.S3RootUser)
	envString("S3_ROOT_PASSWORD", &cfg.S3RootPassword)
	envString("S3_BUCKET", &cfg.S3Bucket)
	envString("S3_REGION", &cfg.S3Region)
	envString("S3_BASE_ENDPOINT", &cfg.S3BaseEndpoint)
	envDuration("HEALTH_CHECK_INTERVAL", &cfg.HealthCheckInterval)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envDuration(key string, dst *time.Duration) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = d
}

// splitList splits a comma separated list, trimming blanks and dropping
// empty items.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
